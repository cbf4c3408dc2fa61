// Package filters holds the user-editable search criteria of a session and
// turns them into search requests.
package filters

import (
	"math"

	"inventory-search/internal/models"
	"inventory-search/pkg/utils"
)

const (
	MinRadiusKm     = 1.0
	MaxRadiusKm     = 100.0
	DefaultRadiusKm = 10.0
)

// State is the single authoritative store of search criteria. It applies no
// cross-field validation; the predicates below report problems without
// changing anything.
type State struct {
	query            string
	originLat        float64
	originLon        float64
	originSource     OriginSource
	radiusKm         float64
	minPrice         *float64
	maxPrice         *float64
	categories       map[models.Category]bool
	sortKey          models.SortKey
	availabilityOnly bool
}

func NewState() *State {
	return &State{
		radiusKm:   DefaultRadiusKm,
		categories: make(map[models.Category]bool),
		sortKey:    models.SortRelevance,
	}
}

func (s *State) Query() string { return s.query }

func (s *State) SetQuery(q string) { s.query = q }

func (s *State) Origin() models.GeoPoint {
	return models.GeoPoint{Lat: s.originLat, Lon: s.originLon}
}

func (s *State) RadiusKm() float64 { return s.radiusKm }

// SetRadius stores r clamped to [MinRadiusKm, MaxRadiusKm]. NaN is ignored.
func (s *State) SetRadius(r float64) {
	if math.IsNaN(r) {
		return
	}
	s.radiusKm = ClampRadius(r)
}

func ClampRadius(r float64) float64 {
	return math.Min(MaxRadiusKm, math.Max(MinRadiusKm, r))
}

// MinPrice returns the lower price bound and whether it is set.
func (s *State) MinPrice() (float64, bool) {
	if s.minPrice == nil {
		return 0, false
	}
	return *s.minPrice, true
}

func (s *State) MaxPrice() (float64, bool) {
	if s.maxPrice == nil {
		return 0, false
	}
	return *s.maxPrice, true
}

func (s *State) SetMinPrice(v float64) { s.minPrice = finite(v) }

func (s *State) SetMaxPrice(v float64) { s.maxPrice = finite(v) }

func (s *State) ClearMinPrice() { s.minPrice = nil }

func (s *State) ClearMaxPrice() { s.maxPrice = nil }

// SetMinPriceText sets the lower bound from form text. Blank or malformed
// text unsets the bound.
func (s *State) SetMinPriceText(text string) { s.minPrice = utils.ParseOptionalFloat(text) }

func (s *State) SetMaxPriceText(text string) { s.maxPrice = utils.ParseOptionalFloat(text) }

// Categories returns the selected categories in vocabulary order.
func (s *State) Categories() []models.Category {
	var out []models.Category
	for _, c := range models.Categories {
		if s.categories[c] {
			out = append(out, c)
		}
	}
	return out
}

// SetCategories replaces the selection. Values outside the vocabulary are
// dropped.
func (s *State) SetCategories(cats []models.Category) {
	s.categories = make(map[models.Category]bool, len(cats))
	for _, c := range cats {
		if _, ok := models.ParseCategory(string(c)); ok {
			s.categories[c] = true
		}
	}
}

// ToggleCategory flips c in the selection and reports whether it is now
// selected. Unknown categories are left alone and report false.
func (s *State) ToggleCategory(c models.Category) bool {
	if _, ok := models.ParseCategory(string(c)); !ok {
		return false
	}
	if s.categories[c] {
		delete(s.categories, c)
		return false
	}
	s.categories[c] = true
	return true
}

func (s *State) SortKey() models.SortKey { return s.sortKey }

// SetSortKey ignores keys outside the known set.
func (s *State) SetSortKey(k models.SortKey) {
	if _, ok := models.ParseSortKey(string(k)); ok {
		s.sortKey = k
	}
}

func (s *State) AvailabilityOnly() bool { return s.availabilityOnly }

func (s *State) SetAvailabilityOnly(v bool) { s.availabilityOnly = v }

// PriceRangeOrdered is false only when both bounds are set and min > max.
func (s *State) PriceRangeOrdered() bool {
	if s.minPrice == nil || s.maxPrice == nil {
		return true
	}
	return *s.minPrice <= *s.maxPrice
}

func (s *State) PricesNonNegative() bool {
	if s.minPrice != nil && *s.minPrice < 0 {
		return false
	}
	return s.maxPrice == nil || *s.maxPrice >= 0
}

func (s *State) OriginValid() bool {
	return s.Origin().Valid()
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
