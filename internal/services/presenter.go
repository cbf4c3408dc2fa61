package services

import (
	"time"

	"inventory-search/internal/models"
)

// ListItem is one row of the list view.
type ListItem struct {
	ID          string
	Name        string
	Price       float64
	Category    string
	Description string
	Rating      *float64
	CreatedAt   *time.Time
	Available   bool
}

// MarkerPopup is shown when a marker is selected: the list fields without
// the timestamp.
type MarkerPopup struct {
	Name        string
	Price       float64
	Category    string
	Description string
	Rating      *float64
	Available   bool
}

type Marker struct {
	ID       string
	Position models.GeoPoint
	Popup    MarkerPopup
}

// Projection is the render-ready form of a result set for one view mode.
// Exactly one of Items and Markers is populated.
type Projection struct {
	Mode    ViewMode
	Center  models.GeoPoint
	Items   []ListItem
	Markers []Marker
}

// ListView keeps service order and never filters.
func ListView(results []models.Product) []ListItem {
	items := make([]ListItem, 0, len(results))
	for _, p := range results {
		items = append(items, ListItem{
			ID:          p.ID,
			Name:        p.Name,
			Price:       p.Price,
			Category:    p.Category,
			Description: p.Description,
			Rating:      copyFloat(p.Rating),
			CreatedAt:   copyTime(p.CreatedAt),
			Available:   p.IsAvailable,
		})
	}
	return items
}

// MapView emits one marker per product with valid coordinates. Products that
// share a location each get their own marker.
func MapView(results []models.Product) []Marker {
	markers := make([]Marker, 0, len(results))
	for _, p := range results {
		pos := p.Location()
		if !pos.Valid() {
			continue
		}
		markers = append(markers, Marker{
			ID:       p.ID,
			Position: pos,
			Popup: MarkerPopup{
				Name:        p.Name,
				Price:       p.Price,
				Category:    p.Category,
				Description: p.Description,
				Rating:      copyFloat(p.Rating),
				Available:   p.IsAvailable,
			},
		})
	}
	return markers
}

func Project(view ViewState, results []models.Product) Projection {
	out := Projection{Mode: view.Mode, Center: view.Center}
	if view.Mode == ViewMap {
		out.Markers = MapView(results)
	} else {
		out.Items = ListView(results)
	}
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
