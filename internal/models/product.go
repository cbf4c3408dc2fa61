package models

import (
	"math"
	"time"
)

// MaxResults is the fixed result cap sent with every search.
const MaxResults = 20

type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryBooks       Category = "books"
	CategoryFurniture   Category = "furniture"
)

// Categories lists the category vocabulary in display order.
var Categories = []Category{
	CategoryElectronics,
	CategoryClothing,
	CategoryBooks,
	CategoryFurniture,
}

func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

type SortKey string

const (
	SortRelevance SortKey = "relevance"
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortRating    SortKey = "rating"
	SortNewest    SortKey = "newest"
)

var SortKeys = []SortKey{SortRelevance, SortPriceAsc, SortPriceDesc, SortRating, SortNewest}

func ParseSortKey(s string) (SortKey, bool) {
	for _, k := range SortKeys {
		if string(k) == s {
			return k, true
		}
	}
	return "", false
}

type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether the point is finite and inside WGS84 bounds.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

type Product struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Price       float64    `json:"price"`
	Category    string     `json:"category"`
	Lat         float64    `json:"lat"`
	Lon         float64    `json:"lon"`
	Description string     `json:"description"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	Rating      *float64   `json:"rating,omitempty"`
	IsAvailable bool       `json:"is_available"`
}

func (p Product) Location() GeoPoint {
	return GeoPoint{Lat: p.Lat, Lon: p.Lon}
}

// SearchRequest is the body of POST /search/. Optional filters are pointers or
// nil slices so that unset values are omitted from the wire form.
type SearchRequest struct {
	Query             string     `json:"query"`
	Lat               float64    `json:"lat" binding:"gte=-90,lte=90"`
	Lon               float64    `json:"lon" binding:"gte=-180,lte=180"`
	RadiusKm          float64    `json:"radius_km" binding:"gt=0"`
	MaxResults        int        `json:"max_results" binding:"gte=1,lte=100"`
	MinPrice          *float64   `json:"min_price,omitempty" binding:"omitempty,gte=0"`
	MaxPrice          *float64   `json:"max_price,omitempty" binding:"omitempty,gte=0"`
	Categories        []Category `json:"categories,omitempty" binding:"omitempty,dive,oneof=electronics clothing books furniture"`
	SortBy            SortKey    `json:"sort_by,omitempty" binding:"omitempty,oneof=relevance price_asc price_desc rating newest"`
	ShowOnlyAvailable bool       `json:"show_only_available"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
