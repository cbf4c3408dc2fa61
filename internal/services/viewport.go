package services

import "inventory-search/internal/models"

type ViewMode string

const (
	ViewList ViewMode = "list"
	ViewMap  ViewMode = "map"
)

func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(s) {
	case ViewList, ViewMap:
		return ViewMode(s), true
	}
	return "", false
}

// ViewState is what the client currently shows. Center is derived from
// results and is not set by the user.
type ViewState struct {
	Mode   ViewMode
	Center models.GeoPoint
}

func NewViewState() *ViewState {
	return &ViewState{Mode: ViewList}
}

// DeriveCenter returns the coordinates of the first result, or previous when
// there are no results.
func DeriveCenter(results []models.Product, previous models.GeoPoint) models.GeoPoint {
	if len(results) == 0 {
		return previous
	}
	return results[0].Location()
}
