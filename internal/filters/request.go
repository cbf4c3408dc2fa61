package filters

import "inventory-search/internal/models"

// BuildRequest snapshots s into a search request. Unset price bounds and an
// empty category selection are left out of the request entirely; max_results
// is always models.MaxResults. s is not modified and the request shares no
// memory with it.
func BuildRequest(s *State) models.SearchRequest {
	origin := s.Origin()
	req := models.SearchRequest{
		Query:             s.query,
		Lat:               origin.Lat,
		Lon:               origin.Lon,
		RadiusKm:          s.radiusKm,
		MaxResults:        models.MaxResults,
		SortBy:            s.sortKey,
		ShowOnlyAvailable: s.availabilityOnly,
	}

	if v, ok := s.MinPrice(); ok {
		req.MinPrice = &v
	}
	if v, ok := s.MaxPrice(); ok {
		req.MaxPrice = &v
	}
	if cats := s.Categories(); len(cats) > 0 {
		req.Categories = cats
	}

	return req
}
