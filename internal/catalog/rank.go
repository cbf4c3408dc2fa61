package catalog

import (
	"sort"
	"strings"
	"unicode"

	"inventory-search/internal/models"
)

type candidate struct {
	product    models.Product
	distanceKm float64
	score      float64
}

// rank filters, scores, orders and truncates candidates for req. Candidates
// arrive nearest first.
func rank(candidates []candidate, req models.SearchRequest) []models.Product {
	filtered := applyFilters(candidates, req)

	terms := tokenize(req.Query)
	if len(terms) > 0 {
		scored := filtered[:0]
		for _, c := range filtered {
			c.score = relevance(c.product, terms)
			if c.score > 0 {
				scored = append(scored, c)
			}
		}
		filtered = scored
	}

	applySorting(filtered, req.SortBy)

	limit := req.MaxResults
	if limit <= 0 {
		limit = models.MaxResults
	}
	if len(filtered) > limit {
		filtered = filtered[:limit]
	}

	out := make([]models.Product, len(filtered))
	for i, c := range filtered {
		out[i] = c.product
	}
	return out
}

// applyFilters keeps candidates matching the price bounds, the category
// selection and the availability switch. An inverted price range is applied
// as given and matches nothing.
func applyFilters(candidates []candidate, req models.SearchRequest) []candidate {
	var wanted map[string]bool
	if len(req.Categories) > 0 {
		wanted = make(map[string]bool, len(req.Categories))
		for _, c := range req.Categories {
			wanted[string(c)] = true
		}
	}

	filtered := make([]candidate, 0, len(candidates))
	for _, c := range candidates {
		p := c.product

		if req.MinPrice != nil && p.Price < *req.MinPrice {
			continue
		}
		if req.MaxPrice != nil && p.Price > *req.MaxPrice {
			continue
		}
		if wanted != nil && !wanted[p.Category] {
			continue
		}
		if req.ShowOnlyAvailable && !p.IsAvailable {
			continue
		}

		filtered = append(filtered, c)
	}
	return filtered
}

func applySorting(candidates []candidate, key models.SortKey) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]

		switch key {
		case models.SortPriceAsc:
			return a.product.Price < b.product.Price

		case models.SortPriceDesc:
			return a.product.Price > b.product.Price

		case models.SortRating:
			// unrated last
			if a.product.Rating == nil || b.product.Rating == nil {
				return a.product.Rating != nil && b.product.Rating == nil
			}
			return *a.product.Rating > *b.product.Rating

		case models.SortNewest:
			if a.product.CreatedAt == nil || b.product.CreatedAt == nil {
				return a.product.CreatedAt != nil && b.product.CreatedAt == nil
			}
			return a.product.CreatedAt.After(*b.product.CreatedAt)

		default:
			if a.score != b.score {
				return a.score > b.score
			}
			return a.distanceKm < b.distanceKm
		}
	})
}

// relevance weights query terms found in the name over the category over the
// description, averaged over the query terms.
func relevance(p models.Product, terms []string) float64 {
	name := tokenSet(p.Name)
	category := tokenSet(p.Category)
	description := tokenSet(p.Description)

	var total float64
	for _, t := range terms {
		if name[t] {
			total += 3
		}
		if category[t] {
			total += 2
		}
		if description[t] {
			total++
		}
	}
	return total / float64(len(terms))
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range tokenize(s) {
		set[t] = true
	}
	return set
}
