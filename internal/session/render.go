package session

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"inventory-search/internal/filters"
	"inventory-search/internal/models"
	"inventory-search/internal/services"
)

const dateLayout = "Jan 2, 2006"

func RenderOutcome(w io.Writer, out services.Outcome) {
	switch {
	case out.Stale:
		fmt.Fprintln(w, "Search superseded by a newer one.")
	case out.State == services.Error:
		fmt.Fprintf(w, "Search failed: %v\n", out.Err)
	default:
		fmt.Fprintf(w, "Found %d results.\n", len(out.Results))
	}
}

func RenderProjection(w io.Writer, p services.Projection) {
	if p.Mode == services.ViewMap {
		renderMap(w, p)
		return
	}

	if len(p.Items) == 0 {
		fmt.Fprintln(w, "No results.")
		return
	}
	for i, item := range p.Items {
		fmt.Fprintf(w, "%d. %s\n", i+1, item.Name)
		fmt.Fprintf(w, "   %s\n", formatPrice(item.Price))
		fmt.Fprintf(w, "   %s\n", item.Category)
		fmt.Fprintf(w, "   %s\n", item.Description)
		if item.Rating != nil {
			fmt.Fprintf(w, "   Rating: %s/5\n", formatNumber(*item.Rating))
		}
		if item.CreatedAt != nil {
			fmt.Fprintf(w, "   Added: %s\n", item.CreatedAt.Format(dateLayout))
		}
		fmt.Fprintf(w, "   Status: %s\n", availability(item.Available))
	}
}

func renderMap(w io.Writer, p services.Projection) {
	fmt.Fprintf(w, "Map centered at %s, %d markers\n", formatPoint(p.Center), len(p.Markers))
	for _, m := range p.Markers {
		fmt.Fprintf(w, "- %s %s %s (%s) Status: %s\n",
			formatPoint(m.Position), m.Popup.Name, formatPrice(m.Popup.Price), m.Popup.Category, availability(m.Popup.Available))
	}
}

func RenderFilters(w io.Writer, f *filters.State) {
	fmt.Fprintf(w, "Query: %q\n", f.Query())
	fmt.Fprintf(w, "Origin: %s (from %s)\n", formatPoint(f.Origin()), f.OriginSource())
	fmt.Fprintf(w, "Search Radius: %s km\n", formatNumber(f.RadiusKm()))

	minText, maxText := "-", "-"
	if v, ok := f.MinPrice(); ok {
		minText = formatPrice(v)
	}
	if v, ok := f.MaxPrice(); ok {
		maxText = formatPrice(v)
	}
	fmt.Fprintf(w, "Price Range: %s .. %s\n", minText, maxText)
	if !f.PriceRangeOrdered() {
		fmt.Fprintln(w, "  (minimum is above maximum)")
	}

	cats := make([]string, 0, len(models.Categories))
	for _, c := range f.Categories() {
		cats = append(cats, string(c))
	}
	if len(cats) == 0 {
		cats = append(cats, "any")
	}
	fmt.Fprintf(w, "Categories: %s\n", strings.Join(cats, ", "))
	fmt.Fprintf(w, "Sort: %s\n", f.SortKey())
	fmt.Fprintf(w, "Only available: %t\n", f.AvailabilityOnly())
}

func availability(ok bool) string {
	if ok {
		return "Available"
	}
	return "Out of Stock"
}

func formatPrice(v float64) string {
	return "$" + formatNumber(v)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPoint(p models.GeoPoint) string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}
