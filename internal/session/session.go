// Package session ties one user's filter state to a search controller and
// interprets the interactive client's commands.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"inventory-search/internal/filters"
	"inventory-search/internal/models"
	"inventory-search/internal/services"
	"inventory-search/pkg/logger"
)

// ErrBusy is returned when a search is requested while one is in flight.
var ErrBusy = errors.New("a search is already in progress")

// ErrQuit signals the end of the session.
var ErrQuit = errors.New("quit")

type Session struct {
	Filters    *filters.State
	Controller *services.SearchController
}

func New(searcher services.Searcher, log *logger.Logger) *Session {
	return &Session{
		Filters:    filters.NewState(),
		Controller: services.NewSearchController(searcher, log),
	}
}

// Search builds a request from the current filters and runs it. The trigger
// is refused while another search is pending. A failed search is not an
// error here: it is reported through the returned outcome.
func (s *Session) Search(ctx context.Context) (services.Outcome, error) {
	if s.Controller.Busy() {
		return services.Outcome{}, ErrBusy
	}
	return s.Controller.Search(ctx, filters.BuildRequest(s.Filters)), nil
}

// Execute runs one command line and writes any output to w.
func (s *Session) Execute(ctx context.Context, line string, w io.Writer) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit":
		return ErrQuit

	case "help":
		fmt.Fprint(w, helpText)

	case "query", "q":
		s.Filters.SetQuery(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0])))

	case "lat":
		if len(args) != 1 {
			return usage("lat <latitude>")
		}
		s.Filters.SetLatitudeText(args[0])

	case "lon":
		if len(args) != 1 {
			return usage("lon <longitude>")
		}
		s.Filters.SetLongitudeText(args[0])

	case "origin":
		if len(args) != 2 {
			return usage("origin <latitude> <longitude>")
		}
		s.Filters.SetOriginFromInput(args[0], args[1])

	case "click":
		if len(args) != 2 {
			return usage("click <latitude> <longitude>")
		}
		lat, latErr := strconv.ParseFloat(args[0], 64)
		lon, lonErr := strconv.ParseFloat(args[1], 64)
		if latErr != nil || lonErr != nil {
			return usage("click <latitude> <longitude>")
		}
		s.Filters.SetOriginFromMapClick(lat, lon)
		fmt.Fprintf(w, "Origin set from map: %s\n", formatPoint(s.Filters.Origin()))

	case "radius":
		if len(args) != 1 {
			return usage("radius <km>")
		}
		r, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return usage("radius <km>")
		}
		s.Filters.SetRadius(r)
		fmt.Fprintf(w, "Search Radius: %s km\n", formatNumber(s.Filters.RadiusKm()))

	case "min":
		s.Filters.SetMinPriceText(strings.Join(args, " "))

	case "max":
		s.Filters.SetMaxPriceText(strings.Join(args, " "))

	case "cat", "category":
		if len(args) == 0 {
			return usage("cat <category>... | cat none")
		}
		if len(args) == 1 && args[0] == "none" {
			s.Filters.SetCategories(nil)
			break
		}
		for _, a := range args {
			c, ok := models.ParseCategory(strings.ToLower(a))
			if !ok {
				return fmt.Errorf("unknown category %q", a)
			}
			s.Filters.ToggleCategory(c)
		}

	case "sort":
		if len(args) != 1 {
			return usage("sort relevance|price_asc|price_desc|rating|newest")
		}
		k, ok := models.ParseSortKey(strings.ToLower(args[0]))
		if !ok {
			return fmt.Errorf("unknown sort key %q", args[0])
		}
		s.Filters.SetSortKey(k)

	case "available":
		if len(args) != 1 {
			return usage("available on|off")
		}
		v, err := parseSwitch(args[0])
		if err != nil {
			return err
		}
		s.Filters.SetAvailabilityOnly(v)

	case "view":
		if len(args) != 1 {
			return usage("view list|map")
		}
		mode, ok := services.ParseViewMode(strings.ToLower(args[0]))
		if !ok {
			return usage("view list|map")
		}
		s.Controller.SetViewMode(mode)
		RenderProjection(w, s.Controller.Projection())

	case "search":
		fmt.Fprintln(w, "Searching...")
		out, err := s.Search(ctx)
		if err != nil {
			return err
		}
		RenderOutcome(w, out)
		if !out.Stale && out.State == services.Success {
			RenderProjection(w, s.Controller.Projection())
		}

	case "show":
		RenderProjection(w, s.Controller.Projection())

	case "filters":
		RenderFilters(w, s.Filters)

	case "status":
		fmt.Fprintf(w, "Status: %s\n", s.Controller.State())
		if err := s.Controller.LastError(); err != nil {
			fmt.Fprintf(w, "Last error: %v\n", err)
		}

	default:
		return fmt.Errorf("unknown command %q, type help for a list", fields[0])
	}

	return nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, usage("available on|off")
}

func usage(u string) error {
	return fmt.Errorf("usage: %s", u)
}

const helpText = `Commands:
  query <text>              set the search text
  lat <value> | lon <value> set one origin coordinate
  origin <lat> <lon>        set the origin
  click <lat> <lon>         set the origin from a map click
  radius <km>               search radius, 1-100
  min [price] | max [price] price bounds, empty clears
  cat <name>...             toggle categories (electronics clothing books furniture), "cat none" clears
  sort <key>                relevance, price_asc, price_desc, rating, newest
  available on|off          only show available items
  search                    run the search
  view list|map             switch the result view
  show                      show the current results
  filters                   show the current filters
  status                    show the search status
  quit                      leave
`
