// Package services coordinates search submissions with the result set, the
// map viewport and the two result views.
package services

import (
	"context"
	"fmt"
	"sync"

	"inventory-search/internal/models"
	"inventory-search/pkg/logger"
)

type Lifecycle int

const (
	Idle Lifecycle = iota
	Pending
	Success
	Error
)

func (l Lifecycle) String() string {
	switch l {
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return "idle"
	}
}

// Searcher is the remote search service.
type Searcher interface {
	Search(ctx context.Context, req models.SearchRequest) ([]models.Product, error)
}

// Outcome reports how one submission resolved. A stale outcome belongs to a
// submission that was overtaken by a newer one and changed nothing.
type Outcome struct {
	Token   uint64
	State   Lifecycle
	Results []models.Product
	Err     error
	Stale   bool
}

// SearchController owns the search lifecycle, the current result set and the
// view state derived from it.
type SearchController struct {
	searcher Searcher
	log      *logger.Logger

	mu      sync.Mutex
	state   Lifecycle
	results []models.Product
	lastErr error
	view    ViewState
	issued  uint64
}

func NewSearchController(searcher Searcher, log *logger.Logger) *SearchController {
	if log == nil {
		log = logger.Nop()
	}
	return &SearchController{
		searcher: searcher,
		log:      log,
		results:  []models.Product{},
		view:     *NewViewState(),
	}
}

// Submit starts a search and returns immediately with the controller in the
// pending state. The returned channel yields exactly one Outcome and is then
// closed. Submissions are accepted in any state; callers that want a single
// search in flight should check Busy first.
//
// Only the most recently issued submission may change the controller. Older
// ones resolve as stale.
func (c *SearchController) Submit(ctx context.Context, req models.SearchRequest) <-chan Outcome {
	c.mu.Lock()
	c.issued++
	token := c.issued
	c.state = Pending
	c.mu.Unlock()

	c.log.SearchSubmitted(token, req.Query, req.RadiusKm)

	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		results, err := c.call(ctx, req)
		done <- c.resolve(token, results, err)
	}()
	return done
}

// Search submits req and waits for its outcome.
func (c *SearchController) Search(ctx context.Context, req models.SearchRequest) Outcome {
	return <-c.Submit(ctx, req)
}

func (c *SearchController) call(ctx context.Context, req models.SearchRequest) (results []models.Product, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search panicked: %v", r)
		}
	}()
	return c.searcher.Search(ctx, req)
}

func (c *SearchController) resolve(token uint64, results []models.Product, err error) Outcome {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.issued {
		c.log.StaleResponse(token, c.issued)
		return Outcome{Token: token, State: c.state, Err: err, Stale: true}
	}

	c.log.SearchResolved(token, len(results), err)

	if err != nil {
		c.state = Error
		c.lastErr = err
		return Outcome{Token: token, State: Error, Err: err}
	}

	if results == nil {
		results = []models.Product{}
	}
	c.results = results
	c.lastErr = nil
	c.state = Success
	c.view.Center = DeriveCenter(results, c.view.Center)

	return Outcome{Token: token, State: Success, Results: cloneResults(results)}
}

func (c *SearchController) State() Lifecycle {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a submission is outstanding.
func (c *SearchController) Busy() bool {
	return c.State() == Pending
}

// LastError is the failure of the latest submission, or nil once a later
// submission succeeds.
func (c *SearchController) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// CurrentResults returns the results of the most recent successful search,
// or an empty slice.
func (c *SearchController) CurrentResults() []models.Product {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneResults(c.results)
}

func (c *SearchController) View() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// SetViewMode toggles between list and map. Nothing is fetched.
func (c *SearchController) SetViewMode(mode ViewMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view.Mode = mode
}

// Projection renders the current results for the active view mode.
func (c *SearchController) Projection() Projection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Project(c.view, c.results)
}

func cloneResults(results []models.Product) []models.Product {
	out := make([]models.Product, len(results))
	copy(out, results)
	return out
}
