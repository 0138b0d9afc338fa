package services

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"

	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/logging"
	"marketplace/internal/validation"
)

// DefaultScrollThreshold is the distance from the bottom, in pixels, at
// which infinite scroll requests the next page.
const DefaultScrollThreshold = 200

var (
	// ErrFetchInFlight is returned by LoadMore while another fetch is running.
	ErrFetchInFlight = stderrors.New("a fetch is already in flight")
	// ErrNoMorePages is returned by LoadMore when the last page was reached.
	ErrNoMorePages = stderrors.New("no more pages")
	// ErrStaleResponse is returned when a response arrived for a query that
	// has since been replaced. The controller state is left untouched.
	ErrStaleResponse = stderrors.New("response superseded by a newer query")
	// ErrNothingToRetry is returned by Retry when the last fetch succeeded.
	ErrNothingToRetry = stderrors.New("no failed fetch to retry")
)

// SearchOptions configures a search controller
type SearchOptions struct {
	PageSize        int
	ScrollThreshold int
	Logger          *slog.Logger
}

type fetchRequest struct {
	query domain.SearchQuery
	mode  domain.FetchMode
}

// searchControllerImpl implements the SearchController interface
type searchControllerImpl struct {
	backend         ProviderBackend
	validator       *validation.SearchValidator
	pageSize        int
	scrollThreshold int
	logger          *slog.Logger

	mu sync.Mutex
	// generation identifies the active query; every replace fetch bumps it.
	generation     uint64
	query          domain.SearchQuery
	items          []domain.Provider
	total          int
	lastPage       int
	lastPageCount  int
	state          SearchState
	err            error
	appendInFlight bool
	failed         *fetchRequest
}

// NewSearchController creates a new SearchController instance
func NewSearchController(backend ProviderBackend, opts SearchOptions) SearchController {
	if opts.PageSize <= 0 {
		opts.PageSize = domain.DefaultPageSize
	}
	if opts.ScrollThreshold <= 0 {
		opts.ScrollThreshold = DefaultScrollThreshold
	}
	return &searchControllerImpl{
		backend:         backend,
		validator:       validation.NewSearchValidator(),
		pageSize:        opts.PageSize,
		scrollThreshold: opts.ScrollThreshold,
		logger:          logging.OrDiscard(opts.Logger).With("component", "search_controller"),
		query:           domain.NewSearchQuery(),
		state:           SearchIdle,
	}
}

// Search starts a new query in replace mode. Any fetch still in flight for
// an earlier query is superseded.
func (c *searchControllerImpl) Search(ctx context.Context, q domain.SearchQuery) (SearchSnapshot, error) {
	q = q.Normalize()
	if err := c.validator.ValidateQuery(q); err != nil {
		return c.Snapshot(), validationAppError(err)
	}

	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.query = q
	c.state = SearchLoading
	c.err = nil
	c.failed = nil
	// An append for the previous generation can no longer land.
	c.appendInFlight = false
	c.mu.Unlock()

	c.logger.Debug("search started", "generation", gen, "query", domain.EncodeQuery(q))
	return c.fetch(ctx, fetchRequest{query: q, mode: domain.FetchReplace}, gen)
}

// SearchURL parses a raw query string and searches it
func (c *searchControllerImpl) SearchURL(ctx context.Context, rawQuery string) (SearchSnapshot, error) {
	return c.Search(ctx, domain.ParseQuery(rawQuery))
}

// ApplyFilterChange merges the patch into the active query and searches
// again from page 1
func (c *searchControllerImpl) ApplyFilterChange(ctx context.Context, patch domain.QueryPatch) (SearchSnapshot, error) {
	c.mu.Lock()
	current := c.query
	c.mu.Unlock()

	return c.Search(ctx, domain.ApplyFilterChange(current, patch))
}

// LoadMore fetches the page after the last one fetched and appends it.
// Only one append runs at a time.
func (c *searchControllerImpl) LoadMore(ctx context.Context) (SearchSnapshot, error) {
	c.mu.Lock()
	if c.appendInFlight || c.state == SearchLoading {
		c.mu.Unlock()
		return c.Snapshot(), ErrFetchInFlight
	}
	// After a failed replace the pagination position belongs to another query.
	if !c.hasMoreLocked() || (c.failed != nil && c.failed.mode == domain.FetchReplace) {
		c.mu.Unlock()
		return c.Snapshot(), ErrNoMorePages
	}

	req := fetchRequest{query: c.query.WithPage(c.lastPage + 1), mode: domain.FetchAppend}
	gen := c.generation
	c.appendInFlight = true
	c.state = SearchLoadingMore
	c.err = nil
	c.mu.Unlock()

	c.logger.Debug("loading more", "generation", gen, "page", req.query.Page)
	return c.fetch(ctx, req, gen)
}

// Retry re-issues the last failed fetch with the identical query and mode
func (c *searchControllerImpl) Retry(ctx context.Context) (SearchSnapshot, error) {
	c.mu.Lock()
	failed := c.failed
	c.mu.Unlock()

	if failed == nil {
		return c.Snapshot(), ErrNothingToRetry
	}
	if failed.mode == domain.FetchReplace {
		return c.Search(ctx, failed.query)
	}

	c.mu.Lock()
	if c.appendInFlight || c.state == SearchLoading {
		c.mu.Unlock()
		return c.Snapshot(), ErrFetchInFlight
	}
	gen := c.generation
	c.appendInFlight = true
	c.state = SearchLoadingMore
	c.err = nil
	c.mu.Unlock()

	return c.fetch(ctx, *failed, gen)
}

// fetch issues one request and applies its result if gen is still current
func (c *searchControllerImpl) fetch(ctx context.Context, req fetchRequest, gen uint64) (SearchSnapshot, error) {
	page, err := c.backend.Search(ctx, req.query, c.pageSize)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug("discarding stale response", "generation", gen, "mode", req.mode.String())
		return c.Snapshot(), ErrStaleResponse
	}

	if req.mode == domain.FetchAppend {
		c.appendInFlight = false
	}

	if err != nil {
		// Accumulated items are kept so the consumer can keep showing them.
		c.state = SearchFailed
		c.err = err
		c.failed = &req
		c.mu.Unlock()

		if errors.ShouldLogError(err) {
			c.logger.Error("search fetch failed", "mode", req.mode.String(), "page", req.query.Page, "error", err)
		}
		return c.Snapshot(), err
	}

	switch req.mode {
	case domain.FetchAppend:
		c.items = append(c.items, page.Items...)
	default:
		c.items = append([]domain.Provider(nil), page.Items...)
	}
	c.total = page.TotalCount
	c.lastPage = req.query.Page
	c.lastPageCount = len(page.Items)
	c.failed = nil
	c.err = nil
	if len(c.items) == 0 {
		c.state = SearchEmpty
	} else {
		c.state = SearchReady
	}
	c.mu.Unlock()

	return c.Snapshot(), nil
}

// ShouldLoadMore is the infinite scroll trigger: the viewport is within the
// threshold of the bottom, nothing is in flight and more pages exist.
func (c *searchControllerImpl) ShouldLoadMore(distanceFromBottom int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if distanceFromBottom > c.scrollThreshold {
		return false
	}
	if c.appendInFlight || c.state == SearchLoading || c.state == SearchFailed {
		return false
	}
	return c.hasMoreLocked()
}

func (c *searchControllerImpl) hasMoreLocked() bool {
	if c.lastPage == 0 {
		return false
	}
	// Pages before the first fetched one count as already seen
	seen := (c.lastPage-1)*c.pageSize + c.lastPageCount
	return domain.HasMore(seen, c.total, c.pageSize, c.lastPageCount)
}

// Snapshot returns a copy of the controller state
func (c *searchControllerImpl) Snapshot() SearchSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SearchSnapshot{
		Query:      c.query,
		Items:      append([]domain.Provider(nil), c.items...),
		TotalCount: c.total,
		LastPage:   c.lastPage,
		State:      c.state,
		Err:        c.err,
		HasMore:    c.hasMoreLocked(),
		URL:        domain.EncodeQuery(c.query),
	}
}
