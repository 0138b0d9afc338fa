package cli

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"unicode"

	"marketplace/internal/api"
	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/services"
)

// SearchRequest is a provider search as given on the command line
type SearchRequest struct {
	// RawQuery is a query string or a full search address. When set it
	// takes precedence over Query.
	RawQuery string
	Query    domain.SearchQuery
	// Pages is the number of pages to accumulate before printing.
	Pages       int
	Interactive bool
	JSON        bool
}

// SearchCommand handles the search command
type SearchCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewSearchCommand creates a new search command handler
func NewSearchCommand(app *App) *SearchCommand {
	return &SearchCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs a one-page search. A single argument containing "=" is read
// as a query string; anything else is free text.
func (c *SearchCommand) Execute(ctx context.Context, args []string) error {
	req := SearchRequest{Query: domain.NewSearchQuery(), Pages: 1}
	if len(args) == 1 && strings.Contains(args[0], "=") {
		req.RawQuery = args[0]
	} else {
		req.Query.FreeText = strings.Join(args, " ")
	}
	return c.Run(ctx, req)
}

// Run performs the search described by req
func (c *SearchCommand) Run(ctx context.Context, req SearchRequest) error {
	query := req.Query
	if req.RawQuery != "" {
		query = c.businessAPI.ParseSearchURL(req.RawQuery).Query
	}

	ctrl := c.businessAPI.NewSearch()
	snap, err := ctrl.Search(ctx, query)
	if err != nil && !req.Interactive {
		return c.errorHandler.Handle("search providers", err)
	}

	shown := 0
	for page := 1; err == nil && page < req.Pages && snap.HasMore; page++ {
		if snap, err = ctrl.LoadMore(ctx); err != nil && !req.Interactive {
			return c.errorHandler.Handle("load more providers", err)
		}
	}

	if req.JSON && !req.Interactive {
		return printJSON(c.app, snap)
	}

	if err != nil {
		c.app.println(c.errorHandler.Handle("search providers", err))
	} else {
		shown = c.printResults(snap, 0)
	}

	if !req.Interactive {
		if snap.HasMore {
			c.app.printf("More results available: mkt search --url '%s' --pages %d\n", snap.URL, snap.LastPage+1)
		}
		return nil
	}
	return c.interact(ctx, ctrl, shown)
}

// printResults prints the items after the first skip and returns the
// number of items printed so far
func (c *SearchCommand) printResults(snap services.SearchSnapshot, skip int) int {
	if skip == 0 {
		switch snap.State {
		case services.SearchEmpty:
			c.app.println("No providers match this search.")
			return 0
		default:
			c.app.printf("Showing %d of %d providers", len(snap.Items), snap.TotalCount)
			if snap.URL != "" {
				c.app.printf(" for ?%s", snap.URL)
			}
			c.app.println()
		}
	}
	for i := skip; i < len(snap.Items); i++ {
		c.app.printf("%3d. [%d] %s\n", i+1, snap.Items[i].ID, snap.Items[i].String())
	}
	return len(snap.Items)
}

const interactiveHelp = "Commands: m (more), r (retry), f key=value... (filter, q= last), c (clear filters), u (url), q (quit)"

// interact drives the controller from typed commands until quit or end of input
func (c *SearchCommand) interact(ctx context.Context, ctrl services.SearchController, shown int) error {
	c.app.println(interactiveHelp)
	for {
		line, err := c.app.prompt("> ")
		if err != nil {
			return nil
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "q", "quit":
			return nil
		case "u", "url":
			c.app.printf("?%s\n", ctrl.Snapshot().URL)
		case "m", "more":
			if !ctrl.ShouldLoadMore(0) {
				snap := ctrl.Snapshot()
				if snap.State == services.SearchFailed {
					c.app.println("Last fetch failed; use r to retry.")
				} else {
					c.app.println("No more results.")
				}
				continue
			}
			snap, err := ctrl.LoadMore(ctx)
			shown = c.report(snap, err, shown)
		case "r", "retry":
			snap, err := ctrl.Retry(ctx)
			if stderrors.Is(err, services.ErrNothingToRetry) {
				c.app.println("Nothing to retry.")
				continue
			}
			shown = c.report(snap, err, shown)
		case "c", "clear":
			snap, err := ctrl.Search(ctx, domain.ClearFilters(ctrl.Snapshot().Query))
			shown = c.report(snap, err, 0)
		case "f", "filter":
			patch, err := parseFilterPatch(splitFilterPairs(strings.TrimPrefix(strings.TrimSpace(line), fields[0])))
			if err != nil {
				c.app.println(c.errorHandler.HandleSimple(err))
				continue
			}
			snap, err := ctrl.ApplyFilterChange(ctx, patch)
			shown = c.report(snap, err, 0)
		default:
			c.app.println(interactiveHelp)
		}
	}
}

// report prints the outcome of one interactive fetch
func (c *SearchCommand) report(snap services.SearchSnapshot, err error, shown int) int {
	if err != nil {
		if stderrors.Is(err, services.ErrFetchInFlight) || stderrors.Is(err, services.ErrStaleResponse) {
			return shown
		}
		c.app.println(c.errorHandler.Handle("search providers", err))
		return shown
	}
	if shown > len(snap.Items) {
		shown = 0
	}
	return c.printResults(snap, shown)
}

// splitFilterPairs splits typed key=value pairs on whitespace. Free text may
// contain spaces, so q= takes the rest of the line.
func splitFilterPairs(line string) []string {
	var pairs []string
	rest := strings.TrimSpace(line)
	for rest != "" {
		if strings.HasPrefix(rest, domain.ParamQuery+"=") {
			return append(pairs, rest)
		}
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			return append(pairs, rest)
		}
		pairs = append(pairs, rest[:end])
		rest = strings.TrimSpace(rest[end:])
	}
	return pairs
}

// parseFilterPatch reads key=value pairs into a filter change. An empty
// value clears that filter. location may be repeated.
func parseFilterPatch(pairs []string) (domain.QueryPatch, error) {
	var patch domain.QueryPatch
	var cities []string
	citiesSet := false

	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return patch, errors.NewInvalidInputError("filter", pair, "expected key=value")
		}
		switch key {
		case domain.ParamQuery:
			text := value
			patch.FreeText = &text
		case domain.ParamService:
			ids, err := parseIDList(value)
			if err != nil {
				return patch, err
			}
			patch.ServiceIDs = &ids
		case domain.ParamLocation:
			citiesSet = true
			if value != "" {
				cities = append(cities, value)
			}
		case domain.ParamMinRating:
			rating := 0.0
			if value != "" {
				r, err := strconv.ParseFloat(value, 64)
				if err != nil {
					return patch, errors.NewInvalidInputError("minRating", value, "must be a number")
				}
				rating = r
			}
			patch.MinRating = &rating
		case domain.ParamAvailability:
			statuses, err := parseAvailabilityList(value)
			if err != nil {
				return patch, err
			}
			patch.AvailabilityStatuses = &statuses
		case domain.ParamSort:
			sortBy := domain.SortRelevance
			if value != "" {
				s, ok := domain.ParseSortOption(value)
				if !ok {
					return patch, errors.NewInvalidInputError("sort", value, "unknown sort option")
				}
				sortBy = s
			}
			patch.SortBy = &sortBy
		default:
			return patch, errors.NewInvalidInputError("filter", key, "unknown filter")
		}
	}

	if citiesSet {
		patch.Cities = &cities
	}
	return patch, nil
}

func parseIDList(value string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			return nil, errors.NewInvalidInputError("service", part, "must be a positive integer")
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseAvailabilityList(value string) ([]domain.AvailabilityStatus, error) {
	statuses := []domain.AvailabilityStatus{}
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, ok := domain.ParseAvailabilityStatus(part)
		if !ok {
			return nil, errors.NewInvalidInputError("availability", part, "must be available, busy or unavailable")
		}
		statuses = append(statuses, a)
	}
	return statuses, nil
}
