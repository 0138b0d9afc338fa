package cli

import (
	"context"
	"strconv"

	"marketplace/internal/api"
	"marketplace/internal/errors"
)

// ProviderCommand shows a provider profile with its latest reviews
type ProviderCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewProviderCommand creates a new provider command handler
func NewProviderCommand(app *App) *ProviderCommand {
	return &ProviderCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the provider command: provider <id> [review count]
func (c *ProviderCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.NewInvalidInputError("command", "provider", "usage: mkt provider <id> [review count]")
	}
	id, err := parseID("provider ID", args[0])
	if err != nil {
		return err
	}
	limit := 0
	if len(args) == 2 {
		if limit, err = strconv.Atoi(args[1]); err != nil || limit < 1 {
			return errors.NewInvalidInputError("review count", args[1], "must be a positive integer")
		}
	}
	return c.Show(ctx, id, limit, false)
}

// Show prints the provider. limit 0 uses the default review page size.
func (c *ProviderCommand) Show(ctx context.Context, id int64, limit int, asJSON bool) error {
	result, err := c.businessAPI.GetProvider(ctx, id, limit)
	if err != nil {
		return c.errorHandler.Handle("load provider", err)
	}
	if asJSON {
		return printJSON(c.app, result)
	}

	printProviderDetail(c.app, result.Provider)
	c.app.println()
	printReviewsPage(c.app, result.Reviews)
	return nil
}

// ReviewsCommand pages through a provider's reviews
type ReviewsCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewReviewsCommand creates a new reviews command handler
func NewReviewsCommand(app *App) *ReviewsCommand {
	return &ReviewsCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the reviews command: reviews <provider id> [page] [limit]
func (c *ReviewsCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 3 {
		return errors.NewInvalidInputError("command", "reviews", "usage: mkt reviews <provider id> [page] [limit]")
	}
	id, err := parseID("provider ID", args[0])
	if err != nil {
		return err
	}
	page, limit, err := parsePaging(args[1:])
	if err != nil {
		return err
	}

	result, err := c.businessAPI.ListProviderReviews(ctx, id, page, limit)
	if err != nil {
		return c.errorHandler.Handle("list reviews", err)
	}
	printReviewsPage(c.app, *result)
	return nil
}

func parseID(field, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidInputError(field, value, "must be a positive integer")
	}
	return id, nil
}

// parsePaging reads optional [page] [limit] arguments; 0 means default
func parsePaging(args []string) (int, int, error) {
	values := [2]int{}
	names := [2]string{"page", "limit"}
	for i, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 {
			return 0, 0, errors.NewInvalidInputError(names[i], arg, "must be a positive integer")
		}
		values[i] = n
	}
	return values[0], values[1], nil
}
