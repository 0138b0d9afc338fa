package cli

import (
	"context"
	"strconv"
	"strings"

	"marketplace/internal/api"
	"marketplace/internal/domain"
	"marketplace/internal/errors"
)

// ReviewCommand handles the review create and delete subcommands
type ReviewCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewReviewCommand creates a new review command handler
func NewReviewCommand(app *App) *ReviewCommand {
	return &ReviewCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

const reviewUsage = "usage: mkt review create <provider id> <rating> <comment> | mkt review delete <review id>"

// Execute dispatches to create or delete
func (c *ReviewCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.NewInvalidInputError("command", "review", reviewUsage)
	}
	switch args[0] {
	case "create":
		if len(args) < 4 {
			return errors.NewInvalidInputError("command", "review create", reviewUsage)
		}
		providerID, err := parseID("provider ID", args[1])
		if err != nil {
			return err
		}
		rating, err := strconv.Atoi(args[2])
		if err != nil {
			return errors.NewInvalidInputError("rating", args[2], "must be a whole number of stars")
		}
		return c.Create(ctx, domain.NewReview{
			ProviderID: providerID,
			Rating:     rating,
			Comment:    strings.Join(args[3:], " "),
		})
	case "delete":
		if len(args) != 2 {
			return errors.NewInvalidInputError("command", "review delete", reviewUsage)
		}
		id, err := parseID("review ID", args[1])
		if err != nil {
			return err
		}
		return c.Delete(ctx, id, false)
	default:
		return errors.NewInvalidInputError("command", "review "+args[0], reviewUsage)
	}
}

// Create submits a review
func (c *ReviewCommand) Create(ctx context.Context, review domain.NewReview) error {
	created, err := c.businessAPI.CreateReview(ctx, review)
	if err != nil {
		return c.errorHandler.Handle("create review", err)
	}
	c.app.printf("Review #%d created for provider #%d (%d★)\n", created.ID, created.ProviderID, created.Rating)
	return nil
}

// Delete removes a review after confirmation unless skipConfirm is set
func (c *ReviewCommand) Delete(ctx context.Context, id int64, skipConfirm bool) error {
	if !skipConfirm && !c.app.confirm("Delete review #"+strconv.FormatInt(id, 10)+"?") {
		c.app.println("Delete cancelled.")
		return nil
	}
	if err := c.businessAPI.DeleteReview(ctx, id); err != nil {
		return c.errorHandler.Handle("delete review", err)
	}
	c.app.printf("Deleted review #%d\n", id)
	return nil
}

// MyReviewsCommand lists the reviews written by the logged in user
type MyReviewsCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewMyReviewsCommand creates a new my-reviews command handler
func NewMyReviewsCommand(app *App) *MyReviewsCommand {
	return &MyReviewsCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the my-reviews command: my-reviews [page] [limit]
func (c *MyReviewsCommand) Execute(ctx context.Context, args []string) error {
	if len(args) > 2 {
		return errors.NewInvalidInputError("command", "my-reviews", "usage: mkt my-reviews [page] [limit]")
	}
	page, limit, err := parsePaging(args)
	if err != nil {
		return err
	}

	result, err := c.businessAPI.ListOwnReviews(ctx, page, limit)
	if err != nil {
		return c.errorHandler.Handle("list your reviews", err)
	}
	printReviewsPage(c.app, *result)
	return nil
}
