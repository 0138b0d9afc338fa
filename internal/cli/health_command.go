package cli

import (
	"context"
	"time"

	"marketplace/internal/api"
	"marketplace/internal/errors"
)

// HealthCommand checks that the backend is reachable
type HealthCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewHealthCommand creates a new health command handler
func NewHealthCommand(app *App) *HealthCommand {
	return &HealthCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the health command
func (c *HealthCommand) Execute(ctx context.Context, args []string) error {
	status, err := c.businessAPI.Health(ctx)
	if err != nil {
		return c.errorHandler.Handle("reach the server", err)
	}
	c.app.printf("%s %s: %s", c.app.config.API.BaseURL, status.Status, status.Message)
	if !status.Timestamp.IsZero() {
		c.app.printf(" (%s)", status.Timestamp.Format(time.RFC3339))
	}
	c.app.println()
	return nil
}

// URLCommand normalizes a search address into its canonical query string
type URLCommand struct {
	app         *App
	businessAPI api.BusinessAPI
}

// NewURLCommand creates a new url command handler
func NewURLCommand(app *App) *URLCommand {
	return &URLCommand{app: app, businessAPI: app.businessAPI}
}

// Execute runs the url command: url <query string or address>
func (c *URLCommand) Execute(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.NewInvalidInputError("command", "url", "usage: mkt url '<query string>'")
	}
	link := c.businessAPI.ParseSearchURL(args[0])
	c.app.printf("?%s\n", link.URL)
	return nil
}
