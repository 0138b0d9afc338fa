package cli

import (
	"context"

	"marketplace/internal/api"
)

// LogoutCommand handles the logout command
type LogoutCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewLogoutCommand creates a new logout command handler
func NewLogoutCommand(app *App) *LogoutCommand {
	return &LogoutCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the logout command
func (c *LogoutCommand) Execute(ctx context.Context, args []string) error {
	if err := c.businessAPI.Logout(ctx); err != nil {
		return c.errorHandler.Handle("log out", err)
	}
	c.app.println("Logged out")
	return nil
}

// WhoamiCommand shows the current session
type WhoamiCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewWhoamiCommand creates a new whoami command handler
func NewWhoamiCommand(app *App) *WhoamiCommand {
	return &WhoamiCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the whoami command
func (c *WhoamiCommand) Execute(ctx context.Context, args []string) error {
	info, err := c.businessAPI.CurrentSession(ctx)
	if err != nil {
		return c.errorHandler.Handle("read session", err)
	}
	printSessionInfo(c.app, info)
	if info.User == nil && info.LastError != "" {
		c.app.printf("Last attempt failed: %s\n", info.LastError)
	}
	return nil
}
