package cli

import (
	"context"
	"fmt"

	"marketplace/internal/api"
	"marketplace/internal/errors"
)

// LoginCommand handles the login command
type LoginCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewLoginCommand creates a new login command handler
func NewLoginCommand(app *App) *LoginCommand {
	return &LoginCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the login command: login <email> [password]. The password
// is prompted for when omitted.
func (c *LoginCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		return errors.NewInvalidInputError("command", "login", "usage: mkt login <email> [password]")
	}

	email := args[0]
	var password string
	if len(args) == 2 {
		password = args[1]
	} else {
		var err error
		if password, err = c.app.prompt("Password: "); err != nil {
			return err
		}
	}

	info, err := c.businessAPI.Login(ctx, email, password)
	if err != nil {
		return attemptError(ctx, "log in", c.businessAPI, c.errorHandler, err)
	}

	printSessionInfo(c.app, info)
	return nil
}

// attemptError reports a failed login or register with the message
// recorded on the session, which carries the server's own wording.
func attemptError(ctx context.Context, operation string, b api.BusinessAPI, eh *ErrorHandler, err error) error {
	if info, sessErr := b.CurrentSession(ctx); sessErr == nil && info.LastError != "" {
		return fmt.Errorf("failed to %s: %s", operation, info.LastError)
	}
	return eh.Handle(operation, err)
}

func printSessionInfo(app *App, info *api.SessionInfo) {
	if info == nil || info.User == nil {
		app.println("Not logged in")
		return
	}
	app.printf("Logged in as %s <%s> (%s)\n", info.User.FullName, info.User.Email, info.User.Role)
	app.printf("Session expires in %s\n", formatRemaining(info.ExpiresIn))
}
