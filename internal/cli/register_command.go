package cli

import (
	"context"
	"strings"

	"marketplace/internal/api"
	"marketplace/internal/domain"
	"marketplace/internal/errors"
)

// RegisterCommand handles the register command
type RegisterCommand struct {
	app          *App
	businessAPI  api.BusinessAPI
	errorHandler *ErrorHandler
}

// NewRegisterCommand creates a new register command handler
func NewRegisterCommand(app *App) *RegisterCommand {
	return &RegisterCommand{
		app:          app,
		businessAPI:  app.businessAPI,
		errorHandler: NewErrorHandler(),
	}
}

// Execute runs the register command: register <role> <email> <full name...>.
// The password and its confirmation are always prompted for.
func (c *RegisterCommand) Execute(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.NewInvalidInputError("command", "register", "usage: mkt register <client|provider|mixto> <email> <full name>")
	}

	role, ok := domain.ParseRole(args[0])
	if !ok || !role.IsRegistrable() {
		return errors.NewInvalidInputError("role", args[0], "must be client, provider or mixto")
	}

	reg := domain.Registration{
		Role:     role,
		Email:    args[1],
		FullName: strings.Join(args[2:], " "),
	}

	var err error
	if reg.Password, err = c.app.prompt("Password: "); err != nil {
		return err
	}
	if reg.ConfirmPassword, err = c.app.prompt("Confirm password: "); err != nil {
		return err
	}

	info, err := c.businessAPI.Register(ctx, reg)
	if err != nil {
		return attemptError(ctx, "register", c.businessAPI, c.errorHandler, err)
	}

	c.app.println("Account created")
	printSessionInfo(c.app, info)
	return nil
}
