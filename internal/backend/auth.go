package backend

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/errors"
)

// AuthResult is a successful login or registration.
type AuthResult struct {
	User  domain.User
	Token string
}

// HealthStatus is the response of the health endpoint.
type HealthStatus struct {
	Status    string
	Message   string
	Timestamp time.Time
}

// AuthClient binds the authentication endpoints.
type AuthClient struct {
	r      Requester
	logger *slog.Logger
}

// Login exchanges credentials for a token
func (c *AuthClient) Login(ctx context.Context, creds domain.Credentials) (AuthResult, error) {
	var resp authResponseDTO
	req := loginRequestDTO{Email: creds.Email, Password: creds.Password}
	if err := c.r.Post(ctx, "login", "/auth/login", req, &resp); err != nil {
		return AuthResult{}, err
	}
	return c.toResult("login", resp)
}

// Register creates an account and returns its token
func (c *AuthClient) Register(ctx context.Context, reg domain.Registration) (AuthResult, error) {
	var resp authResponseDTO
	req := registerRequestDTO{
		Email:    reg.Email,
		Password: reg.Password,
		FullName: reg.FullName,
		Role:     string(reg.Role),
	}
	if err := c.r.Post(ctx, "register", "/auth/register", req, &resp); err != nil {
		return AuthResult{}, err
	}
	return c.toResult("register", resp)
}

func (c *AuthClient) toResult(operation string, resp authResponseDTO) (AuthResult, error) {
	if resp.Token == "" {
		c.logger.Error("auth response without token", "operation", operation)
		return AuthResult{}, errors.NewAPIError(operation, 200, "server returned no token")
	}
	return AuthResult{User: resp.User.toDomain(), Token: resp.Token}, nil
}

// Health checks that the backend is reachable
func (c *AuthClient) Health(ctx context.Context) (HealthStatus, error) {
	var resp healthDTO
	if err := c.r.Get(ctx, "health check", "/health", nil, &resp); err != nil {
		return HealthStatus{}, err
	}
	return HealthStatus{
		Status:    resp.Status,
		Message:   resp.Message,
		Timestamp: parseTime(resp.Timestamp),
	}, nil
}
