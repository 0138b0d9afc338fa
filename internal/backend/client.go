// Package backend binds the marketplace REST endpoints to domain types.
package backend

import (
	"context"
	"log/slog"
	"net/url"

	"marketplace/internal/logging"
)

// Requester is the transport used by the endpoint clients.
// *httpclient.Client satisfies it.
type Requester interface {
	Get(ctx context.Context, operation, path string, query url.Values, out interface{}) error
	Post(ctx context.Context, operation, path string, body, out interface{}) error
	Put(ctx context.Context, operation, path string, body, out interface{}) error
	Delete(ctx context.Context, operation, path string) error
}

// Client groups the endpoint clients over one transport.
type Client struct {
	Auth      *AuthClient
	Providers *ProviderClient
	Reviews   *ReviewClient
}

// New creates the endpoint clients
func New(r Requester, logger *slog.Logger) *Client {
	logger = logging.OrDiscard(logger)
	return &Client{
		Auth:      &AuthClient{r: r, logger: logger.With("component", "auth_client")},
		Providers: &ProviderClient{r: r, logger: logger.With("component", "provider_client")},
		Reviews:   &ReviewClient{r: r, logger: logger.With("component", "review_client")},
	}
}
