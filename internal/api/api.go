package api

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/backend"
	"marketplace/internal/config"
	"marketplace/internal/httpclient"
	"marketplace/internal/logging"
	"marketplace/internal/repository/sqlite"
	"marketplace/internal/services"
)

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) (backend.HealthStatus, error)
}

// Options configures how the API is wired.
type Options struct {
	HTTP                httpclient.Options
	PageSize            int
	ScrollThreshold     int
	ExpiryCheckInterval time.Duration
	Logger              *slog.Logger
}

// OptionsFromConfig maps the loaded configuration onto wiring options.
func OptionsFromConfig(cfg *config.Config, logger *slog.Logger) Options {
	return Options{
		HTTP: httpclient.Options{
			BaseURL:        cfg.API.BaseURL,
			Timeout:        cfg.API.Timeout,
			MaxRetries:     cfg.API.MaxRetries,
			RetryBaseDelay: cfg.API.RetryBaseDelay,
			RateLimit:      cfg.API.RateLimit,
			RateBurst:      cfg.API.RateBurst,
			Logger:         logger,
		},
		PageSize:            cfg.Search.PageSize,
		ScrollThreshold:     cfg.Search.ScrollThreshold,
		ExpiryCheckInterval: cfg.Auth.ExpiryCheckInterval,
		Logger:              logger,
	}
}

// New wires the HTTP client, the endpoint clients and the services over
// the given session store. The HTTP client reads its bearer token from the
// auth service and reports 401 responses back to it.
func New(repo sqlite.Repository, opts Options) (BusinessAPI, error) {
	logger := logging.OrDiscard(opts.Logger)
	if opts.HTTP.Logger == nil {
		opts.HTTP.Logger = logger
	}

	hc, err := httpclient.New(opts.HTTP)
	if err != nil {
		return nil, err
	}
	endpoints := backend.New(hc, logger)

	container := NewServiceContainer(endpoints, repo, opts)
	hc.SetAuthenticator(container.AuthService)

	logger.Debug("api wired", "base_url", hc.BaseURL())
	return NewBusinessAPI(container, endpoints.Auth, opts), nil
}

// NewServiceContainer builds the services over the endpoint clients.
func NewServiceContainer(endpoints *backend.Client, repo sqlite.Repository, opts Options) *services.ServiceContainer {
	logger := logging.OrDiscard(opts.Logger)
	auth := services.NewAuthService(endpoints.Auth, repo, logger)

	return &services.ServiceContainer{
		AuthService:     auth,
		ProviderService: services.NewProviderService(endpoints.Providers, endpoints.Reviews, logger),
		ReviewService:   services.NewReviewService(endpoints.Reviews, auth, logger),
		NewSearchController: func() services.SearchController {
			return services.NewSearchController(endpoints.Providers, services.SearchOptions{
				PageSize:        opts.PageSize,
				ScrollThreshold: opts.ScrollThreshold,
				Logger:          logger,
			})
		},
	}
}
