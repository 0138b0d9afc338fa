package api

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"marketplace/internal/backend"
	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/logging"
	"marketplace/internal/services"
)

// SessionInfo describes the current session for display
type SessionInfo struct {
	User      *domain.User  `json:"user"`
	State     string        `json:"state"`
	ExpiresAt *time.Time    `json:"expires_at,omitempty"`
	ExpiresIn time.Duration `json:"expires_in"`
	// LastError is the message of the last failed login or register attempt.
	LastError string `json:"last_error,omitempty"`
}

// SearchLink is a search query together with its shareable form
type SearchLink struct {
	Query domain.SearchQuery `json:"query"`
	URL   string             `json:"url"`
}

// BusinessAPI defines the workflows exposed to the command line
type BusinessAPI interface {
	// ========== Session Workflows ==========

	// RestoreSession reloads the persisted session, dropping it if expired
	RestoreSession(ctx context.Context) error

	// Login authenticates and persists the session
	Login(ctx context.Context, email, password string) (*SessionInfo, error)

	// Register creates an account and logs in with it
	Register(ctx context.Context, reg domain.Registration) (*SessionInfo, error)

	// Logout clears the session; it succeeds when already logged out
	Logout(ctx context.Context) error

	// CurrentSession returns the session state, evicting an expired token
	CurrentSession(ctx context.Context) (*SessionInfo, error)

	// StartExpiryWatcher evicts the session once its token expires
	StartExpiryWatcher(ctx context.Context) *services.ExpiryWatcher

	// ========== Search and Discovery ==========

	// NewSearch returns an independent search controller
	NewSearch() services.SearchController

	// ParseSearchURL decodes a query string into its canonical form
	ParseSearchURL(raw string) *SearchLink

	// BuildSearchURL encodes a query into its shareable form
	BuildSearchURL(q domain.SearchQuery) *SearchLink

	// GetProvider returns a profile with its first page of reviews
	GetProvider(ctx context.Context, id int64, reviewLimit int) (*services.ProviderWithReviews, error)

	// ListProviderReviews returns one page of a provider's reviews
	ListProviderReviews(ctx context.Context, providerID int64, page, limit int) (*domain.ReviewsPage, error)

	// ========== Reviews ==========

	CreateReview(ctx context.Context, review domain.NewReview) (*domain.Review, error)
	DeleteReview(ctx context.Context, id int64) error
	ListOwnReviews(ctx context.Context, page, limit int) (*domain.ReviewsPage, error)

	// ========== Diagnostics ==========

	Health(ctx context.Context) (*backend.HealthStatus, error)
}

// businessAPIImpl implements the BusinessAPI interface
type businessAPIImpl struct {
	services       *services.ServiceContainer
	health         HealthChecker
	expiryInterval time.Duration
	logger         *slog.Logger
}

// NewBusinessAPI creates a new BusinessAPI over already wired services
func NewBusinessAPI(container *services.ServiceContainer, health HealthChecker, opts Options) BusinessAPI {
	interval := opts.ExpiryCheckInterval
	if interval <= 0 {
		interval = services.DefaultExpiryCheckInterval
	}
	return &businessAPIImpl{
		services:       container,
		health:         health,
		expiryInterval: interval,
		logger:         logging.OrDiscard(opts.Logger).With("component", "business_api"),
	}
}

// ========== Session Workflows ==========

func (b *businessAPIImpl) RestoreSession(ctx context.Context) error {
	if err := b.services.AuthService.Rehydrate(ctx); err != nil {
		return errors.WrapError(err, errors.ErrorTypeStorage, "failed to restore session")
	}
	return nil
}

func (b *businessAPIImpl) Login(ctx context.Context, email, password string) (*SessionInfo, error) {
	creds := domain.Credentials{Email: email, Password: password}
	if _, err := b.services.AuthService.Login(ctx, creds); err != nil {
		return nil, err
	}
	return b.sessionInfo(), nil
}

func (b *businessAPIImpl) Register(ctx context.Context, reg domain.Registration) (*SessionInfo, error) {
	if _, err := b.services.AuthService.Register(ctx, reg); err != nil {
		return nil, err
	}
	return b.sessionInfo(), nil
}

func (b *businessAPIImpl) Logout(ctx context.Context) error {
	return b.services.AuthService.Logout(ctx)
}

func (b *businessAPIImpl) CurrentSession(ctx context.Context) (*SessionInfo, error) {
	evicted, err := b.services.AuthService.CheckExpiration(ctx)
	if err != nil {
		return nil, err
	}
	if evicted {
		b.logger.Info("session expired")
	}
	return b.sessionInfo(), nil
}

func (b *businessAPIImpl) StartExpiryWatcher(ctx context.Context) *services.ExpiryWatcher {
	return b.services.AuthService.StartExpiryWatcher(ctx, b.expiryInterval)
}

func (b *businessAPIImpl) sessionInfo() *SessionInfo {
	auth := b.services.AuthService
	session := auth.Session()

	info := &SessionInfo{
		State:     domain.StateAnonymous.String(),
		LastError: session.Error,
	}
	if user := auth.CurrentUser(); user != nil {
		info.User = user
		info.State = domain.StateAuthenticated.String()
		expiresAt := session.ExpiresAt
		info.ExpiresAt = &expiresAt
		info.ExpiresIn = auth.TimeUntilExpiration()
	}
	return info
}

// ========== Search and Discovery ==========

func (b *businessAPIImpl) NewSearch() services.SearchController {
	return b.services.NewSearchController()
}

func (b *businessAPIImpl) ParseSearchURL(raw string) *SearchLink {
	// Accept a full address as well as a bare query string.
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	return b.BuildSearchURL(domain.ParseQuery(raw))
}

func (b *businessAPIImpl) BuildSearchURL(q domain.SearchQuery) *SearchLink {
	q = q.Normalize()
	return &SearchLink{Query: q, URL: domain.EncodeQuery(q)}
}

func (b *businessAPIImpl) GetProvider(ctx context.Context, id int64, reviewLimit int) (*services.ProviderWithReviews, error) {
	return b.services.ProviderService.GetProviderWithReviews(ctx, id, reviewLimit)
}

func (b *businessAPIImpl) ListProviderReviews(ctx context.Context, providerID int64, page, limit int) (*domain.ReviewsPage, error) {
	return b.services.ReviewService.ListForProvider(ctx, providerID, page, limit)
}

// ========== Reviews ==========

func (b *businessAPIImpl) CreateReview(ctx context.Context, review domain.NewReview) (*domain.Review, error) {
	return b.services.ReviewService.CreateReview(ctx, review)
}

func (b *businessAPIImpl) DeleteReview(ctx context.Context, id int64) error {
	return b.services.ReviewService.DeleteReview(ctx, id)
}

func (b *businessAPIImpl) ListOwnReviews(ctx context.Context, page, limit int) (*domain.ReviewsPage, error) {
	return b.services.ReviewService.ListOwn(ctx, page, limit)
}

// ========== Diagnostics ==========

func (b *businessAPIImpl) Health(ctx context.Context) (*backend.HealthStatus, error) {
	if b.health == nil {
		return nil, errors.NewInvalidInputError("health", nil, "no health endpoint configured")
	}
	status, err := b.health.Health(ctx)
	if err != nil {
		return nil, err
	}
	return &status, nil
}
