package services

import (
	"context"
	"time"

	"marketplace/internal/backend"
	"marketplace/internal/domain"
)

// SearchState is the lifecycle state of a search controller
type SearchState string

const (
	SearchIdle        SearchState = "idle"
	SearchLoading     SearchState = "loading"      // replace fetch in flight
	SearchLoadingMore SearchState = "loading_more" // append fetch in flight
	SearchReady       SearchState = "ready"
	SearchEmpty       SearchState = "empty" // fetch succeeded with no results
	SearchFailed      SearchState = "failed"
)

// SearchSnapshot is a read-only copy of the controller state
type SearchSnapshot struct {
	Query      domain.SearchQuery `json:"query"`
	Items      []domain.Provider  `json:"items"`
	TotalCount int                `json:"total_count"`
	// LastPage is the last page successfully fetched; 0 before any fetch.
	LastPage int         `json:"last_page"`
	State    SearchState `json:"state"`
	Err      error       `json:"-"`
	HasMore  bool        `json:"has_more"`
	// URL is the shareable query string of Query.
	URL string `json:"url"`
}

// ProviderWithReviews is a provider profile together with its first page of reviews
type ProviderWithReviews struct {
	Provider domain.ProviderDetail `json:"provider"`
	Reviews  domain.ReviewsPage    `json:"reviews"`
}

// AuthBackend is the subset of the auth endpoints used by the session manager
type AuthBackend interface {
	Login(ctx context.Context, creds domain.Credentials) (backend.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (backend.AuthResult, error)
}

// ProviderBackend fetches providers
type ProviderBackend interface {
	Search(ctx context.Context, q domain.SearchQuery, limit int) (domain.SearchResultPage, error)
	Get(ctx context.Context, id int64) (domain.ProviderDetail, error)
}

// ReviewBackend fetches and mutates reviews
type ReviewBackend interface {
	ListForProvider(ctx context.Context, providerID int64, page, limit int) (domain.ReviewsPage, error)
	ListOwn(ctx context.Context, page, limit int) (domain.ReviewsPage, error)
	Create(ctx context.Context, review domain.NewReview) (domain.Review, error)
	Delete(ctx context.Context, id int64) error
}

// AuthService owns the authentication session. It is the only writer of
// session state; everything else reads snapshots or calls these operations.
type AuthService interface {
	// Session lifecycle
	Login(ctx context.Context, creds domain.Credentials) (*domain.User, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.User, error)
	Logout(ctx context.Context) error
	Rehydrate(ctx context.Context) error

	// Expiration
	CheckExpiration(ctx context.Context) (bool, error)
	StartExpiryWatcher(ctx context.Context, interval time.Duration) *ExpiryWatcher

	// Readers
	Session() domain.AuthSession
	IsAuthenticated() bool
	CurrentUser() *domain.User
	TimeUntilExpiration() time.Duration
	ClearError()

	// HTTP client hooks
	BearerToken() (string, bool)
	HandleUnauthorized(ctx context.Context)
}

// SearchController drives provider searches in replace and append mode
type SearchController interface {
	Search(ctx context.Context, q domain.SearchQuery) (SearchSnapshot, error)
	SearchURL(ctx context.Context, rawQuery string) (SearchSnapshot, error)
	ApplyFilterChange(ctx context.Context, patch domain.QueryPatch) (SearchSnapshot, error)
	LoadMore(ctx context.Context) (SearchSnapshot, error)
	Retry(ctx context.Context) (SearchSnapshot, error)

	ShouldLoadMore(distanceFromBottom int) bool
	Snapshot() SearchSnapshot
}

// ProviderService handles provider detail lookups
type ProviderService interface {
	GetProvider(ctx context.Context, id int64) (*domain.ProviderDetail, error)
	GetProviderWithReviews(ctx context.Context, id int64, reviewLimit int) (*ProviderWithReviews, error)
}

// ReviewService handles review listing and role-gated mutations
type ReviewService interface {
	ListForProvider(ctx context.Context, providerID int64, page, limit int) (*domain.ReviewsPage, error)
	ListOwn(ctx context.Context, page, limit int) (*domain.ReviewsPage, error)
	CreateReview(ctx context.Context, review domain.NewReview) (*domain.Review, error)
	DeleteReview(ctx context.Context, id int64) error
}

// ServiceContainer manages all services and their dependencies
type ServiceContainer struct {
	AuthService     AuthService
	ProviderService ProviderService
	ReviewService   ReviewService
	// NewSearchController creates an independent controller per consumer.
	NewSearchController func() SearchController
}
