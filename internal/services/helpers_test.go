package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"marketplace/internal/backend"
	"marketplace/internal/domain"
	"marketplace/internal/repository/sqlite"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testEpoch = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: testEpoch}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func makeToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{
		"userId": 9,
		"email":  "ana@example.com",
		"role":   "client",
		"iat":    exp.Add(-24 * time.Hour).Unix(),
		"exp":    exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func setupRepository(t *testing.T) sqlite.Repository {
	t.Helper()
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

type mockAuthBackend struct {
	mock.Mock
}

func (m *mockAuthBackend) Login(ctx context.Context, creds domain.Credentials) (backend.AuthResult, error) {
	args := m.Called(ctx, creds)
	return args.Get(0).(backend.AuthResult), args.Error(1)
}

func (m *mockAuthBackend) Register(ctx context.Context, reg domain.Registration) (backend.AuthResult, error) {
	args := m.Called(ctx, reg)
	return args.Get(0).(backend.AuthResult), args.Error(1)
}

type mockReviewBackend struct {
	mock.Mock
}

func (m *mockReviewBackend) ListForProvider(ctx context.Context, providerID int64, page, limit int) (domain.ReviewsPage, error) {
	args := m.Called(ctx, providerID, page, limit)
	return args.Get(0).(domain.ReviewsPage), args.Error(1)
}

func (m *mockReviewBackend) ListOwn(ctx context.Context, page, limit int) (domain.ReviewsPage, error) {
	args := m.Called(ctx, page, limit)
	return args.Get(0).(domain.ReviewsPage), args.Error(1)
}

func (m *mockReviewBackend) Create(ctx context.Context, review domain.NewReview) (domain.Review, error) {
	args := m.Called(ctx, review)
	return args.Get(0).(domain.Review), args.Error(1)
}

func (m *mockReviewBackend) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// fakeProviderBackend answers searches through a replaceable function and
// records every query it receives.
type fakeProviderBackend struct {
	mu      sync.Mutex
	queries []domain.SearchQuery
	search  func(q domain.SearchQuery) (domain.SearchResultPage, error)
	detail  map[int64]domain.ProviderDetail
}

func (f *fakeProviderBackend) Search(ctx context.Context, q domain.SearchQuery, limit int) (domain.SearchResultPage, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	search := f.search
	f.mu.Unlock()
	return search(q)
}

func (f *fakeProviderBackend) Get(ctx context.Context, id int64) (domain.ProviderDetail, error) {
	d, ok := f.detail[id]
	if !ok {
		return domain.ProviderDetail{}, fmt.Errorf("provider %d not stubbed", id)
	}
	return d, nil
}

func (f *fakeProviderBackend) Queries() []domain.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.SearchQuery(nil), f.queries...)
}

// providers builds n providers with ids starting at first
func providers(first, n int) []domain.Provider {
	out := make([]domain.Provider, n)
	for i := range out {
		id := int64(first + i)
		out[i] = domain.Provider{ID: id, BusinessName: fmt.Sprintf("Proveedor %d", id)}
	}
	return out
}

// pagedResults serves total providers in pages of pageSize
func pagedResults(total, pageSize int) func(q domain.SearchQuery) (domain.SearchResultPage, error) {
	return func(q domain.SearchQuery) (domain.SearchResultPage, error) {
		first := (q.Page-1)*pageSize + 1
		n := pageSize
		if remaining := total - first + 1; remaining < n {
			n = remaining
		}
		if n < 0 {
			n = 0
		}
		return domain.SearchResultPage{Items: providers(first, n), TotalCount: total, PageNumber: q.Page}, nil
	}
}

// shortPageAt serves pages of pageSize but cuts page to n items while still
// reporting total
func shortPageAt(total, pageSize, page, n int) func(q domain.SearchQuery) (domain.SearchResultPage, error) {
	full := pagedResults(total, pageSize)
	return func(q domain.SearchQuery) (domain.SearchResultPage, error) {
		res, err := full(q)
		if err != nil || q.Page != page {
			return res, err
		}
		res.Items = res.Items[:n]
		return res, nil
	}
}
