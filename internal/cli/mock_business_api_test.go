package cli

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"marketplace/internal/api"
	"marketplace/internal/backend"
	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/services"
)

const (
	mockPassword = "secret1"
	mockPageSize = 2
)

// mockCatalog is an in-memory provider backend for the search controller
type mockCatalog struct {
	providers []domain.Provider
	// failNext makes the next Search call fail with a server error.
	failNext bool
	calls    []domain.SearchQuery
}

func (c *mockCatalog) Search(ctx context.Context, q domain.SearchQuery, limit int) (domain.SearchResultPage, error) {
	c.calls = append(c.calls, q)
	if c.failNext {
		c.failNext = false
		return domain.SearchResultPage{}, errors.NewServerError("search providers", 503, "unavailable")
	}

	var matched []domain.Provider
	for _, p := range c.providers {
		if q.FreeText != "" && !strings.Contains(strings.ToLower(p.BusinessName), strings.ToLower(q.FreeText)) {
			continue
		}
		if q.MinRating > 0 && p.AverageRating < q.MinRating {
			continue
		}
		matched = append(matched, p)
	}

	page := max(q.Page, 1)
	start := min((page-1)*limit, len(matched))
	end := min(start+limit, len(matched))
	return domain.SearchResultPage{
		Items:      matched[start:end],
		TotalCount: len(matched),
		PageNumber: page,
	}, nil
}

func (c *mockCatalog) Get(ctx context.Context, id int64) (domain.ProviderDetail, error) {
	for _, p := range c.providers {
		if p.ID == id {
			return domain.ProviderDetail{Provider: p}, nil
		}
	}
	return domain.ProviderDetail{}, errors.NewNotFoundError("provider", fmt.Sprintf("%d", id))
}

// mockBusinessAPI implements the BusinessAPI interface for testing
type mockBusinessAPI struct {
	catalog *mockCatalog
	reviews map[int64]*domain.Review
	nextID  int64

	users     map[string]domain.User
	user      *domain.User
	expiresAt time.Time
	lastError string
	restored  bool
	healthErr error
}

// newMockBusinessAPI creates a new mock BusinessAPI instance
func newMockBusinessAPI() *mockBusinessAPI {
	m := &mockBusinessAPI{
		catalog: &mockCatalog{},
		reviews: make(map[int64]*domain.Review),
		nextID:  1,
		users: map[string]domain.User{
			"ana@example.com":  {ID: 9, Email: "ana@example.com", FullName: "Ana Quispe", Role: domain.RoleClient},
			"luis@example.com": {ID: 11, Email: "luis@example.com", FullName: "Luis Mamani", Role: domain.RoleProvider},
		},
	}
	for i := 1; i <= 5; i++ {
		m.catalog.providers = append(m.catalog.providers, domain.Provider{
			ID:                 int64(i),
			BusinessName:       fmt.Sprintf("Plomería %d", i),
			CityName:           "La Paz",
			AverageRating:      float64(i),
			TotalReviews:       i * 2,
			AvailabilityStatus: domain.AvailabilityAvailable,
		})
	}
	return m
}

// ========== Session Workflows ==========

func (m *mockBusinessAPI) RestoreSession(ctx context.Context) error {
	m.restored = true
	return nil
}

func (m *mockBusinessAPI) Login(ctx context.Context, email, password string) (*api.SessionInfo, error) {
	user, ok := m.users[strings.TrimSpace(email)]
	if !ok || password != mockPassword {
		m.lastError = "Credenciales inválidas"
		return nil, errors.NewAuthError("login failed")
	}
	m.user = &user
	m.lastError = ""
	m.expiresAt = time.Now().Add(2 * time.Hour)
	return m.sessionInfo(), nil
}

func (m *mockBusinessAPI) Register(ctx context.Context, reg domain.Registration) (*api.SessionInfo, error) {
	if reg.Password != reg.ConfirmPassword {
		m.lastError = "Las contraseñas no coinciden"
		return nil, errors.NewValidationError("passwords do not match", nil)
	}
	if _, exists := m.users[reg.Email]; exists {
		m.lastError = "El correo ya está registrado"
		return nil, errors.NewAPIError("register", 409, "email already registered")
	}
	user := domain.User{ID: int64(len(m.users) + 20), Email: reg.Email, FullName: reg.FullName, Role: reg.Role}
	m.users[reg.Email] = user
	m.user = &user
	m.lastError = ""
	m.expiresAt = time.Now().Add(2 * time.Hour)
	return m.sessionInfo(), nil
}

func (m *mockBusinessAPI) Logout(ctx context.Context) error {
	m.user = nil
	m.expiresAt = time.Time{}
	return nil
}

func (m *mockBusinessAPI) CurrentSession(ctx context.Context) (*api.SessionInfo, error) {
	return m.sessionInfo(), nil
}

func (m *mockBusinessAPI) StartExpiryWatcher(ctx context.Context) *services.ExpiryWatcher {
	return nil
}

func (m *mockBusinessAPI) sessionInfo() *api.SessionInfo {
	info := &api.SessionInfo{State: domain.StateAnonymous.String(), LastError: m.lastError}
	if m.user != nil {
		info.User = m.user
		info.State = domain.StateAuthenticated.String()
		expiresAt := m.expiresAt
		info.ExpiresAt = &expiresAt
		info.ExpiresIn = time.Until(m.expiresAt)
	}
	return info
}

// ========== Search and Discovery ==========

func (m *mockBusinessAPI) NewSearch() services.SearchController {
	return services.NewSearchController(m.catalog, services.SearchOptions{PageSize: mockPageSize})
}

func (m *mockBusinessAPI) ParseSearchURL(raw string) *api.SearchLink {
	if i := strings.Index(raw, "?"); i >= 0 {
		raw = raw[i+1:]
	}
	return m.BuildSearchURL(domain.ParseQuery(raw))
}

func (m *mockBusinessAPI) BuildSearchURL(q domain.SearchQuery) *api.SearchLink {
	q = q.Normalize()
	return &api.SearchLink{Query: q, URL: domain.EncodeQuery(q)}
}

func (m *mockBusinessAPI) GetProvider(ctx context.Context, id int64, reviewLimit int) (*services.ProviderWithReviews, error) {
	detail, err := m.catalog.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	page, err := m.ListProviderReviews(ctx, id, 1, reviewLimit)
	if err != nil {
		return nil, err
	}
	return &services.ProviderWithReviews{Provider: detail, Reviews: *page}, nil
}

func (m *mockBusinessAPI) ListProviderReviews(ctx context.Context, providerID int64, page, limit int) (*domain.ReviewsPage, error) {
	return m.pageOf(func(r *domain.Review) bool { return r.ProviderID == providerID }, page, limit), nil
}

// ========== Reviews ==========

func (m *mockBusinessAPI) CreateReview(ctx context.Context, review domain.NewReview) (*domain.Review, error) {
	if m.user == nil {
		return nil, errors.NewAuthError("login required")
	}
	if !m.user.CanCreateReviews() {
		return nil, errors.NewForbiddenError("create review", "only clients can write reviews")
	}
	created := &domain.Review{
		ID:         m.nextID,
		ProviderID: review.ProviderID,
		Rating:     review.Rating,
		Comment:    review.Comment,
		PhotoURL:   review.PhotoURL,
		ClientName: m.user.FullName,
		CreatedAt:  time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}
	m.reviews[created.ID] = created
	m.nextID++
	return created, nil
}

func (m *mockBusinessAPI) DeleteReview(ctx context.Context, id int64) error {
	if m.user == nil {
		return errors.NewAuthError("login required")
	}
	if _, ok := m.reviews[id]; !ok {
		return errors.NewNotFoundError("review", fmt.Sprintf("%d", id))
	}
	delete(m.reviews, id)
	return nil
}

func (m *mockBusinessAPI) ListOwnReviews(ctx context.Context, page, limit int) (*domain.ReviewsPage, error) {
	if m.user == nil {
		return nil, errors.NewAuthError("login required")
	}
	name := m.user.FullName
	return m.pageOf(func(r *domain.Review) bool { return r.ClientName == name }, page, limit), nil
}

func (m *mockBusinessAPI) pageOf(keep func(*domain.Review) bool, page, limit int) *domain.ReviewsPage {
	page = max(page, 1)
	if limit <= 0 {
		limit = 10
	}

	ids := make([]int64, 0, len(m.reviews))
	for id, r := range m.reviews {
		if keep(r) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	result := &domain.ReviewsPage{
		Statistics: domain.ReviewStatistics{RatingDistribution: map[int]int{}},
		Pagination: domain.Pagination{Total: len(ids), Page: page, Limit: limit, TotalPages: (len(ids) + limit - 1) / limit},
	}
	sum := 0
	for i, id := range ids {
		r := m.reviews[id]
		sum += r.Rating
		result.Statistics.RatingDistribution[r.Rating]++
		if i >= (page-1)*limit && i < page*limit {
			result.Reviews = append(result.Reviews, *r)
		}
	}
	result.Statistics.TotalReviews = len(ids)
	if len(ids) > 0 {
		result.Statistics.AverageRating = float64(sum) / float64(len(ids))
	}
	return result
}

// ========== Diagnostics ==========

func (m *mockBusinessAPI) Health(ctx context.Context) (*backend.HealthStatus, error) {
	if m.healthErr != nil {
		return nil, m.healthErr
	}
	return &backend.HealthStatus{
		Status:    "ok",
		Message:   "Server is running",
		Timestamp: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	}, nil
}

// testApp bundles an App with its mock and captured streams
type testApp struct {
	*App
	mock *mockBusinessAPI
	out  *bytes.Buffer
}

// setupTestAppWithMockBusinessAPI creates an App over the mock that reads
// the given lines as user input
func setupTestAppWithMockBusinessAPI(t *testing.T, input ...string) *testApp {
	t.Helper()

	mock := newMockBusinessAPI()
	out := &bytes.Buffer{}
	in := strings.NewReader(strings.Join(input, "\n"))
	if len(input) > 0 {
		in = strings.NewReader(strings.Join(input, "\n") + "\n")
	}

	cfg := config.NewConfig()
	cfg.API.BaseURL = "http://localhost:3000/api"
	return &testApp{
		App:  NewAppWithIO(mock, cfg, out, in),
		mock: mock,
		out:  out,
	}
}
