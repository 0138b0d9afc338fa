package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/httpclient"
	"marketplace/internal/repository/sqlite"
	"marketplace/internal/services"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMarketplace is an in-process backend with a single account
type fakeMarketplace struct {
	t     *testing.T
	token string

	mu       sync.Mutex
	revoked  bool
	authSeen map[string][]string
}

func newFakeMarketplace(t *testing.T, role string) (*fakeMarketplace, *httptest.Server) {
	t.Helper()
	claims := jwt.MapClaims{"userId": 9, "role": role, "exp": time.Now().Add(time.Hour).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	f := &fakeMarketplace{t: t, token: token, authSeen: make(map[string][]string)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message": "Credenciales inválidas"}`)
			return
		}
		writeJSON(w, map[string]interface{}{
			"user":  map[string]interface{}{"id": 9, "email": body["email"], "fullName": "Ana Quispe", "role": role},
			"token": token,
		})
	})
	mux.HandleFunc("GET /api/providers", func(w http.ResponseWriter, r *http.Request) {
		f.record("providers", r)
		_, _ = io.WriteString(w, `{"providers": [{"id": 7, "businessName": "Gasfitería Illimani", "cityName": "La Paz"}], "total": 1, "page": 1, "limit": 12}`)
	})
	mux.HandleFunc("GET /api/providers/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "7" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"message": "Proveedor no encontrado"}`)
			return
		}
		_, _ = io.WriteString(w, `{"id": 7, "businessName": "Gasfitería Illimani", "portfolio": [{"id": 1, "imageUrl": "https://img.example.com/1.jpg"}]}`)
	})
	mux.HandleFunc("GET /api/providers/{id}/reviews", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"reviews": [{"id": 3, "rating": 5, "comment": "Muy puntual"}], "statistics": {"averageRating": 5, "totalReviews": 1, "ratingDistribution": {"5": 1}}, "pagination": {"total": 1, "page": 1, "limit": 10, "totalPages": 1}}`)
	})
	mux.HandleFunc("GET /api/reviews/own", func(w http.ResponseWriter, r *http.Request) {
		f.record("own", r)
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"message": "Token inválido"}`)
			return
		}
		_, _ = io.WriteString(w, `{"reviews": [], "statistics": {}, "pagination": {"total": 0, "page": 1, "limit": 10, "totalPages": 0}}`)
	})
	mux.HandleFunc("POST /api/reviews", func(w http.ResponseWriter, r *http.Request) {
		if !f.authorized(r) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 40, "providerProfileId": 7, "rating": 4, "comment": "Buen trabajo en general"}`)
	})
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status": "ok", "message": "up", "timestamp": "2025-03-10T09:00:00Z"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeMarketplace) record(route string, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.authSeen[route] = append(f.authSeen[route], r.Header.Get("Authorization"))
}

func (f *fakeMarketplace) authorized(r *http.Request) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.revoked && r.Header.Get("Authorization") == "Bearer "+f.token
}

func (f *fakeMarketplace) revoke() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.revoked = true
}

func (f *fakeMarketplace) seen(route string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authSeen[route]...)
}

func setupBusinessAPI(t *testing.T, srv *httptest.Server, repo sqlite.Repository) BusinessAPI {
	t.Helper()
	if repo == nil {
		var err error
		repo, err = sqlite.New(":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { repo.Close() })
	}
	b, err := New(repo, Options{HTTP: httpclient.Options{BaseURL: srv.URL + "/api", Timeout: 5 * time.Second}})
	require.NoError(t, err)
	return b
}

func TestBusinessAPI_Login(t *testing.T) {
	t.Run("should attach the bearer token to later requests", func(t *testing.T) {
		// Arrange
		fake, srv := newFakeMarketplace(t, "client")
		b := setupBusinessAPI(t, srv, nil)
		ctx := context.Background()

		_, err := b.NewSearch().SearchURL(ctx, "q=gasfitero")
		require.NoError(t, err)

		// Act
		info, err := b.Login(ctx, "ana@example.com", "secret1")
		require.NoError(t, err)
		_, err = b.NewSearch().SearchURL(ctx, "q=gasfitero")
		require.NoError(t, err)

		// Assert
		assert.Equal(t, "authenticated", info.State)
		assert.Equal(t, "Ana Quispe", info.User.FullName)
		require.NotNil(t, info.ExpiresAt)
		assert.Greater(t, info.ExpiresIn, 59*time.Minute)
		assert.Equal(t, []string{"", "Bearer " + fake.token}, fake.seen("providers"))
	})

	t.Run("should keep the server message of a rejected login", func(t *testing.T) {
		_, srv := newFakeMarketplace(t, "client")
		b := setupBusinessAPI(t, srv, nil)

		_, err := b.Login(context.Background(), "ana@example.com", "wrong-password")
		require.Error(t, err)
		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))

		info, err := b.CurrentSession(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "anonymous", info.State)
		assert.Equal(t, "Credenciales inválidas", info.LastError)
	})
}

func TestBusinessAPI_UnauthorizedResponse(t *testing.T) {
	// Arrange
	fake, srv := newFakeMarketplace(t, "client")
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer repo.Close()
	b := setupBusinessAPI(t, srv, repo)
	ctx := context.Background()

	_, err = b.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)
	_, err = b.ListOwnReviews(ctx, 1, 10)
	require.NoError(t, err)

	// Act
	fake.revoke()
	_, err = b.ListOwnReviews(ctx, 1, 10)

	// Assert
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))

	info, err := b.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", info.State)
	assert.Nil(t, info.User)

	_, err = repo.GetEntry(ctx, domain.SessionStorageKey)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))

	// Anonymous now, so the next call fails locally.
	_, err = b.ListOwnReviews(ctx, 1, 10)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
	assert.Len(t, fake.seen("own"), 2)
}

func TestBusinessAPI_RestoreSession(t *testing.T) {
	_, srv := newFakeMarketplace(t, "mixto")
	repo, err := sqlite.New(":memory:")
	require.NoError(t, err)
	defer repo.Close()
	ctx := context.Background()

	first := setupBusinessAPI(t, srv, repo)
	_, err = first.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	second := setupBusinessAPI(t, srv, repo)
	require.NoError(t, second.RestoreSession(ctx))

	info, err := second.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "authenticated", info.State)
	assert.Equal(t, domain.RoleMixed, info.User.Role)

	require.NoError(t, second.Logout(ctx))
	require.NoError(t, second.Logout(ctx))
	info, err = second.CurrentSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, "anonymous", info.State)
}

func TestBusinessAPI_Providers(t *testing.T) {
	_, srv := newFakeMarketplace(t, "client")
	b := setupBusinessAPI(t, srv, nil)
	ctx := context.Background()

	t.Run("should load a profile with its reviews", func(t *testing.T) {
		result, err := b.GetProvider(ctx, 7, 0)

		require.NoError(t, err)
		assert.Equal(t, "Gasfitería Illimani", result.Provider.BusinessName)
		assert.Len(t, result.Provider.Portfolio, 1)
		require.Len(t, result.Reviews.Reviews, 1)
		assert.Equal(t, int64(7), result.Reviews.Reviews[0].ProviderID)
	})

	t.Run("should report a missing provider", func(t *testing.T) {
		_, err := b.GetProvider(ctx, 8, 0)

		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})
}

func TestBusinessAPI_CreateReview(t *testing.T) {
	_, srv := newFakeMarketplace(t, "client")
	b := setupBusinessAPI(t, srv, nil)
	ctx := context.Background()
	review := domain.NewReview{ProviderID: 7, Rating: 4, Comment: "Buen trabajo en general"}

	_, err := b.CreateReview(ctx, review)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))

	_, err = b.Login(ctx, "ana@example.com", "secret1")
	require.NoError(t, err)

	created, err := b.CreateReview(ctx, review)
	require.NoError(t, err)
	assert.Equal(t, int64(40), created.ID)
}

func TestBusinessAPI_Health(t *testing.T) {
	_, srv := newFakeMarketplace(t, "client")
	b := setupBusinessAPI(t, srv, nil)

	status, err := b.Health(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "ok", status.Status)
}

func TestBusinessAPI_ExpiryWatcher(t *testing.T) {
	_, srv := newFakeMarketplace(t, "client")
	b := setupBusinessAPI(t, srv, nil)

	watcher := b.StartExpiryWatcher(context.Background())
	assert.Equal(t, services.DefaultExpiryCheckInterval, watcher.Interval())
	watcher.Stop()
}
