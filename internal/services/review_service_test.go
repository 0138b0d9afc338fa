package services

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/backend"
	"marketplace/internal/domain"
	"marketplace/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// authenticatedAs returns an auth service logged in with the given role,
// or an anonymous one when role is empty
func authenticatedAs(t *testing.T, role domain.Role) AuthService {
	t.Helper()
	svc, be, _, clock := setupAuthService(t)
	if role == "" {
		return svc
	}
	user := testUser()
	user.Role = role
	be.On("Login", mock.Anything, validCreds).Return(backend.AuthResult{User: user, Token: makeToken(t, clock.Now().Add(time.Hour))}, nil)
	_, err := svc.Login(context.Background(), validCreds)
	require.NoError(t, err)
	return svc
}

func TestReviewService_CreateReview(t *testing.T) {
	input := domain.NewReview{ProviderID: 7, Rating: 5, Comment: "  Excelente atención, muy recomendado  "}

	t.Run("should submit a valid review from a client", func(t *testing.T) {
		// Arrange
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, domain.RoleClient), nil)
		trimmed := input
		trimmed.Comment = "Excelente atención, muy recomendado"
		reviews.On("Create", mock.Anything, trimmed).Return(domain.Review{ID: 31, ProviderID: 7, Rating: 5, Comment: trimmed.Comment}, nil)

		// Act
		created, err := svc.CreateReview(context.Background(), input)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, int64(31), created.ID)
		reviews.AssertExpectations(t)
	})

	t.Run("should allow mixed accounts", func(t *testing.T) {
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, domain.RoleMixed), nil)
		reviews.On("Create", mock.Anything, mock.Anything).Return(domain.Review{ID: 32}, nil)

		_, err := svc.CreateReview(context.Background(), input)

		assert.NoError(t, err)
	})

	t.Run("should require a session", func(t *testing.T) {
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, ""), nil)

		_, err := svc.CreateReview(context.Background(), input)

		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
		reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("should forbid provider accounts", func(t *testing.T) {
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, domain.RoleProvider), nil)

		_, err := svc.CreateReview(context.Background(), input)

		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeForbidden))
		reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("should validate rating and comment", func(t *testing.T) {
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, domain.RoleClient), nil)

		_, err := svc.CreateReview(context.Background(), domain.NewReview{ProviderID: 7, Rating: 6, Comment: "corto"})

		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
		reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestReviewService_ListOwn(t *testing.T) {
	t.Run("should default paging", func(t *testing.T) {
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, domain.RoleClient), nil)
		reviews.On("ListOwn", mock.Anything, 1, DefaultReviewPageSize).Return(reviewsPage(7), nil)

		page, err := svc.ListOwn(context.Background(), 0, 0)

		require.NoError(t, err)
		assert.Len(t, page.Reviews, 2)
	})

	t.Run("should require a session", func(t *testing.T) {
		svc := NewReviewService(&mockReviewBackend{}, authenticatedAs(t, ""), nil)

		_, err := svc.ListOwn(context.Background(), 1, 10)

		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeAuth))
	})
}

func TestReviewService_ListForProvider(t *testing.T) {
	reviews := &mockReviewBackend{}
	svc := NewReviewService(reviews, authenticatedAs(t, ""), nil)
	reviews.On("ListForProvider", mock.Anything, int64(7), 2, 5).Return(reviewsPage(7), nil)

	page, err := svc.ListForProvider(context.Background(), 7, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Statistics.TotalReviews)

	_, err = svc.ListForProvider(context.Background(), -1, 1, 5)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
}

func TestReviewService_DeleteReview(t *testing.T) {
	t.Run("should delete when logged in", func(t *testing.T) {
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, domain.RoleClient), nil)
		reviews.On("Delete", mock.Anything, int64(31)).Return(nil)

		require.NoError(t, svc.DeleteReview(context.Background(), 31))
		reviews.AssertExpectations(t)
	})

	t.Run("should pass through a not found error", func(t *testing.T) {
		reviews := &mockReviewBackend{}
		svc := NewReviewService(reviews, authenticatedAs(t, domain.RoleClient), nil)
		reviews.On("Delete", mock.Anything, int64(40)).Return(errors.NewNotFoundError("review", "40"))

		err := svc.DeleteReview(context.Background(), 40)

		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeNotFound))
	})

	t.Run("should reject an invalid id", func(t *testing.T) {
		svc := NewReviewService(&mockReviewBackend{}, authenticatedAs(t, domain.RoleClient), nil)

		err := svc.DeleteReview(context.Background(), 0)

		assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	})
}
