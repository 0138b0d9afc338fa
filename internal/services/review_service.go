package services

import (
	"context"
	"log/slog"
	"strings"

	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/logging"
	"marketplace/internal/validation"
)

// reviewServiceImpl implements the ReviewService interface
type reviewServiceImpl struct {
	reviews   ReviewBackend
	auth      AuthService
	validator *validation.ReviewValidator
	logger    *slog.Logger
}

// NewReviewService creates a new ReviewService instance
func NewReviewService(reviews ReviewBackend, auth AuthService, logger *slog.Logger) ReviewService {
	return &reviewServiceImpl{
		reviews:   reviews,
		auth:      auth,
		validator: validation.NewReviewValidator(),
		logger:    logging.OrDiscard(logger).With("component", "review_service"),
	}
}

func normalizePaging(page, limit int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = DefaultReviewPageSize
	}
	return page, limit
}

// ListForProvider returns one page of a provider's reviews
func (r *reviewServiceImpl) ListForProvider(ctx context.Context, providerID int64, page, limit int) (*domain.ReviewsPage, error) {
	if providerID <= 0 {
		return nil, errors.NewValidationError("invalid provider ID", nil)
	}
	page, limit = normalizePaging(page, limit)

	result, err := r.reviews.ListForProvider(ctx, providerID, page, limit)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// ListOwn returns the reviews written by the logged in user
func (r *reviewServiceImpl) ListOwn(ctx context.Context, page, limit int) (*domain.ReviewsPage, error) {
	if !r.auth.IsAuthenticated() {
		return nil, errors.NewAuthError("log in to see your reviews")
	}
	page, limit = normalizePaging(page, limit)

	result, err := r.reviews.ListOwn(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateReview validates and submits a review. Only client and mixed
// accounts may review.
func (r *reviewServiceImpl) CreateReview(ctx context.Context, review domain.NewReview) (*domain.Review, error) {
	user := r.auth.CurrentUser()
	if user == nil {
		return nil, errors.NewAuthError("log in to write a review")
	}
	if !user.CanCreateReviews() {
		return nil, errors.NewForbiddenError("create review", "only client accounts can write reviews")
	}

	review.Comment = strings.TrimSpace(review.Comment)
	review.PhotoURL = strings.TrimSpace(review.PhotoURL)
	if err := r.validator.ValidateNewReview(review); err != nil {
		return nil, validationAppError(err)
	}

	created, err := r.reviews.Create(ctx, review)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteReview removes one of the user's reviews
func (r *reviewServiceImpl) DeleteReview(ctx context.Context, id int64) error {
	if err := r.validator.ValidateReviewID(id); err != nil {
		return validationAppError(err)
	}
	if !r.auth.IsAuthenticated() {
		return errors.NewAuthError("log in to delete a review")
	}
	return r.reviews.Delete(ctx, id)
}
