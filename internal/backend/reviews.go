package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"marketplace/internal/domain"
)

// ReviewClient binds the review endpoints.
type ReviewClient struct {
	r      Requester
	logger *slog.Logger
}

func pageParams(page, limit int) url.Values {
	params := url.Values{}
	if page > 0 {
		params.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	return params
}

// ListForProvider fetches one page of a provider's reviews
func (c *ReviewClient) ListForProvider(ctx context.Context, providerID int64, page, limit int) (domain.ReviewsPage, error) {
	var resp reviewsResponseDTO
	path := fmt.Sprintf("/providers/%d/reviews", providerID)
	if err := c.r.Get(ctx, "provider reviews", path, pageParams(page, limit), &resp); err != nil {
		return domain.ReviewsPage{}, err
	}
	return resp.toDomain(providerID), nil
}

// ListOwn fetches reviews written by the current user
func (c *ReviewClient) ListOwn(ctx context.Context, page, limit int) (domain.ReviewsPage, error) {
	var resp reviewsResponseDTO
	if err := c.r.Get(ctx, "own reviews", "/reviews/own", pageParams(page, limit), &resp); err != nil {
		return domain.ReviewsPage{}, err
	}
	return resp.toDomain(0), nil
}

// Create submits a new review
func (c *ReviewClient) Create(ctx context.Context, review domain.NewReview) (domain.Review, error) {
	req := createReviewDTO{
		ProviderProfileID: review.ProviderID,
		Rating:            review.Rating,
		Comment:           review.Comment,
		PhotoURL:          review.PhotoURL,
	}
	var resp reviewDTO
	if err := c.r.Post(ctx, "create review", "/reviews", req, &resp); err != nil {
		return domain.Review{}, err
	}
	c.logger.Info("review created", "review_id", resp.ID, "provider_id", review.ProviderID)
	return resp.toDomain(review.ProviderID), nil
}

// Delete removes one of the current user's reviews
func (c *ReviewClient) Delete(ctx context.Context, id int64) error {
	if err := c.r.Delete(ctx, "delete review", fmt.Sprintf("/reviews/%d", id)); err != nil {
		return err
	}
	c.logger.Info("review deleted", "review_id", id)
	return nil
}
