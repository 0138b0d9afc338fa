package services

import (
	"context"
	"log/slog"

	"marketplace/internal/domain"
	"marketplace/internal/errors"
	"marketplace/internal/logging"

	"golang.org/x/sync/errgroup"
)

// DefaultReviewPageSize is the number of reviews fetched per page
const DefaultReviewPageSize = 10

// providerServiceImpl implements the ProviderService interface
type providerServiceImpl struct {
	providers ProviderBackend
	reviews   ReviewBackend
	logger    *slog.Logger
}

// NewProviderService creates a new ProviderService instance
func NewProviderService(providers ProviderBackend, reviews ReviewBackend, logger *slog.Logger) ProviderService {
	return &providerServiceImpl{
		providers: providers,
		reviews:   reviews,
		logger:    logging.OrDiscard(logger).With("component", "provider_service"),
	}
}

// GetProvider retrieves a provider profile by its ID
func (p *providerServiceImpl) GetProvider(ctx context.Context, id int64) (*domain.ProviderDetail, error) {
	if id <= 0 {
		return nil, errors.NewValidationError("invalid provider ID", nil)
	}

	detail, err := p.providers.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &detail, nil
}

// GetProviderWithReviews fetches the profile and the first page of reviews
// concurrently. Either failure fails the whole call.
func (p *providerServiceImpl) GetProviderWithReviews(ctx context.Context, id int64, reviewLimit int) (*ProviderWithReviews, error) {
	if id <= 0 {
		return nil, errors.NewValidationError("invalid provider ID", nil)
	}
	if reviewLimit <= 0 {
		reviewLimit = DefaultReviewPageSize
	}

	var (
		detail  domain.ProviderDetail
		reviews domain.ReviewsPage
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		detail, err = p.providers.Get(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = p.reviews.ListForProvider(gctx, id, 1, reviewLimit)
		return err
	})

	if err := g.Wait(); err != nil {
		p.logger.Debug("provider detail fetch failed", "provider_id", id, "error", err)
		return nil, err
	}

	return &ProviderWithReviews{Provider: detail, Reviews: reviews}, nil
}
