package backend

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"marketplace/internal/domain"
)

// ProviderClient binds the provider endpoints.
type ProviderClient struct {
	r      Requester
	logger *slog.Logger
}

// SearchParams converts a query into the provider search parameters.
// Absent filters are omitted.
func SearchParams(q domain.SearchQuery, limit int) url.Values {
	q = q.Normalize()
	params := url.Values{}
	params.Set("page", strconv.Itoa(q.Page))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if q.FreeText != "" {
		params.Set("search", q.FreeText)
	}
	for _, id := range q.ServiceIDs {
		params.Add("serviceIds", strconv.FormatInt(id, 10))
	}
	for _, city := range q.Cities {
		params.Add("cities", city)
	}
	if q.MinRating > 0 {
		params.Set("minRating", strconv.FormatFloat(q.MinRating, 'f', -1, 64))
	}
	for _, a := range q.AvailabilityStatuses {
		params.Add("availabilityStatus", string(a))
	}
	if q.SortBy != domain.SortRelevance {
		params.Set("sort", string(q.SortBy))
	}
	return params
}

// Search fetches one page of providers matching q
func (c *ProviderClient) Search(ctx context.Context, q domain.SearchQuery, limit int) (domain.SearchResultPage, error) {
	params := SearchParams(q, limit)

	var resp providersResponseDTO
	if err := c.r.Get(ctx, "search providers", "/providers", params, &resp); err != nil {
		return domain.SearchResultPage{}, err
	}

	list := resp.Providers
	if list == nil {
		list = resp.Data
	}
	items := make([]domain.Provider, len(list))
	for i, p := range list {
		items[i] = p.toDomain()
	}

	page := resp.Page
	if page == 0 {
		page = q.Normalize().Page
	}

	c.logger.Debug("providers fetched", "page", page, "count", len(items), "total", resp.Total)

	return domain.SearchResultPage{
		Items:      items,
		TotalCount: resp.Total,
		PageNumber: page,
	}, nil
}

// Get fetches a provider profile with its portfolio
func (c *ProviderClient) Get(ctx context.Context, id int64) (domain.ProviderDetail, error) {
	var resp providerDetailDTO
	if err := c.r.Get(ctx, "provider", fmt.Sprintf("/providers/%d", id), nil, &resp); err != nil {
		return domain.ProviderDetail{}, err
	}
	return resp.toDomain(), nil
}
