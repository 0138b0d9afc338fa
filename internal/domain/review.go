package domain

import "time"

// Review is a client's rating of a provider.
type Review struct {
	ID         int64
	ProviderID int64
	Rating     int
	Comment    string
	PhotoURL   string
	ClientName string
	CreatedAt  time.Time
}

// NewReview is the input for creating a review.
type NewReview struct {
	ProviderID int64
	Rating     int
	Comment    string
	PhotoURL   string
}

// ReviewStatistics summarizes all reviews of a provider.
// RatingDistribution is keyed by star value 1..5.
type ReviewStatistics struct {
	AverageRating      float64
	TotalReviews       int
	RatingDistribution map[int]int
}

// Pagination describes a server-side page of a listing.
type Pagination struct {
	Total      int
	Page       int
	Limit      int
	TotalPages int
}

// HasNext reports whether a later page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.TotalPages
}

// ReviewsPage is one page of reviews plus the provider's statistics.
type ReviewsPage struct {
	Reviews    []Review
	Statistics ReviewStatistics
	Pagination Pagination
}
