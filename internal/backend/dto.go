package backend

import (
	"strconv"
	"time"

	"marketplace/internal/domain"
)

type userDTO struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type authResponseDTO struct {
	User  userDTO `json:"user"`
	Token string  `json:"token"`
}

type loginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     string `json:"role"`
}

type serviceDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type providerDTO struct {
	ID                 int64        `json:"id"`
	BusinessName       string       `json:"businessName"`
	PhoneNumber        string       `json:"phoneNumber"`
	ProfileImageURL    string       `json:"profileImageUrl"`
	CityName           string       `json:"cityName"`
	Bio                string       `json:"bio"`
	AvailabilityStatus string       `json:"availabilityStatus"`
	Status             string       `json:"status"`
	Services           []serviceDTO `json:"services"`
	AverageRating      float64      `json:"averageRating"`
	TotalReviews       int          `json:"totalReviews"`
	CreatedAt          string       `json:"createdAt"`
}

type portfolioItemDTO struct {
	ID          int64  `json:"id"`
	ImageURL    string `json:"imageUrl"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

type providerDetailDTO struct {
	providerDTO
	Portfolio []portfolioItemDTO `json:"portfolio"`
}

// providersResponseDTO accepts both the "providers" and "data" list keys.
type providersResponseDTO struct {
	Providers []providerDTO `json:"providers"`
	Data      []providerDTO `json:"data"`
	Total     int           `json:"total"`
	Page      int           `json:"page"`
	Limit     int           `json:"limit"`
}

type reviewDTO struct {
	ID                int64  `json:"id"`
	ProviderProfileID int64  `json:"providerProfileId"`
	Rating            int    `json:"rating"`
	Comment           string `json:"comment"`
	PhotoURL          string `json:"photoUrl"`
	ClientName        string `json:"clientName"`
	CreatedAt         string `json:"createdAt"`
}

type reviewStatisticsDTO struct {
	AverageRating      float64        `json:"averageRating"`
	TotalReviews       int            `json:"totalReviews"`
	RatingDistribution map[string]int `json:"ratingDistribution"`
}

type paginationDTO struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type reviewsResponseDTO struct {
	Reviews    []reviewDTO         `json:"reviews"`
	Statistics reviewStatisticsDTO `json:"statistics"`
	Pagination paginationDTO       `json:"pagination"`
}

type createReviewDTO struct {
	ProviderProfileID int64  `json:"providerProfileId"`
	Rating            int    `json:"rating"`
	Comment           string `json:"comment"`
	PhotoURL          string `json:"photoUrl,omitempty"`
}

type healthDTO struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d userDTO) toDomain() domain.User {
	role, ok := domain.ParseRole(d.Role)
	if !ok {
		role = domain.Role(d.Role)
	}
	return domain.User{
		ID:       d.ID,
		Email:    d.Email,
		FullName: d.FullName,
		Role:     role,
	}
}

func (d providerDTO) toDomain() domain.Provider {
	services := make([]domain.Service, len(d.Services))
	for i, s := range d.Services {
		services[i] = domain.Service{ID: s.ID, Name: s.Name}
	}
	return domain.Provider{
		ID:                 d.ID,
		BusinessName:       d.BusinessName,
		PhoneNumber:        d.PhoneNumber,
		ProfileImageURL:    d.ProfileImageURL,
		CityName:           d.CityName,
		Bio:                d.Bio,
		AvailabilityStatus: domain.AvailabilityStatus(d.AvailabilityStatus),
		Status:             domain.ProviderStatus(d.Status),
		Services:           services,
		AverageRating:      d.AverageRating,
		TotalReviews:       d.TotalReviews,
		CreatedAt:          parseTime(d.CreatedAt),
	}
}

func (d providerDetailDTO) toDomain() domain.ProviderDetail {
	portfolio := make([]domain.PortfolioItem, len(d.Portfolio))
	for i, p := range d.Portfolio {
		portfolio[i] = domain.PortfolioItem{
			ID:          p.ID,
			ImageURL:    p.ImageURL,
			Description: p.Description,
			CreatedAt:   parseTime(p.CreatedAt),
		}
	}
	return domain.ProviderDetail{
		Provider:  d.providerDTO.toDomain(),
		Portfolio: portfolio,
	}
}

func (d reviewDTO) toDomain(providerID int64) domain.Review {
	if d.ProviderProfileID != 0 {
		providerID = d.ProviderProfileID
	}
	return domain.Review{
		ID:         d.ID,
		ProviderID: providerID,
		Rating:     d.Rating,
		Comment:    d.Comment,
		PhotoURL:   d.PhotoURL,
		ClientName: d.ClientName,
		CreatedAt:  parseTime(d.CreatedAt),
	}
}

func (d reviewsResponseDTO) toDomain(providerID int64) domain.ReviewsPage {
	reviews := make([]domain.Review, len(d.Reviews))
	for i, r := range d.Reviews {
		reviews[i] = r.toDomain(providerID)
	}

	// Distribution keys are star values sent as strings.
	distribution := make(map[int]int, len(d.Statistics.RatingDistribution))
	for k, v := range d.Statistics.RatingDistribution {
		if stars, err := strconv.Atoi(k); err == nil {
			distribution[stars] = v
		}
	}

	return domain.ReviewsPage{
		Reviews: reviews,
		Statistics: domain.ReviewStatistics{
			AverageRating:      d.Statistics.AverageRating,
			TotalReviews:       d.Statistics.TotalReviews,
			RatingDistribution: distribution,
		},
		Pagination: domain.Pagination{
			Total:      d.Pagination.Total,
			Page:       d.Pagination.Page,
			Limit:      d.Pagination.Limit,
			TotalPages: d.Pagination.TotalPages,
		},
	}
}
