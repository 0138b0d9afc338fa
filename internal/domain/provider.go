package domain

import (
	"fmt"
	"time"
)

// AvailabilityStatus is a provider's self-declared availability.
type AvailabilityStatus string

const (
	AvailabilityAvailable   AvailabilityStatus = "available"
	AvailabilityBusy        AvailabilityStatus = "busy"
	AvailabilityUnavailable AvailabilityStatus = "unavailable"
)

// AvailabilityStatuses lists every status in display order.
var AvailabilityStatuses = []AvailabilityStatus{AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable}

// ParseAvailabilityStatus returns false for unknown values.
func ParseAvailabilityStatus(s string) (AvailabilityStatus, bool) {
	switch a := AvailabilityStatus(s); a {
	case AvailabilityAvailable, AvailabilityBusy, AvailabilityUnavailable:
		return a, true
	}
	return "", false
}

// ProviderStatus is the moderation state of a provider profile.
type ProviderStatus string

const (
	ProviderPending   ProviderStatus = "pending"
	ProviderApproved  ProviderStatus = "approved"
	ProviderRejected  ProviderStatus = "rejected"
	ProviderSuspended ProviderStatus = "suspended"
)

// Service is a service category offered by providers.
type Service struct {
	ID   int64
	Name string
}

// Provider is the summary shown in search results.
type Provider struct {
	ID                 int64
	BusinessName       string
	PhoneNumber        string
	ProfileImageURL    string
	CityName           string
	Bio                string
	AvailabilityStatus AvailabilityStatus
	Status             ProviderStatus
	Services           []Service
	AverageRating      float64
	TotalReviews       int
	CreatedAt          time.Time
}

// ServiceNames returns the provider's service names in server order.
func (p Provider) ServiceNames() []string {
	names := make([]string, len(p.Services))
	for i, s := range p.Services {
		names[i] = s.Name
	}
	return names
}

// String returns a one-line description for listings.
func (p Provider) String() string {
	return fmt.Sprintf("%s (%s) %.1f★ [%d reviews] %s", p.BusinessName, p.CityName, p.AverageRating, p.TotalReviews, p.AvailabilityStatus)
}

// PortfolioItem is one image in a provider's portfolio.
type PortfolioItem struct {
	ID          int64
	ImageURL    string
	Description string
	CreatedAt   time.Time
}

// ProviderDetail is the full provider profile.
type ProviderDetail struct {
	Provider
	Portfolio []PortfolioItem
}
