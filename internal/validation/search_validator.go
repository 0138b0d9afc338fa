package validation

import (
	"marketplace/internal/domain"
)

// SearchValidator checks user-typed search input. Queries parsed from a URL
// are never rejected; they are normalized instead.
type SearchValidator struct {
	validator *Validator
}

// NewSearchValidator creates a new search validator
func NewSearchValidator() *SearchValidator {
	return &SearchValidator{
		validator: NewValidator(),
	}
}

// ValidateQuery validates a query built from explicit command input
func (sv *SearchValidator) ValidateQuery(q domain.SearchQuery) error {
	ve := NewValidationError()

	if !sv.validator.IsValidStringLength(q.FreeText, 0, SearchTextMaxLength) {
		ve.AddInvalidLengthError("q", q.FreeText, 0, SearchTextMaxLength)
	}

	for _, id := range q.ServiceIDs {
		if !sv.validator.IsValidID(id) {
			ve.AddInvalidValueError("service", id, "service ids must be positive integers")
			break
		}
	}
	if len(q.ServiceIDs) > SearchMaxServiceIDs {
		ve.AddInvalidValueError("service", len(q.ServiceIDs), "too many service filters")
	}
	if len(q.Cities) > SearchMaxCityFilters {
		ve.AddInvalidValueError("location", len(q.Cities), "too many location filters")
	}

	if q.MinRating != 0 && domain.NormalizeRating(q.MinRating) != q.MinRating {
		ve.AddInvalidRangeError("minRating", q.MinRating, "must be between 0 and 5 in steps of 0.5")
	}

	if q.SortBy != "" {
		if _, ok := domain.ParseSortOption(string(q.SortBy)); !ok {
			ve.AddInvalidValueError("sort", q.SortBy, "unknown sort option")
		}
	}

	for _, a := range q.AvailabilityStatuses {
		if _, ok := domain.ParseAvailabilityStatus(string(a)); !ok {
			ve.AddInvalidValueError("availability", a, "must be available, busy or unavailable")
			break
		}
	}

	if q.Page < 0 {
		ve.AddInvalidValueError("page", q.Page, "must be positive")
	}

	return ve.OrNil()
}
