package validation

import (
	"fmt"

	"marketplace/internal/domain"
)

// ReviewValidator validates review input
type ReviewValidator struct {
	validator *Validator
}

// NewReviewValidator creates a new review validator
func NewReviewValidator() *ReviewValidator {
	return &ReviewValidator{
		validator: NewValidator(),
	}
}

// ValidateNewReview validates a review before it is submitted
func (rv *ReviewValidator) ValidateNewReview(review domain.NewReview) error {
	ve := NewValidationError()

	if !rv.validator.IsValidID(review.ProviderID) {
		ve.AddInvalidValueError("providerId", review.ProviderID, "must be a positive integer")
	}

	if !rv.validator.IsInRange(review.Rating, ReviewRatingMin, ReviewRatingMax) {
		ve.AddInvalidRangeError("rating", review.Rating, fmt.Sprintf("must be between %d and %d stars", ReviewRatingMin, ReviewRatingMax))
	}

	comment := rv.validator.TrimAndValidateString(review.Comment)
	if !rv.validator.IsNonEmptyString(comment) {
		ve.AddRequiredError("comment")
	} else if !rv.validator.IsValidStringLength(comment, ReviewCommentMin, ReviewCommentMax) {
		ve.AddInvalidLengthError("comment", comment, ReviewCommentMin, ReviewCommentMax)
	}

	return ve.OrNil()
}

// ValidateReviewID validates the identifier of an existing review
func (rv *ReviewValidator) ValidateReviewID(id int64) error {
	ve := NewValidationError()
	if !rv.validator.IsValidID(id) {
		ve.AddInvalidValueError("reviewId", id, "must be a positive integer")
	}
	return ve.OrNil()
}
