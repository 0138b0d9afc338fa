package validation

import (
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field limits for the account and review forms
const (
	EmailMaxLength       = 255
	PasswordMinLength    = 6
	PasswordMaxLength    = 100
	FullNameMinLength    = 2
	FullNameMaxLength    = 100
	ReviewCommentMin     = 10
	ReviewCommentMax     = 1000
	ReviewRatingMin      = 1
	ReviewRatingMax      = 5
	SearchTextMaxLength  = 200
	SearchMaxServiceIDs  = 50
	SearchMaxCityFilters = 50
)

// Validator provides common validation utilities
type Validator struct {
	emailRegex *regexp.Regexp
}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{
		emailRegex: regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`),
	}
}

// IsNonEmptyString checks if a string is not empty after trimming whitespace
func (v *Validator) IsNonEmptyString(s string) bool {
	return strings.TrimSpace(s) != ""
}

// IsValidStringLength checks if the trimmed string has between min and max
// characters. A max of 0 means no upper bound.
func (v *Validator) IsValidStringLength(s string, min, max int) bool {
	length := utf8.RuneCountInString(strings.TrimSpace(s))
	return length >= min && (max == 0 || length <= max)
}

// IsValidEmail checks the address shape the signup form accepts
func (v *Validator) IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if !v.emailRegex.MatchString(email) {
		return false
	}
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}

// IsValidID checks if a backend identifier is valid (positive)
func (v *Validator) IsValidID(id int64) bool {
	return id > 0
}

// IsInRange checks min <= n <= max
func (v *Validator) IsInRange(n, min, max int) bool {
	return n >= min && n <= max
}

// TrimAndValidateString trims whitespace and returns the cleaned string
func (v *Validator) TrimAndValidateString(s string) string {
	return strings.TrimSpace(s)
}
