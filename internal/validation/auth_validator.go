package validation

import (
	"marketplace/internal/domain"
)

// AuthValidator validates the login and registration forms
type AuthValidator struct {
	validator *Validator
}

// NewAuthValidator creates a new auth form validator
func NewAuthValidator() *AuthValidator {
	return &AuthValidator{
		validator: NewValidator(),
	}
}

func (av *AuthValidator) validateEmail(ve *ValidationError, email string) {
	trimmed := av.validator.TrimAndValidateString(email)
	if !av.validator.IsNonEmptyString(trimmed) {
		ve.AddRequiredError("email")
		return
	}
	if !av.validator.IsValidStringLength(trimmed, 1, EmailMaxLength) {
		ve.AddInvalidLengthError("email", trimmed, 0, EmailMaxLength)
		return
	}
	if !av.validator.IsValidEmail(trimmed) {
		ve.AddInvalidFormatError("email", trimmed, "name@example.com")
	}
}

// ValidateCredentials validates the login form
func (av *AuthValidator) ValidateCredentials(creds domain.Credentials) error {
	ve := NewValidationError()

	av.validateEmail(ve, creds.Email)

	if creds.Password == "" {
		ve.AddRequiredError("password")
	} else if len([]rune(creds.Password)) < PasswordMinLength {
		ve.AddInvalidLengthError("password", nil, PasswordMinLength, 0)
	}

	return ve.OrNil()
}

// ValidateRegistration validates the sign-up form
func (av *AuthValidator) ValidateRegistration(reg domain.Registration) error {
	ve := NewValidationError()

	name := av.validator.TrimAndValidateString(reg.FullName)
	if !av.validator.IsNonEmptyString(name) {
		ve.AddRequiredError("fullName")
	} else if !av.validator.IsValidStringLength(name, FullNameMinLength, FullNameMaxLength) {
		ve.AddInvalidLengthError("fullName", name, FullNameMinLength, FullNameMaxLength)
	}

	av.validateEmail(ve, reg.Email)

	passwordLen := len([]rune(reg.Password))
	if reg.Password == "" {
		ve.AddRequiredError("password")
	} else if passwordLen < PasswordMinLength || passwordLen > PasswordMaxLength {
		ve.AddInvalidLengthError("password", nil, PasswordMinLength, PasswordMaxLength)
	}

	if reg.ConfirmPassword == "" {
		ve.AddRequiredError("confirmPassword")
	} else if reg.ConfirmPassword != reg.Password {
		ve.AddMismatchError("confirmPassword", "password")
	}

	if reg.Role == "" {
		ve.AddRequiredError("role")
	} else if !reg.Role.IsRegistrable() {
		ve.AddInvalidValueError("role", reg.Role, "must be client, provider or mixto")
	}

	return ve.OrNil()
}
