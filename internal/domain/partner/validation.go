package partner

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// phonePattern accepts an international form (optional "+", 10-15 digits)
// or a ten-digit form with optional area-code parentheses and space or
// hyphen separators.
var phonePattern = regexp.MustCompile(`^(?:\+?\d{10,15}|\(?\d{3}\)?[-\s]?\d{3}[-\s]?\d{4})$`)

var emailValidator = validator.New()

// Validation messages
const (
	ErrMsgNameRequired  = "Name is required and cannot be empty"
	ErrMsgEmailRequired = "Email is required"
)

// ValidatePhoneFormat reports whether phone is acceptable.
// An empty phone is valid since the field is optional.
func ValidatePhoneFormat(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phone)
}

// IsValidEmail reports whether email is syntactically valid
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > MaxEmailLength {
		return false
	}
	return emailValidator.Var(email, "email") == nil
}

// ValidateCustomerData collects every violation in the given customer
// data. It returns an empty slice when the data is valid.
func ValidateCustomerData(name, email, phone string) []string {
	errs := make([]string, 0)

	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		errs = append(errs, ErrMsgNameRequired)
	} else if utf8.RuneCountInString(trimmedName) > MaxNameLength {
		errs = append(errs, fmt.Sprintf("Name cannot exceed %d characters", MaxNameLength))
	}

	if strings.TrimSpace(email) == "" {
		errs = append(errs, ErrMsgEmailRequired)
	} else if !IsValidEmail(email) {
		errs = append(errs, fmt.Sprintf("Invalid email format: %s", email))
	}

	if !ValidatePhoneFormat(phone) {
		errs = append(errs, fmt.Sprintf(
			"Invalid phone format: %s.Use formats like +1234567890, 123-456-7890, (123) 456-7890, or 1234567890",
			phone,
		))
	}

	return errs
}

// EmailExistsMessage formats the duplicate-email error for a normalized email
func EmailExistsMessage(email string) string {
	return fmt.Sprintf("Email already exists: %s", email)
}
