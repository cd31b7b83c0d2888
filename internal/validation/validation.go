package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidateID checks that a required identifier is present
func ValidateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidatePercent checks that a value is a valid percentage
func ValidatePercent(field string, value int) error {
	if value < 0 || value > 100 {
		return ValidationError{Field: field, Message: field + " must be between 0 and 100"}
	}
	return nil
}

// ValidatePosition checks that a playback position is non-negative and
// within the video's duration plus a small buffer for player rounding
func ValidatePosition(positionSeconds, durationSeconds int) error {
	if positionSeconds < 0 {
		return ValidationError{Field: "positionSeconds", Message: "position cannot be negative"}
	}
	if durationSeconds > 0 && positionSeconds > durationSeconds+5 {
		return ValidationError{Field: "positionSeconds", Message: "position exceeds video duration"}
	}
	return nil
}
