// Package validate holds syntactic input checks applied at the edge, before
// a request reaches the lifecycle directories.
package validate

import (
	"fmt"
	"regexp"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Email checks basic email address shape.
func Email(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address: %q", email)
	}
	return nil
}

// PasswordStrength requires at least 8 characters with an upper-case letter,
// a lower-case letter, and a digit.
func PasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("password must contain at least one uppercase letter")
	case !hasLower:
		return fmt.Errorf("password must contain at least one lowercase letter")
	case !hasDigit:
		return fmt.Errorf("password must contain at least one digit")
	}
	return nil
}

// OrganizationName requires a name between 3 and 50 characters.
func OrganizationName(name string) error {
	if len(name) < 3 {
		return fmt.Errorf("organization name must be at least 3 characters long")
	}
	if len(name) > 50 {
		return fmt.Errorf("organization name must be at most 50 characters long")
	}
	return nil
}
