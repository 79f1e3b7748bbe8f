package domain

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Dev logins use hosts without a TLD (e.g. sandro@local), so the domain part
// only needs one label.
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9\-]+(\.[a-zA-Z0-9\-]+)*$`)

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks if an email address is valid.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidateQuantity checks a purchase quantity against the configured maximum.
func ValidateQuantity(quantity, max int) error {
	if quantity < 1 {
		return fmt.Errorf("quantity must be at least 1, got %d", quantity)
	}
	if max > 0 && quantity > max {
		return fmt.Errorf("quantity must be at most %d, got %d", max, quantity)
	}
	return nil
}

// TotalPrice multiplies a unit price by quantity, failing on int64 overflow.
func TotalPrice(unitCents int64, quantity int) (int64, error) {
	if unitCents < 0 {
		return 0, fmt.Errorf("negative unit price %d", unitCents)
	}
	if unitCents != 0 && int64(quantity) > math.MaxInt64/unitCents {
		return 0, fmt.Errorf("total price overflows: %d x %d", unitCents, quantity)
	}
	return unitCents * int64(quantity), nil
}
