package errors

import (
	"math"
	"slices"
	"strings"
	"unicode"
)

// ValidateIdentifier validates a region, run or session identifier.
// Identifiers end up in file names, cache keys and URL paths, so the rules
// are conservative:
//   - No empty names
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s cannot be empty", kind)
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "%s too long (max 128 characters)", kind)
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidInput, "%s contains invalid characters", kind)
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "%s contains invalid characters: %q", kind, pattern)
		}
	}
	return nil
}

// ValidatePositive checks that v is a finite number greater than zero.
func ValidatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeConfiguration, "%s must be positive, got %v", field, v)
	}
	return nil
}

// ValidateNonNegative checks that v is a finite number not below zero.
func ValidateNonNegative(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeConfiguration, "%s must not be negative, got %v", field, v)
	}
	return nil
}

// ValidateOneOf checks that v is one of the allowed values.
func ValidateOneOf(field, v string, allowed ...string) error {
	if slices.Contains(allowed, v) {
		return nil
	}
	return New(ErrCodeConfiguration, "invalid %s: %q (must be one of: %s)", field, v, strings.Join(allowed, ", "))
}
