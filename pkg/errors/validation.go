package errors

import (
	"math"
	"regexp"
	"strings"
	"unicode"
)

// maxIDLength bounds identifiers that end up in file names and storage keys.
const maxIDLength = 128

// idRegex matches identifiers accepted for diagrams, shapes and connections:
// uuids, slugs and similar tokens.
var idRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateID validates a diagram, shape or connection identifier.
// It rejects identifiers that could be used for path traversal when the
// identifier becomes a file name in the file-backed store.
//
// The validation rules are intentionally conservative:
//   - No empty identifiers
//   - No control characters
//   - No path separators or traversal sequences
//   - Maximum length of 128 characters
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}

	if len(id) > maxIDLength {
		return New(ErrCodeInvalidID, "id too long (max %d characters)", maxIDLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidID, "id contains invalid control characters")
		}
	}

	if strings.Contains(id, "..") {
		return New(ErrCodeInvalidID, "id cannot contain path traversal sequences (..)")
	}

	if !idRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid id: %q", id)
	}

	return nil
}

// ValidateFinite validates that every value is a finite number.
// NaN and infinities poison every comparison the router makes, so they are
// rejected at the boundary.
func ValidateFinite(field string, values ...float64) error {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "%s must be a finite number", field)
		}
	}
	return nil
}

// ValidateSize validates a rectangle size.
// Width and height must be finite and non-negative.
func ValidateSize(width, height float64) error {
	if err := ValidateFinite("size", width, height); err != nil {
		return err
	}
	if width < 0 || height < 0 {
		return New(ErrCodeInvalidInput, "size must not be negative (got %gx%g)", width, height)
	}
	return nil
}
