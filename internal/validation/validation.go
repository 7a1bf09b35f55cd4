// Package validation holds tiny field validators used at the request boundary.
package validation

import "strings"

// Violations maps a field name to a short machine-readable reason.
type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Required flags empty or whitespace-only string fields.
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
	}
}

// PositiveFloat flags values that must be strictly greater than zero.
func PositiveFloat(field string, val float64, v Violations) {
	if val <= 0 {
		v[field] = "must_be_positive"
	}
}

// NonNegativeFloat flags negative values (zero is allowed).
func NonNegativeFloat(field string, val float64, v Violations) {
	if val < 0 {
		v[field] = "must_not_be_negative"
	}
}

// MaxLen flags strings longer than max runes.
func MaxLen(field, value string, max int, v Violations) {
	if len([]rune(value)) > max {
		v[field] = "too_long"
	}
}
