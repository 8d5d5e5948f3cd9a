// Package filter parses raw filter input into typed, bounded values.
// Invalid input is never clamped or partially accepted: it is discarded and
// the caller is told to blank the raw input field.
package filter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/trip-browser/internal/domain"
)

// Outcome tells the caller what happened to a raw input value.
type Outcome int

const (
	// Cleared means the input was empty and the filter is now absent.
	Cleared Outcome = iota
	// Accepted means the input parsed and is within bounds.
	Accepted
	// Rejected means the input was malformed or out of range. The filter is
	// absent and the raw input field must be blanked.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Cleared:
		return "cleared"
	case Accepted:
		return "accepted"
	case Rejected:
		return "rejected"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// ResetInput reports whether the raw input field should be blanked.
func (o Outcome) ResetInput() bool { return o == Rejected }

// validate is shared; validator.Validate caches parsed tags and is safe for
// concurrent use.
var validate = validator.New()

// ParseInteger parses raw as a base-10 integer. With mustBePositive set,
// zero and negative values are rejected.
func ParseInteger(raw string, mustBePositive bool) (*int, Outcome) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, Cleared
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, Rejected
	}
	if mustBePositive {
		if err := validate.Var(n, "gt=0"); err != nil {
			return nil, Rejected
		}
	}
	return &n, Accepted
}

// ParseFloat parses raw as a decimal number within [min, max] inclusive.
// NaN and infinities are rejected.
func ParseFloat(raw string, min, max float64) (*float64, Outcome) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, Cleared
	}
	if hasHexPrefix(s) {
		return nil, Rejected
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, Rejected
	}
	bounds := "gte=" + domain.FormatFloat(min) + ",lte=" + domain.FormatFloat(max)
	if err := validate.Var(f, bounds); err != nil {
		return nil, Rejected
	}
	return &f, Accepted
}

// hasHexPrefix reports whether s, after an optional sign, starts with 0x.
// strconv.ParseFloat accepts hexadecimal floats; rating inputs are decimal.
func hasHexPrefix(s string) bool {
	s = strings.TrimLeft(s, "+-")
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

// ParsePrice parses a price bound: a strictly positive integer.
func ParsePrice(raw string) (*int, Outcome) {
	return ParseInteger(raw, true)
}

// ParseRating parses a rating bound: a number in [0, 5].
func ParseRating(raw string) (*float64, Outcome) {
	return ParseFloat(raw, domain.MinRating, domain.MaxRating)
}
