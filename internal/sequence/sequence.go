// Package sequence produces the successive input values for a benchmark run.
// Values are fixed-width zero-padded decimal strings; the width is set by the
// starting value and preserved until the count outgrows it.
package sequence

import (
	"errors"
	"fmt"
)

// ErrNotNumeric is returned when an input contains a non-digit character.
var ErrNotNumeric = errors.New("data must be a numeric string")

// Increment returns the next value of a zero-padded decimal string at the
// same width. When the increment carries past the leading digit the result
// is one digit wider ("999" becomes "1000"); the caller decides whether
// that ends the run.
//
// The increment is done digit-wise so arbitrarily wide values never hit
// integer overflow.
func Increment(s string) (string, error) {
	if len(s) == 0 {
		return "", fmt.Errorf("increment %q: %w", s, ErrNotNumeric)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", fmt.Errorf("increment %q: %w", s, ErrNotNumeric)
		}
	}

	digits := []byte(s)
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] < '9' {
			digits[i]++
			return string(digits), nil
		}
		digits[i] = '0'
	}
	// Carried out of the leftmost digit.
	return "1" + string(digits), nil
}
