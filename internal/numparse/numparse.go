// =============================================================================
// Inventory Consolidator - Locale Numeric Parser
// =============================================================================
//
// Inventory documents print numbers with a dot as thousands separator and a
// comma as decimal separator ("1.234,56"). This package turns such strings
// into float64 values.
//
// CONVERSION:
//   1. Remove every thousands separator
//   2. Replace the decimal separator with "."
//   3. Parse the result as a decimal number
//
// =============================================================================

package numparse

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumber is returned when a cleaned string is not a number.
var ErrInvalidNumber = errors.New("invalid number")

// Format describes the separators used by a document family.
type Format struct {
	// ThousandsSeparator is removed before parsing. Default: "."
	ThousandsSeparator string

	// DecimalSeparator is replaced by "." before parsing. Default: ","
	DecimalSeparator string
}

// DefaultFormat returns the Brazilian format used by the branch reports.
func DefaultFormat() Format {
	return Format{
		ThousandsSeparator: ".",
		DecimalSeparator:   ",",
	}
}

// Validate reports whether the separators can be told apart.
func (f Format) Validate() error {
	if f.DecimalSeparator == "" {
		return fmt.Errorf("decimal separator must not be empty")
	}
	if f.ThousandsSeparator == f.DecimalSeparator {
		return fmt.Errorf("thousands and decimal separators must differ (both %q)", f.DecimalSeparator)
	}
	return nil
}

// Parse converts s into a float64 using the separators of f.
//
// EXAMPLES (default format):
//   "1.234,56" -> 1234.56
//   "0,50"     -> 0.5
//   "12"       -> 12
//   "12a"      -> ErrInvalidNumber
func (f Format) Parse(s string) (float64, error) {
	cleaned := strings.TrimSpace(s)
	if f.ThousandsSeparator != "" {
		cleaned = strings.ReplaceAll(cleaned, f.ThousandsSeparator, "")
	}
	if f.DecimalSeparator != "." {
		cleaned = strings.ReplaceAll(cleaned, f.DecimalSeparator, ".")
	}

	if cleaned == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNumber, s)
	}

	return d.InexactFloat64(), nil
}

// Parse converts s using DefaultFormat.
func Parse(s string) (float64, error) {
	return DefaultFormat().Parse(s)
}
