// =============================================================================
// Inventory Consolidator - Validation Engine
// =============================================================================
//
// This module checks the consolidated table before it is written. The
// aggregation engine is expected to produce a table that passes every rule;
// a violation means a bug or corrupt input, and is reported with the row
// and column that triggered it.
//
// VALIDATION RULES:
//   | Rule              | Severity | Check                                    |
//   |-------------------|----------|------------------------------------------|
//   | duplicate_location| error    | every location column is unique          |
//   | alignment         | error    | one quantity cell per location column    |
//   | code_format       | error    | code is CodeDigits ASCII digits          |
//   | duplicate_code    | error    | one row per code                         |
//   | finite            | error    | no NaN or infinite values                |
//   | total_quantity    | error    | total quantity = sum of location cells   |
//   | total_price       | error    | total price = price x total quantity     |
//   | negative_quantity | warning  | quantities are not negative              |
//   | row_order         | warning  | rows are sorted by code                  |
//
// ERROR HANDLING:
//   - Errors are collected, not returned one at a time
//   - Each error carries the row number, code and column
//   - Warnings never make the table invalid unless TreatWarningsAsErrors
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/ginjaninja78/inventory-consolidator/internal/aggregation"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single violated rule.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Rule is the name of the violated rule.
	Rule string

	// Row is the 1-based data row, or 0 for table-level problems.
	Row int

	// Code is the item code of the row, if any.
	Code string

	// Column is the caption of the offending column, if any.
	Column string

	// Value is the offending value, formatted.
	Value string

	// Message is a human-readable error message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("[%s] %s: %s", strings.ToUpper(e.Severity), e.Rule, e.Message)
	}
	return fmt.Sprintf("[%s] Row %d, Code '%s', Column '%s': %s (value: '%s')",
		strings.ToUpper(e.Severity),
		e.Row,
		e.Code,
		e.Column,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no fatal errors.
	IsValid bool

	// Errors contains all validation errors (including warnings).
	Errors []*ValidationError

	ErrorCount   int
	WarningCount int

	// RowsValidated is the number of table rows checked.
	RowsValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first fatal error.
	StopOnFirstError bool

	// TreatWarningsAsErrors makes any warning invalidate the table.
	TreatWarningsAsErrors bool

	// CodeDigits is the expected code width. Default: 8
	CodeDigits int

	// Epsilon is the tolerance of the derived total checks. Default: 1e-6
	Epsilon float64

	// CustomValidators run after the built-in row rules.
	CustomValidators []CustomValidatorFunc

	// Labels name the columns in messages. Default: aggregation.DefaultLabels()
	Labels aggregation.Labels
}

// CustomValidatorFunc checks one row and returns an error message, or ""
// when the row is valid.
type CustomValidatorFunc func(row aggregation.Row, context ValidationContext) string

// ValidationContext provides context for custom validators.
type ValidationContext struct {
	// RowNumber is the 1-based data row.
	RowNumber int

	Table *aggregation.Table
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		CodeDigits: 8,
		Epsilon:    1e-6,
	}
}

// Validator checks consolidated tables.
type Validator struct {
	options ValidationOptions
	labels  aggregation.Labels
}

// NewValidator creates a Validator with the default options.
func NewValidator() *Validator {
	return NewValidatorWithOptions(DefaultValidationOptions())
}

// NewValidatorWithOptions creates a new Validator with custom options.
func NewValidatorWithOptions(options ValidationOptions) *Validator {
	if options.CodeDigits <= 0 {
		options.CodeDigits = 8
	}
	if options.Epsilon <= 0 {
		options.Epsilon = 1e-6
	}
	return &Validator{
		options: options,
		labels:  options.Labels.WithDefaults(),
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate checks table with the default options and returns every
// violation.
func Validate(table *aggregation.Table) []*ValidationError {
	return NewValidator().ValidateAll(table).Errors
}

// ValidateAll checks table and returns a detailed result.
func (v *Validator) ValidateAll(table *aggregation.Table) *ValidationResult {
	result := &ValidationResult{
		IsValid: true,
		Errors:  make([]*ValidationError, 0),
	}
	if table == nil {
		return result
	}

	// add records err and reports whether validation must stop.
	add := func(err *ValidationError) bool {
		result.Errors = append(result.Errors, err)
		if err.Severity == SeverityError {
			result.ErrorCount++
			result.IsValid = false
			return v.options.StopOnFirstError
		}
		result.WarningCount++
		if v.options.TreatWarningsAsErrors {
			result.IsValid = false
		}
		return false
	}

	for _, err := range v.validateLocations(table) {
		if add(err) {
			return result
		}
	}

	seen := make(map[string]int)
	for i, row := range table.Rows {
		result.RowsValidated++
		rowErrors := v.ValidateRow(table, i)

		if first, dup := seen[row.Code]; dup {
			rowErrors = append(rowErrors, &ValidationError{
				Severity: SeverityError,
				Rule:     "duplicate_code",
				Row:      i + 1,
				Code:     row.Code,
				Column:   v.labels.Code,
				Value:    row.Code,
				Message:  fmt.Sprintf("Code already appears on row %d", first),
			})
		} else {
			seen[row.Code] = i + 1
		}

		if i > 0 && table.Rows[i-1].Code > row.Code {
			rowErrors = append(rowErrors, &ValidationError{
				Severity: SeverityWarning,
				Rule:     "row_order",
				Row:      i + 1,
				Code:     row.Code,
				Column:   v.labels.Code,
				Value:    row.Code,
				Message:  fmt.Sprintf("Row is not sorted after code %s", table.Rows[i-1].Code),
			})
		}

		for _, err := range rowErrors {
			if add(err) {
				return result
			}
		}
	}

	return result
}

// validateLocations checks the location columns of the table.
func (v *Validator) validateLocations(table *aggregation.Table) []*ValidationError {
	var errors []*ValidationError
	seen := make(map[string]bool)
	for _, loc := range table.Locations {
		if seen[string(loc)] {
			errors = append(errors, &ValidationError{
				Severity: SeverityError,
				Rule:     "duplicate_location",
				Value:    string(loc),
				Message:  fmt.Sprintf("Location %s has more than one column", loc),
			})
		}
		seen[string(loc)] = true
	}
	return errors
}

// ValidateRow checks the row at index i of table.
func (v *Validator) ValidateRow(table *aggregation.Table, i int) []*ValidationError {
	var errors []*ValidationError
	row := table.Rows[i]

	newErr := func(severity, rule, column, value, message string) *ValidationError {
		return &ValidationError{
			Severity: severity,
			Rule:     rule,
			Row:      i + 1,
			Code:     row.Code,
			Column:   column,
			Value:    value,
			Message:  message,
		}
	}

	// =========================================================================
	// ALIGNMENT
	// =========================================================================

	if len(row.Quantities) != len(table.Locations) {
		errors = append(errors, newErr(SeverityError, "alignment", "", fmt.Sprint(len(row.Quantities)),
			fmt.Sprintf("Row has %d quantity cells for %d locations", len(row.Quantities), len(table.Locations))))
	}

	// =========================================================================
	// CODE FORMAT
	// =========================================================================

	if msg := validateCode(row.Code, v.options.CodeDigits); msg != "" {
		errors = append(errors, newErr(SeverityError, "code_format", v.labels.Code, row.Code, msg))
	}

	// =========================================================================
	// NUMERIC CELLS
	// =========================================================================

	finite := true
	check := func(column string, value float64, quantity bool) {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			finite = false
			errors = append(errors, newErr(SeverityError, "finite", column, fmt.Sprint(value), "Value is not a finite number"))
			return
		}
		if quantity && value < 0 {
			errors = append(errors, newErr(SeverityWarning, "negative_quantity", column, formatNumber(value), "Quantity is negative"))
		}
	}

	var sum float64
	for j, q := range row.Quantities {
		column := fmt.Sprintf("#%d", j+1)
		if j < len(table.Locations) {
			column = v.labels.QuantityLabel(table.Locations[j])
		}
		check(column, q, true)
		sum += q
	}
	check(v.labels.Price, row.Price, false)
	check(v.labels.TotalQuantity, row.TotalQuantity, false)
	check(v.labels.TotalPrice, row.TotalPrice, false)

	// =========================================================================
	// DERIVED TOTALS
	// =========================================================================
	// Only meaningful when every input value is finite.

	if finite {
		if !nearlyEqual(row.TotalQuantity, sum, v.options.Epsilon) {
			errors = append(errors, newErr(SeverityError, "total_quantity", v.labels.TotalQuantity, formatNumber(row.TotalQuantity),
				fmt.Sprintf("Total quantity differs from the sum of locations (%s)", formatNumber(sum))))
		}
		want := row.Price * row.TotalQuantity
		if !nearlyEqual(row.TotalPrice, want, v.options.Epsilon) {
			errors = append(errors, newErr(SeverityError, "total_price", v.labels.TotalPrice, formatNumber(row.TotalPrice),
				fmt.Sprintf("Total price differs from price x total quantity (%s)", formatNumber(want))))
		}
	}

	// =========================================================================
	// CUSTOM RULES
	// =========================================================================

	for _, custom := range v.options.CustomValidators {
		if msg := custom(row, ValidationContext{RowNumber: i + 1, Table: table}); msg != "" {
			errors = append(errors, newErr(SeverityError, "custom", "", "", msg))
		}
	}

	return errors
}

// =============================================================================
// BUILT-IN CUSTOM VALIDATORS
// =============================================================================

// RequireDescription reports rows printed without a description.
func RequireDescription(row aggregation.Row, _ ValidationContext) string {
	if strings.TrimSpace(row.Description) == "" {
		return "Description is empty"
	}
	return ""
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// validateCode returns an error message if code is not digits long ASCII
// digits.
func validateCode(code string, digits int) string {
	if len(code) != digits {
		return fmt.Sprintf("Code must have %d digits (actual: %d)", digits, len(code))
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return fmt.Sprintf("Code contains non-digit character '%c'", c)
		}
	}
	return ""
}

// nearlyEqual compares with an absolute tolerance for small values and a
// relative one for large values.
func nearlyEqual(a, b, eps float64) bool {
	diff := math.Abs(a - b)
	return diff <= eps || diff <= eps*math.Max(math.Abs(a), math.Abs(b))
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatErrors formats validation errors for display or logging.
//
// PARAMETERS:
//   - errors: The validation errors to format.
//
// RETURNS:
//   - A formatted string containing all errors.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
