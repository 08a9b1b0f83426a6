// =============================================================================
// Inventory Consolidator - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - extraction
//   - aggregation
//   - report
//   - converter
//
// =============================================================================

package types

import (
	"fmt"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// LocationKey identifies a branch. It is always uppercase.
type LocationKey string

// RawRecord is one qualifying line of a branch inventory document.
// The same code may appear many times, on several pages or documents.
type RawRecord struct {
	// Code is the 8-digit item identifier. It is the join key for every
	// later stage.
	Code string `csv:"codigo"`

	// Description is the free text between the code and the numeric fields.
	Description string `csv:"descricao"`

	// Location is the branch the source document belongs to.
	Location LocationKey `csv:"local"`

	// Quantity is the stock balance on the line.
	Quantity float64 `csv:"quantidade"`

	// UnitPrice is the average unit price printed on the line.
	UnitPrice float64 `csv:"preco_medio"`

	// Total is the line total as printed. It is kept for auditing only;
	// report totals are always derived.
	Total float64 `csv:"total"`

	// Document and Page record where the line came from.
	Document string `csv:"documento"`
	Page     int    `csv:"pagina"`
}

// GroupedRecord aggregates every RawRecord sharing a (code, location) pair.
type GroupedRecord struct {
	Code     string
	Location LocationKey

	// Quantity is the sum of the raw quantities.
	Quantity float64

	// UnitPrice is the arithmetic mean of the raw unit prices.
	UnitPrice float64

	// Count is the number of raw records in the group.
	Count int
}

// =============================================================================
// DIAGNOSTICS
// =============================================================================

// DiagnosticKind classifies a recoverable per-line or per-document problem.
type DiagnosticKind string

const (
	// KindMalformedLine is a data-looking line that could not be tokenized.
	KindMalformedLine DiagnosticKind = "malformed_line"

	// KindInvalidNumber is a line whose numeric fields did not parse.
	KindInvalidNumber DiagnosticKind = "invalid_number"

	// KindMissingLocation is a document without a location marker.
	KindMissingLocation DiagnosticKind = "missing_location"
)

// Diagnostic describes a problem that was recovered locally. Diagnostics
// never abort a run.
type Diagnostic struct {
	Kind DiagnosticKind

	// Document is the path of the source document.
	Document string

	// Page is the 1-based page number, or 0 for document-level problems.
	Page int

	// LineNumber is the 1-based line number within the page, or 0.
	LineNumber int

	// Line is the offending text, trimmed.
	Line string

	// Message is a human-readable explanation.
	Message string
}

// Error implements the error interface.
func (d Diagnostic) Error() string {
	if d.Page == 0 {
		return fmt.Sprintf("[%s] %s: %s", d.Kind, d.Document, d.Message)
	}
	return fmt.Sprintf("[%s] %s page %d line %d: %s (line: '%s')",
		d.Kind,
		d.Document,
		d.Page,
		d.LineNumber,
		d.Message,
		d.Line,
	)
}
