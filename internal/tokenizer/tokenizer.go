// =============================================================================
// Inventory Consolidator - Line Classifier & Tokenizer
// =============================================================================
//
// This module decides which lines of extracted page text are inventory rows
// and splits each row into its fields.
//
// LINE FORMAT:
//   <code><description> <quantity> <unit price> <total>
//
//   | Code     | Description          | Quantity | Unit Price | Total     |
//   |----------|----------------------|----------|------------|-----------|
//   | 00012345 | PARAFUSO SEXT 1/2"   | 1.250    | 0,35       | 437,50    |
//
// Lines that do not start with the code digits (headers, totals, page
// footers, blank lines) are not data rows and are skipped without error.
//
// =============================================================================

package tokenizer

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultCodeDigits is the width of an inventory item code.
const DefaultCodeDigits = 8

// ErrMalformedLine is returned for a data row that does not carry three
// trailing fields.
var ErrMalformedLine = errors.New("malformed line")

// Fields holds the raw, still unparsed tokens of a data row.
type Fields struct {
	Code        string
	Description string
	Quantity    string
	UnitPrice   string
	Total       string
}

// Tokenizer classifies and splits lines.
type Tokenizer struct {
	// CodeDigits is the number of leading digits that mark a data row.
	CodeDigits int
}

// New creates a Tokenizer. A non-positive width selects DefaultCodeDigits.
func New(codeDigits int) *Tokenizer {
	if codeDigits <= 0 {
		codeDigits = DefaultCodeDigits
	}
	return &Tokenizer{CodeDigits: codeDigits}
}

// IsDataRow reports whether the trimmed line starts with CodeDigits
// consecutive ASCII digits.
func (t *Tokenizer) IsDataRow(line string) bool {
	line = strings.TrimSpace(line)
	if len(line) < t.CodeDigits {
		return false
	}
	for i := 0; i < t.CodeDigits; i++ {
		if line[i] < '0' || line[i] > '9' {
			return false
		}
	}
	return true
}

// Tokenize splits a data row into its fields.
//
// The line is split from the right into at most four whitespace-delimited
// parts. The three rightmost parts are total, unit price and quantity (in
// that right-to-left order). The code is the first CodeDigits characters
// and the description is whatever sits between the code and the quantity.
//
// RETURNS:
//   - The fields of the row.
//   - ErrMalformedLine if the line is not a data row or has fewer than four parts.
func (t *Tokenizer) Tokenize(line string) (Fields, error) {
	line = strings.TrimSpace(line)
	if !t.IsDataRow(line) {
		return Fields{}, fmt.Errorf("%w: missing %d-digit code", ErrMalformedLine, t.CodeDigits)
	}

	parts := splitRight(line, 3)
	if len(parts) < 4 {
		return Fields{}, fmt.Errorf("%w: expected 3 numeric fields, found %d", ErrMalformedLine, len(parts)-1)
	}

	head := parts[0]
	return Fields{
		Code:        line[:t.CodeDigits],
		Description: strings.TrimSpace(head[t.CodeDigits:]),
		Quantity:    parts[1],
		UnitPrice:   parts[2],
		Total:       parts[3],
	}, nil
}

// splitRight splits s on runs of whitespace, working from the right, and
// performs at most n splits. The leftmost element keeps its inner spacing.
func splitRight(s string, n int) []string {
	var tail []string
	rest := strings.TrimRightFunc(s, unicode.IsSpace)

	for len(tail) < n {
		idx := strings.LastIndexFunc(rest, unicode.IsSpace)
		if idx < 0 {
			break
		}
		_, width := utf8.DecodeRuneInString(rest[idx:])
		tail = append(tail, rest[idx+width:])
		rest = strings.TrimRightFunc(rest[:idx], unicode.IsSpace)
		if rest == "" {
			break
		}
	}

	parts := make([]string, 0, len(tail)+1)
	if rest != "" {
		parts = append(parts, rest)
	}
	for i := len(tail) - 1; i >= 0; i-- {
		parts = append(parts, tail[i])
	}
	return parts
}
