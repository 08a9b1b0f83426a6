// =============================================================================
// Inventory Consolidator - Record Extraction Pipeline
// =============================================================================
//
// This module walks a list of branch documents and turns every qualifying
// text line into a RawRecord tagged with the document's location.
//
// EXTRACTION PIPELINE (per document, in input order):
//   1. Open the document
//   2. Resolve the location once from page 1 (or the file name)
//   3. Walk every page, line by line
//   4. Skip lines that are not data rows
//   5. Tokenize and parse the numeric fields
//   6. Emit a RawRecord, or a Diagnostic when the line is broken
//
// ERROR HANDLING:
//   - A broken line is recorded as a Diagnostic and skipped.
//   - A document without location falls into the undefined label column.
//   - A document that cannot be opened or read aborts the whole run.
//
// =============================================================================

package extraction

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/inventory-consolidator/internal/location"
	"github.com/ginjaninja78/inventory-consolidator/internal/logging"
	"github.com/ginjaninja78/inventory-consolidator/internal/numparse"
	"github.com/ginjaninja78/inventory-consolidator/internal/pdftext"
	"github.com/ginjaninja78/inventory-consolidator/internal/tokenizer"
	"github.com/ginjaninja78/inventory-consolidator/internal/types"
)

// DefaultUndefinedLabel is the column used for documents without location.
const DefaultUndefinedLabel types.LocationKey = "UNDEFINED"

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result holds everything extracted from one batch of documents.
type Result struct {
	// Records are the qualifying lines in document, page and line order.
	Records []types.RawRecord

	// Diagnostics are the recovered problems, in the order they occurred.
	Diagnostics []types.Diagnostic

	// Documents has one entry per input path, in input order.
	Documents []DocumentStats
}

// DocumentStats summarises one processed document.
type DocumentStats struct {
	Path string

	// Location is the resolved label, or the undefined label.
	Location types.LocationKey

	// LocationFound is false when the undefined label was substituted.
	LocationFound bool

	Pages       int
	Records     int
	Diagnostics int
}

// Locations returns the distinct locations that produced at least one
// record, in first-seen order.
func (r *Result) Locations() []types.LocationKey {
	seen := make(map[types.LocationKey]bool)
	var out []types.LocationKey
	for _, rec := range r.Records {
		if !seen[rec.Location] {
			seen[rec.Location] = true
			out = append(out, rec.Location)
		}
	}
	return out
}

// =============================================================================
// PIPELINE
// =============================================================================

// Options wires the collaborators of a Pipeline. Zero values select the
// defaults.
type Options struct {
	// Opener opens documents. Default: pdftext.NewOpener()
	Opener pdftext.Opener

	// Resolver labels documents. Default: location.FilenameResolver
	Resolver location.Resolver

	// Tokenizer classifies and splits lines. Default: 8-digit codes
	Tokenizer *tokenizer.Tokenizer

	// Numbers parses the numeric fields. Default: numparse.DefaultFormat()
	Numbers *numparse.Format

	// UndefinedLabel replaces a location that cannot be resolved.
	UndefinedLabel types.LocationKey

	Logger logging.Logger
}

// Pipeline extracts RawRecords from documents. It keeps no state between
// calls to Extract.
type Pipeline struct {
	opener    pdftext.Opener
	resolver  location.Resolver
	tokenizer *tokenizer.Tokenizer
	numbers   numparse.Format
	undefined types.LocationKey
	logger    logging.Logger
}

// New creates a Pipeline.
func New(opts Options) *Pipeline {
	p := &Pipeline{
		opener:    opts.Opener,
		resolver:  opts.Resolver,
		tokenizer: opts.Tokenizer,
		numbers:   numparse.DefaultFormat(),
		undefined: opts.UndefinedLabel,
		logger:    opts.Logger,
	}
	if p.opener == nil {
		p.opener = pdftext.NewOpener()
	}
	if p.resolver == nil {
		p.resolver = location.FilenameResolver{}
	}
	if p.tokenizer == nil {
		p.tokenizer = tokenizer.New(tokenizer.DefaultCodeDigits)
	}
	if opts.Numbers != nil {
		p.numbers = *opts.Numbers
	}
	if p.undefined == "" {
		p.undefined = DefaultUndefinedLabel
	}
	if p.logger == nil {
		p.logger = logging.Nop()
	}
	return p
}

// Extract processes the documents in order.
//
// PARAMETERS:
//   - paths: The document paths. Order decides location column order later.
//
// RETURNS:
//   - The extracted records, diagnostics and per-document statistics.
//   - An error naming the document if one cannot be opened or read.
func (p *Pipeline) Extract(paths []string) (*Result, error) {
	result := &Result{}

	for _, path := range paths {
		stats, err := p.extractDocument(path, result)
		if err != nil {
			return nil, err
		}
		result.Documents = append(result.Documents, stats)
	}

	return result, nil
}

// extractDocument appends the records and diagnostics of one document to
// result.
func (p *Pipeline) extractDocument(path string, result *Result) (DocumentStats, error) {
	stats := DocumentStats{Path: path}

	// =========================================================================
	// STEP 1: OPEN
	// =========================================================================

	doc, err := p.opener.Open(path)
	if err != nil {
		return stats, fmt.Errorf("document %s: %w", path, err)
	}
	defer doc.Close()

	stats.Pages = doc.NumPages()
	p.logger.Debug("Opened %s (%d pages)", path, stats.Pages)

	// =========================================================================
	// STEP 2: RESOLVE LOCATION
	// =========================================================================
	// The location is resolved once, before any line is read, so every record
	// of the document carries the same label.

	firstPage := ""
	if stats.Pages > 0 {
		firstPage, err = doc.PageText(1)
		if err != nil {
			return stats, fmt.Errorf("document %s: %w", path, err)
		}
	}

	loc, found := p.resolver.Resolve(location.Source{Path: path, FirstPageText: firstPage})
	if !found {
		loc = p.undefined
		d := types.Diagnostic{
			Kind:     types.KindMissingLocation,
			Document: path,
			Message:  fmt.Sprintf("no location found by %s strategy, using %s", p.resolver.Name(), p.undefined),
		}
		p.logger.Warn("%s", d.Error())
		result.Diagnostics = append(result.Diagnostics, d)
		stats.Diagnostics++
	}
	stats.Location = loc
	stats.LocationFound = found

	// =========================================================================
	// STEP 3: WALK PAGES
	// =========================================================================

	for page := 1; page <= stats.Pages; page++ {
		text := firstPage
		if page > 1 {
			text, err = doc.PageText(page)
			if err != nil {
				return stats, fmt.Errorf("document %s: %w", path, err)
			}
		}

		for i, raw := range strings.Split(text, "\n") {
			line := strings.TrimSpace(raw)
			if !p.tokenizer.IsDataRow(line) {
				continue
			}

			rec, d := p.parseLine(line, loc)
			if d != nil {
				d.Document = path
				d.Page = page
				d.LineNumber = i + 1
				p.logger.Warn("%s", d.Error())
				result.Diagnostics = append(result.Diagnostics, *d)
				stats.Diagnostics++
				continue
			}

			rec.Document = path
			rec.Page = page
			result.Records = append(result.Records, rec)
			stats.Records++
		}
	}

	p.logger.Info("Extracted %d record(s) from %s [%s]", stats.Records, path, loc)
	return stats, nil
}

// parseLine turns one data row into a RawRecord. A non-nil Diagnostic means
// the line must be skipped.
func (p *Pipeline) parseLine(line string, loc types.LocationKey) (types.RawRecord, *types.Diagnostic) {
	fields, err := p.tokenizer.Tokenize(line)
	if err != nil {
		return types.RawRecord{}, &types.Diagnostic{
			Kind:    types.KindMalformedLine,
			Line:    line,
			Message: err.Error(),
		}
	}

	rec := types.RawRecord{
		Code:        fields.Code,
		Description: fields.Description,
		Location:    loc,
	}

	numbers := []struct {
		name  string
		value string
		out   *float64
	}{
		{"quantity", fields.Quantity, &rec.Quantity},
		{"unit price", fields.UnitPrice, &rec.UnitPrice},
		{"total", fields.Total, &rec.Total},
	}

	for _, n := range numbers {
		v, err := p.numbers.Parse(n.value)
		if err != nil {
			return types.RawRecord{}, &types.Diagnostic{
				Kind:    types.KindInvalidNumber,
				Line:    line,
				Message: fmt.Sprintf("%s: %v", n.name, err),
			}
		}
		*n.out = v
	}

	return rec, nil
}
