// =============================================================================
// Inventory Consolidator - PDF Text Source
// =============================================================================
//
// This module turns PDF pages into line-oriented text. Each visual row of a
// page becomes one line; rows are ordered top to bottom and the text pieces
// of a row left to right.
//
// The rest of the program only sees the Document and Opener interfaces, so
// the extraction pipeline can be exercised without real PDF files.
//
// =============================================================================

package pdftext

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Document is an opened, paged text source.
type Document interface {
	// NumPages returns the number of pages.
	NumPages() int

	// PageText returns the text of a 1-based page with rows separated by "\n".
	PageText(page int) (string, error)

	// Close releases the underlying file.
	Close() error
}

// Opener opens documents by path.
type Opener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(path string) (Document, error)

// Open implements Opener.
func (f OpenerFunc) Open(path string) (Document, error) { return f(path) }

// ErrUnreadablePage is returned when the content of a page cannot be
// interpreted.
var ErrUnreadablePage = errors.New("unreadable page")

// NewOpener returns the PDF-backed Opener.
func NewOpener() Opener {
	return OpenerFunc(openPDF)
}

// =============================================================================
// PDF IMPLEMENTATION
// =============================================================================

type pdfDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func openPDF(path string) (Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", path, err)
	}
	return &pdfDocument{file: f, reader: r}, nil
}

func (d *pdfDocument) NumPages() int {
	return d.reader.NumPage()
}

// PageText reads the text of page n. The library reports malformed content
// streams by panicking; the panic is returned as an error.
func (d *pdfDocument) PageText(n int) (text string, err error) {
	if n < 1 || n > d.reader.NumPage() {
		return "", fmt.Errorf("page %d out of range 1..%d", n, d.reader.NumPage())
	}

	p := d.reader.Page(n)
	if p.V.IsNull() {
		return "", nil
	}

	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: page %d: %v", ErrUnreadablePage, n, r)
		}
	}()

	return joinRows(groupRows(p.Content().Text)), nil
}

func (d *pdfDocument) Close() error {
	return d.file.Close()
}

// =============================================================================
// ROW ASSEMBLY
// =============================================================================

// groupRows collects the text pieces of a page into rows sharing a
// baseline.
func groupRows(texts []pdf.Text) pdf.Rows {
	var rows pdf.Rows
	byPosition := make(map[int64]*pdf.Row)
	for _, t := range texts {
		pos := int64(math.Round(t.Y))
		row, ok := byPosition[pos]
		if !ok {
			row = &pdf.Row{Position: pos}
			byPosition[pos] = row
			rows = append(rows, row)
		}
		row.Content = append(row.Content, t)
	}
	return rows
}

// joinRows renders rows top to bottom. PDF y coordinates grow upwards, so
// a larger position is higher on the page.
func joinRows(rows pdf.Rows) string {
	ordered := make([]*pdf.Row, 0, len(rows))
	for _, row := range rows {
		if row != nil {
			ordered = append(ordered, row)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Position > ordered[j].Position
	})

	lines := make([]string, 0, len(ordered))
	for _, row := range ordered {
		lines = append(lines, joinTexts(row.Content))
	}
	return strings.Join(lines, "\n")
}

// joinTexts concatenates the pieces of one row, inserting a space where the
// pieces are visually separated.
func joinTexts(texts []pdf.Text) string {
	pieces := make([]pdf.Text, len(texts))
	copy(pieces, texts)
	sort.SliceStable(pieces, func(i, j int) bool { return pieces[i].X < pieces[j].X })

	var b strings.Builder
	for i, t := range pieces {
		if i > 0 && needsSpace(pieces[i-1], t, b.String()) {
			b.WriteByte(' ')
		}
		b.WriteString(t.S)
	}
	return b.String()
}

// glyphWidth approximates the advance of one glyph of a monospaced font as
// a fraction of the font size.
const glyphWidth = 0.6

// needsSpace decides whether prev and next are separate words. When the
// extractor reports geometry, a gap wider than a quarter em separates words;
// without geometry every piece is treated as its own word.
func needsSpace(prev, next pdf.Text, sofar string) bool {
	if endsWithSpace(sofar) || startsWithSpace(next.S) {
		return false
	}

	size := prev.FontSize
	if size <= 0 {
		return true
	}

	width := prev.W
	if width <= 0 {
		width = float64(utf8.RuneCountInString(prev.S)) * size * glyphWidth
	}
	return next.X-(prev.X+width) > size*0.25
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && unicode.IsSpace(r)
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r != utf8.RuneError && unicode.IsSpace(r)
}
