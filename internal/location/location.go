// =============================================================================
// Inventory Consolidator - Location Resolution
// =============================================================================
//
// Every input document belongs to one branch. This module resolves the
// branch label (LocationKey) for a document. Two policies exist and are
// selected by configuration:
//
//   - marker   : scan the first page for "Local: <code> - <name>"
//   - filename : use the document's base name without extension
//
// MARKER QUIRK:
//   Some report generators print the keyword in bold by emitting every glyph
//   twice, so text extraction yields "LLooccaall::" instead of "Local:".
//   The marker pattern tolerates up to MaxGlyphRepeat copies of every glyph
//   of the keyword. The repeat count is configured per document source.
//
// =============================================================================

package location

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"github.com/ginjaninja78/inventory-consolidator/internal/types"
)

// Strategy names accepted in configuration.
const (
	StrategyMarker   = "marker"
	StrategyFilename = "filename"
)

// ErrUnknownStrategy is returned by New for an unrecognised strategy name.
var ErrUnknownStrategy = errors.New("unknown location strategy")

// Source is what a Resolver may inspect about a document.
type Source struct {
	// Path is the document path as given by the caller.
	Path string

	// FirstPageText is the extracted text of page 1, or "" for an empty
	// document.
	FirstPageText string
}

// Resolver determines the branch label of a document.
type Resolver interface {
	// Resolve returns the label and true, or "" and false when the
	// document carries no usable location.
	Resolve(src Source) (types.LocationKey, bool)

	// Name returns the strategy name.
	Name() string
}

// MarkerConfig configures the marker policy.
type MarkerConfig struct {
	// Keyword is the marker word printed before the location. Default: "Local"
	Keyword string

	// MaxGlyphRepeat is how many times each keyword glyph may repeat.
	// 1 matches only the plain keyword. Default: 2
	MaxGlyphRepeat int

	// Pattern replaces the keyword-derived expression. It must contain one
	// capture group holding "<code> - <name>".
	Pattern string
}

// New builds the Resolver for a strategy name.
func New(strategy string, marker MarkerConfig) (Resolver, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategyMarker:
		return NewMarkerResolver(marker)
	case StrategyFilename:
		return FilenameResolver{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (expected %q or %q)", ErrUnknownStrategy, strategy, StrategyMarker, StrategyFilename)
	}
}

// =============================================================================
// MARKER POLICY
// =============================================================================

// MarkerResolver finds the location marker in the first page text.
type MarkerResolver struct {
	re *regexp.Regexp
}

// NewMarkerResolver compiles the marker expression.
func NewMarkerResolver(cfg MarkerConfig) (*MarkerResolver, error) {
	expr := cfg.Pattern
	if expr == "" {
		expr = keywordPattern(cfg.Keyword, cfg.MaxGlyphRepeat)
	}

	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid marker pattern: %w", err)
	}
	if re.NumSubexp() < 1 {
		return nil, fmt.Errorf("marker pattern %q must have a capture group", expr)
	}

	return &MarkerResolver{re: re}, nil
}

// keywordPattern turns "Local" into `L{1,2}o{1,2}c{1,2}a{1,2}l{1,2}:{1,2}\s*(\d+\s*-\s*.+)`.
func keywordPattern(keyword string, repeat int) string {
	if keyword == "" {
		keyword = "Local"
	}
	if repeat <= 0 {
		repeat = 2
	}

	var b strings.Builder
	for _, r := range keyword + ":" {
		b.WriteString(regexp.QuoteMeta(string(r)))
		if repeat > 1 {
			fmt.Fprintf(&b, "{1,%d}", repeat)
		}
	}
	b.WriteString(`\s*(\d+\s*-\s*.+)`)
	return b.String()
}

// Name implements Resolver.
func (m *MarkerResolver) Name() string { return StrategyMarker }

// Resolve implements Resolver. The label is the last word after the last
// dash of the marker line, uppercased.
func (m *MarkerResolver) Resolve(src Source) (types.LocationKey, bool) {
	match := m.re.FindStringSubmatch(src.FirstPageText)
	if match == nil {
		return "", false
	}

	value := strings.TrimSpace(match[1])
	if i := strings.LastIndex(value, "-"); i >= 0 {
		value = strings.TrimSpace(value[i+1:])
	}

	words := strings.Fields(value)
	if len(words) == 0 {
		return "", false
	}

	return Normalize(words[len(words)-1]), true
}

// =============================================================================
// FILENAME POLICY
// =============================================================================

// FilenameResolver labels a document by its file name.
type FilenameResolver struct{}

// Name implements Resolver.
func (FilenameResolver) Name() string { return StrategyFilename }

// Resolve implements Resolver. "./entrada/Cruz_de_Salinas.pdf" -> "CRUZ_DE_SALINAS".
func (FilenameResolver) Resolve(src Source) (types.LocationKey, bool) {
	base := filepath.Base(src.Path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", false
	}
	return Normalize(name), true
}

// =============================================================================
// HELPERS
// =============================================================================

// Normalize composes the label to NFC and uppercases it, so "Petrolina" and
// "PETROLINA" land in the same column.
func Normalize(label string) types.LocationKey {
	// A Caser keeps state, so one is built per call.
	upper := cases.Upper(language.BrazilianPortuguese)
	return types.LocationKey(upper.String(norm.NFC.String(strings.TrimSpace(label))))
}
