package extraction

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/inventory-consolidator/internal/location"
	"github.com/ginjaninja78/inventory-consolidator/internal/pdftext"
	"github.com/ginjaninja78/inventory-consolidator/internal/pdftext/pdftexttest"
	"github.com/ginjaninja78/inventory-consolidator/internal/types"
)

// fakeDoc serves pages from memory.
type fakeDoc struct {
	pages  []string
	closed *bool
}

func (d fakeDoc) NumPages() int { return len(d.pages) }

func (d fakeDoc) PageText(n int) (string, error) {
	if n < 1 || n > len(d.pages) {
		return "", fmt.Errorf("page %d out of range", n)
	}
	return d.pages[n-1], nil
}

func (d fakeDoc) Close() error {
	if d.closed != nil {
		*d.closed = true
	}
	return nil
}

// fakeOpener maps paths to page texts.
func fakeOpener(docs map[string][]string) pdftext.Opener {
	return pdftext.OpenerFunc(func(path string) (pdftext.Document, error) {
		pages, ok := docs[path]
		if !ok {
			return nil, fmt.Errorf("no such file")
		}
		return fakeDoc{pages: pages}, nil
	})
}

func newMarkerPipeline(t *testing.T, docs map[string][]string) *Pipeline {
	t.Helper()
	r, err := location.NewMarkerResolver(location.MarkerConfig{})
	require.NoError(t, err)
	return New(Options{Opener: fakeOpener(docs), Resolver: r})
}

func TestExtract_TwoBranches(t *testing.T) {
	p := newMarkerPipeline(t, map[string][]string{
		"a.pdf": {"LLooccaall:: 1 - Branch A\nCódigo Descrição Qtd Preço Total\n00012345 Widget X 10 2,50 25,00"},
		"b.pdf": {"Local: 2 - Branch B\n00012345 Widget X 5 3,00 15,00\nTOTAL GERAL 40,00"},
	})

	res, err := p.Extract([]string{"a.pdf", "b.pdf"})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Empty(t, res.Diagnostics)

	assert.Equal(t, types.RawRecord{
		Code:        "00012345",
		Description: "Widget X",
		Location:    "A",
		Quantity:    10,
		UnitPrice:   2.5,
		Total:       25,
		Document:    "a.pdf",
		Page:        1,
	}, res.Records[0])
	assert.Equal(t, types.LocationKey("B"), res.Records[1].Location)
	assert.Equal(t, 5.0, res.Records[1].Quantity)

	assert.Equal(t, []types.LocationKey{"A", "B"}, res.Locations())
	require.Len(t, res.Documents, 2)
	assert.Equal(t, DocumentStats{Path: "a.pdf", Location: "A", LocationFound: true, Pages: 1, Records: 1}, res.Documents[0])
}

func TestExtract_BrokenLinesBecomeDiagnostics(t *testing.T) {
	p := newMarkerPipeline(t, map[string][]string{
		"a.pdf": {
			"Local: 1 - Recife\n00000001 Good 1 1,00 1,00\n00000002 Short 1,00",
			"00000003 Bad qty x 1,00 1,00\n00000004 Also good 2 1.000,50 2.001,00",
		},
	})

	res, err := p.Extract([]string{"a.pdf"})
	require.NoError(t, err)

	require.Len(t, res.Records, 2)
	assert.Equal(t, "00000001", res.Records[0].Code)
	assert.Equal(t, "00000004", res.Records[1].Code)
	assert.Equal(t, 1000.5, res.Records[1].UnitPrice)
	assert.Equal(t, 2, res.Records[1].Page)

	require.Len(t, res.Diagnostics, 2)
	assert.Equal(t, types.KindMalformedLine, res.Diagnostics[0].Kind)
	assert.Equal(t, 1, res.Diagnostics[0].Page)
	assert.Equal(t, 3, res.Diagnostics[0].LineNumber)
	assert.Equal(t, types.KindInvalidNumber, res.Diagnostics[1].Kind)
	assert.Equal(t, 2, res.Diagnostics[1].Page)
	assert.Equal(t, "a.pdf", res.Diagnostics[1].Document)
	assert.Contains(t, res.Diagnostics[1].Message, "quantity")

	assert.Equal(t, 2, res.Documents[0].Diagnostics)
}

func TestExtract_MissingMarkerUsesUndefinedLabel(t *testing.T) {
	p := newMarkerPipeline(t, map[string][]string{
		"x.pdf": {"Relatório\n00000001 Item 1 1,00 1,00"},
	})

	res, err := p.Extract([]string{"x.pdf"})
	require.NoError(t, err)

	require.Len(t, res.Records, 1)
	assert.Equal(t, DefaultUndefinedLabel, res.Records[0].Location)
	require.Len(t, res.Diagnostics, 1)
	assert.Equal(t, types.KindMissingLocation, res.Diagnostics[0].Kind)
	assert.False(t, res.Documents[0].LocationFound)
}

func TestExtract_CustomUndefinedLabel(t *testing.T) {
	r, err := location.NewMarkerResolver(location.MarkerConfig{})
	require.NoError(t, err)
	p := New(Options{
		Opener:         fakeOpener(map[string][]string{"x.pdf": {"00000001 Item 1 1,00 1,00"}}),
		Resolver:       r,
		UndefinedLabel: "SEM LOCAL",
	})

	res, err := p.Extract([]string{"x.pdf"})
	require.NoError(t, err)
	assert.Equal(t, types.LocationKey("SEM LOCAL"), res.Records[0].Location)
}

func TestExtract_FilenameStrategy(t *testing.T) {
	p := New(Options{Opener: fakeOpener(map[string][]string{
		"in/Petrolina.pdf": {"Local: 1 - Ignored\n00000001 Item 1 1,00 1,00"},
	})})

	res, err := p.Extract([]string{"in/Petrolina.pdf"})
	require.NoError(t, err)
	assert.Equal(t, types.LocationKey("PETROLINA"), res.Records[0].Location)
	assert.Empty(t, res.Diagnostics)
}

func TestExtract_EmptyDocumentsContributeNothing(t *testing.T) {
	p := New(Options{Opener: fakeOpener(map[string][]string{
		"empty.pdf":  {},
		"blank.pdf":  {""},
		"header.pdf": {"Relatório Geral\nSem itens"},
	})})

	res, err := p.Extract([]string{"empty.pdf", "blank.pdf", "header.pdf"})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Empty(t, res.Locations())
	assert.Len(t, res.Documents, 3)
	assert.Equal(t, 0, res.Documents[0].Pages)
}

func TestExtract_OpenFailureIsFatal(t *testing.T) {
	p := New(Options{Opener: fakeOpener(map[string][]string{
		"a.pdf": {"00000001 Item 1 1,00 1,00"},
	})})

	res, err := p.Extract([]string{"a.pdf", "missing.pdf"})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "missing.pdf")
}

func TestExtract_PageFailureIsFatal(t *testing.T) {
	pageErr := errors.New("corrupt stream")
	opener := pdftext.OpenerFunc(func(path string) (pdftext.Document, error) {
		return brokenDoc{err: pageErr}, nil
	})

	_, err := New(Options{Opener: opener}).Extract([]string{"a.pdf"})
	assert.ErrorIs(t, err, pageErr)
}

func TestExtract_MalformedPDFPageIsFatal(t *testing.T) {
	good := pdftexttest.WriteFile(t, "RECIFE.pdf", pdftexttest.Lines("00000001 Widget 10 2,50 25,00"))
	bad := pdftexttest.WriteFile(t, "PETROLINA.pdf",
		"BT /F1 10 Tf (00000002 Gadget 5 3,00 15,00) Tj 1 Tm (x) Tj ET\n",
	)

	result, err := New(Options{}).Extract([]string{good, bad})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, pdftext.ErrUnreadablePage)
	assert.Contains(t, err.Error(), bad)

	// The readable document alone still extracts.
	result, err = New(Options{}).Extract([]string{good})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	assert.Equal(t, types.LocationKey("RECIFE"), result.Records[0].Location)
}

func TestExtract_ClosesDocuments(t *testing.T) {
	closed := false
	opener := pdftext.OpenerFunc(func(path string) (pdftext.Document, error) {
		return fakeDoc{pages: []string{"00000001 Item 1 1,00 1,00"}, closed: &closed}, nil
	})

	_, err := New(Options{Opener: opener}).Extract([]string{"a.pdf"})
	require.NoError(t, err)
	assert.True(t, closed)
}

type brokenDoc struct{ err error }

func (d brokenDoc) NumPages() int                { return 1 }
func (d brokenDoc) PageText(int) (string, error) { return "", d.err }
func (d brokenDoc) Close() error                 { return nil }
