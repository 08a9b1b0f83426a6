package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/inventory-consolidator/internal/aggregation"
	"github.com/ginjaninja78/inventory-consolidator/internal/config"
	"github.com/ginjaninja78/inventory-consolidator/internal/location"
	"github.com/ginjaninja78/inventory-consolidator/internal/pdftext"
	"github.com/ginjaninja78/inventory-consolidator/internal/report"
	"github.com/ginjaninja78/inventory-consolidator/internal/types"
)

type memoryDoc []string

func (d memoryDoc) NumPages() int { return len(d) }
func (d memoryDoc) Close() error  { return nil }

func (d memoryDoc) PageText(n int) (string, error) {
	if n < 1 || n > len(d) {
		return "", fmt.Errorf("page %d out of range", n)
	}
	return d[n-1], nil
}

func memoryOpener(docs map[string][]string) pdftext.Opener {
	return pdftext.OpenerFunc(func(path string) (pdftext.Document, error) {
		pages, ok := docs[path]
		if !ok {
			return nil, fmt.Errorf("open %s: no such file", path)
		}
		return memoryDoc(pages), nil
	})
}

var branchDocs = map[string][]string{
	"a.pdf": {"LLooccaall:: 1 - Branch A\n00012345 Widget X 10 2,50 25,00\n00000009 Broken 1,00"},
	"b.pdf": {"Local: 2 - Branch B\n00012345 Widget X 5 3,00 15,00"},
}

func newConverter(t *testing.T, mutate func(*config.MainConfig), docs map[string][]string) (*Converter, string) {
	t.Helper()
	cfg := config.Default()
	cfg.OutputDir = filepath.Join(t.TempDir(), "output")
	cfg.LocationStrategy = location.StrategyMarker
	if mutate != nil {
		mutate(cfg)
	}

	c, err := New(cfg, Options{
		Opener: memoryOpener(docs),
		Now:    func() time.Time { return time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC) },
	})
	require.NoError(t, err)
	return c, cfg.OutputDir
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names
}

func TestRun_TwoBranches(t *testing.T) {
	c, outDir := newConverter(t, nil, branchDocs)
	c.AddInput("a.pdf")
	c.AddInput("b.pdf")

	result := c.Run()
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.False(t, result.NoData)
	require.NotEmpty(t, result.OutputFile)
	assert.Equal(t, outDir, filepath.Dir(result.OutputFile))

	assert.Equal(t, ProcessingStats{
		Documents:   2,
		Records:     2,
		Diagnostics: 1,
		Codes:       1,
		Locations:   2,
	}, result.Stats)
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, types.KindMalformedLine, result.Diagnostics[0].Kind)

	// The diagnostics log is on by default.
	assert.NotEmpty(t, result.ErrorLogFile)
	assert.FileExists(t, result.ErrorLogFile)
	assert.Empty(t, result.RawDumpFile)
	assert.Empty(t, result.SummaryFile)

	contents, err := report.Read(result.OutputFile, aggregation.Labels{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Código", "DESCRIÇÃO", "QUANT A", "QUANT B", "PREÇO", "PREÇO TOTAL"}, contents.Header)
	require.Len(t, contents.Rows, 1)
	assert.Equal(t, "00012345", contents.Text(0, "Código"))
	total, err := contents.Number(0, "PREÇO TOTAL")
	require.NoError(t, err)
	assert.Equal(t, 45.0, total)
	assert.Contains(t, contents.Banner, "RELATÓRIO GERAL DE ESTOQUE    DATA: 15/01/2024")
}

func TestRun_InputOrderDecidesColumns(t *testing.T) {
	c, _ := newConverter(t, nil, branchDocs)
	c.AddInput("b.pdf")
	c.AddInput("a.pdf")

	result := c.Run()
	require.True(t, result.Success)

	contents, err := report.Read(result.OutputFile, aggregation.Labels{})
	require.NoError(t, err)
	assert.Equal(t, []types.LocationKey{"B", "A"}, contents.Locations())
}

func TestRun_ConfigInputsComeFirst(t *testing.T) {
	c, _ := newConverter(t, func(cfg *config.MainConfig) { cfg.Inputs = []string{"b.pdf"} }, branchDocs)
	c.AddInput("a.pdf")
	assert.Equal(t, []string{"b.pdf", "a.pdf"}, c.Inputs())
}

func TestRun_NoDataWritesNothing(t *testing.T) {
	c, outDir := newConverter(t, nil, map[string][]string{
		"empty.pdf":  {},
		"header.pdf": {"Local: 1 - Recife\nRelatório sem itens"},
	})
	c.AddInput("empty.pdf")
	c.AddInput("header.pdf")

	result := c.Run()
	assert.True(t, result.Success)
	assert.True(t, result.NoData)
	assert.NoError(t, result.Error)
	assert.Empty(t, result.OutputFile)
	assert.Empty(t, listDir(t, outDir))
}

func TestRun_NoInputs(t *testing.T) {
	c, outDir := newConverter(t, nil, nil)

	result := c.Run()
	assert.True(t, result.NoData)
	assert.Empty(t, listDir(t, outDir))
}

func TestRun_UnreadableDocumentFailsRun(t *testing.T) {
	c, outDir := newConverter(t, nil, branchDocs)
	c.AddInput("a.pdf")
	c.AddInput("missing.pdf")

	result := c.Run()
	assert.False(t, result.Success)
	require.Error(t, result.Error)
	assert.Contains(t, result.Error.Error(), "missing.pdf")
	assert.Empty(t, result.OutputFile)
	assert.Empty(t, listDir(t, outDir))
}

func TestRun_SideFiles(t *testing.T) {
	c, outDir := newConverter(t, func(cfg *config.MainConfig) {
		cfg.Report.RawDump = true
		cfg.Report.WriteSummary = true
		cfg.Report.IncludeTotalQuantity = true
		cfg.Report.FileNameFormat = "estoque_{date}"
	}, branchDocs)
	c.AddInput("a.pdf")
	c.AddInput("b.pdf")

	result := c.Run()
	require.True(t, result.Success)

	assert.Equal(t, filepath.Join(outDir, "estoque_20240115.xlsx"), result.OutputFile)
	assert.Equal(t, filepath.Join(outDir, "raw_records_20240115_143022.csv"), result.RawDumpFile)
	assert.Equal(t, filepath.Join(outDir, "processing_summary_20240115_143022.txt"), result.SummaryFile)
	assert.Equal(t, filepath.Join(outDir, "diagnostics_20240115_143022.txt"), result.ErrorLogFile)
	assert.ElementsMatch(t, []string{
		"estoque_20240115.xlsx",
		"raw_records_20240115_143022.csv",
		"processing_summary_20240115_143022.txt",
		"diagnostics_20240115_143022.txt",
	}, listDir(t, outDir))

	contents, err := report.Read(result.OutputFile, aggregation.Labels{})
	require.NoError(t, err)
	qty, err := contents.Number(0, "QTD TOTAL")
	require.NoError(t, err)
	assert.Equal(t, 15.0, qty)
}

func TestRun_ErrorLogDisabled(t *testing.T) {
	c, _ := newConverter(t, func(cfg *config.MainConfig) { cfg.Report.WriteErrorLog = false }, branchDocs)
	c.AddInput("a.pdf")

	result := c.Run()
	require.True(t, result.Success)
	assert.Empty(t, result.ErrorLogFile)
	assert.Equal(t, 1, result.Stats.Diagnostics)
}

func TestRun_MissingMarkerColumn(t *testing.T) {
	c, _ := newConverter(t, func(cfg *config.MainConfig) { cfg.Marker.UndefinedLabel = "SEM LOCAL" }, map[string][]string{
		"x.pdf": {"00000001 Item 2 1,00 2,00"},
	})
	c.AddInput("x.pdf")

	result := c.Run()
	require.True(t, result.Success)
	assert.False(t, result.Documents[0].LocationFound)

	contents, err := report.Read(result.OutputFile, aggregation.Labels{})
	require.NoError(t, err)
	assert.Equal(t, []types.LocationKey{"SEM LOCAL"}, contents.Locations())
}

func TestRun_IsRepeatable(t *testing.T) {
	c, _ := newConverter(t, nil, branchDocs)
	c.AddInput("a.pdf")
	c.AddInput("b.pdf")

	first := c.Run()
	second := c.Run()
	require.True(t, first.Success)
	require.True(t, second.Success)
	assert.Equal(t, first.Stats, second.Stats)
	assert.NotEqual(t, first.OutputFile, second.OutputFile)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.LocationStrategy = "ocr"

	_, err := New(cfg, Options{})
	assert.ErrorIs(t, err, location.ErrUnknownStrategy)
}

func TestRun_StrictValidation(t *testing.T) {
	docs := map[string][]string{
		"a.pdf": {"Local: 1 - Branch A\n00000001 Returned item -2 1,00 -2,00"},
	}

	t.Run("warnings are logged by default", func(t *testing.T) {
		c, _ := newConverter(t, nil, docs)
		c.AddInput("a.pdf")

		result := c.Run()
		require.True(t, result.Success)
		assert.NotEmpty(t, result.OutputFile)
		assert.Equal(t, 1, result.Stats.ValidationErrors)
	})

	t.Run("strict run fails without writing", func(t *testing.T) {
		c, outDir := newConverter(t, func(cfg *config.MainConfig) { cfg.Validation.Strict = true }, docs)
		c.AddInput("a.pdf")

		result := c.Run()
		assert.False(t, result.Success)
		assert.ErrorIs(t, result.Error, ErrValidationFailed)
		assert.Contains(t, result.Error.Error(), "1 warning(s)")
		assert.Empty(t, result.OutputFile)
		assert.Empty(t, listDir(t, outDir))
	})
}

func TestRun_RequireDescription(t *testing.T) {
	docs := map[string][]string{
		"a.pdf": {"Local: 1 - Branch A\n00000001 2 1,00 2,00"},
	}

	c, _ := newConverter(t, func(cfg *config.MainConfig) {
		cfg.Validation.RequireDescription = true
		cfg.Validation.Strict = true
	}, docs)
	c.AddInput("a.pdf")

	result := c.Run()
	assert.ErrorIs(t, result.Error, ErrValidationFailed)
	assert.Equal(t, 1, result.Stats.ValidationErrors)

	lenient, _ := newConverter(t, func(cfg *config.MainConfig) { cfg.Validation.Strict = true }, docs)
	lenient.AddInput("a.pdf")
	assert.True(t, lenient.Run().Success)
}

func TestRun_BannerCanBeDisabled(t *testing.T) {
	c, _ := newConverter(t, func(cfg *config.MainConfig) { cfg.Report.Subtitle = "" }, branchDocs)
	c.AddInput("a.pdf")

	result := c.Run()
	require.True(t, result.Success)

	contents, err := report.Read(result.OutputFile, aggregation.Labels{})
	require.NoError(t, err)
	assert.Empty(t, contents.Banner)
	assert.Equal(t, "Código", contents.Header[0])
}
