package utils

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var runTime = time.Date(2024, 1, 15, 14, 30, 22, 0, time.UTC)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))
}

func TestDiscoverInputFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "recife.pdf"))
	touch(t, filepath.Join(dir, "PETROLINA.PDF"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "sub", "nested.pdf"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.pdf"), 0755))

	fm := NewFileManager(dir, "")

	files, err := fm.DiscoverInputFiles("")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "PETROLINA.PDF"),
		filepath.Join(dir, "recife.pdf"),
	}, files)

	files, err = fm.DiscoverInputFiles("rec*.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "recife.pdf")}, files)

	_, err = fm.DiscoverInputFiles("[")
	assert.Error(t, err)

	files, err = fm.DiscoverInputFilesRecursive(".pdf")
	require.NoError(t, err)
	assert.Len(t, files, 3)
}

func TestDiscoverInputFiles_NoInputDir(t *testing.T) {
	files, err := NewFileManager("", "").DiscoverInputFiles("*.pdf")
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = NewFileManager(filepath.Join(t.TempDir(), "missing"), "").DiscoverInputFiles("*.pdf")
	assert.Error(t, err)
}

func TestEnsureDirectories(t *testing.T) {
	out := filepath.Join(t.TempDir(), "a", "b")
	require.NoError(t, NewFileManager("", out).EnsureDirectories())
	assert.True(t, FileExists(out))
}

func TestGenerateOutputFileName(t *testing.T) {
	name := GenerateOutputFileName("relatorio_estoque_{timestamp}_{short_uuid}", ".xlsx", runTime, nil)
	assert.Regexp(t, regexp.MustCompile(`^relatorio_estoque_20240115_143022_[0-9a-f]{8}\.xlsx$`), name)

	name = GenerateOutputFileName("{date}-{time}-{branch}.xlsx", ".xlsx", runTime, map[string]string{"branch": "RECIFE"})
	assert.Equal(t, "20240115-143022-RECIFE.xlsx", name)

	name = GenerateOutputFileName("{uuid}", ".xlsx", runTime, nil)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f-]{36}\.xlsx$`), name)

	a := GenerateOutputFileName("r_{short_uuid}", ".xlsx", runTime, nil)
	b := GenerateOutputFileName("r_{short_uuid}", ".xlsx", runTime, nil)
	assert.NotEqual(t, a, b)
}

func TestWriteErrorLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteErrorLog(nil, dir, runTime)
	require.NoError(t, err)
	assert.Empty(t, path)

	path, err = WriteErrorLog([]ErrorLogEntry{
		{FileName: "a.pdf", ErrorType: "malformed_line", ErrorMessage: "malformed line", PageNumber: 2, LineNumber: 7, LineText: "00000001 x"},
		{FileName: "b.pdf", ErrorType: "missing_location", ErrorMessage: "no location"},
	}, dir, runTime)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "diagnostics_20240115_143022.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Total Entries: 2")
	assert.Contains(t, content, "Page:           2")
	assert.Contains(t, content, "Line:           00000001 x")
	assert.Contains(t, content, "missing_location")
}

func TestWriteSummaryLog(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteSummaryLog(ProcessingSummary{
		StartTime:   runTime,
		EndTime:     runTime.Add(1500 * time.Millisecond),
		OutputFile:  "out/report.xlsx",
		Records:     3,
		Codes:       2,
		Locations:   []string{"A", "B"},
		Diagnostics: 1,
		Documents: []DocumentInfo{
			{InputFile: "a.pdf", Location: "A", LocationFound: true, Pages: 1, Records: 2},
			{InputFile: "b.pdf", Location: "UNDEFINED", Pages: 1, Records: 1, Diagnostics: 1},
		},
	}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "processing_summary_20240115_143022.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Report:         out/report.xlsx")
	assert.Contains(t, content, "Locations:          2 [A, B]")
	assert.Contains(t, content, "UNDEFINED (no marker)")
	assert.Contains(t, content, "Duration:       1.5s")
}

func TestWriteSummaryLog_NoData(t *testing.T) {
	path, err := WriteSummaryLog(ProcessingSummary{StartTime: runTime, EndTime: runTime, NoData: true}, t.TempDir())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "no data, no report written")
}
