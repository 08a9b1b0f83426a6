package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/inventory-consolidator/internal/config"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0644))
}

func TestCollectInputs_Order(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "RECIFE.PDF"))
	touch(t, filepath.Join(dir, "petrolina.pdf"))
	touch(t, filepath.Join(dir, "notes.txt"))

	cfg := config.Default()
	cfg.InputDir = dir
	cfg.Inputs = []string{"extra/CARUARU.pdf"}

	inputs, err := collectInputs(cfg, []string{"manual.pdf", filepath.Join(dir, "petrolina.pdf")}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"extra/CARUARU.pdf",
		filepath.Join(dir, "RECIFE.PDF"),
		filepath.Join(dir, "petrolina.pdf"),
		"manual.pdf",
	}, inputs)
}

func TestCollectInputs_Recursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.pdf"))
	touch(t, filepath.Join(dir, "norte", "b.pdf"))

	cfg := config.Default()
	cfg.InputDir = dir

	flat, err := collectInputs(cfg, nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf")}, flat)

	deep, err := collectInputs(cfg, nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.pdf"), filepath.Join(dir, "norte", "b.pdf")}, deep)
}

func TestCollectInputs_NoInputDir(t *testing.T) {
	cfg := config.Default()

	inputs, err := collectInputs(cfg, []string{"a.pdf", "./a.pdf"}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.pdf"}, inputs)
}

func TestCollectInputs_MissingInputDir(t *testing.T) {
	cfg := config.Default()
	cfg.InputDir = filepath.Join(t.TempDir(), "missing")

	_, err := collectInputs(cfg, nil, false)
	assert.Error(t, err)
}
