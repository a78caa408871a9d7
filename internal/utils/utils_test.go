package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataDir(t *testing.T) {
	pr, err := NewPathResolver("predict-test", "dictionary.fst")
	require.NoError(t, err)

	dir := t.TempDir()
	assert.Equal(t, dir, pr.GetDataDir(dir), "missing marker falls back to the given path")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "dictionary.fst"), []byte("x"), 0o644))
	assert.Equal(t, dir, pr.GetDataDir(dir))

	diag := pr.DiagnosePathIssues(dir)
	assert.Equal(t, dir, diag["resolved_data_dir"])
	candidates := diag["data_dir_candidates"].([]map[string]any)
	require.Len(t, candidates, 1)
	assert.Equal(t, true, candidates[0]["is_valid"])
}

func TestTOMLRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "predict.toml")
	require.NoError(t, os.WriteFile(path, []byte("[engine]\nmax_words = 10\npage_size = \"big\"\n[keys]\nword_mode = \"q\"\n"), 0o644))

	data, err := ParseTOMLWithRecovery(path)
	require.NoError(t, err)
	engine, ok := ExtractSection(data, "engine")
	require.True(t, ok)

	n, ok := ExtractInt64(engine, "max_words")
	assert.True(t, ok)
	assert.Equal(t, 10, n)
	_, ok = ExtractInt64(engine, "page_size")
	assert.False(t, ok)

	keys, ok := ExtractSection(data, "keys")
	require.True(t, ok)
	s, ok := ExtractString(keys, "word_mode")
	assert.True(t, ok)
	assert.Equal(t, "q", s)

	_, ok = ExtractSection(data, "data")
	assert.False(t, ok)
}

func TestCheckDirStatus(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")
	result := CheckDirStatus(dir)
	assert.True(t, result.Exists)
	assert.True(t, result.Writable)
	assert.True(t, FileExists(dir))

	path := filepath.Join(dir, "out.toml")
	require.NoError(t, SaveTOMLFile(map[string]int{"n": 1}, path))
	assert.True(t, FileExists(path))
	assert.True(t, filepath.IsAbs(GetAbsolutePath("relative.toml")))
}
