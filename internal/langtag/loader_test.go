package langtag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	assert.True(t, p.Languages.Contains("ar-Arab"))
	assert.True(t, p.Languages.Contains("none"))
	assert.False(t, p.Languages.Contains("xx-Fake"))
	assert.True(t, p.EDMTypes.Contains("Text"))
	assert.True(t, p.EDMTypes.Contains("none"))
	assert.False(t, p.EDMTypes.Contains("book"))
	assert.True(t, p.HasTypes.Contains("Manuscript"))
}

func TestLoaderFallsBackToDefaults(t *testing.T) {
	l, err := NewLoader(t.TempDir())
	require.NoError(t, err)
	p, err := l.Load()
	require.NoError(t, err)
	assert.True(t, p.Languages.Contains("en"))
	assert.True(t, p.EDMTypes.Contains("Sound"))
}

func TestLoaderReadsConfiguredLists(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "edm_types.json"), []byte(`["Text","Hologram"]`), 0o644))

	l, err := NewLoader(dir)
	require.NoError(t, err)
	p, err := l.Load()
	require.NoError(t, err)
	assert.True(t, p.EDMTypes.Contains("Hologram"))
	assert.True(t, p.EDMTypes.Contains("none"))
	assert.False(t, p.EDMTypes.Contains("Sound"))
	// languages.json absent, defaults still apply
	assert.True(t, p.Languages.Contains("ar-Arab"))
}

func TestLoaderCachesParsedFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "has_types.json")
	require.NoError(t, os.WriteFile(path, []byte(`["Maps"]`), 0o644))

	l, err := NewLoader(dir)
	require.NoError(t, err)
	_, err = l.Load()
	require.NoError(t, err)

	// rewrite after first load; the cached parse must win
	require.NoError(t, os.WriteFile(path, []byte(`["Coins"]`), 0o644))
	p, err := l.Load()
	require.NoError(t, err)
	assert.True(t, p.HasTypes.Contains("Maps"))
	assert.False(t, p.HasTypes.Contains("Coins"))
}

func TestLoaderRejectsMalformedJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "languages.json"), []byte(`{not json`), 0o644))
	l, err := NewLoader(dir)
	require.NoError(t, err)
	_, err = l.Load()
	assert.Error(t, err)
}
