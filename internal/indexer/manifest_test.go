package indexer

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifest_LoadMissingFileIsEmpty(t *testing.T) {
	t.Parallel()

	m, err := LoadManifest(filepath.Join(t.TempDir(), "manifest"))
	require.NoError(t, err)
	assert.Equal(t, 0, m.Len())
}

func TestManifest_SaveAndReload(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest")
	m, err := LoadManifest(path)
	require.NoError(t, err)

	m.Set("a.go", "hash-a")
	m.Set("b.go", "hash-b")
	require.NoError(t, m.Save())

	reloaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.Len())

	hash, ok := reloaded.Get("a.go")
	require.True(t, ok)
	assert.Equal(t, "hash-a", hash)
}

func TestManifest_DeleteThenSave(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest")
	m, err := LoadManifest(path)
	require.NoError(t, err)

	m.Set("a.go", "hash-a")
	m.Delete("a.go")
	require.NoError(t, m.Save())

	reloaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 0, reloaded.Len())
}

func TestManifest_Diff(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest")
	m, err := LoadManifest(path)
	require.NoError(t, err)

	m.Set("unchanged.go", "h1")
	m.Set("modified.go", "h2-old")
	m.Set("deleted.go", "h3")

	scan := map[string]string{
		"unchanged.go": "h1",
		"modified.go":  "h2-new",
		"added.go":     "h4",
	}

	diff := m.Diff(scan)

	assert.Equal(t, []string{"added.go"}, diff.Added)
	assert.Equal(t, []string{"modified.go"}, diff.Modified)
	assert.Equal(t, []string{"deleted.go"}, diff.Deleted)
}

func TestManifest_DiffEmptyScanDeletesEverything(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manifest")
	m, err := LoadManifest(path)
	require.NoError(t, err)

	m.Set("a.go", "h1")
	m.Set("b.go", "h2")

	diff := m.Diff(map[string]string{})
	assert.ElementsMatch(t, []string{"a.go", "b.go"}, diff.Deleted)
	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Modified)
}
