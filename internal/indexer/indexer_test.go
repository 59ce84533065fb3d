package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndexer(t *testing.T, root string) *Indexer {
	t.Helper()
	ix, err := New(Options{
		WorkspaceRoot: root,
		CacheRoot:     t.TempDir(),
	})
	require.NoError(t, err)
	return ix
}

func TestIndexer_DiffHint_AddedModifiedDeleted(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "unchanged.go"), []byte("package a\nfunc F() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "modified.go"), []byte("package a\nfunc G() {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "added.go"), []byte("package a\nfunc H() {}\n"), 0o644))

	ix := newTestIndexer(t, root)

	manifest := &Manifest{path: filepath.Join(t.TempDir(), "manifest"), entries: map[string]string{}}
	unchangedFD, err := DescribeFile(root, filepath.Join(root, "unchanged.go"))
	require.NoError(t, err)
	manifest.Set("unchanged.go", unchangedFD.ContentHash)
	manifest.Set("modified.go", "stale-hash")
	manifest.Set("deleted.go", "whatever")

	hint := []string{
		filepath.Join(root, "unchanged.go"),
		filepath.Join(root, "modified.go"),
		filepath.Join(root, "added.go"),
		filepath.Join(root, "deleted.go"), // no longer exists on disk
	}

	diff := ix.diffHint(hint, manifest)

	assert.Equal(t, []string{"added.go"}, diff.Added)
	assert.Equal(t, []string{"modified.go"}, diff.Modified)
	assert.Equal(t, []string{"deleted.go"}, diff.Deleted)
}

func TestIndexer_DiffHint_IgnoresUntrackedExtensions(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "image.png"), []byte("binary"), 0o644))

	ix := newTestIndexer(t, root)
	manifest := &Manifest{path: filepath.Join(t.TempDir(), "manifest"), entries: map[string]string{}}

	diff := ix.diffHint([]string{filepath.Join(root, "image.png")}, manifest)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Modified)
	assert.Empty(t, diff.Deleted)
}

func TestIndexer_DiffHint_DeduplicatesRepeatedPaths(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "added.go"), []byte("package a\n"), 0o644))

	ix := newTestIndexer(t, root)
	manifest := &Manifest{path: filepath.Join(t.TempDir(), "manifest"), entries: map[string]string{}}

	hint := []string{filepath.Join(root, "added.go"), filepath.Join(root, "added.go")}
	diff := ix.diffHint(hint, manifest)

	assert.Equal(t, []string{"added.go"}, diff.Added)
}
