package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_LookupKnownExtension(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, ok, err := r.Lookup(".go")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, entry)
	assert.Equal(t, "go", entry.Name)
	assert.False(t, entry.JSXLike)
	assert.NotNil(t, entry.Language())
	assert.NotNil(t, entry.Query())
}

func TestRegistry_LookupUnknownExtension(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, ok, err := r.Lookup(".swift")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, entry)
}

func TestRegistry_LookupIsMemoized(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	first, ok, err := r.Lookup(".py")
	require.NoError(t, err)
	require.True(t, ok)

	second, ok, err := r.Lookup(".py")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Same(t, first, second)
}

func TestRegistry_TSXIsJSXLike(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	entry, ok, err := r.Lookup(".tsx")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, entry.JSXLike)
}

func TestRegistry_ConcurrentLookup(t *testing.T) {
	t.Parallel()

	r := NewRegistry()
	done := make(chan *Entry, 8)
	for i := 0; i < 8; i++ {
		go func() {
			entry, _, err := r.Lookup(".rs")
			require.NoError(t, err)
			done <- entry
		}()
	}

	first := <-done
	for i := 1; i < 8; i++ {
		entry := <-done
		assert.Same(t, first, entry)
	}
}

func TestSupportedExtensions_IncludesFixedSet(t *testing.T) {
	t.Parallel()

	exts := SupportedExtensions()
	assert.Contains(t, exts, ".go")
	assert.Contains(t, exts, ".md")
	assert.Contains(t, exts, ".swift")
	assert.Len(t, exts, 40)
}
