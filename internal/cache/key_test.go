package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceHash_Format(t *testing.T) {
	t.Parallel()

	hash, err := WorkspaceHash("/home/user/project")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{16}$`, hash)
}

func TestWorkspaceHash_Deterministic(t *testing.T) {
	t.Parallel()

	h1, err := WorkspaceHash("/home/user/project")
	require.NoError(t, err)
	h2, err := WorkspaceHash("/home/user/project")
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestWorkspaceHash_DifferentPathsDiffer(t *testing.T) {
	t.Parallel()

	h1, err := WorkspaceHash("/home/user/project-a")
	require.NoError(t, err)
	h2, err := WorkspaceHash("/home/user/project-b")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestWorkspaceHash_RelativeVsAbsolute(t *testing.T) {
	t.Parallel()

	rel, err := WorkspaceHash(".")
	require.NoError(t, err)
	assert.Regexp(t, `^[0-9a-f]{16}$`, rel)
}

func TestManifestDir(t *testing.T) {
	t.Parallel()

	dir, err := ManifestDir("/var/cache/codeindex", "/home/user/project")
	require.NoError(t, err)

	hash, err := WorkspaceHash("/home/user/project")
	require.NoError(t, err)

	assert.Equal(t, "/var/cache/codeindex/"+hash, dir)
}

func TestCollectionName(t *testing.T) {
	t.Parallel()

	name, err := CollectionName("/home/user/project")
	require.NoError(t, err)

	hash, err := WorkspaceHash("/home/user/project")
	require.NoError(t, err)

	assert.Equal(t, "ws-"+hash, name)
}

func TestCollectionName_DifferentWorkspacesDiffer(t *testing.T) {
	t.Parallel()

	n1, err := CollectionName("/home/user/project-a")
	require.NoError(t, err)
	n2, err := CollectionName("/home/user/project-b")
	require.NoError(t, err)

	assert.NotEqual(t, n1, n2)
}
