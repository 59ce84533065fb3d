package indexer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/codeindex/internal/indexer/parsers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, dir, name, content string) FileDescriptor {
	t.Helper()
	abs := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(abs, []byte(content), 0o644))
	return FileDescriptor{
		AbsPath: abs,
		RelPath: name,
		Ext:     strings.TrimPrefix(filepath.Ext(name), "."),
	}
}

const goFixture = `package sample

func Greet(name string) string {
	msg := "hello " + name
	return msg
}

func add(a, b int) int {
	return a + b
}
`

func TestChunkFile_GoFunctions(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fd := writeTempFile(t, dir, "sample.go", goFixture)

	c := NewChunker(parsers.NewRegistry())
	chunks, err := c.ChunkFile(fd)
	require.NoError(t, err)

	require.Len(t, chunks, 1, "add is below MinComponentLines")
	assert.Equal(t, 2, chunks[0].StartLine)
	assert.Contains(t, chunks[0].Text, "func Greet")
	assert.NotEmpty(t, chunks[0].ChunkID)
}

func TestChunkFile_ChunkIDStableAcrossRuns(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fd := writeTempFile(t, dir, "sample.go", goFixture)

	c := NewChunker(parsers.NewRegistry())
	first, err := c.ChunkFile(fd)
	require.NoError(t, err)
	second, err := c.ChunkFile(fd)
	require.NoError(t, err)

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ChunkID, second[0].ChunkID)
}

func TestChunkFile_UnknownExtensionYieldsNoChunks(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fd := writeTempFile(t, dir, "styles.swift", "struct Foo {}\n")

	c := NewChunker(parsers.NewRegistry())
	chunks, err := c.ChunkFile(fd)
	require.NoError(t, err)
	assert.Nil(t, chunks)
}

func TestChunkFile_MarkdownHeadings(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fd := writeTempFile(t, dir, "readme.md", "# Title\nintro\n\n## Section\nbody\n")

	c := NewChunker(parsers.NewRegistry())
	chunks, err := c.ChunkFile(fd)
	require.NoError(t, err)

	require.Len(t, chunks, 2, "markdown headings are exempt from MinComponentLines")
}

const scalaFixture = `package sample

class Greeter {
  def greet(name: String): String = {
    val msg = "hello " + name
    msg
  }
}

object Greeter {
  def apply(): Greeter = new Greeter
}
`

func TestChunkFile_ScalaClassAndObject(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fd := writeTempFile(t, dir, "sample.scala", scalaFixture)

	c := NewChunker(parsers.NewRegistry())
	chunks, err := c.ChunkFile(fd)
	require.NoError(t, err)

	require.NotEmpty(t, chunks)
	var sawClass bool
	for _, chunk := range chunks {
		if strings.Contains(chunk.Text, "class Greeter") {
			sawClass = true
		}
	}
	assert.True(t, sawClass, "expected a chunk covering the class definition")
}

func TestChunkFile_DisjointLineRanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fd := writeTempFile(t, dir, "sample.go", goFixture)

	c := NewChunker(parsers.NewRegistry())
	c.MinComponentLines = 1
	chunks, err := c.ChunkFile(fd)
	require.NoError(t, err)

	for i := 0; i < len(chunks); i++ {
		for j := i + 1; j < len(chunks); j++ {
			a, b := chunks[i], chunks[j]
			disjoint := a.EndLine < b.StartLine || b.EndLine < a.StartLine
			assert.True(t, disjoint, "chunks %d and %d overlap", i, j)
		}
	}
}
