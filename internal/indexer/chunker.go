package indexer

import (
	"log"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mvp-joe/codeindex/internal/indexer/ierr"
	"github.com/mvp-joe/codeindex/internal/indexer/parsers"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// Chunker turns one file into a set of code chunks (component C).
// MinComponentLines is a field here, never a package-level mutable, per
// the Design Notes on avoiding a process-wide MIN_COMPONENT_LINES.
type Chunker struct {
	Registry          *parsers.Registry
	MinComponentLines int
	MaxChunkBytes     int
}

// NewChunker creates a chunker with the default limits (MinComponentLines
// 4, MaxChunkBytes 16KiB).
func NewChunker(registry *parsers.Registry) *Chunker {
	return &Chunker{
		Registry:          registry,
		MinComponentLines: parsers.DefaultMinComponentLines,
		MaxChunkBytes:     MaxChunkBytes,
	}
}

// ChunkFile reads, parses, and chunks one file. A parse failure for an
// individual file is logged and yields zero chunks; the caller continues
// the run.
func (c *Chunker) ChunkFile(fd FileDescriptor) ([]Chunk, error) {
	defs, lines, contentHash, err := c.FileDefinitions(fd)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for _, d := range defs {
		text := strings.Join(lines[d.StartLine:d.EndLine+1], "\n")
		chunks = append(chunks, c.splitOversized(fd.RelPath, d.StartLine, text, contentHash)...)
	}

	return chunks, nil
}

// FileDefinitions reads and parses fd, returning its definition records
// plus the file's line array and content hash. It is the shared path
// behind ChunkFile and the on-demand "definitions for a file" query
// surfaced to external tooling.
func (c *Chunker) FileDefinitions(fd FileDescriptor) (defs []parsers.Definition, lines []string, contentHash string, err error) {
	entry, ok, err := c.Registry.Lookup("." + fd.Ext)
	if err != nil {
		return nil, nil, "", ierr.New(ierr.ParseError, fd.RelPath, err)
	}
	isMarkdown := fd.Ext == "md" || fd.Ext == "markdown"
	if !ok && !isMarkdown {
		return nil, nil, "", nil
	}

	raw, err := os.ReadFile(fd.AbsPath)
	if err != nil {
		return nil, nil, "", ierr.New(ierr.IOError, fd.RelPath, err)
	}

	source := toValidUTF8(raw)
	contentHash = hashBytes(source)
	lines = strings.Split(string(source), "\n")

	if isMarkdown {
		defs = parsers.ExtractMarkdownDefinitions(lines)
		return defs, lines, contentHash, nil
	}

	defs, err = c.extractTreeSitter(entry, source, lines)
	if err != nil {
		log.Printf("chunker: parse error for %s: %v", fd.RelPath, err)
		return nil, lines, contentHash, nil
	}
	return defs, lines, contentHash, nil
}

func (c *Chunker) extractTreeSitter(entry *parsers.Entry, source []byte, lines []string) ([]parsers.Definition, error) {
	parser := sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(entry.Language()); err != nil {
		return nil, err
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, nil
	}
	defer tree.Close()

	return parsers.ExtractDefinitions(entry, tree, source, lines, c.MinComponentLines), nil
}

// splitOversized breaks a chunk exceeding MaxChunkBytes at line
// boundaries, preserving per-piece line-range metadata.
func (c *Chunker) splitOversized(relPath string, startLine int, text string, contentHash string) []Chunk {
	if len(text) <= c.MaxChunkBytes {
		return []Chunk{newChunk(relPath, startLine, startLine+strings.Count(text, "\n"), text, contentHash)}
	}

	var chunks []Chunk
	lines := strings.Split(text, "\n")
	pieceStart := 0
	var b strings.Builder
	lineOffset := startLine

	flush := func(pieceEnd int) {
		if b.Len() == 0 {
			return
		}
		chunks = append(chunks, newChunk(relPath, lineOffset+pieceStart, lineOffset+pieceEnd, b.String(), contentHash))
		b.Reset()
	}

	for i, line := range lines {
		candidate := b.Len() + len(line) + 1
		if b.Len() > 0 && candidate > c.MaxChunkBytes {
			flush(i - 1)
			pieceStart = i
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	flush(len(lines) - 1)

	return chunks
}

func newChunk(relPath string, startLine, endLine int, text string, contentHash string) Chunk {
	return Chunk{
		RelPath:     relPath,
		StartLine:   startLine,
		EndLine:     endLine,
		Text:        text,
		ContentHash: contentHash,
		ChunkID:     chunkID(relPath, startLine, endLine, contentHash),
	}
}

// toValidUTF8 decodes b as UTF-8, substituting the replacement character
// for malformed sequences rather than aborting. golang.org/x/text/encoding
// targets non-UTF-8 charsets, not repair of malformed UTF-8, so the
// stdlib unicode/utf8 decode loop is the appropriate tool here.
func toValidUTF8(b []byte) []byte {
	if utf8.Valid(b) {
		return b
	}

	var out []byte
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size <= 1 {
			out = append(out, utf8.RuneError)
			if size == 0 {
				break
			}
			b = b[1:]
			continue
		}
		out = append(out, b[:size]...)
		b = b[size:]
	}
	return out
}
