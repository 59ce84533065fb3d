package indexer

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/codeindex/internal/embed"
	"github.com/mvp-joe/codeindex/internal/indexer/ierr"
	"github.com/mvp-joe/codeindex/internal/vectorstore"
)

var tracer = otel.Tracer("github.com/mvp-joe/codeindex/internal/indexer")

// endSpan records err (if any) onto span before ending it, so a failed
// stage shows up as an error span rather than a silently-closed one.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Pipeline orchestrates chunk -> batch -> embed -> upsert -> manifest for
// one run, full or incremental.
type Pipeline struct {
	Chunker  *Chunker
	Embedder embed.Client
	Store    vectorstore.Client
	Manifest *Manifest

	// ParallelFiles bounds concurrent chunk-stage work (default 4).
	ParallelFiles int
	// ParallelBatches bounds concurrent embed-stage calls (default 2).
	ParallelBatches int
	// BatchMaxChunks/BatchMaxBytes bound one embed batch (default 64 / 50KiB).
	BatchMaxChunks int
	BatchMaxBytes  int
}

// Defaults for the pipeline's concurrency and batching knobs.
const (
	DefaultParallelFiles   = 4
	DefaultParallelBatches = 2
	DefaultBatchMaxChunks  = 64
	DefaultBatchMaxBytes   = 50 * 1024
	upsertQueueCap         = 4 // backpressure cap between embed and upsert
)

// NewPipeline creates a pipeline with sensible default knobs.
func NewPipeline(chunker *Chunker, embedder embed.Client, store vectorstore.Client, manifest *Manifest) *Pipeline {
	return &Pipeline{
		Chunker:         chunker,
		Embedder:        embedder,
		Store:           store,
		Manifest:        manifest,
		ParallelFiles:   DefaultParallelFiles,
		ParallelBatches: DefaultParallelBatches,
		BatchMaxChunks:  DefaultBatchMaxChunks,
		BatchMaxBytes:   DefaultBatchMaxBytes,
	}
}

// RunStats summarizes one run for progress/telemetry purposes. RunID is
// an ephemeral correlation id (not content-addressed, unlike chunk IDs)
// used to tie the run's trace spans and log lines together.
type RunStats struct {
	RunID           string
	FilesProcessed  int
	FilesFailed     int
	ChunksEmbedded  int
	BatchesEmbedded int
	FilesDeleted    int
}

// ProgressFunc reports monotonically non-decreasing processedItems within
// a run.
type ProgressFunc func(processedItems, totalItems int, message string)

type fileChunks struct {
	fd     FileDescriptor
	chunks []Chunk
	err    error
}

type embeddedBatch struct {
	chunks  []Chunk
	vectors [][]float32
}

// Run executes one pipeline pass over toProcess (added+modified files)
// and deleted (relative paths no longer on disk). Manifest mutations are
// committed only if the run completes without a fatal vector-store
// error: a vector-store failure aborts the run with no manifest
// mutation, so a file untouched by a failed run gets reprocessed next
// run rather than silently skipped.
func (p *Pipeline) Run(ctx context.Context, toProcess []FileDescriptor, deleted []string, onProgress ProgressFunc) (stats *RunStats, err error) {
	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "pipeline.Run", trace.WithAttributes(attribute.String("run.id", runID)))
	defer func() { endSpan(span, err) }()

	if onProgress == nil {
		onProgress = func(int, int, string) {}
	}

	stats = &RunStats{RunID: runID}
	total := len(toProcess) + len(deleted)
	var processed int
	var progressMu sync.Mutex
	bump := func(message string) {
		progressMu.Lock()
		processed++
		onProgress(processed, total, message)
		progressMu.Unlock()
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Deletions: removed from the store first; each success is staged for
	// the final manifest commit, never applied eagerly.
	pendingDeletes := make([]string, 0, len(deleted))
	for _, relPath := range deleted {
		if err := p.Store.DeleteByFilePath(runCtx, relPath); err != nil {
			return stats, ierr.New(ierr.VectorStorePermanent, relPath, err)
		}
		pendingDeletes = append(pendingDeletes, relPath)
		stats.FilesDeleted++
		bump("deleted " + relPath)
	}

	if len(toProcess) == 0 {
		p.commit(pendingDeletes, nil)
		return stats, nil
	}

	chunkedCh := p.runChunkStage(runCtx, toProcess)

	var failedMu sync.Mutex
	failed := make(map[string]bool)
	remaining := make(map[string]int)
	hashes := make(map[string]string)
	var chunkMapMu sync.Mutex

	batchCh := make(chan []Chunk, p.ParallelBatches*2)
	go p.runBatchStage(chunkedCh, batchCh, remaining, hashes, &chunkMapMu, failed, &failedMu, stats, bump)

	upsertCh := make(chan embeddedBatch, upsertQueueCap)
	embedErrCh := make(chan error, 1)
	go p.runEmbedStage(runCtx, batchCh, upsertCh, failed, &failedMu, stats)

	pendingUpdates := make(map[string]string)
	var pendingMu sync.Mutex
	go func() {
		embedErrCh <- p.runUpsertStage(runCtx, upsertCh, remaining, hashes, &chunkMapMu, failed, &failedMu, pendingUpdates, &pendingMu, bump)
	}()

	if err := <-embedErrCh; err != nil {
		cancel()
		return stats, err
	}

	failedMu.Lock()
	for relPath := range failed {
		stats.FilesFailed++
		delete(pendingUpdates, relPath)
	}
	failedMu.Unlock()

	p.commit(pendingDeletes, pendingUpdates)
	stats.FilesProcessed = len(pendingUpdates)
	return stats, nil
}

// runChunkStage chunks files concurrently, bounded by ParallelFiles,
// sending each file's result to the returned channel in completion
// order (no cross-file ordering is promised). A
// per-file parse error is carried in its fileChunks result rather than
// aborting the group: the group itself always succeeds, since one
// file's ParseError must never cancel its siblings still chunking.
func (p *Pipeline) runChunkStage(ctx context.Context, files []FileDescriptor) <-chan fileChunks {
	out := make(chan fileChunks, len(files))
	g := new(errgroup.Group)
	g.SetLimit(p.ParallelFiles)

	for _, fd := range files {
		fd := fd
		g.Go(func() error {
			_, span := tracer.Start(ctx, "pipeline.chunkFile")
			chunks, err := p.Chunker.ChunkFile(fd)
			endSpan(span, err)
			out <- fileChunks{fd: fd, chunks: chunks, err: err}
			return nil
		})
	}

	go func() {
		g.Wait()
		close(out)
	}()

	return out
}

// runBatchStage is the single-goroutine accumulator (stage 2): it turns
// the stream of per-file chunks into embed batches capped at
// BatchMaxChunks chunks or BatchMaxBytes of text. remaining/hashes are
// also written by runUpsertStage once chunks start landing downstream,
// so every access goes through mapMu.
func (p *Pipeline) runBatchStage(
	in <-chan fileChunks,
	out chan<- []Chunk,
	remaining map[string]int,
	hashes map[string]string,
	mapMu *sync.Mutex,
	failed map[string]bool,
	failedMu *sync.Mutex,
	stats *RunStats,
	bump func(string),
) {
	defer close(out)

	var batch []Chunk
	var batchBytes int

	flush := func() {
		if len(batch) == 0 {
			return
		}
		out <- batch
		stats.BatchesEmbedded++
		batch = nil
		batchBytes = 0
	}

	for fc := range in {
		mapMu.Lock()
		hashes[fc.fd.RelPath] = fc.fd.ContentHash
		mapMu.Unlock()

		if fc.err != nil {
			failedMu.Lock()
			failed[fc.fd.RelPath] = true
			failedMu.Unlock()
			bump("skip " + fc.fd.RelPath)
			continue
		}

		if len(fc.chunks) == 0 {
			// No definitions found: the file is "done" with nothing to
			// embed, and its manifest entry can still advance.
			mapMu.Lock()
			remaining[fc.fd.RelPath] = 0
			mapMu.Unlock()
			bump("chunked " + fc.fd.RelPath)
			continue
		}

		mapMu.Lock()
		remaining[fc.fd.RelPath] = len(fc.chunks)
		mapMu.Unlock()
		for _, c := range fc.chunks {
			if len(batch) > 0 && (len(batch) >= p.BatchMaxChunks || batchBytes+len(c.Text) > p.BatchMaxBytes) {
				flush()
			}
			batch = append(batch, c)
			batchBytes += len(c.Text)
		}
		bump("chunked " + fc.fd.RelPath)
	}
	flush()
}

// runEmbedStage embeds batches with up to ParallelBatches calls in
// flight (stage 3). A batch that fails after retries is dropped: its
// files are marked failed so the manifest stage skips them, but the run
// continues.
func (p *Pipeline) runEmbedStage(
	ctx context.Context,
	in <-chan []Chunk,
	out chan<- embeddedBatch,
	failed map[string]bool,
	failedMu *sync.Mutex,
	stats *RunStats,
) {
	g := new(errgroup.Group)
	g.SetLimit(p.ParallelBatches)

	for batch := range in {
		batch := batch
		g.Go(func() error {
			_, span := tracer.Start(ctx, "pipeline.embedBatch")
			defer span.End()

			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Text
			}

			vectors, err := p.Embedder.Embed(ctx, texts)
			if err != nil {
				failedMu.Lock()
				for _, c := range batch {
					failed[c.RelPath] = true
				}
				failedMu.Unlock()
				return nil
			}

			stats.ChunksEmbedded += len(batch)
			select {
			case out <- embeddedBatch{chunks: batch, vectors: vectors}:
			case <-ctx.Done():
			}
			return nil
		})
	}

	g.Wait()
	close(out)
}

// runUpsertStage is the single-writer upsert stage (stage 4/5): it
// accumulates embedded chunks into upsert batches of at most
// vectorstore.UpsertBatchSize, and on success decrements each file's
// remaining-chunk counter, staging a manifest update once a file's
// counter reaches zero. A vector-store failure here is fatal and aborts
// the run.
func (p *Pipeline) runUpsertStage(
	ctx context.Context,
	in <-chan embeddedBatch,
	remaining map[string]int,
	hashes map[string]string,
	mapMu *sync.Mutex,
	failed map[string]bool,
	failedMu *sync.Mutex,
	pendingUpdates map[string]string,
	pendingMu *sync.Mutex,
	bump func(string),
) error {
	var points []vectorstore.Point

	flush := func() error {
		if len(points) == 0 {
			return nil
		}
		_, span := tracer.Start(ctx, "pipeline.upsert")
		err := p.Store.UpsertPoints(ctx, points)
		endSpan(span, err)
		points = nil
		return err
	}

	for eb := range in {
		for i, c := range eb.chunks {
			points = append(points, vectorstore.Point{
				ID:     c.ChunkID,
				Vector: eb.vectors[i],
				Payload: vectorstore.Payload{
					FilePath:    c.RelPath,
					StartLine:   c.StartLine,
					EndLine:     c.EndLine,
					CodeChunk:   c.Text,
					ContentHash: c.ContentHash,
				},
			})
			if len(points) >= vectorstore.UpsertBatchSize {
				if err := flush(); err != nil {
					return ierr.New(ierr.VectorStorePermanent, c.RelPath, err)
				}
			}
		}

		for _, c := range eb.chunks {
			mapMu.Lock()
			remaining[c.RelPath]--
			done := remaining[c.RelPath] == 0
			hash := hashes[c.RelPath]
			mapMu.Unlock()
			if done {
				failedMu.Lock()
				isFailed := failed[c.RelPath]
				failedMu.Unlock()
				if !isFailed {
					pendingMu.Lock()
					pendingUpdates[c.RelPath] = hash
					pendingMu.Unlock()
				}
				bump("embedded " + c.RelPath)
			}
		}
	}

	if err := flush(); err != nil {
		return ierr.New(ierr.VectorStorePermanent, "", err)
	}

	// Any file whose chunks all arrived with no chunks at all (zero
	// definitions) was already staged as "done" by the batch stage.
	mapMu.Lock()
	remainingSnapshot := make(map[string]int, len(remaining))
	for relPath, left := range remaining {
		remainingSnapshot[relPath] = left
	}
	hashesSnapshot := make(map[string]string, len(hashes))
	for relPath, hash := range hashes {
		hashesSnapshot[relPath] = hash
	}
	mapMu.Unlock()

	for relPath, left := range remainingSnapshot {
		if left == 0 {
			failedMu.Lock()
			isFailed := failed[relPath]
			failedMu.Unlock()
			if !isFailed {
				pendingMu.Lock()
				if _, ok := pendingUpdates[relPath]; !ok {
					pendingUpdates[relPath] = hashesSnapshot[relPath]
				}
				pendingMu.Unlock()
			}
		}
	}

	return nil
}

// commit applies staged manifest mutations and persists them atomically.
// Called only when a run completes without a fatal error.
func (p *Pipeline) commit(deletes []string, updates map[string]string) {
	for _, relPath := range deletes {
		p.Manifest.Delete(relPath)
	}
	for relPath, hash := range updates {
		p.Manifest.Set(relPath, hash)
	}
	if len(deletes) > 0 || len(updates) > 0 {
		p.Manifest.Save()
	}
}
