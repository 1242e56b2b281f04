package usecase

import (
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ragctx/internal/adapter/chunker"
	"ragctx/internal/adapter/fs"
	"ragctx/internal/domain"
)

// ProgressFunc is called after each file read with the number of files
// processed so far.
type ProgressFunc func(processed, total int, path string)

// Indexer turns a file list into chunk documents.
type Indexer struct {
	chunker  *chunker.WindowChunker
	readFile func(string) (string, error)
	workers  int
	log      zerolog.Logger
	progress ProgressFunc
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithWorkers bounds the number of concurrent file reads.
func WithWorkers(n int) IndexerOption {
	return func(ix *Indexer) {
		if n > 0 {
			ix.workers = n
		}
	}
}

func WithProgress(fn ProgressFunc) IndexerOption {
	return func(ix *Indexer) { ix.progress = fn }
}

func WithLogger(log zerolog.Logger) IndexerOption {
	return func(ix *Indexer) { ix.log = log }
}

// WithReader replaces the file reader, mostly for tests.
func WithReader(read func(string) (string, error)) IndexerOption {
	return func(ix *Indexer) { ix.readFile = read }
}

// NewIndexer creates a new indexer.
func NewIndexer(chk *chunker.WindowChunker, opts ...IndexerOption) *Indexer {
	ix := &Indexer{
		chunker:  chk,
		readFile: fs.ReadFile,
		workers:  8,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

type fileText struct {
	relPath string
	text    string
	ok      bool
}

// Index reads every file and chunks it. Unreadable files are skipped. Ids
// run from 0 in file-then-chunk order regardless of read completion order.
func (ix *Indexer) Index(root string, files []string) []domain.Document {
	texts := make([]fileText, len(files))

	var (
		mu        sync.Mutex
		processed int
	)

	var g errgroup.Group
	g.SetLimit(ix.workers)

	for i, path := range files {
		g.Go(func() error {
			texts[i] = ix.read(root, path)

			if ix.progress != nil {
				mu.Lock()
				processed++
				ix.progress(processed, len(files), path)
				mu.Unlock()
			}
			return nil
		})
	}
	// Reads never return errors; failures are recorded as skipped files.
	_ = g.Wait()

	docs := make([]domain.Document, 0, len(files))
	id := 0
	skipped := 0
	for _, ft := range texts {
		if !ft.ok {
			skipped++
			continue
		}
		for _, part := range ix.chunker.Chunk(ft.text) {
			docs = append(docs, domain.Document{ID: id, Path: ft.relPath, Text: part})
			id++
		}
	}

	ix.log.Debug().
		Int("files", len(files)).
		Int("skipped", skipped).
		Int("chunks", len(docs)).
		Msg("indexed files")

	return docs
}

func (ix *Indexer) read(root, path string) fileText {
	rel := RelPath(root, path)

	text, err := ix.readFile(path)
	if err != nil {
		ix.log.Debug().Err(err).Str("path", rel).Msg("skipping unreadable file")
		return fileText{relPath: rel}
	}
	return fileText{relPath: rel, text: text, ok: true}
}

// RelPath returns path relative to root with forward slashes. Paths that
// cannot be made relative are returned unchanged.
func RelPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
