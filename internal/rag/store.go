package rag

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	errx "github.com/khttp/DSPyBridge/internal/core/error"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

const defaultLoadConcurrency = 4

// Store holds the retrieval corpus loaded from *.txt files in a directory.
// Reload swaps the corpus only when a fresh load succeeds, so readers never
// observe a partially cleared corpus.
type Store struct {
	dir         string
	concurrency int

	mu       sync.RWMutex
	docs     []Document
	loadedAt time.Time
}

// NewStore creates a store over the given docs directory. The directory is
// created on the first load if it does not exist.
func NewStore(dir string, concurrency int) *Store {
	if concurrency <= 0 {
		concurrency = defaultLoadConcurrency
	}
	return &Store{dir: dir, concurrency: concurrency}
}

// Dir returns the docs directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Size returns the number of documents in the current corpus.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Snapshot returns the current corpus. The returned slice is never mutated by
// the store, so callers may read it without holding a lock.
func (s *Store) Snapshot() []Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs
}

// Load populates the corpus from disk. Equivalent to Reload; named separately
// for the startup call site.
func (s *Store) Load(ctx context.Context) (int, error) {
	return s.Reload(ctx)
}

// Reload re-reads the docs directory and swaps the corpus on success. When the
// load fails the previous corpus stays in place and the error is returned.
func (s *Store) Reload(ctx context.Context) (int, error) {
	docs, err := s.loadFromDisk(ctx)
	if err != nil {
		logx.Error().Err(err).Str("dir", s.dir).Msg("document reload failed, keeping previous corpus")
		return 0, err
	}

	s.mu.Lock()
	s.docs = docs
	s.loadedAt = time.Now()
	s.mu.Unlock()

	logx.Info().Int("count", len(docs)).Str("dir", s.dir).Msg("loaded documents for retrieval")
	return len(docs), nil
}

// loadFromDisk reads all *.txt files in the directory. Unreadable and empty
// files are skipped, and the resulting corpus keeps directory listing order.
// When nothing loads, the placeholder corpus is returned.
func (s *Store) loadFromDisk(ctx context.Context) ([]Document, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		if err := os.MkdirAll(s.dir, 0o755); err != nil {
			return nil, errx.CorpusLoad(fmt.Errorf("create docs directory: %w", err))
		}
		logx.Info().Str("dir", s.dir).Msg("created docs directory")
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errx.CorpusLoad(fmt.Errorf("read docs directory: %w", err))
	}

	var names []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".txt") {
			names = append(names, entry.Name())
		}
	}

	// read files concurrently but keep listing order via the index
	results := make([]*Document, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b, err := os.ReadFile(filepath.Join(s.dir, name))
			if err != nil {
				logx.Warn().Err(err).Str("file", name).Msg("could not load document, skipping")
				return nil
			}
			body := strings.TrimSpace(string(b))
			if body == "" {
				return nil
			}
			results[i] = &Document{ID: name, Body: body}
			logx.Debug().Str("file", name).Msg("loaded document")
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errx.CorpusLoad(err)
	}

	docs := make([]Document, 0, len(results))
	for _, d := range results {
		if d != nil {
			docs = append(docs, *d)
		}
	}

	if len(docs) == 0 {
		logx.Info().Str("dir", s.dir).Msg("no documents found, using sample documents")
		return placeholderDocuments(), nil
	}
	return docs, nil
}
