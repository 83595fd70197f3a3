// Package training implements the few-shot training workflow: uploaded CSV
// files of question/answer pairs are loaded into an in-memory example set
// that augments the question answering signature.
package training

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/khttp/DSPyBridge/internal/agent/model"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

const defaultLoadConcurrency = 4

// Store holds the few-shot example set loaded from *.csv files in the
// train-data directory. Train swaps the set atomically; a failed load keeps
// the previous examples in place.
type Store struct {
	dir         string
	concurrency int

	mu        sync.RWMutex
	examples  []model.Exemplar
	files     []string
	trainedAt time.Time
}

// NewStore creates a store over the given train-data directory. The
// directory is created on first use if it does not exist.
func NewStore(dir string, concurrency int) *Store {
	if concurrency <= 0 {
		concurrency = defaultLoadConcurrency
	}
	return &Store{dir: dir, concurrency: concurrency}
}

// Dir returns the train-data directory path.
func (s *Store) Dir() string {
	return s.dir
}

// Size returns the number of loaded examples.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.examples)
}

// Examples returns the current example set. The returned slice is never
// mutated by the store.
func (s *Store) Examples() []model.Exemplar {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.examples
}

// Files returns the names of the CSV files behind the current example set.
func (s *Store) Files() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.files
}

// Lookup finds a stored answer whose question matches exactly, ignoring case
// and surrounding whitespace.
func (s *Store) Lookup(question string) (string, bool) {
	needle := strings.ToLower(strings.TrimSpace(question))
	if needle == "" {
		return "", false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ex := range s.examples {
		if strings.ToLower(strings.TrimSpace(ex.Question)) == needle {
			return ex.Answer, true
		}
	}
	return "", false
}

// SaveUpload stores an uploaded CSV under the train-data directory. The name
// is reduced to its base so uploads cannot escape the directory.
func (s *Store) SaveUpload(name string, r io.Reader) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "", fmt.Errorf("upload file name is empty")
	}
	if !strings.EqualFold(filepath.Ext(name), ".csv") {
		return "", fmt.Errorf("only .csv uploads are accepted, got %q", name)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create train-data directory: %w", err)
	}

	dst := filepath.Join(s.dir, name)
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	logx.Info().Str("file", name).Msg("training data uploaded")
	return name, nil
}

// Train loads every *.csv file in the train-data directory and swaps the
// example set on success. Unreadable or malformed files are logged and
// skipped, never aborting the whole load.
func (s *Store) Train(ctx context.Context) (examples int, files []string, err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return 0, nil, fmt.Errorf("create train-data directory: %w", err)
	}

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, nil, fmt.Errorf("read train-data directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	perFile := make([][]model.Exemplar, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			exs, err := readExamplesCSV(filepath.Join(s.dir, name))
			if err != nil {
				logx.Warn().Err(err).Str("file", name).Msg("skipping unreadable training file")
				return nil
			}
			perFile[i] = exs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	var loaded []model.Exemplar
	var processed []string
	for i, exs := range perFile {
		if len(exs) == 0 {
			continue
		}
		loaded = append(loaded, exs...)
		processed = append(processed, names[i])
		logx.Info().Str("file", names[i]).Int("examples", len(exs)).Msg("processed training file")
	}

	s.mu.Lock()
	s.examples = loaded
	s.files = processed
	s.trainedAt = time.Now()
	s.mu.Unlock()

	return len(loaded), processed, nil
}

// readExamplesCSV parses question,answer rows. A header row is recognized and
// skipped; rows with a missing question or answer are dropped.
func readExamplesCSV(path string) ([]model.Exemplar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var examples []model.Exemplar
	first := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) < 2 {
			continue
		}
		question := strings.TrimSpace(record[0])
		answer := strings.TrimSpace(record[1])
		if first {
			first = false
			if strings.EqualFold(question, "question") && strings.EqualFold(answer, "answer") {
				continue
			}
		}
		if question == "" || answer == "" {
			continue
		}
		examples = append(examples, model.Exemplar{Question: question, Answer: answer})
	}
	return examples, nil
}
