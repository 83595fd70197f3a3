package rag

import (
	"context"

	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

// Generator produces a grounded response from a query and retrieved context.
// It is nil when no generation backend is configured.
type Generator interface {
	GenerateRAG(ctx context.Context, query, docContext string) (string, error)
}

// QueryResult is the outcome of one retrieval-augmented query.
type QueryResult struct {
	Query         string
	Response      string
	RetrievedDocs []string
	Scores        []float64
	ContextUsed   string
}

// Service ties the document store, the retriever, and the optional generation
// backend together.
type Service struct {
	store       *Store
	gen         Generator
	defaultTopK int
}

// NewService creates the RAG service. gen may be nil, in which case every
// query answers with the deterministic fallback.
func NewService(store *Store, gen Generator, defaultTopK int) *Service {
	if defaultTopK <= 0 {
		defaultTopK = 3
	}
	return &Service{store: store, gen: gen, defaultTopK: defaultTopK}
}

// Query retrieves the topK most relevant documents and generates a grounded
// response. Generation backend failures are recovered into the fallback
// answer, never returned to the caller.
func (s *Service) Query(ctx context.Context, query string, topK int) (*QueryResult, error) {
	if topK <= 0 {
		topK = s.defaultTopK
	}

	ranked := Retrieve(query, s.store.Snapshot(), topK)
	if len(ranked) == 0 {
		return &QueryResult{
			Query:         query,
			Response:      NoDocumentsAnswer,
			RetrievedDocs: []string{},
			Scores:        []float64{},
			ContextUsed:   "",
		}, nil
	}

	docs := make([]string, 0, len(ranked))
	scores := make([]float64, 0, len(ranked))
	for _, sd := range ranked {
		docs = append(docs, sd.Tagged())
		scores = append(scores, sd.Score)
	}
	docContext := BuildContext(ranked)

	response := ""
	if s.gen != nil {
		generated, err := s.gen.GenerateRAG(ctx, query, docContext)
		if err != nil {
			logx.Warn().Err(err).Str("query", query).Msg("generation failed, falling back to retrieved context")
		} else {
			response = generated
		}
	}
	if response == "" {
		response = FallbackAnswer(docContext)
	}

	return &QueryResult{
		Query:         query,
		Response:      response,
		RetrievedDocs: docs,
		Scores:        scores,
		ContextUsed:   docContext,
	}, nil
}

// Reload re-reads the docs directory, keeping the old corpus on failure.
func (s *Service) Reload(ctx context.Context) (int, error) {
	return s.store.Reload(ctx)
}

// Size returns the current corpus size.
func (s *Service) Size() int {
	return s.store.Size()
}

// Dir returns the docs directory path.
func (s *Service) Dir() string {
	return s.store.Dir()
}

// Snapshot returns the current corpus.
func (s *Service) Snapshot() []Document {
	return s.store.Snapshot()
}

// Configured reports whether a generation backend is attached.
func (s *Service) Configured() bool {
	return s.gen != nil
}
