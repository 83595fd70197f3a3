package training

import (
	"context"
	"fmt"
	"io"

	"github.com/khttp/DSPyBridge/internal/agent/model"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

// NotTrainedAnswer is returned by Predict when nothing matches and no
// generation backend is configured.
const NotTrainedAnswer = "No trained answer matches this question and no generation backend is configured."

// Answerer runs the question answering signature with few-shot exemplars.
// It is nil when no generation backend is configured.
type Answerer interface {
	AnswerWithExamples(ctx context.Context, question, questionContext string, examples []model.Exemplar) (string, error)
}

// Service answers questions with the loaded example set: an exact match is
// answered directly, everything else goes through the QA signature with up
// to maxExamples exemplar turns.
type Service struct {
	store       *Store
	llm         Answerer
	maxExamples int
}

func NewService(store *Store, llm Answerer, maxExamples int) *Service {
	if maxExamples <= 0 {
		maxExamples = 8
	}
	return &Service{store: store, llm: llm, maxExamples: maxExamples}
}

// Train reloads the example set from the train-data directory.
func (s *Service) Train(ctx context.Context) (examples int, files []string, err error) {
	return s.store.Train(ctx)
}

// Upload stores an uploaded CSV file.
func (s *Service) Upload(name string, r io.Reader) (string, error) {
	return s.store.SaveUpload(name, r)
}

// Size returns the number of loaded examples.
func (s *Service) Size() int {
	return s.store.Size()
}

// Predict answers a question from the trained example set. matched reports
// whether the answer came straight from a stored example without a model
// call.
func (s *Service) Predict(ctx context.Context, question string) (answer string, matched bool, err error) {
	if s.store.Size() == 0 {
		return "", false, fmt.Errorf("no training data loaded, call /train first")
	}

	if stored, ok := s.store.Lookup(question); ok {
		logx.Debug().Str("question", question).Msg("exact training match, skipping model call")
		return stored, true, nil
	}

	if s.llm == nil {
		return NotTrainedAnswer, false, nil
	}

	exemplars := s.store.Examples()
	if len(exemplars) > s.maxExamples {
		exemplars = exemplars[:s.maxExamples]
	}
	answer, err = s.llm.AnswerWithExamples(ctx, question, "", exemplars)
	if err != nil {
		return "", false, err
	}
	return answer, false, nil
}
