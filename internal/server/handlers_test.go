package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khttp/DSPyBridge/internal/agent/model"
	"github.com/khttp/DSPyBridge/internal/config"
	errx "github.com/khttp/DSPyBridge/internal/core/error"
	"github.com/khttp/DSPyBridge/internal/rag"
	"github.com/khttp/DSPyBridge/internal/training"
)

type fakeLLM struct {
	chatResponse string
	answer       string
	reasoning    string
	agentResult  *model.AgentResult
	err          error
}

func (f *fakeLLM) Chat(_ context.Context, conversationID, _ string) (string, string, error) {
	if conversationID == "" {
		conversationID = "generated-id"
	}
	return f.chatResponse, conversationID, f.err
}

func (f *fakeLLM) Answer(_ context.Context, _, _ string) (string, error) {
	return f.answer, f.err
}

func (f *fakeLLM) Reason(_ context.Context, _, _ string) (string, string, error) {
	return f.answer, f.reasoning, f.err
}

func (f *fakeLLM) RunAgent(_ context.Context, _ model.AgentInput) (*model.AgentResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.agentResult, nil
}

func (f *fakeLLM) ModelName() string { return "fake-model" }

type testEnv struct {
	server   *Server
	docsDir  string
	trainDir string
}

func newTestEnv(t *testing.T, llm LLM, docs map[string]string) *testEnv {
	t.Helper()
	docsDir := t.TempDir()
	for name, body := range docs {
		require.NoError(t, os.WriteFile(filepath.Join(docsDir, name), []byte(body), 0o644))
	}

	store := rag.NewStore(docsDir, 2)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	trainDir := t.TempDir()
	trainingSvc := training.NewService(training.NewStore(trainDir, 2), nil, 8)

	srv, err := New(Config{
		Server:      config.ServerConfig{AllowedOrigins: "*"},
		DefaultTopK: 3,
		MaxTopK:     10,
		RAG:         rag.NewService(store, nil, 3),
		LLM:         llm,
		Training:    trainingSvc,
	})
	require.NoError(t, err)
	return &testEnv{server: srv, docsDir: docsDir, trainDir: trainDir}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealthReportsConfiguration(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[HealthResponse](t, rec)
	assert.Equal(t, "healthy", body.Status)
	assert.False(t, body.LLMConfigured)
	assert.Equal(t, "Not configured", body.ModelProvider)
	assert.NotEmpty(t, body.Timestamp)
}

func TestChatFallbackWithoutBackend(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/chat", ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[ChatResponse](t, rec)
	assert.Contains(t, body.Response, "hello")
	assert.Contains(t, body.Response, "no generation backend is configured")
	assert.Equal(t, fallbackModelUsed, body.ModelUsed)
}

func TestChatFallbackGeneratesConversationID(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodPost, "/chat", ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[ChatResponse](t, rec)
	assert.NotEmpty(t, body.ConversationID)

	rec = env.do(t, http.MethodPost, "/chat", ChatRequest{Message: "hello", ConversationID: "conv-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody[ChatResponse](t, rec)
	assert.Equal(t, "conv-1", body.ConversationID)
}

func TestChatWithBackend(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{chatResponse: "hi there"}, nil)
	rec := env.do(t, http.MethodPost, "/chat", ChatRequest{Message: "hello"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[ChatResponse](t, rec)
	assert.Equal(t, "hi there", body.Response)
	assert.Equal(t, "generated-id", body.ConversationID)
	assert.Equal(t, "fake-model", body.ModelUsed)
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/chat", ChatRequest{Message: "   "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.NotEmpty(t, body.Error)
}

func TestQuestionFallbackWithoutBackend(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/question", QuestionRequest{Question: "why?"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[QuestionResponse](t, rec)
	assert.Equal(t, notConfiguredAnswer, body.Answer)
}

func TestReasoningReturnsBothSections(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{answer: "4", reasoning: "2+2=4"}, nil)
	rec := env.do(t, http.MethodPost, "/reasoning", QuestionRequest{Question: "2+2?"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[QuestionResponse](t, rec)
	assert.Equal(t, "4", body.Answer)
	assert.Equal(t, "2+2=4", body.Reasoning)
}

func TestQuestionBackendFailureReturns502(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{err: errx.GenerationFailure(errors.New("boom"))}, nil)
	rec := env.do(t, http.MethodPost, "/question", QuestionRequest{Question: "why?"})
	require.Equal(t, http.StatusBadGateway, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, errx.GenerationFailedMessage, body.Error)
	assert.Equal(t, "why?", body.Query)
}

func TestAgentFallbackWithoutBackend(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/agent", AgentRequest{Message: "weather in Paris"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[AgentResponse](t, rec)
	assert.Equal(t, notConfiguredAgent, body.Response)
	assert.Empty(t, body.ToolCalls)
}

func TestAgentReportsToolCalls(t *testing.T) {
	env := newTestEnv(t, &fakeLLM{agentResult: &model.AgentResult{
		Response:  "sunny, 25 degrees",
		ToolsUsed: []string{"get_weather"},
	}}, nil)
	rec := env.do(t, http.MethodPost, "/agent", AgentRequest{Message: "weather in Paris"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[AgentResponse](t, rec)
	assert.Equal(t, "sunny, 25 degrees", body.Response)
	assert.Equal(t, []string{"get_weather"}, body.ToolCalls)
}

func TestRAGReturnsRankedDocuments(t *testing.T) {
	env := newTestEnv(t, nil, map[string]string{
		"cats.txt": "the cat sat on the mat",
		"dogs.txt": "dogs bark loudly",
	})
	rec := env.do(t, http.MethodPost, "/rag", RAGRequest{Query: "cat mat", TopK: 2})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[RAGResponse](t, rec)
	assert.Equal(t, "cat mat", body.Query)
	require.Len(t, body.RetrievedDocs, 1)
	assert.Contains(t, body.RetrievedDocs[0], "cats.txt")
	require.Len(t, body.Scores, 1)
	assert.Greater(t, body.Scores[0], 0.0)
	assert.True(t, strings.HasPrefix(body.Response, "Based on the retrieved documents: "))
}

func TestRAGNoMatches(t *testing.T) {
	env := newTestEnv(t, nil, map[string]string{
		"dogs.txt": "dogs bark loudly",
	})
	rec := env.do(t, http.MethodPost, "/rag", RAGRequest{Query: "quantum entanglement"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[RAGResponse](t, rec)
	assert.Equal(t, "No relevant documents found for your query.", body.Response)
	assert.Empty(t, body.RetrievedDocs)
}

func TestRAGRejectsOutOfRangeTopK(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/rag", RAGRequest{Query: "anything", TopK: 11})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRAGRejectsEmptyQuery(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/rag", RAGRequest{Query: "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRAGReloadPicksUpNewDocuments(t *testing.T) {
	env := newTestEnv(t, nil, map[string]string{
		"one.txt": "first document body",
	})
	require.NoError(t, os.WriteFile(filepath.Join(env.docsDir, "two.txt"), []byte("second document body"), 0o644))

	rec := env.do(t, http.MethodPost, "/rag/reload", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[ReloadResponse](t, rec)
	assert.Equal(t, 2, body.DocumentCount)
	assert.Contains(t, body.Message, "2")
}

func TestRAGStatusAndDocuments(t *testing.T) {
	env := newTestEnv(t, nil, map[string]string{
		"one.txt": "first document body",
	})

	rec := env.do(t, http.MethodGet, "/rag/status", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[RAGStatusResponse](t, rec)
	assert.False(t, status.Configured)
	assert.Equal(t, 1, status.DocumentCount)
	assert.Equal(t, env.docsDir, status.DocsDirectory)

	rec = env.do(t, http.MethodGet, "/rag/documents", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	docs := decodeBody[DocumentsResponse](t, rec)
	require.Equal(t, 1, docs.Count)
	assert.Equal(t, "one.txt", docs.Documents[0].ID)
	assert.Contains(t, docs.Documents[0].Preview, "first document")
}

func uploadCSV(t *testing.T, env *testEnv, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-train-data", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestTrainingWorkflow(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := uploadCSV(t, env, "faq.csv", "what is go,a programming language\n")
	require.Equal(t, http.StatusOK, rec.Code)
	upload := decodeBody[UploadResponse](t, rec)
	assert.Equal(t, "faq.csv", upload.Filename)

	rec = env.do(t, http.MethodPost, "/train", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	train := decodeBody[TrainingResponse](t, rec)
	assert.Equal(t, 1, train.ExamplesCount)
	assert.Equal(t, []string{"faq.csv"}, train.FilesProcessed)
	assert.Equal(t, "success", train.Status)

	rec = env.do(t, http.MethodPost, "/predict", PredictionRequest{Question: "What Is Go"})
	require.Equal(t, http.StatusOK, rec.Code)
	predict := decodeBody[PredictionResponse](t, rec)
	assert.Equal(t, "a programming language", predict.Answer)
	assert.True(t, predict.Matched)
}

func TestTrainWithoutDataReturns404(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/train", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestPredictBeforeTrainReturns400(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodPost, "/predict", PredictionRequest{Question: "anything"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadRejectsNonCSV(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := uploadCSV(t, env, "notes.txt", "q,a\n")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDHeaderIsSet(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	rec := env.do(t, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestCORSPreflightAllowed(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
