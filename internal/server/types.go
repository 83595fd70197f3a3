package server

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message        string `json:"message" validate:"required"`
	ConversationID string `json:"conversation_id"`
}

// Validate trims and validates the request.
func (r *ChatRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	r.ConversationID = strings.TrimSpace(r.ConversationID)
	return validate.Struct(r)
}

// QuestionRequest is the body of POST /question and POST /reasoning.
type QuestionRequest struct {
	Question string `json:"question" validate:"required"`
	Context  string `json:"context"`
}

func (r *QuestionRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	return validate.Struct(r)
}

// AgentRequest is the body of POST /agent.
type AgentRequest struct {
	Message     string   `json:"message" validate:"required"`
	MaxTokens   *int     `json:"max_tokens" validate:"omitempty,gt=0"`
	Temperature *float64 `json:"temperature" validate:"omitempty,gte=0,lte=2"`
}

func (r *AgentRequest) Validate() error {
	r.Message = strings.TrimSpace(r.Message)
	return validate.Struct(r)
}

// RAGRequest is the body of POST /rag. TopK zero means the configured
// default.
type RAGRequest struct {
	Query string `json:"query" validate:"required"`
	TopK  int    `json:"top_k" validate:"gte=0,lte=10"`
}

func (r *RAGRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	return validate.Struct(r)
}

// PredictionRequest is the body of POST /predict.
type PredictionRequest struct {
	Question string `json:"question" validate:"required"`
}

func (r *PredictionRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	return validate.Struct(r)
}

// ChatResponse is returned by POST /chat.
type ChatResponse struct {
	Response       string `json:"response"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
	Timestamp      string `json:"timestamp"`
	ModelUsed      string `json:"model_used"`
}

// QuestionResponse is returned by POST /question and POST /reasoning.
type QuestionResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Reasoning string `json:"reasoning,omitempty"`
	Timestamp string `json:"timestamp"`
}

// AgentResponse is returned by POST /agent.
type AgentResponse struct {
	Response  string   `json:"response"`
	Message   string   `json:"message"`
	ToolCalls []string `json:"tool_calls"`
	Timestamp string   `json:"timestamp"`
	ModelUsed string   `json:"model_used"`
}

// RAGResponse is returned by POST /rag.
type RAGResponse struct {
	Query         string    `json:"query"`
	Response      string    `json:"response"`
	RetrievedDocs []string  `json:"retrieved_docs"`
	Scores        []float64 `json:"scores"`
	ContextUsed   string    `json:"context_used"`
	Timestamp     string    `json:"timestamp"`
}

// ReloadResponse is returned by POST /rag/reload.
type ReloadResponse struct {
	Message       string `json:"message"`
	DocumentCount int    `json:"document_count"`
	Timestamp     string `json:"timestamp"`
}

// RAGStatusResponse is returned by GET /rag/status.
type RAGStatusResponse struct {
	Configured    bool   `json:"configured"`
	DocumentCount int    `json:"document_count"`
	DocsDirectory string `json:"docs_directory"`
	Watching      bool   `json:"watching"`
	Timestamp     string `json:"timestamp"`
}

// DocumentSummary is one corpus entry in GET /rag/documents.
type DocumentSummary struct {
	ID      string `json:"id"`
	Size    int    `json:"size"`
	Preview string `json:"preview"`
}

// DocumentsResponse is returned by GET /rag/documents.
type DocumentsResponse struct {
	Documents []DocumentSummary `json:"documents"`
	Count     int               `json:"count"`
	Timestamp string            `json:"timestamp"`
}

// UploadResponse is returned by POST /upload-train-data.
type UploadResponse struct {
	Filename string `json:"filename"`
	Message  string `json:"message"`
}

// TrainingResponse is returned by POST /train.
type TrainingResponse struct {
	FilesProcessed []string `json:"files_processed"`
	ExamplesCount  int      `json:"examples_count"`
	Status         string   `json:"status"`
	Timestamp      string   `json:"timestamp"`
}

// PredictionResponse is returned by POST /predict.
type PredictionResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Matched   bool   `json:"matched"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Version       string `json:"version"`
	LLMConfigured bool   `json:"llm_configured"`
	ModelProvider string `json:"model_provider"`
	Timestamp     string `json:"timestamp"`
}

// EndpointInfo describes one route in GET /endpoints.
type EndpointInfo struct {
	Method      string `json:"method"`
	Description string `json:"description"`
}

// EndpointsResponse is returned by GET /endpoints.
type EndpointsResponse struct {
	Service   string                  `json:"service"`
	Endpoints map[string]EndpointInfo `json:"endpoints"`
}

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Query string `json:"query,omitempty"`
}
