package server

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/khttp/DSPyBridge/internal/agent/model"
	"github.com/khttp/DSPyBridge/internal/core"
	errx "github.com/khttp/DSPyBridge/internal/core/error"
)

const (
	fallbackModelUsed = "Fallback (not configured)"

	// notConfiguredAnswer is served by /question and /reasoning when no
	// generation backend is available.
	notConfiguredAnswer    = "The generation backend is not configured. Please check your setup."
	notConfiguredReasoning = "Chain of thought reasoning is not available."
	notConfiguredAgent     = "Service not configured. Please set GEMINI_API_KEY."

	maxUploadBytes = 10 << 20
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Service:       core.AppName,
		Version:       core.Version,
		LLMConfigured: s.configured(),
		ModelProvider: s.modelProvider(),
		Timestamp:     timestamp(),
	})
}

func (s *Server) handleEndpoints(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, EndpointsResponse{
		Service: core.AppName,
		Endpoints: map[string]EndpointInfo{
			"/chat":              {Method: "POST", Description: "Conversational chat with history"},
			"/question":          {Method: "POST", Description: "Direct question answering with optional context"},
			"/reasoning":         {Method: "POST", Description: "Chain of thought reasoning for complex questions"},
			"/agent":             {Method: "POST", Description: "ReAct agent with weather, joke, and clock tools"},
			"/rag":               {Method: "POST", Description: "Retrieval-augmented generation over the docs directory"},
			"/rag/reload":        {Method: "POST", Description: "Reload documents from the docs directory"},
			"/rag/status":        {Method: "GET", Description: "RAG pipeline status"},
			"/rag/documents":     {Method: "GET", Description: "List loaded documents"},
			"/upload-train-data": {Method: "POST", Description: "Upload a CSV of question,answer training rows"},
			"/train":             {Method: "POST", Description: "Load all uploaded CSV files into the few-shot example set"},
			"/predict":           {Method: "POST", Description: "Answer a question using the trained example set"},
			"/health":            {Method: "GET", Description: "Health check and configuration status"},
			"/endpoints":         {Method: "GET", Description: "List all available endpoints"},
		},
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, errx.InvalidQuery(err), "")
		return
	}

	if !s.configured() {
		convID := req.ConversationID
		if convID == "" {
			convID = uuid.NewString()
		}
		s.jsonResponse(w, http.StatusOK, ChatResponse{
			Response: fmt.Sprintf(
				"I received your message: %q. However, no generation backend is configured. Please set GEMINI_API_KEY.",
				req.Message),
			Message:        req.Message,
			ConversationID: convID,
			Timestamp:      timestamp(),
			ModelUsed:      fallbackModelUsed,
		})
		return
	}

	response, convID, err := s.llm.Chat(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}
	s.jsonResponse(w, http.StatusOK, ChatResponse{
		Response:       response,
		Message:        req.Message,
		ConversationID: convID,
		Timestamp:      timestamp(),
		ModelUsed:      s.modelProvider(),
	})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, errx.InvalidQuery(err), "")
		return
	}

	if !s.configured() {
		s.jsonResponse(w, http.StatusOK, QuestionResponse{
			Question:  req.Question,
			Answer:    notConfiguredAnswer,
			Timestamp: timestamp(),
		})
		return
	}

	answer, err := s.llm.Answer(r.Context(), req.Question, req.Context)
	if err != nil {
		s.errorResponse(w, err, req.Question)
		return
	}
	s.jsonResponse(w, http.StatusOK, QuestionResponse{
		Question:  req.Question,
		Answer:    answer,
		Timestamp: timestamp(),
	})
}

func (s *Server) handleReasoning(w http.ResponseWriter, r *http.Request) {
	var req QuestionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, errx.InvalidQuery(err), "")
		return
	}

	if !s.configured() {
		s.jsonResponse(w, http.StatusOK, QuestionResponse{
			Question:  req.Question,
			Answer:    notConfiguredAnswer,
			Reasoning: notConfiguredReasoning,
			Timestamp: timestamp(),
		})
		return
	}

	answer, reasoning, err := s.llm.Reason(r.Context(), req.Question, req.Context)
	if err != nil {
		s.errorResponse(w, err, req.Question)
		return
	}
	s.jsonResponse(w, http.StatusOK, QuestionResponse{
		Question:  req.Question,
		Answer:    answer,
		Reasoning: reasoning,
		Timestamp: timestamp(),
	})
}

func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, errx.InvalidQuery(err), "")
		return
	}

	if !s.configured() {
		s.jsonResponse(w, http.StatusOK, AgentResponse{
			Response:  notConfiguredAgent,
			Message:   req.Message,
			ToolCalls: []string{},
			Timestamp: timestamp(),
			ModelUsed: fallbackModelUsed,
		})
		return
	}

	result, err := s.llm.RunAgent(r.Context(), model.AgentInput{
		Message:     req.Message,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}

	toolCalls := result.ToolsUsed
	if toolCalls == nil {
		toolCalls = []string{}
	}
	s.jsonResponse(w, http.StatusOK, AgentResponse{
		Response:  result.Response,
		Message:   req.Message,
		ToolCalls: toolCalls,
		Timestamp: timestamp(),
		ModelUsed: s.modelProvider(),
	})
}

func (s *Server) handleRAG(w http.ResponseWriter, r *http.Request) {
	var req RAGRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, errx.InvalidQuery(err), req.Query)
		return
	}

	topK := req.TopK
	if topK == 0 {
		topK = s.defaultTopK
	}
	if topK > s.maxTopK {
		s.errorResponse(w, errx.InvalidQuery(fmt.Errorf("top_k must be at most %d", s.maxTopK)), req.Query)
		return
	}

	result, err := s.rag.Query(r.Context(), req.Query, topK)
	if err != nil {
		s.errorResponse(w, err, req.Query)
		return
	}
	s.jsonResponse(w, http.StatusOK, RAGResponse{
		Query:         result.Query,
		Response:      result.Response,
		RetrievedDocs: result.RetrievedDocs,
		Scores:        result.Scores,
		ContextUsed:   result.ContextUsed,
		Timestamp:     timestamp(),
	})
}

func (s *Server) handleRAGReload(w http.ResponseWriter, r *http.Request) {
	count, err := s.rag.Reload(r.Context())
	if err != nil {
		s.errorResponse(w, errx.CorpusLoad(err), "")
		return
	}
	s.jsonResponse(w, http.StatusOK, ReloadResponse{
		Message:       fmt.Sprintf("Successfully reloaded %d documents", count),
		DocumentCount: count,
		Timestamp:     timestamp(),
	})
}

func (s *Server) handleRAGStatus(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, RAGStatusResponse{
		Configured:    s.rag.Configured(),
		DocumentCount: s.rag.Size(),
		DocsDirectory: s.rag.Dir(),
		Watching:      s.watching,
		Timestamp:     timestamp(),
	})
}

func (s *Server) handleRAGDocuments(w http.ResponseWriter, _ *http.Request) {
	corpus := s.rag.Snapshot()
	docs := make([]DocumentSummary, 0, len(corpus))
	for _, doc := range corpus {
		preview := doc.Body
		if runes := []rune(preview); len(runes) > 100 {
			preview = string(runes[:100]) + "..."
		}
		docs = append(docs, DocumentSummary{
			ID:      doc.ID,
			Size:    len(doc.Body),
			Preview: preview,
		})
	}
	s.jsonResponse(w, http.StatusOK, DocumentsResponse{
		Documents: docs,
		Count:     len(docs),
		Timestamp: timestamp(),
	})
}

func (s *Server) handleUploadTrainData(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.errorResponse(w, errx.InvalidQuery(fmt.Errorf("invalid multipart form: %w", err)), "")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.errorResponse(w, errx.InvalidQuery(fmt.Errorf("missing file field: %w", err)), "")
		return
	}
	defer file.Close()

	name, err := s.training.Upload(header.Filename, file)
	if err != nil {
		s.errorResponse(w, errx.InvalidQuery(err), "")
		return
	}
	s.jsonResponse(w, http.StatusOK, UploadResponse{
		Filename: name,
		Message:  "File uploaded successfully",
	})
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	count, files, err := s.training.Train(r.Context())
	if err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if count == 0 {
		s.errorResponse(w, errx.New(nil, http.StatusNotFound, "no training data found in train-data directory"), "")
		return
	}
	if files == nil {
		files = []string{}
	}
	s.jsonResponse(w, http.StatusOK, TrainingResponse{
		FilesProcessed: files,
		ExamplesCount:  count,
		Status:         "success",
		Timestamp:      timestamp(),
	})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req PredictionRequest
	if err := s.decodeJSON(r, &req); err != nil {
		s.errorResponse(w, err, "")
		return
	}
	if err := req.Validate(); err != nil {
		s.errorResponse(w, errx.InvalidQuery(err), "")
		return
	}

	if s.training.Size() == 0 {
		s.errorResponse(w, errx.New(nil, http.StatusBadRequest, "model not trained, call /train first"), "")
		return
	}

	answer, matched, err := s.training.Predict(r.Context(), req.Question)
	if err != nil {
		s.errorResponse(w, err, req.Question)
		return
	}
	s.jsonResponse(w, http.StatusOK, PredictionResponse{
		Question:  req.Question,
		Answer:    answer,
		Matched:   matched,
		Timestamp: timestamp(),
	})
}
