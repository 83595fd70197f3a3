// Package server exposes the HTTP REST API: chat, question answering, chain
// of thought reasoning, the ReAct agent, the RAG pipeline, and the few-shot
// training workflow.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/khttp/DSPyBridge/internal/agent/model"
	"github.com/khttp/DSPyBridge/internal/config"
	errx "github.com/khttp/DSPyBridge/internal/core/error"
	"github.com/khttp/DSPyBridge/internal/rag"
	"github.com/khttp/DSPyBridge/internal/training"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

// LLM is the generation backend surface the handlers depend on. It is nil
// when no API key is configured, putting every endpoint in fallback mode.
type LLM interface {
	Chat(ctx context.Context, conversationID, message string) (response, usedID string, err error)
	Answer(ctx context.Context, question, questionContext string) (string, error)
	Reason(ctx context.Context, question, questionContext string) (answer, reasoning string, err error)
	RunAgent(ctx context.Context, in model.AgentInput) (*model.AgentResult, error)
	ModelName() string
}

// Config holds everything the server needs.
type Config struct {
	Server      config.ServerConfig
	DefaultTopK int
	MaxTopK     int
	RAG         *rag.Service
	LLM         LLM
	Training    *training.Service
	Watching    bool
}

// Server is the HTTP front of the service.
type Server struct {
	httpServer  *http.Server
	cfg         config.ServerConfig
	defaultTopK int
	maxTopK     int
	rag         *rag.Service
	llm         LLM
	training    *training.Service
	watching    bool
}

// New assembles the routes and middleware.
func New(cfg Config) (*Server, error) {
	if cfg.RAG == nil {
		return nil, fmt.Errorf("rag service is nil")
	}
	if cfg.Training == nil {
		return nil, fmt.Errorf("training service is nil")
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = 3
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = 10
	}

	s := &Server{
		cfg:         cfg.Server,
		defaultTopK: cfg.DefaultTopK,
		maxTopK:     cfg.MaxTopK,
		rag:         cfg.RAG,
		llm:         cfg.LLM,
		training:    cfg.Training,
		watching:    cfg.Watching,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /endpoints", s.handleEndpoints)
	mux.HandleFunc("POST /chat", s.handleChat)
	mux.HandleFunc("POST /question", s.handleQuestion)
	mux.HandleFunc("POST /reasoning", s.handleReasoning)
	mux.HandleFunc("POST /agent", s.handleAgent)
	mux.HandleFunc("POST /rag", s.handleRAG)
	mux.HandleFunc("POST /rag/reload", s.handleRAGReload)
	mux.HandleFunc("GET /rag/status", s.handleRAGStatus)
	mux.HandleFunc("GET /rag/documents", s.handleRAGDocuments)
	mux.HandleFunc("POST /upload-train-data", s.handleUploadTrainData)
	mux.HandleFunc("POST /train", s.handleTrain)
	mux.HandleFunc("POST /predict", s.handlePredict)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      withLogging(withCORS(cfg.Server.AllowedOrigins, mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler exposes the middleware-wrapped handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until SIGINT or SIGTERM, then drains within the configured
// shutdown timeout.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logx.Info().Str("addr", s.httpServer.Addr).Msg("server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-stop:
	}

	logx.Info().Msg("shutting down")
	timeout := time.Duration(s.cfg.ShutdownTimeout) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	logx.Info().Msg("server stopped")
	return nil
}

func (s *Server) configured() bool {
	return s.llm != nil
}

func (s *Server) modelProvider() string {
	if !s.configured() {
		return "Not configured"
	}
	return s.llm.ModelName()
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logx.Error().Err(err).Msg("failed to encode response")
	}
}

// errorResponse converts any error into a typed JSON body. The original
// query is echoed back when known.
func (s *Server) errorResponse(w http.ResponseWriter, err error, query string) {
	ae := errx.From(err)
	if ae.Status >= http.StatusInternalServerError {
		logx.Error().Err(err).Msg("request failed")
	} else {
		logx.Warn().Err(err).Msg("request rejected")
	}
	s.jsonResponse(w, ae.Status, ErrorResponse{Error: ae.Message, Query: query})
}

// decodeJSON parses the request body into dst; malformed bodies become
// InvalidQuery errors.
func (s *Server) decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errx.InvalidQuery(fmt.Errorf("invalid JSON body: %w", err))
	}
	return nil
}
