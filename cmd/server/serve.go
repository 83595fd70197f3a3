package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/khttp/DSPyBridge/internal/agent"
	"github.com/khttp/DSPyBridge/internal/agent/conversation"
	"github.com/khttp/DSPyBridge/internal/agent/model"
	"github.com/khttp/DSPyBridge/internal/agent/tools"
	"github.com/khttp/DSPyBridge/internal/config"
	"github.com/khttp/DSPyBridge/internal/rag"
	"github.com/khttp/DSPyBridge/internal/server"
	"github.com/khttp/DSPyBridge/internal/training"
	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

var (
	servePort      int
	serveDocsDir   string
	serveToolsFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  "Start the HTTP server exposing chat, question answering, reasoning, the ReAct agent, RAG, and the training workflow.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveDocsDir, "docs-dir", "", "Documents directory for RAG (overrides DOCS_DIR)")
	serveCmd.Flags().StringVar(&serveToolsFile, "config", "", "Tools config file (overrides TOOLS_CONFIG)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}
	if cmd.Flags().Changed("docs-dir") {
		cfg.RAG.DocsDir = serveDocsDir
	}
	if cmd.Flags().Changed("config") {
		cfg.Agent.ToolsConfig = serveToolsFile
	}

	logx.Init(logx.LoggerOpts{Environment: cfg.Server.Env()})

	ctx := context.Background()

	// Document store: load once at startup, optionally watch for changes.
	store := rag.NewStore(cfg.RAG.DocsDir, cfg.RAG.LoadConcurrency)
	count, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load documents: %w", err)
	}
	logx.Info().Int("documents", count).Str("dir", cfg.RAG.DocsDir).Msg("document corpus loaded")

	watching := false
	if cfg.RAG.Watch {
		watcher, err := rag.NewWatcher(store, 0)
		if err != nil {
			return fmt.Errorf("start docs watcher: %w", err)
		}
		defer watcher.Close()
		watching = true
	}

	// Tool registry from the YAML config; a missing file enables everything.
	toolsCfg, err := tools.LoadConfig(cfg.Agent.ToolsConfig)
	if err != nil {
		return fmt.Errorf("load tools config: %w", err)
	}
	registry := tools.NewRegistry(toolsCfg, tools.NewClient(toolsCfg.RateLimit))

	// Conversation history: in-memory by default, Redis when configured.
	var repo model.ConversationRepository
	switch cfg.Conversation.Store {
	case "redis":
		ttl, err := cfg.Conversation.ParseTTL()
		if err != nil {
			return err
		}
		rdb, err := cfg.Redis.New()
		if err != nil {
			return fmt.Errorf("connect to Redis: %w", err)
		}
		defer rdb.Close()
		repo = conversation.NewRedisRepository(rdb, ttl)
		logx.Info().Msg("using Redis conversation store")
	default:
		repo = conversation.NewMemoryRepository()
	}
	manager := conversation.NewManager(repo, cfg.Conversation.MaxTurns)

	// Generation backend; without an API key every endpoint serves
	// deterministic fallback answers.
	var agentSvc *agent.Service
	if cfg.LLM.Configured() {
		agentSvc, err = agent.New(ctx, agent.Options{
			LLM:           cfg.LLM,
			Registry:      registry,
			Conversations: manager,
			MaxToolCalls:  cfg.Agent.MaxToolCalls,
		})
		if err != nil {
			return fmt.Errorf("initialize agent service: %w", err)
		}
	} else {
		logx.Warn().Msg("GEMINI_API_KEY not set, running in fallback mode")
	}

	var generator rag.Generator
	var answerer training.Answerer
	var llm server.LLM
	if agentSvc != nil {
		generator = agentSvc
		answerer = agentSvc
		llm = agentSvc
	}

	ragSvc := rag.NewService(store, generator, cfg.RAG.DefaultTopK)
	trainingSvc := training.NewService(
		training.NewStore(cfg.Training.DataDir, cfg.RAG.LoadConcurrency),
		answerer,
		cfg.Training.MaxExamples,
	)

	srv, err := server.New(server.Config{
		Server:      cfg.Server,
		DefaultTopK: cfg.RAG.DefaultTopK,
		MaxTopK:     cfg.RAG.MaxTopK,
		RAG:         ragSvc,
		LLM:         llm,
		Training:    trainingSvc,
		Watching:    watching,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	return srv.Start()
}
