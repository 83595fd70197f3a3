package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/khttp/DSPyBridge/internal/core"
	pkgredis "github.com/khttp/DSPyBridge/pkg/redis"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string `envconfig:"HOST" default:"0.0.0.0"`
	Port            int    `envconfig:"PORT" default:"8000"`
	Environment     string `envconfig:"APP_ENV" default:"development"`
	AllowedOrigins  string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	ShutdownTimeout int    `envconfig:"SHUTDOWN_TIMEOUT" default:"30"`
}

// Env returns the parsed deployment environment.
func (s ServerConfig) Env() core.Environment {
	return core.ParseEnvironment(s.Environment)
}

// LLMConfig holds the generation backend settings. An empty APIKey leaves the
// service in fallback mode where every endpoint still answers deterministically.
type LLMConfig struct {
	APIKey         string  `envconfig:"GEMINI_API_KEY"`
	BaseURL        string  `envconfig:"GEMINI_BASE_URL"`
	Model          string  `envconfig:"DEFAULT_MODEL" default:"gemini-2.5-flash"`
	MaxTokens      int     `envconfig:"DEFAULT_MAX_TOKENS" default:"500"`
	Temperature    float32 `envconfig:"DEFAULT_TEMPERATURE" default:"0.7"`
	ThinkingBudget int     `envconfig:"THINKING_BUDGET" default:"0"`
}

// Configured reports whether a generation backend can be constructed.
func (c LLMConfig) Configured() bool {
	return c.APIKey != ""
}

// RAGConfig holds document store and retriever settings.
type RAGConfig struct {
	DocsDir         string `envconfig:"DOCS_DIR" default:"docs"`
	DefaultTopK     int    `envconfig:"RAG_DEFAULT_TOP_K" default:"3"`
	MaxTopK         int    `envconfig:"RAG_MAX_TOP_K" default:"10"`
	Watch           bool   `envconfig:"DOCS_WATCH" default:"false"`
	LoadConcurrency int    `envconfig:"DOCS_LOAD_CONCURRENCY" default:"4"`
}

// ConversationConfig holds chat history settings.
type ConversationConfig struct {
	Store    string `envconfig:"CONVERSATION_STORE" default:"memory"`
	TTL      string `envconfig:"CONVERSATION_TTL" default:"15m"`
	MaxTurns int    `envconfig:"CONVERSATION_MAX_TURNS" default:"10"`
}

// ParseTTL returns the conversation TTL as a duration.
func (c ConversationConfig) ParseTTL() (time.Duration, error) {
	ttl, err := time.ParseDuration(c.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid CONVERSATION_TTL %q: %w", c.TTL, err)
	}
	return ttl, nil
}

// AgentConfig holds ReAct agent settings.
type AgentConfig struct {
	MaxToolCalls int    `envconfig:"AGENT_TOOL_MAX_CALLS" default:"6"`
	ToolsConfig  string `envconfig:"TOOLS_CONFIG" default:"tools.yaml"`
}

// TrainingConfig holds few-shot training settings.
type TrainingConfig struct {
	DataDir     string `envconfig:"TRAIN_DATA_DIR" default:"train-data"`
	MaxExamples int    `envconfig:"TRAIN_MAX_EXAMPLES" default:"8"`
}

// Config aggregates all configuration, processed once at startup.
type Config struct {
	Server       ServerConfig
	LLM          LLMConfig
	RAG          RAGConfig
	Conversation ConversationConfig
	Agent        AgentConfig
	Training     TrainingConfig
	Redis        pkgredis.Config
}

// Load processes environment variables into a Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	return &cfg, nil
}
