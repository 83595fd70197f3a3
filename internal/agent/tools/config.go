package tools

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

// Config controls which tools are registered and how the outbound ones
// reach their APIs. Loaded from YAML; a missing file means defaults.
type Config struct {
	Disabled  []string        `yaml:"disabled"`
	Weather   WeatherConfig   `yaml:"weather"`
	Joke      JokeConfig      `yaml:"joke"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type WeatherConfig struct {
	BaseURL        string `yaml:"base_url"`
	APIKeyEnv      string `yaml:"api_key_env"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type JokeConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// RateLimitConfig bounds all outbound tool traffic with one shared limiter.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

func DefaultConfig() Config {
	return Config{
		Weather: WeatherConfig{
			BaseURL:        "https://api.openweathermap.org/data/2.5",
			APIKeyEnv:      "OPENWEATHER_API_KEY",
			TimeoutSeconds: 15,
		},
		Joke: JokeConfig{
			BaseURL:        "https://v2.jokeapi.dev",
			TimeoutSeconds: 15,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 5,
			Burst:             10,
		},
	}
}

// LoadConfig reads the tools config from path. A missing file is not an
// error: every tool stays enabled with default settings.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logx.Info().Str("path", path).Msg("tools config not found, using defaults")
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read tools config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse tools config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Weather.BaseURL == "" {
		c.Weather.BaseURL = def.Weather.BaseURL
	}
	if c.Weather.APIKeyEnv == "" {
		c.Weather.APIKeyEnv = def.Weather.APIKeyEnv
	}
	if c.Weather.TimeoutSeconds <= 0 {
		c.Weather.TimeoutSeconds = def.Weather.TimeoutSeconds
	}
	if c.Joke.BaseURL == "" {
		c.Joke.BaseURL = def.Joke.BaseURL
	}
	if c.Joke.TimeoutSeconds <= 0 {
		c.Joke.TimeoutSeconds = def.Joke.TimeoutSeconds
	}
	if c.RateLimit.RequestsPerSecond <= 0 {
		c.RateLimit.RequestsPerSecond = def.RateLimit.RequestsPerSecond
	}
	if c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = def.RateLimit.Burst
	}
}

func (c Config) disabledSet() map[string]bool {
	set := make(map[string]bool, len(c.Disabled))
	for _, name := range c.Disabled {
		set[name] = true
	}
	return set
}
