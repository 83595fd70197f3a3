package tools

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFile(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "tools.yaml"))
	require.NoError(t, err)

	assert.Empty(t, cfg.Disabled)
	assert.Equal(t, "https://api.openweathermap.org/data/2.5", cfg.Weather.BaseURL)
	assert.Equal(t, "OPENWEATHER_API_KEY", cfg.Weather.APIKeyEnv)
	assert.Equal(t, "https://v2.jokeapi.dev", cfg.Joke.BaseURL)
	assert.Equal(t, 5.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	content := `
disabled:
  - get_joke
weather:
  base_url: http://localhost:9999
  api_key_env: MY_WEATHER_KEY
rate_limit:
  requests_per_second: 2
  burst: 4
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"get_joke"}, cfg.Disabled)
	assert.Equal(t, "http://localhost:9999", cfg.Weather.BaseURL)
	assert.Equal(t, "MY_WEATHER_KEY", cfg.Weather.APIKeyEnv)
	assert.Equal(t, 2.0, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 4, cfg.RateLimit.Burst)

	// untouched sections keep their defaults
	assert.Equal(t, 15, cfg.Weather.TimeoutSeconds)
	assert.Equal(t, "https://v2.jokeapi.dev", cfg.Joke.BaseURL)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte("weather: ["), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}
