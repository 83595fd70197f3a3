package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaultTools(t *testing.T) {
	cfg := DefaultConfig()
	reg := NewRegistry(cfg, NewClient(cfg.RateLimit))

	assert.Equal(t, []string{ToolGetWeather, ToolGetJoke, ToolCurrentTime, ToolCurrentDate}, reg.Names())
	assert.Len(t, reg.Tools(), 4)
}

func TestRegistryDisabledTools(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Disabled = []string{ToolGetJoke, ToolCurrentTime}
	reg := NewRegistry(cfg, NewClient(cfg.RateLimit))

	assert.Equal(t, []string{ToolGetWeather, ToolCurrentDate}, reg.Names())
}

func TestRegistryInfos(t *testing.T) {
	cfg := DefaultConfig()
	reg := NewRegistry(cfg, NewClient(cfg.RateLimit))

	infos, err := reg.Infos(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 4)
	for i, info := range infos {
		assert.Equal(t, reg.Names()[i], info.Name)
		assert.NotEmpty(t, info.Desc)
	}
}
