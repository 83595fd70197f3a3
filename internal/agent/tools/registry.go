// Package tools provides the agent's tool set: weather and joke lookups
// backed by external APIs plus local clock tools. Registration is driven
// by the YAML tools config so deployments can switch tools off.
package tools

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"

	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

const (
	ToolGetWeather  = "get_weather"
	ToolGetJoke     = "get_joke"
	ToolCurrentTime = "current_time"
	ToolCurrentDate = "current_date"
)

// Registry holds the enabled tools in registration order.
type Registry struct {
	tools []tool.BaseTool
	names []string
}

func NewRegistry(cfg Config, client *Client) *Registry {
	reg := &Registry{}
	disabled := cfg.disabledSet()

	add := func(name string, t tool.BaseTool) {
		if disabled[name] {
			logx.Info().Str("tool", name).Msg("tool disabled by config")
			return
		}
		reg.tools = append(reg.tools, t)
		reg.names = append(reg.names, name)
	}

	add(ToolGetWeather, createWeatherTool(cfg.Weather, client))
	add(ToolGetJoke, createJokeTool(cfg.Joke, client))
	add(ToolCurrentTime, createCurrentTimeTool())
	add(ToolCurrentDate, createCurrentDateTool())

	return reg
}

func (r *Registry) Tools() []tool.BaseTool {
	return r.tools
}

func (r *Registry) Names() []string {
	return r.names
}

// Infos collects the ToolInfo of every enabled tool for model binding.
func (r *Registry) Infos(ctx context.Context) ([]*schema.ToolInfo, error) {
	infos := make([]*schema.ToolInfo, 0, len(r.tools))
	for _, t := range r.tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, fmt.Errorf("tool info: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, nil
}
