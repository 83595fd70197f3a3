package tools

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

type GetWeatherInput struct {
	City string `json:"city"`
}

type GetWeatherOutput struct {
	Report string `json:"report"`
}

type weatherAPIResponse struct {
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
}

// createWeatherTool builds the OpenWeatherMap lookup. Failures never
// surface as tool errors; the agent gets an apology sentence instead so
// the conversation can continue.
func createWeatherTool(cfg WeatherConfig, client *Client) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolGetWeather,
			Desc: "Get the current weather for a city. Returns temperature in Celsius and a short description. Use this tool whenever the user asks about weather conditions.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"city": {
					Type:     "string",
					Desc:     "Name of the city to get weather for. Examples: Bangkok, London, New York.",
					Required: true,
				},
			}),
		},
		func(ctx context.Context, in *GetWeatherInput) (*GetWeatherOutput, error) {
			if in.City == "" {
				return nil, fmt.Errorf("city is required")
			}

			apology := fmt.Sprintf("Sorry, I couldn't fetch the weather for %s.", in.City)

			apiKey := os.Getenv(cfg.APIKeyEnv)
			if apiKey == "" {
				logx.Warn().Str("env", cfg.APIKeyEnv).Msg("weather API key not set")
				return &GetWeatherOutput{Report: apology}, nil
			}

			query := url.Values{}
			query.Set("q", in.City)
			query.Set("appid", apiKey)
			query.Set("units", "metric")
			endpoint := cfg.BaseURL + "/weather?" + query.Encode()

			var data weatherAPIResponse
			timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
			if err := client.GetJSON(ctx, endpoint, timeout, &data); err != nil {
				logx.Warn().Err(err).Str("city", in.City).Msg("weather lookup failed")
				return &GetWeatherOutput{Report: apology}, nil
			}
			if len(data.Weather) == 0 {
				return &GetWeatherOutput{Report: apology}, nil
			}

			temp := strconv.FormatFloat(data.Main.Temp, 'f', -1, 64)
			report := fmt.Sprintf("The weather in %s is %s°C with %s.", in.City, temp, data.Weather[0].Description)
			return &GetWeatherOutput{Report: report}, nil
		},
	)
}
