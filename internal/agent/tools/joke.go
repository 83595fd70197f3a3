package tools

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	logx "github.com/khttp/DSPyBridge/pkg/logger"
)

type GetJokeInput struct{}

type GetJokeOutput struct {
	Joke string `json:"joke"`
}

type jokeAPIResponse struct {
	Error    bool   `json:"error"`
	Type     string `json:"type"`
	Joke     string `json:"joke"`
	Setup    string `json:"setup"`
	Delivery string `json:"delivery"`
}

// local pool used when the joke API is unreachable
var fallbackJokes = []string{
	"Why don't scientists trust atoms?\nBecause they make up everything!",
	"What do you call a fake noodle?\nAn impasta!",
	"Why did the scarecrow win an award?\nHe was outstanding in his field!",
	"What do you call a bear with no teeth?\nA gummy bear!",
	"Why don't eggs tell jokes?\nThey'd crack each other up!",
}

func createJokeTool(cfg JokeConfig, client *Client) tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolGetJoke,
			Desc:        "Get a random joke. Use this tool when the user asks for a joke or wants to be entertained.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, _ *GetJokeInput) (*GetJokeOutput, error) {
			var data jokeAPIResponse
			timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
			if err := client.GetJSON(ctx, cfg.BaseURL+"/joke/Any", timeout, &data); err != nil {
				logx.Warn().Err(err).Msg("joke API unreachable, serving local joke")
				return &GetJokeOutput{Joke: fallbackJokes[rand.IntN(len(fallbackJokes))]}, nil
			}

			if data.Error {
				return &GetJokeOutput{Joke: "Sorry, I couldn't fetch a joke right now."}, nil
			}
			if data.Type == "twopart" && data.Setup != "" && data.Delivery != "" {
				return &GetJokeOutput{Joke: data.Setup + "\n" + data.Delivery}, nil
			}
			if data.Joke != "" {
				return &GetJokeOutput{Joke: data.Joke}, nil
			}
			return &GetJokeOutput{Joke: "Sorry, no joke available right now."}, nil
		},
	)
}
