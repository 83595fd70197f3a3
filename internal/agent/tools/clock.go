package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"
)

// stubbed in tests
var timeNow = time.Now

type CurrentTimeInput struct {
	TimezoneName string `json:"timezone_name,omitempty"`
}

type CurrentTimeOutput struct {
	Result string `json:"result"`
}

func createCurrentTimeTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name: ToolCurrentTime,
			Desc: "Get the current time in a timezone. Defaults to UTC when no timezone is given.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
				"timezone_name": {
					Type: "string",
					Desc: "IANA timezone name. Examples: UTC, US/Eastern, Europe/London, Asia/Bangkok.",
				},
			}),
		},
		func(ctx context.Context, in *CurrentTimeInput) (*CurrentTimeOutput, error) {
			name := in.TimezoneName
			if name == "" {
				name = "UTC"
			}
			loc, err := time.LoadLocation(name)
			if err != nil {
				msg := fmt.Sprintf("Unknown timezone: %s. Try 'UTC', 'US/Eastern', 'Europe/London', etc.", name)
				return &CurrentTimeOutput{Result: msg}, nil
			}

			formatted := timeNow().In(loc).Format("2006-01-02 15:04:05 MST")
			return &CurrentTimeOutput{Result: fmt.Sprintf("Current time in %s: %s", name, formatted)}, nil
		},
	)
}

type CurrentDateInput struct{}

type CurrentDateOutput struct {
	Result string `json:"result"`
}

func createCurrentDateTool() tool.BaseTool {
	return utils.NewTool(
		&schema.ToolInfo{
			Name:        ToolCurrentDate,
			Desc:        "Get today's date with the day of the week.",
			ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
		},
		func(ctx context.Context, _ *CurrentDateInput) (*CurrentDateOutput, error) {
			now := timeNow()
			result := fmt.Sprintf("Today is %s, %s", now.Weekday().String(), now.Format("2006-01-02"))
			return &CurrentDateOutput{Result: result}, nil
		},
	)
}
