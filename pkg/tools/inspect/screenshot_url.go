package inspect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/uiscope/pkg/browser"
	"github.com/entrhq/uiscope/pkg/pipeline"
	"github.com/entrhq/uiscope/pkg/tools"
)

// ScreenshotURLTool navigates to a URL and captures a screenshot into the
// shared debug session.
type ScreenshotURLTool struct {
	pipeline *pipeline.Pipeline
}

// NewScreenshotURLTool creates the screenshot_url tool.
func NewScreenshotURLTool(p *pipeline.Pipeline) *ScreenshotURLTool {
	return &ScreenshotURLTool{pipeline: p}
}

type screenshotURLArgs struct {
	URL             string  `json:"url"`
	FullPage        bool    `json:"fullPage"`
	WaitForSelector string  `json:"waitForSelector"`
	WaitTime        float64 `json:"waitTime"`
}

func (t *ScreenshotURLTool) Name() string {
	return "screenshot_url"
}

func (t *ScreenshotURLTool) Description() string {
	return "Navigate to a URL in a managed browser and capture a screenshot. The screenshot becomes the current subject for analyze_screen."
}

func (t *ScreenshotURLTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{
		"url":             tools.StringProperty("URL to capture, including protocol"),
		"fullPage":        tools.BoolProperty("Capture the full scrollable page instead of the viewport"),
		"waitForSelector": tools.StringProperty("CSS selector to wait for before capturing"),
		"waitTime":        tools.NumberProperty("Extra milliseconds to wait before capturing"),
	}, []string{"url"})
}

func (t *ScreenshotURLTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var parsed screenshotURLArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.URL == "" {
		return "", nil, fmt.Errorf("url is required")
	}

	result, err := t.pipeline.Capture(ctx, browser.CaptureOptions{
		URL:             parsed.URL,
		FullPage:        parsed.FullPage,
		WaitForSelector: parsed.WaitForSelector,
		WaitTimeMs:      parsed.WaitTime,
	})
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("Captured %s", result.URL), map[string]interface{}{
		"url":        result.URL,
		"screenshot": result.ScreenshotPath,
	}, nil
}
