package inspect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/uiscope/pkg/browser"
	"github.com/entrhq/uiscope/pkg/pipeline"
	"github.com/entrhq/uiscope/pkg/tools"
)

// AnalyzeURLFullReportTool runs capture, analysis, and report generation as
// one operation.
type AnalyzeURLFullReportTool struct {
	pipeline *pipeline.Pipeline
}

// NewAnalyzeURLFullReportTool creates the analyze_url_full_report tool.
func NewAnalyzeURLFullReportTool(p *pipeline.Pipeline) *AnalyzeURLFullReportTool {
	return &AnalyzeURLFullReportTool{pipeline: p}
}

type fullReportArgs struct {
	URL             string  `json:"url"`
	AppName         string  `json:"appName"`
	FullPage        bool    `json:"fullPage"`
	WaitForSelector string  `json:"waitForSelector"`
	WaitTime        float64 `json:"waitTime"`
}

func (t *AnalyzeURLFullReportTool) Name() string {
	return "analyze_url_full_report"
}

func (t *AnalyzeURLFullReportTool) Description() string {
	return "Capture a URL, analyze it with a vision model, and write a full UI debug report in one step. Stops at the first failing stage."
}

func (t *AnalyzeURLFullReportTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{
		"url":             tools.StringProperty("URL to capture and analyze, including protocol"),
		"appName":         tools.StringProperty("Application name shown in the report title"),
		"fullPage":        tools.BoolProperty("Capture the full scrollable page instead of the viewport"),
		"waitForSelector": tools.StringProperty("CSS selector to wait for before capturing"),
		"waitTime":        tools.NumberProperty("Extra milliseconds to wait before capturing"),
	}, []string{"url"})
}

func (t *AnalyzeURLFullReportTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var parsed fullReportArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.URL == "" {
		return "", nil, fmt.Errorf("url is required")
	}

	result, err := t.pipeline.FullReport(ctx, browser.CaptureOptions{
		URL:             parsed.URL,
		FullPage:        parsed.FullPage,
		WaitForSelector: parsed.WaitForSelector,
		WaitTimeMs:      parsed.WaitTime,
	}, parsed.AppName)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("Report for %s written to %s", parsed.URL, result.Bundle.Dir), map[string]interface{}{
		"reportDir":    result.Bundle.Dir,
		"dataFile":     result.Bundle.DataPath,
		"elementCount": result.ElementCount,
	}, nil
}
