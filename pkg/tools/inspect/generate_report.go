package inspect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/uiscope/pkg/pipeline"
	"github.com/entrhq/uiscope/pkg/tools"
)

// GenerateReportTool writes a report bundle from the cached analysis.
type GenerateReportTool struct {
	pipeline *pipeline.Pipeline
}

// NewGenerateReportTool creates the generate_report tool.
func NewGenerateReportTool(p *pipeline.Pipeline) *GenerateReportTool {
	return &GenerateReportTool{pipeline: p}
}

type generateReportArgs struct {
	TestURL string `json:"testUrl"`
	AppName string `json:"appName"`
}

func (t *GenerateReportTool) Name() string {
	return "generate_report"
}

func (t *GenerateReportTool) Description() string {
	return "Generate a UI debug report bundle from the most recent analysis, including derived colors, typography, contrast ratios, and the screenshot."
}

func (t *GenerateReportTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{
		"testUrl": tools.StringProperty("URL the report refers to; defaults to the session's current URL"),
		"appName": tools.StringProperty("Application name shown in the report title"),
	}, []string{"testUrl"})
}

func (t *GenerateReportTool) Execute(ctx context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var parsed generateReportArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}

	result, err := t.pipeline.Report(ctx, parsed.TestURL, parsed.AppName)
	if err != nil {
		return "", nil, err
	}

	return fmt.Sprintf("Report written to %s", result.Bundle.Dir), map[string]interface{}{
		"reportDir":    result.Bundle.Dir,
		"dataFile":     result.Bundle.DataPath,
		"elementCount": result.ElementCount,
	}, nil
}
