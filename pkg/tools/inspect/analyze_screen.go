package inspect

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/entrhq/uiscope/pkg/pipeline"
	"github.com/entrhq/uiscope/pkg/tools"
)

// AnalyzeScreenTool runs vision analysis over the session's current
// screenshot and caches the parsed result.
type AnalyzeScreenTool struct {
	pipeline *pipeline.Pipeline
}

// NewAnalyzeScreenTool creates the analyze_screen tool.
func NewAnalyzeScreenTool(p *pipeline.Pipeline) *AnalyzeScreenTool {
	return &AnalyzeScreenTool{pipeline: p}
}

func (t *AnalyzeScreenTool) Name() string {
	return "analyze_screen"
}

func (t *AnalyzeScreenTool) Description() string {
	return "Analyze the most recent screenshot with a vision model, extracting a screen description, UI elements, colors, typography, and a visual audit."
}

func (t *AnalyzeScreenTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{}, nil)
}

func (t *AnalyzeScreenTool) Execute(ctx context.Context, _ json.RawMessage) (string, map[string]interface{}, error) {
	result, err := t.pipeline.Analyze(ctx)
	if err != nil {
		return "", nil, err
	}

	summary := fmt.Sprintf("Analyzed screen: %d elements identified", len(result.Elements))
	return summary, map[string]interface{}{
		"description":  result.Description,
		"elementCount": len(result.Elements),
	}, nil
}
