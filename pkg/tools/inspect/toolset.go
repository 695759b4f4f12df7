// Package inspect contains the UI debugging tools exposed by the server.
package inspect

import (
	"github.com/entrhq/uiscope/pkg/pipeline"
	"github.com/entrhq/uiscope/pkg/store"
	"github.com/entrhq/uiscope/pkg/tools"
	"github.com/entrhq/uiscope/pkg/workspace"
)

// NewRegistry builds a registry with the full UI debugging toolset. The
// store may be nil, in which case list_reports is not registered.
func NewRegistry(p *pipeline.Pipeline, s *store.Store, guard *workspace.Guard) (*tools.Registry, error) {
	registry := tools.NewRegistry()

	set := []tools.Tool{
		NewScreenshotURLTool(p),
		NewAnalyzeScreenTool(p),
		NewGenerateReportTool(p),
		NewAnalyzeURLFullReportTool(p),
		NewReadFileTool(guard),
		NewModifyFileTool(guard),
	}
	if s != nil {
		set = append(set, NewListReportsTool(s))
	}

	for _, tool := range set {
		if err := registry.Register(tool); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
