package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/uiscope/pkg/store"
	"github.com/entrhq/uiscope/pkg/tools"
)

// ListReportsTool lists previously generated reports from the index.
type ListReportsTool struct {
	store *store.Store
}

// NewListReportsTool creates the list_reports tool.
func NewListReportsTool(s *store.Store) *ListReportsTool {
	return &ListReportsTool{store: s}
}

type listReportsArgs struct {
	Limit int `json:"limit"`
}

func (t *ListReportsTool) Name() string {
	return "list_reports"
}

func (t *ListReportsTool) Description() string {
	return "List previously generated UI debug reports, newest first."
}

func (t *ListReportsTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{
		"limit": tools.NumberProperty("Maximum number of reports to return; 0 returns all"),
	}, nil)
}

func (t *ListReportsTool) Execute(_ context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var parsed listReportsArgs
	if len(args) > 0 {
		if err := json.Unmarshal(args, &parsed); err != nil {
			return "", nil, fmt.Errorf("invalid arguments: %w", err)
		}
	}

	records, err := t.store.List(parsed.Limit)
	if err != nil {
		return "", nil, err
	}

	if len(records) == 0 {
		return "No reports generated yet", map[string]interface{}{"reports": []interface{}{}}, nil
	}

	var lines []string
	items := make([]interface{}, 0, len(records))
	for _, r := range records {
		lines = append(lines, fmt.Sprintf("- %s %s (%d elements) %s", r.CreatedAt.Format(time.RFC3339), r.URL, r.ElementCount, r.Dir))
		items = append(items, map[string]interface{}{
			"id":           r.ID,
			"createdAt":    r.CreatedAt.Format(time.RFC3339),
			"url":          r.URL,
			"appName":      r.AppName,
			"dir":          r.Dir,
			"elementCount": r.ElementCount,
		})
	}

	return strings.Join(lines, "\n"), map[string]interface{}{"reports": items}, nil
}
