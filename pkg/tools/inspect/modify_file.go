package inspect

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/entrhq/uiscope/pkg/tools"
	"github.com/entrhq/uiscope/pkg/workspace"
)

// ModifyFileTool replaces a line range in a file, letting a caller apply a
// targeted fix for a defect surfaced by a report.
type ModifyFileTool struct {
	guard *workspace.Guard
}

// NewModifyFileTool creates the modify_file tool. Paths are confined to the
// guard's workspace.
func NewModifyFileTool(guard *workspace.Guard) *ModifyFileTool {
	return &ModifyFileTool{guard: guard}
}

type modifyFileArgs struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
	Content   string `json:"content"`
}

func (t *ModifyFileTool) Name() string {
	return "modify_file"
}

func (t *ModifyFileTool) Description() string {
	return "Replace a line range in a file with new content. Lines are 1-based and the range is inclusive."
}

func (t *ModifyFileTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{
		"path":      tools.StringProperty("Path to the file to modify"),
		"startLine": tools.NumberProperty("First line to replace (1-based, inclusive)"),
		"endLine":   tools.NumberProperty("Last line to replace (1-based, inclusive)"),
		"content":   tools.StringProperty("Replacement content; may span multiple lines"),
	}, []string{"path", "startLine", "endLine", "content"})
}

func (t *ModifyFileTool) Execute(_ context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var parsed modifyFileArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.Path == "" {
		return "", nil, fmt.Errorf("missing required parameter: path")
	}
	if parsed.StartLine < 1 {
		return "", nil, fmt.Errorf("startLine must be >= 1, got %d", parsed.StartLine)
	}
	if parsed.EndLine < parsed.StartLine {
		return "", nil, fmt.Errorf("endLine (%d) must be >= startLine (%d)", parsed.EndLine, parsed.StartLine)
	}

	if err := t.guard.Validate(parsed.Path); err != nil {
		return "", nil, fmt.Errorf("invalid path: %w", err)
	}
	absPath, err := t.guard.Resolve(parsed.Path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	trailingNewline := strings.HasSuffix(string(data), "\n")
	if trailingNewline {
		lines = lines[:len(lines)-1]
	}

	if parsed.StartLine > len(lines) {
		return "", nil, fmt.Errorf("startLine %d exceeds file length (%d lines)", parsed.StartLine, len(lines))
	}
	end := parsed.EndLine
	if end > len(lines) {
		end = len(lines)
	}

	replacement := strings.Split(parsed.Content, "\n")
	updated := make([]string, 0, len(lines))
	updated = append(updated, lines[:parsed.StartLine-1]...)
	updated = append(updated, replacement...)
	updated = append(updated, lines[end:]...)

	output := strings.Join(updated, "\n")
	if trailingNewline {
		output += "\n"
	}
	if err := os.WriteFile(absPath, []byte(output), 0640); err != nil {
		return "", nil, fmt.Errorf("failed to write file: %w", err)
	}

	replaced := end - parsed.StartLine + 1
	return fmt.Sprintf("Replaced %d line(s) in %s", replaced, parsed.Path), map[string]interface{}{
		"path":          parsed.Path,
		"linesReplaced": replaced,
		"newLineCount":  len(updated),
	}, nil
}
