package inspect

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/entrhq/uiscope/pkg/tools"
	"github.com/entrhq/uiscope/pkg/workspace"
)

// ReadFileTool reads file contents with optional line range support, so a
// caller can inspect the source behind a reported UI defect.
type ReadFileTool struct {
	guard *workspace.Guard
}

// NewReadFileTool creates the read_file tool. Paths are confined to the
// guard's workspace.
func NewReadFileTool(guard *workspace.Guard) *ReadFileTool {
	return &ReadFileTool{guard: guard}
}

type readFileArgs struct {
	Path      string `json:"path"`
	StartLine int    `json:"startLine"`
	EndLine   int    `json:"endLine"`
}

func (t *ReadFileTool) Name() string {
	return "read_file"
}

func (t *ReadFileTool) Description() string {
	return "Read the contents of a file with optional line range support. Returns line-numbered content for easy reference."
}

func (t *ReadFileTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{
		"path":      tools.StringProperty("Path to the file to read"),
		"startLine": tools.NumberProperty("Optional starting line number (1-based, inclusive)"),
		"endLine":   tools.NumberProperty("Optional ending line number (1-based, inclusive)"),
	}, []string{"path"})
}

func (t *ReadFileTool) Execute(_ context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	var parsed readFileArgs
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if parsed.Path == "" {
		return "", nil, fmt.Errorf("missing required parameter: path")
	}
	if err := validateLineRange(parsed.StartLine, parsed.EndLine); err != nil {
		return "", nil, err
	}
	if err := t.guard.Validate(parsed.Path); err != nil {
		return "", nil, fmt.Errorf("invalid path: %w", err)
	}
	absPath, err := t.guard.Resolve(parsed.Path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to resolve path: %w", err)
	}

	content, err := readLines(absPath, parsed.StartLine, parsed.EndLine)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	metadata := map[string]interface{}{"path": parsed.Path}
	if parsed.StartLine > 0 {
		metadata["startLine"] = parsed.StartLine
	}
	if parsed.EndLine > 0 {
		metadata["endLine"] = parsed.EndLine
	}
	if info, serr := os.Stat(absPath); serr == nil {
		metadata["sizeBytes"] = info.Size()
		metadata["modified"] = info.ModTime().Format(time.RFC3339)
	}

	return content, metadata, nil
}

func validateLineRange(startLine, endLine int) error {
	if startLine == 0 && endLine == 0 {
		return nil
	}
	if startLine < 1 {
		return fmt.Errorf("startLine must be >= 1, got %d", startLine)
	}
	if endLine != 0 && endLine < startLine {
		return fmt.Errorf("endLine (%d) must be >= startLine (%d)", endLine, startLine)
	}
	return nil
}

// readLines returns the requested line range with 1-based line numbers.
// A zero startLine and endLine reads the whole file.
func readLines(path string, startLine, endLine int) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var builder strings.Builder
	lineNum := 0
	readAll := startLine == 0 && endLine == 0

	for scanner.Scan() {
		lineNum++
		if !readAll && lineNum < startLine {
			continue
		}
		if !readAll && endLine > 0 && lineNum > endLine {
			break
		}
		if builder.Len() > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("%d | %s", lineNum, scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}

	if builder.Len() == 0 && !readAll && startLine > lineNum {
		return "", fmt.Errorf("startLine %d exceeds file length (%d lines)", startLine, lineNum)
	}
	return builder.String(), nil
}
