package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/entrhq/uiscope/pkg/logging"
	"github.com/entrhq/uiscope/pkg/tools"
)

const protocolVersion = "2024-11-05"

const serverInstructions = `UI debugging server. Typical flow: screenshot_url to capture a page, analyze_screen to extract UI elements and styles, then generate_report to write a report bundle. analyze_url_full_report runs all three in one call. Analysis is cached per process, so generate_report reuses the last analyze_screen result.`

// Server reads JSON-RPC requests line by line and dispatches them to the
// tool registry.
type Server struct {
	name     string
	version  string
	registry *tools.Registry
	logger   *logging.Logger
}

// NewServer creates a stdio MCP server around a tool registry.
func NewServer(name, version string, registry *tools.Registry, logger *logging.Logger) *Server {
	return &Server{name: name, version: version, registry: registry, logger: logger}
}

// Serve reads newline-delimited JSON-RPC requests from r and writes
// responses to w until r is exhausted or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		resp := s.HandleRaw(ctx, []byte(line))
		if resp == nil {
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	return scanner.Err()
}

// HandleRaw parses one raw request and handles it. A nil return means no
// response should be written.
func (s *Server) HandleRaw(ctx context.Context, raw []byte) *JSONRPCResponse {
	var req JSONRPCRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return &JSONRPCResponse{
			JSONRPC: "2.0",
			Error:   &JSONRPCError{Code: CodeParseError, Message: "Parse error: " + err.Error()},
		}
	}
	return s.Handle(ctx, req)
}

// Handle dispatches a parsed request. Notifications return nil.
func (s *Server) Handle(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	if !req.HasID() {
		// Notifications (including notifications/initialized) get no reply.
		return nil
	}
	if req.JSONRPC != "2.0" {
		return s.errorResponse(req.ID, CodeInvalidRequest, `Invalid Request: jsonrpc must be "2.0"`)
	}

	if s.logger != nil {
		s.logger.Debugf("handling %s", req.Method)
	}

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "ping":
		return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: map[string]interface{}{}}
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return s.errorResponse(req.ID, CodeMethodNotFound, "Method not found: "+req.Method)
	}
}

func (s *Server) handleInitialize(req JSONRPCRequest) *JSONRPCResponse {
	result := InitializeResult{
		ProtocolVersion: protocolVersion,
		ServerInfo:      ServerInfo{Name: s.name, Version: s.version},
		Capabilities:    Capabilities{Tools: ToolsCapability{}},
		Instructions:    serverInstructions,
	}
	return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: result}
}

func (s *Server) handleToolsList(req JSONRPCRequest) *JSONRPCResponse {
	all := s.registry.All()
	listed := make([]MCPTool, 0, len(all))
	for _, tool := range all {
		listed = append(listed, MCPTool{
			Name:        tool.Name(),
			Description: tool.Description(),
			InputSchema: tool.Schema(),
		})
	}
	return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: ToolsListResult{Tools: listed}}
}

func (s *Server) handleToolsCall(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	var params toolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params: "+err.Error())
	}
	if params.Name == "" {
		return s.errorResponse(req.ID, CodeInvalidParams, "Invalid params: tool name is required")
	}

	tool, ok := s.registry.Get(params.Name)
	if !ok {
		return s.errorResponse(req.ID, CodeInvalidParams, "Unknown tool: "+params.Name)
	}

	args := params.Arguments
	if len(args) == 0 {
		args = json.RawMessage(`{}`)
	}

	summary, data, err := tool.Execute(ctx, args)
	if err != nil {
		// Tool failures are results with isError set, not protocol errors.
		if s.logger != nil {
			s.logger.Warnf("tool %s failed: %v", params.Name, err)
		}
		return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: ToolResult{
			Content: []ContentBlock{{Type: "text", Text: err.Error()}},
			IsError: true,
		}}
	}

	return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: ToolResult{
		Content:           []ContentBlock{{Type: "text", Text: summary}},
		StructuredContent: data,
	}}
}

func (s *Server) errorResponse(id interface{}, code int, message string) *JSONRPCResponse {
	return &JSONRPCResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &JSONRPCError{Code: code, Message: message},
	}
}
