package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/uiscope/pkg/tools"
)

type echoTool struct {
	name string
	fail bool
}

func (t *echoTool) Name() string        { return t.name }
func (t *echoTool) Description() string { return "echoes its input" }

func (t *echoTool) Schema() map[string]interface{} {
	return tools.ObjectSchema(map[string]interface{}{
		"value": tools.StringProperty("Value to echo"),
	}, []string{"value"})
}

func (t *echoTool) Execute(_ context.Context, args json.RawMessage) (string, map[string]interface{}, error) {
	if t.fail {
		return "", nil, errors.New("echo failed")
	}
	var parsed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(args, &parsed); err != nil {
		return "", nil, err
	}
	return "echo: " + parsed.Value, map[string]interface{}{"value": parsed.Value}, nil
}

func newTestServer(t *testing.T, toolset ...tools.Tool) *Server {
	t.Helper()
	registry := tools.NewRegistry()
	for _, tool := range toolset {
		require.NoError(t, registry.Register(tool))
	}
	return NewServer("uiscope", "test", registry, nil)
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t, &echoTool{name: "echo"})

	resp := s.Handle(context.Background(), JSONRPCRequest{
		JSONRPC: "2.0", ID: 1, Method: "initialize",
	})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(InitializeResult)
	require.True(t, ok)
	assert.Equal(t, protocolVersion, result.ProtocolVersion)
	assert.Equal(t, "uiscope", result.ServerInfo.Name)
	assert.NotEmpty(t, result.Instructions)
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, &echoTool{name: "echo"}, &echoTool{name: "echo2"})

	resp := s.Handle(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 2, Method: "tools/list"})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(ToolsListResult)
	require.True(t, ok)
	require.Len(t, result.Tools, 2)
	assert.Equal(t, "echo", result.Tools[0].Name)
	assert.Equal(t, "object", result.Tools[0].InputSchema["type"])
}

func TestToolsCall(t *testing.T) {
	s := newTestServer(t, &echoTool{name: "echo"})

	params, _ := json.Marshal(map[string]interface{}{
		"name":      "echo",
		"arguments": map[string]interface{}{"value": "hi"},
	})
	resp := s.Handle(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 3, Method: "tools/call", Params: params})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(ToolResult)
	require.True(t, ok)
	require.Len(t, result.Content, 1)
	assert.Equal(t, "echo: hi", result.Content[0].Text)
	assert.False(t, result.IsError)
	assert.Equal(t, "hi", result.StructuredContent["value"])
}

func TestToolsCallErrorBecomesResult(t *testing.T) {
	s := newTestServer(t, &echoTool{name: "echo", fail: true})

	params, _ := json.Marshal(map[string]interface{}{"name": "echo"})
	resp := s.Handle(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 4, Method: "tools/call", Params: params})
	require.NotNil(t, resp)
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(ToolResult)
	require.True(t, ok)
	assert.True(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "echo failed")
}

func TestToolsCallUnknownTool(t *testing.T) {
	s := newTestServer(t)

	params, _ := json.Marshal(map[string]interface{}{"name": "nope"})
	resp := s.Handle(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 5, Method: "tools/call", Params: params})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidParams, resp.Error.Code)
}

func TestMethodNotFound(t *testing.T) {
	s := newTestServer(t)

	resp := s.Handle(context.Background(), JSONRPCRequest{JSONRPC: "2.0", ID: 6, Method: "resources/list"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
}

func TestInvalidJSONRPCVersion(t *testing.T) {
	s := newTestServer(t)

	resp := s.Handle(context.Background(), JSONRPCRequest{JSONRPC: "1.0", ID: 7, Method: "ping"})
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeInvalidRequest, resp.Error.Code)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := newTestServer(t)

	resp := s.Handle(context.Background(), JSONRPCRequest{JSONRPC: "2.0", Method: "notifications/initialized"})
	assert.Nil(t, resp)
}

func TestHandleRawParseError(t *testing.T) {
	s := newTestServer(t)

	resp := s.HandleRaw(context.Background(), []byte("{not json"))
	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
}

func TestServeRoundTrip(t *testing.T) {
	s := newTestServer(t, &echoTool{name: "echo"})

	input := strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05"}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"echo","arguments":{"value":"ping"}}}`,
	}, "\n") + "\n"

	var out bytes.Buffer
	err := s.Serve(context.Background(), strings.NewReader(input), &out)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.EqualValues(t, 1, first["id"])

	var second struct {
		Result struct {
			Content []struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
	}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	require.Len(t, second.Result.Content, 1)
	assert.Equal(t, "echo: ping", second.Result.Content[0].Text)
}
