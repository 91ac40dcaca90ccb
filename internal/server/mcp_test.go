package server

import (
	"context"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vpsbridge/vpsbridge/internal/registry"
	"go.uber.org/zap"
)

func TestMCPToolFromInfo(t *testing.T) {
	info := registry.ToolInfo{
		Name:        "vps_write_file",
		Description: "Write a file on the VPS",
		Params: []registry.ParamSpec{
			{Name: "path", Type: registry.ParamTypeString, Description: "Absolute path", Required: true, MinLength: 1},
			{Name: "content", Type: registry.ParamTypeString, Description: "File content", Required: true},
		},
	}

	tool := mcpToolFromInfo(info)
	assert.Equal(t, "vps_write_file", tool.Name)
	assert.Equal(t, "object", tool.InputSchema.Type)
	assert.Equal(t, []string{"path", "content"}, tool.InputSchema.Required)

	pathSchema, ok := tool.InputSchema.Properties["path"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "string", pathSchema["type"])
	assert.Equal(t, "Absolute path", pathSchema["description"])
	assert.Equal(t, 1, pathSchema["minLength"])

	contentSchema, ok := tool.InputSchema.Properties["content"].(map[string]any)
	require.True(t, ok)
	assert.NotContains(t, contentSchema, "minLength", "empty content is allowed")
}

func TestToolCallHandlerSuccess(t *testing.T) {
	reg := registry.NewRegistry(nil)
	require.NoError(t, reg.Register(&registry.ToolDefinition{
		Name: "echo",
		Params: []registry.ParamSpec{
			{Name: "msg", Type: registry.ParamTypeString, Required: true},
		},
		Handler: func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
			return registry.NewTextResult(args.String("msg")), nil
		},
	}))

	handler := toolCallHandler(reg, "echo", zap.NewNop())
	res, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "echo",
			Arguments: map[string]any{"msg": "hello"},
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "hello", text.Text)
}

func TestToolCallHandlerReportsDispatchErrorsInBand(t *testing.T) {
	reg := registry.NewRegistry(nil)
	require.NoError(t, reg.Register(&registry.ToolDefinition{
		Name: "strict",
		Params: []registry.ParamSpec{
			{Name: "path", Type: registry.ParamTypeString, Required: true, MinLength: 1},
		},
		Handler: func(ctx context.Context, args registry.Arguments) (*registry.Result, error) {
			return registry.NewTextResult("unreachable"), nil
		},
	}))

	handler := toolCallHandler(reg, "strict", zap.NewNop())
	res, err := handler(context.Background(), mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      "strict",
			Arguments: map[string]any{},
		},
	})

	// a failed invocation is a protocol-level error result, not a transport fault
	require.NoError(t, err)
	require.True(t, res.IsError)

	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "path")
}
