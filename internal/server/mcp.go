package server

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/vpsbridge/vpsbridge/internal/registry"
	"github.com/vpsbridge/vpsbridge/pkg/version"
	"go.uber.org/zap"
)

const mcpServerName = "vpsbridge"

// buildMCPServer creates the MCP server shared by both carriers and binds
// every registered tool to the dispatcher. The MCP layer answers initialize
// and tools/list itself; tools/call flows through registry.Dispatch.
func buildMCPServer(reg *registry.Registry, logger *zap.Logger) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer(
		mcpServerName,
		version.GetVersion(),
		mcpserver.WithToolCapabilities(true),
	)
	for _, info := range reg.List() {
		s.AddTool(mcpToolFromInfo(info), toolCallHandler(reg, info.Name, logger))
	}
	return s
}

// mcpToolFromInfo converts a catalog entry into its MCP schema object.
// Every parameter of the fixed toolset is advertised as type "string",
// matching the original discovery response.
func mcpToolFromInfo(info registry.ToolInfo) mcp.Tool {
	props := make(map[string]any, len(info.Params))
	var required []string
	for _, p := range info.Params {
		schema := map[string]any{
			"type":        string(p.Type),
			"description": p.Description,
		}
		if p.MinLength > 0 {
			schema["minLength"] = p.MinLength
		}
		props[p.Name] = schema
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return mcp.Tool{
		Name:        info.Name,
		Description: info.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}

// toolCallHandler adapts one registry tool to the MCP tool handler contract.
// Dispatch failures become protocol-visible error results rather than
// transport faults, so a bad invocation never aborts the carrier.
func toolCallHandler(reg *registry.Registry, name string, logger *zap.Logger) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		res, err := reg.Dispatch(ctx, name, req.GetArguments())
		if err != nil {
			logger.Warn("tool invocation failed",
				zap.String("tool", name),
				zap.Error(err),
			)
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toMCPResult(res), nil
	}
}

func toMCPResult(res *registry.Result) *mcp.CallToolResult {
	content := make([]mcp.Content, 0, len(res.Content))
	for _, block := range res.Content {
		content = append(content, mcp.TextContent{
			Type: "text",
			Text: block.Text,
		})
	}
	return &mcp.CallToolResult{Content: content}
}
