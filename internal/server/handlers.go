package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/vpsbridge/vpsbridge/internal/backend"
	"github.com/vpsbridge/vpsbridge/internal/registry"
	"github.com/vpsbridge/vpsbridge/pkg/types"
	"go.uber.org/zap"
)

// Stable, machine-readable error codes exposed by the REST API.
const (
	ErrCodeUnknownTool      = "unknown_tool"
	ErrCodeInvalidArguments = "invalid_arguments"
	ErrCodeUpstreamError    = "upstream_error"
	ErrCodeInternalError    = "internal_error"
)

// classifyDispatchError maps a dispatch failure to an HTTP status and a
// stable error code. Caller errors map to 4xx, backend failures to 502.
func classifyDispatchError(err error) (int, string) {
	var unknownTool *registry.UnknownToolError
	var invalidArgs *registry.InvalidArgumentsError
	var upstream *backend.Error

	switch {
	case errors.As(err, &unknownTool):
		return http.StatusNotFound, ErrCodeUnknownTool
	case errors.As(err, &invalidArgs):
		return http.StatusBadRequest, ErrCodeInvalidArguments
	case errors.As(err, &upstream):
		return http.StatusBadGateway, ErrCodeUpstreamError
	default:
		return http.StatusInternalServerError, ErrCodeInternalError
	}
}

func (s *Server) listToolsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		infos := s.registry.List()
		tools := make([]types.Tool, 0, len(infos))
		for _, info := range infos {
			tools = append(tools, toolToAPI(info))
		}
		c.JSON(http.StatusOK, tools)
	}
}

func (s *Server) getToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		name := c.Query("name")
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name query parameter is required"})
			return
		}
		def, ok := s.registry.Get(name)
		if !ok {
			err := &registry.UnknownToolError{Name: name}
			c.JSON(http.StatusNotFound, gin.H{"code": ErrCodeUnknownTool, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, toolToAPI(registry.ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			Params:      def.Params,
		}))
	}
}

func (s *Server) invokeToolHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input types.InvokeToolRequest
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := s.registry.Dispatch(c.Request.Context(), input.Name, input.Arguments)
		if err != nil {
			status, code := classifyDispatchError(err)
			s.logger.Warn("tool invocation failed",
				zap.String("tool", input.Name),
				zap.String("code", code),
				zap.Error(err),
			)
			c.JSON(status, gin.H{"code": code, "error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, types.ToolInvokeResult{Content: res.Content})
	}
}

func (s *Server) listAuditRecordsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := 50
		if v := c.Query("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}
		calls, err := s.auditStore.Recent(limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, calls)
	}
}

// toolToAPI converts a catalog entry to its REST representation. Parameters
// are typed as plain JSON schema fragments, string-typed for the fixed toolset.
func toolToAPI(info registry.ToolInfo) types.Tool {
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
	return types.Tool{
		Name:        info.Name,
		Description: info.Description,
		InputSchema: types.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}
