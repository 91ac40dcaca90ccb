// Package server provides the two carriers of the vpsbridge gateway: a
// stdio MCP transport and an HTTP server hosting the streamable HTTP MCP
// transport plus a small REST API. Both carriers share one dispatcher.
package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vpsbridge/vpsbridge/internal/audit"
	"github.com/vpsbridge/vpsbridge/internal/registry"
	"github.com/vpsbridge/vpsbridge/internal/telemetry"
	"github.com/vpsbridge/vpsbridge/pkg/types"
	"github.com/vpsbridge/vpsbridge/pkg/version"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const (
	V0PathPrefix    = "/v0"
	V0ApiPathPrefix = "/api" + V0PathPrefix
)

// ServerOptions holds the dependencies for constructing a Server.
type ServerOptions struct {
	// Port is the TCP port the HTTP carrier binds to.
	Port string

	// Registry is the tool catalog and dispatcher shared by both carriers.
	Registry *registry.Registry

	// AuditStore exposes the invocation audit log over the REST API.
	// Nil disables the audit endpoint.
	AuditStore *audit.Store

	OtelProviders *telemetry.Providers

	Logger *zap.Logger
}

// Server hosts the vpsbridge carriers.
type Server struct {
	port   string
	router *gin.Engine

	mcpServer *mcpserver.MCPServer

	registry   *registry.Registry
	auditStore *audit.Store

	otelProviders *telemetry.Providers
	logger        *zap.Logger
}

// NewServer builds the MCP server from the registry and sets up the HTTP router.
func NewServer(opts *ServerOptions) (*Server, error) {
	if opts.Registry == nil {
		return nil, fmt.Errorf("registry must not be nil")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		port:          opts.Port,
		registry:      opts.Registry,
		auditStore:    opts.AuditStore,
		otelProviders: opts.OtelProviders,
		logger:        logger,
	}
	s.mcpServer = buildMCPServer(opts.Registry, logger)
	s.router = s.setupRouter()

	return s, nil
}

// Start runs the HTTP carrier (blocking call).
func (s *Server) Start() error {
	if err := s.router.Run(":" + s.port); err != nil {
		return fmt.Errorf("failed to run the server: %w", err)
	}
	return nil
}

// ServeStdio runs the stdio carrier (blocking call). Frames are exchanged
// one per line on stdin/stdout; logs must go to stderr only.
func (s *Server) ServeStdio() error {
	if err := mcpserver.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve MCP over stdio: %w", err)
	}
	return nil
}

// setupRouter sets up the gin router with the MCP endpoint and the REST API.
func (s *Server) setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()

	if s.otelProviders.IsEnabled() {
		r.Use(otelgin.Middleware(s.otelProviders.ServiceName()))
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET(
		"/health",
		func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		},
	)

	r.GET(
		"/metadata",
		func(c *gin.Context) {
			m := &types.ServerMetadata{
				Version: version.GetVersion(),
			}
			c.JSON(http.StatusOK, m)
		},
	)

	// The streamable HTTP MCP transport shares the MCP server with stdio.
	streamableHTTPServer := mcpserver.NewStreamableHTTPServer(s.mcpServer)
	r.Any("/mcp", gin.WrapH(streamableHTTPServer))

	apiV0 := r.Group(V0ApiPathPrefix)
	{
		apiV0.GET("/tools", s.listToolsHandler())
		apiV0.GET("/tool", s.getToolHandler())
		apiV0.POST("/tools/invoke", s.invokeToolHandler())

		if s.auditStore != nil {
			apiV0.GET("/audit", s.listAuditRecordsHandler())
		}
	}

	return r
}
