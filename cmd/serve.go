package cmd

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/vpsbridge/vpsbridge/internal/audit"
	"github.com/vpsbridge/vpsbridge/internal/backend"
	"github.com/vpsbridge/vpsbridge/internal/config"
	"github.com/vpsbridge/vpsbridge/internal/db"
	"github.com/vpsbridge/vpsbridge/internal/registry"
	"github.com/vpsbridge/vpsbridge/internal/server"
	"github.com/vpsbridge/vpsbridge/internal/telemetry"
	"github.com/vpsbridge/vpsbridge/internal/tools"
	"go.uber.org/zap"
)

// Carrier names accepted by the --carrier flag.
const (
	CarrierHTTP  = "http"
	CarrierStdio = "stdio"
)

var (
	serveCmdBindPort   string
	serveCmdCarrier    string
	serveCmdConfigFile string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the vpsbridge gateway",
	Long: "Starts the vpsbridge gateway on one of two carriers.\n\n" +
		"The http carrier (default) serves the streamable HTTP MCP transport on /mcp\n" +
		"alongside a small REST API. The stdio carrier exchanges MCP frames on\n" +
		"stdin/stdout and is meant to be spawned directly by an MCP client.\n\n" +
		"The upstream VPS agent is configured via the " + config.BackendURLEnvVar + " environment\n" +
		"variable (required). Set " + config.DBUrlEnvVar + " to enable the invocation audit log:\n" +
		"a postgres:// DSN or a sqlite file path.\n",
	RunE: runServe,
	Annotations: map[string]string{
		"group": string(subCommandGroupBasic),
		"order": "1",
	},
}

func init() {
	serveCmd.Flags().StringVar(
		&serveCmdBindPort,
		"port",
		"",
		fmt.Sprintf("port to bind the HTTP carrier to (overrides env var %s)", config.BindPortEnvVar),
	)
	serveCmd.Flags().StringVar(
		&serveCmdCarrier,
		"carrier",
		CarrierHTTP,
		fmt.Sprintf("carrier to serve on ('%s' | '%s')", CarrierHTTP, CarrierStdio),
	)
	serveCmd.Flags().StringVar(
		&serveCmdConfigFile,
		"config",
		"",
		"path to an optional YAML config file (environment variables take precedence)",
	)

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	if serveCmdCarrier != CarrierHTTP && serveCmdCarrier != CarrierStdio {
		return fmt.Errorf(
			"invalid carrier '%s', valid values are '%s' and '%s'",
			serveCmdCarrier, CarrierHTTP, CarrierStdio,
		)
	}

	cfg, err := config.Load(serveCmdConfigFile)
	if err != nil {
		return err
	}
	if serveCmdBindPort != "" {
		cfg.Port = serveCmdBindPort
	}

	// zap writes to stderr, which keeps stdout clean for the stdio carrier.
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	otelProviders, err := telemetry.Init(cmd.Context(), &telemetry.Config{
		ServiceName: "vpsbridge",
		Enabled:     cfg.TelemetryEnabled,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Opentelemetry providers: %v", err)
	}
	defer func() {
		if err := otelProviders.Shutdown(cmd.Context()); err != nil {
			logger.Warn("failed to shutdown opentelemetry providers", zap.Error(err))
		}
	}()

	// A no-op metrics implementation is used unless telemetry is enabled,
	// so the dispatch path never has to check whether metrics exist.
	metrics := telemetry.NewNoopCustomMetrics()
	if otelProviders.IsEnabled() {
		metrics, err = telemetry.NewOtelCustomMetrics(otelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create tool call metrics: %v", err)
		}
	}

	var observers []registry.InvocationObserver
	var auditStore *audit.Store
	if cfg.AuditEnabled() {
		dbConn, err := db.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		auditStore, err = audit.NewStore(dbConn, logger)
		if err != nil {
			return fmt.Errorf("failed to create audit store: %v", err)
		}
		observers = append(observers, auditStore.Observer())
	}

	reg := registry.NewRegistry(&registry.Config{
		Metrics:   metrics,
		Observers: observers,
	})
	backendClient := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout())
	if err := tools.RegisterAll(reg, backendClient); err != nil {
		return err
	}

	s, err := server.NewServer(&server.ServerOptions{
		Port:          cfg.Port,
		Registry:      reg,
		AuditStore:    auditStore,
		OtelProviders: otelProviders,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %v", err)
	}

	logger.Info("starting vpsbridge gateway",
		zap.String("carrier", serveCmdCarrier),
		zap.String("backend_url", cfg.BackendURL),
		zap.Bool("audit_enabled", cfg.AuditEnabled()),
	)

	if serveCmdCarrier == CarrierStdio {
		return s.ServeStdio()
	}

	cmd.Printf("vpsbridge HTTP server listening on :%s\n", cfg.Port)
	if err := s.Start(); err != nil {
		return fmt.Errorf("failed to run the server: %v", err)
	}
	return nil
}
