// Package config loads the vpsbridge server configuration from an optional
// YAML file and the environment.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// BackendURLEnvVar configures the base URL of the upstream VPS agent.
	// It is required: serving without a backend is meaningless, so startup
	// fails loudly when it is unset.
	BackendURLEnvVar = "VPS_BACKEND_URL"

	BindPortEnvVar  = "PORT"
	BindPortDefault = "8080"

	// BackendTimeoutSecEnvVar configures the timeout (in seconds) for a
	// single call to the backend.
	BackendTimeoutSecEnvVar  = "VPS_BACKEND_TIMEOUT_SEC"
	BackendTimeoutSecDefault = 30

	// DBUrlEnvVar enables the invocation audit log. Empty means disabled.
	DBUrlEnvVar = "DATABASE_URL"

	TelemetryEnabledEnvVar = "OTEL_ENABLED"
)

// Config holds the resolved server configuration.
type Config struct {
	BackendURL        string `yaml:"backend_url"`
	Port              string `yaml:"port"`
	BackendTimeoutSec int    `yaml:"backend_timeout_sec"`
	DatabaseURL       string `yaml:"database_url"`
	TelemetryEnabled  bool   `yaml:"telemetry_enabled"`
}

// Load builds the configuration. Values resolve in increasing precedence:
// defaults, then the YAML file at path (if path is non-empty), then
// environment variables. Load fails if the backend URL remains unset.
func Load(path string) (*Config, error) {
	c := &Config{
		Port:              BindPortDefault,
		BackendTimeoutSec: BackendTimeoutSecDefault,
	}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, c); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		if c.Port == "" {
			c.Port = BindPortDefault
		}
		if c.BackendTimeoutSec == 0 {
			c.BackendTimeoutSec = BackendTimeoutSecDefault
		}
	}

	if v := os.Getenv(BackendURLEnvVar); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv(BindPortEnvVar); v != "" {
		c.Port = v
	}
	if v := os.Getenv(DBUrlEnvVar); v != "" {
		c.DatabaseURL = v
	}

	timeout, err := backendTimeoutFromEnv(c.BackendTimeoutSec)
	if err != nil {
		return nil, err
	}
	c.BackendTimeoutSec = timeout

	enabled, err := telemetryEnabledFromEnv(c.TelemetryEnabled)
	if err != nil {
		return nil, err
	}
	c.TelemetryEnabled = enabled

	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// BackendTimeout returns the backend call timeout as a duration.
func (c *Config) BackendTimeout() time.Duration {
	return time.Duration(c.BackendTimeoutSec) * time.Second
}

// AuditEnabled returns true if the invocation audit log is configured.
func (c *Config) AuditEnabled() bool {
	return c.DatabaseURL != ""
}

func (c *Config) validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf(
			"backend URL is required: set the %s environment variable", BackendURLEnvVar,
		)
	}
	u, err := url.Parse(c.BackendURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid backend URL %q: must be an absolute http(s) URL", c.BackendURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend URL %q: unsupported scheme %q", c.BackendURL, u.Scheme)
	}
	if c.BackendTimeoutSec < 1 {
		return fmt.Errorf("backend timeout must be a positive number of seconds, got %d", c.BackendTimeoutSec)
	}
	return nil
}

func backendTimeoutFromEnv(current int) (int, error) {
	timeoutStr := strings.TrimSpace(os.Getenv(BackendTimeoutSecEnvVar))
	if timeoutStr == "" {
		return current, nil
	}
	timeout, err := strconv.Atoi(timeoutStr)
	if err != nil || timeout < 1 {
		return 0, fmt.Errorf(
			"invalid value for %s: '%s', must be a positive integer", BackendTimeoutSecEnvVar, timeoutStr,
		)
	}
	return timeout, nil
}

func telemetryEnabledFromEnv(current bool) (bool, error) {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(TelemetryEnabledEnvVar)))
	switch v {
	case "":
		return current, nil
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf(
			"invalid value for %s environment variable: '%s', valid values are 'true' or 'false'",
			TelemetryEnabledEnvVar, v,
		)
	}
}
