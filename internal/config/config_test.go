package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		BackendURLEnvVar, BindPortEnvVar, BackendTimeoutSecEnvVar, DBUrlEnvVar, TelemetryEnabledEnvVar,
	} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadRequiresBackendURL(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), BackendURLEnvVar)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(BackendURLEnvVar, "http://10.0.0.5:7000")

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.5:7000", c.BackendURL)
	assert.Equal(t, BindPortDefault, c.Port)
	assert.Equal(t, 30*time.Second, c.BackendTimeout())
	assert.False(t, c.AuditEnabled())
	assert.False(t, c.TelemetryEnabled)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend_url: https://agent.internal:7000
port: "9090"
backend_timeout_sec: 5
database_url: file::memory:?cache=shared
telemetry_enabled: true
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://agent.internal:7000", c.BackendURL)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, 5*time.Second, c.BackendTimeout())
	assert.True(t, c.AuditEnabled())
	assert.True(t, c.TelemetryEnabled)
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfigFile(t, `
backend_url: http://from-file:7000
port: "9090"
backend_timeout_sec: 5
`)

	t.Setenv(BackendURLEnvVar, "http://from-env:7000")
	t.Setenv(BindPortEnvVar, "9999")
	t.Setenv(BackendTimeoutSecEnvVar, "60")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:7000", c.BackendURL)
	assert.Equal(t, "9999", c.Port)
	assert.Equal(t, 60, c.BackendTimeoutSec)
}

func TestLoadRejectsInvalidBackendURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "relative", url: "agent.internal:7000/path"},
		{name: "no host", url: "http://"},
		{name: "bad scheme", url: "ftp://agent.internal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(BackendURLEnvVar, tt.url)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestLoadRejectsInvalidTimeout(t *testing.T) {
	for _, v := range []string{"abc", "0", "-5"} {
		t.Run(v, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(BackendURLEnvVar, "http://10.0.0.5:7000")
			t.Setenv(BackendTimeoutSecEnvVar, v)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), BackendTimeoutSecEnvVar)
		})
	}
}

func TestTelemetryEnabledFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(BackendURLEnvVar, "http://10.0.0.5:7000")

	for _, v := range []string{"true", "1"} {
		t.Setenv(TelemetryEnabledEnvVar, v)
		c, err := Load("")
		require.NoError(t, err)
		assert.True(t, c.TelemetryEnabled)
	}
	for _, v := range []string{"false", "0"} {
		t.Setenv(TelemetryEnabledEnvVar, v)
		c, err := Load("")
		require.NoError(t, err)
		assert.False(t, c.TelemetryEnabled)
	}

	t.Setenv(TelemetryEnabledEnvVar, "maybe")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), TelemetryEnabledEnvVar)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(BackendURLEnvVar, "http://10.0.0.5:7000")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
