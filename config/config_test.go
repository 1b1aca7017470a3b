package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(FlagValues{})
	require.NoError(t, err)

	assert.Equal(t, "ws://localhost:8000/ws", cfg.ServerURL)
	assert.Equal(t, "unity", cfg.ClientType)
	assert.Equal(t, 16*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout)
	assert.Equal(t, time.Second, cfg.ReconnectInitialDelay)
	assert.Equal(t, 30*time.Second, cfg.ReconnectMaxDelay)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "console", cfg.LogFormat)
}

func TestLoad_FlagBeatsEnv(t *testing.T) {
	t.Setenv("WINDSURF_MCP_SERVER_URL", "ws://env:8000/ws")

	cfg, err := Load(FlagValues{ServerURL: "ws://flag:8000/ws"})
	require.NoError(t, err)
	assert.Equal(t, "ws://flag:8000/ws", cfg.ServerURL)

	cfg, err = Load(FlagValues{})
	require.NoError(t, err)
	assert.Equal(t, "ws://env:8000/ws", cfg.ServerURL)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(
		"server_url: ws://filehost:9000/ws\nlog_level: debug\ncall_timeout: 10s\n",
	), 0o600))

	cfg, err := Load(FlagValues{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "ws://filehost:9000/ws", cfg.ServerURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 10*time.Second, cfg.CallTimeout)
	assert.Equal(t, "unity", cfg.ClientType, "file omissions fall back to defaults")

	// Env beats the file.
	t.Setenv("WINDSURF_MCP_LOG_LEVEL", "warn")
	cfg, err = Load(FlagValues{ConfigFile: path})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	_, err := Load(FlagValues{ConfigFile: "/nonexistent/bridge.yaml"})
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server_url: [oops\n"), 0o600))
	_, err = Load(FlagValues{ConfigFile: path})
	assert.Error(t, err)
}

func TestLoad_Validation(t *testing.T) {
	_, err := Load(FlagValues{ServerURL: "http://localhost:8000"})
	assert.ErrorContains(t, err, "ws or wss")

	_, err = Load(FlagValues{
		ReconnectInitialDelay: "1m",
		ReconnectMaxDelay:     "5s",
	})
	assert.ErrorContains(t, err, "exceeds max delay")
}

func TestParseDuration_PlainSecondsAndStrings(t *testing.T) {
	cfg, err := Load(FlagValues{CallTimeout: "45"})
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.CallTimeout)

	cfg, err = Load(FlagValues{CallTimeout: "1m30s"})
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, cfg.CallTimeout)

	cfg, err = Load(FlagValues{CallTimeout: "soon"})
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.CallTimeout, "unparseable values fall back")
}
