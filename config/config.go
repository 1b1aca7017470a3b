// Package config resolves bridge configuration from command-line flags,
// environment variables, an optional YAML file, and built-in defaults, in
// that order of precedence.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all resolved bridge configuration.
type Config struct {
	ServerURL  string
	ClientType string
	Version    string

	TickInterval time.Duration
	CallTimeout  time.Duration

	ReconnectInitialDelay time.Duration
	ReconnectMaxDelay     time.Duration

	LogLevel  string
	LogFormat string
	LogFile   string
}

// FlagValues carries the raw command-line flag values. Empty strings mean
// the flag was not set; durations and numbers arrive as strings so that
// "unset" is distinguishable from a zero value.
type FlagValues struct {
	ConfigFile            string
	ServerURL             string
	ClientType            string
	TickInterval          string
	CallTimeout           string
	ReconnectInitialDelay string
	ReconnectMaxDelay     string
	LogLevel              string
	LogFormat             string
	LogFile               string
}

// fileConfig is the YAML file shape. All fields are optional.
type fileConfig struct {
	ServerURL             string `yaml:"server_url"`
	ClientType            string `yaml:"client_type"`
	TickInterval          string `yaml:"tick_interval"`
	CallTimeout           string `yaml:"call_timeout"`
	ReconnectInitialDelay string `yaml:"reconnect_initial_delay"`
	ReconnectMaxDelay     string `yaml:"reconnect_max_delay"`
	LogLevel              string `yaml:"log_level"`
	LogFormat             string `yaml:"log_format"`
	LogFile               string `yaml:"log_file"`
}

// Load resolves the configuration. A config file named by flag or
// WINDSURF_MCP_CONFIG must exist and parse; everything else falls back
// through env vars and the file to defaults.
func Load(flags FlagValues) (*Config, error) {
	var file fileConfig
	configPath := resolveString(flags.ConfigFile, []string{"WINDSURF_MCP_CONFIG"}, "", "")
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", configPath, err)
		}
	}

	cfg := &Config{
		ServerURL: resolveString(flags.ServerURL,
			[]string{"WINDSURF_MCP_SERVER_URL"}, file.ServerURL, "ws://localhost:8000/ws"),
		ClientType: resolveString(flags.ClientType,
			[]string{"WINDSURF_MCP_CLIENT_TYPE"}, file.ClientType, "unity"),
		Version: "1.0.0",
		TickInterval: resolveDuration(flags.TickInterval,
			[]string{"WINDSURF_MCP_TICK_INTERVAL"}, file.TickInterval, 16*time.Millisecond),
		CallTimeout: resolveDuration(flags.CallTimeout,
			[]string{"WINDSURF_MCP_CALL_TIMEOUT"}, file.CallTimeout, 30*time.Second),
		ReconnectInitialDelay: resolveDuration(flags.ReconnectInitialDelay,
			[]string{"WINDSURF_MCP_RECONNECT_INITIAL_DELAY"}, file.ReconnectInitialDelay, time.Second),
		ReconnectMaxDelay: resolveDuration(flags.ReconnectMaxDelay,
			[]string{"WINDSURF_MCP_RECONNECT_MAX_DELAY"}, file.ReconnectMaxDelay, 30*time.Second),
		LogLevel: resolveString(flags.LogLevel,
			[]string{"WINDSURF_MCP_LOG_LEVEL"}, file.LogLevel, "info"),
		LogFormat: resolveString(flags.LogFormat,
			[]string{"WINDSURF_MCP_LOG_FORMAT"}, file.LogFormat, "console"),
		LogFile: resolveString(flags.LogFile,
			[]string{"WINDSURF_MCP_LOG_FILE"}, file.LogFile, ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.ServerURL, "ws://") && !strings.HasPrefix(c.ServerURL, "wss://") {
		return fmt.Errorf("server URL %q must use the ws or wss scheme", c.ServerURL)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", c.TickInterval)
	}
	if c.ReconnectInitialDelay > c.ReconnectMaxDelay {
		return fmt.Errorf("reconnect initial delay %s exceeds max delay %s",
			c.ReconnectInitialDelay, c.ReconnectMaxDelay)
	}
	return nil
}

// resolveString returns the first non-empty value from: flag, env vars,
// config file, default.
func resolveString(flagVal string, envVars []string, fileVal, defaultVal string) string {
	if flagVal != "" {
		return flagVal
	}
	for _, env := range envVars {
		if val := os.Getenv(env); val != "" {
			return val
		}
	}
	if fileVal != "" {
		return fileVal
	}
	return defaultVal
}

// resolveDuration resolves a duration the same way, accepting both duration
// strings ("10s", "1m30s") and plain seconds ("60").
func resolveDuration(flagVal string, envVars []string, fileVal string, defaultVal time.Duration) time.Duration {
	val := resolveString(flagVal, envVars, fileVal, "")
	if val == "" {
		return defaultVal
	}
	return parseDuration(val, defaultVal)
}

func parseDuration(val string, defaultVal time.Duration) time.Duration {
	if seconds, err := strconv.Atoi(val); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if duration, err := time.ParseDuration(val); err == nil {
		return duration
	}
	return defaultVal
}
