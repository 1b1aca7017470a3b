// Command bridge runs the editor-side bridge client: it hosts the editor
// state, ticks the main-thread dispatcher, and keeps a persistent WebSocket
// connection to the relay server, reconnecting with backoff when it drops.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/isekream/WindsurfUnityMCP/config"
	"github.com/isekream/WindsurfUnityMCP/connection"
	"github.com/isekream/WindsurfUnityMCP/dispatch"
	"github.com/isekream/WindsurfUnityMCP/functions"
	"github.com/isekream/WindsurfUnityMCP/host"
	"github.com/isekream/WindsurfUnityMCP/protocol"
	"github.com/isekream/WindsurfUnityMCP/registry"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	flags := config.FlagValues{}

	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Editor automation bridge",
		Long:  "Connects the editor host to an automation relay over a persistent WebSocket.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags)
			if err != nil {
				return err
			}
			logger := protocol.InitLogger(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
			return run(cfg, logger)
		},
		SilenceUsage: true,
	}

	cmd.Flags().StringVar(&flags.ConfigFile, "config", "",
		"Path to YAML config file (env: WINDSURF_MCP_CONFIG)")
	cmd.Flags().StringVar(&flags.ServerURL, "server-url", "",
		"WebSocket URL of the relay server (env: WINDSURF_MCP_SERVER_URL)")
	cmd.Flags().StringVar(&flags.ClientType, "client-type", "",
		"Client type announced in the handshake (env: WINDSURF_MCP_CLIENT_TYPE)")
	cmd.Flags().StringVar(&flags.TickInterval, "tick-interval", "",
		"Host tick interval (env: WINDSURF_MCP_TICK_INTERVAL)")
	cmd.Flags().StringVar(&flags.CallTimeout, "call-timeout", "",
		"Timeout for outbound calls (env: WINDSURF_MCP_CALL_TIMEOUT)")
	cmd.Flags().StringVar(&flags.ReconnectInitialDelay, "reconnect-initial-delay", "",
		"Initial reconnect backoff (env: WINDSURF_MCP_RECONNECT_INITIAL_DELAY)")
	cmd.Flags().StringVar(&flags.ReconnectMaxDelay, "reconnect-max-delay", "",
		"Maximum reconnect backoff (env: WINDSURF_MCP_RECONNECT_MAX_DELAY)")
	cmd.Flags().StringVar(&flags.LogLevel, "log-level", "",
		"Log level: debug, info, warn, error (env: WINDSURF_MCP_LOG_LEVEL)")
	cmd.Flags().StringVar(&flags.LogFormat, "log-format", "",
		"Log format: json, console (env: WINDSURF_MCP_LOG_FORMAT)")
	cmd.Flags().StringVar(&flags.LogFile, "log-file", "",
		"Log file path, rotated automatically (env: WINDSURF_MCP_LOG_FILE)")

	return cmd
}

// run wires the bridge together and drives the reconnect loop until a
// termination signal arrives. The manager never reconnects on its own;
// backoff policy lives here, doubling per failure and resetting once a
// connection is established.
func run(cfg *config.Config, logger zerolog.Logger) error {
	logger.Info().
		Str("serverURL", cfg.ServerURL).
		Str("clientType", cfg.ClientType).
		Dur("tickInterval", cfg.TickInterval).
		Msg("Bridge starting")

	h := host.New()
	dispatcher := dispatch.New(logger)
	loop := host.NewLoop(dispatcher, cfg.TickInterval, logger)
	loop.Start()
	defer loop.Stop()

	reg := registry.New(logger)
	functions.NewCatalog(h, dispatcher, logger).RegisterAll(reg)
	logger.Info().Strs("functions", reg.Names()).Msg("Function catalog registered")

	mgr := connection.NewManager(connection.Options{
		Endpoint:    cfg.ServerURL,
		ClientType:  cfg.ClientType,
		Version:     cfg.Version,
		Registry:    reg,
		Logger:      logger,
		CallTimeout: cfg.CallTimeout,
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	delay := cfg.ReconnectInitialDelay
	for {
		if err := mgr.Connect(); err != nil {
			logger.Error().Err(err).Dur("retryIn", delay).Msg("Connect failed")
			if !sleepOrSignal(delay, sigCh, logger) {
				return nil
			}
			delay = nextDelay(delay, cfg.ReconnectMaxDelay)
			continue
		}
		delay = cfg.ReconnectInitialDelay

		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("Shutting down")
			mgr.Disconnect()
			return nil
		case <-mgr.Done():
			logger.Warn().Dur("retryIn", delay).Msg("Connection lost, reconnecting")
			if !sleepOrSignal(delay, sigCh, logger) {
				return nil
			}
			delay = nextDelay(delay, cfg.ReconnectMaxDelay)
		}
	}
}

// sleepOrSignal waits out the backoff delay. Returns false when a
// termination signal interrupts the wait.
func sleepOrSignal(delay time.Duration, sigCh <-chan os.Signal, logger zerolog.Logger) bool {
	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
		return false
	case <-time.After(delay):
		return true
	}
}

func nextDelay(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max {
		return max
	}
	return next
}
