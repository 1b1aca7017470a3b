package protocol

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ParseLogLevel converts a log level string to zerolog.Level.
func ParseLogLevel(level string) zerolog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zerolog.DebugLevel
	case "INFO":
		return zerolog.InfoLevel
	case "WARN", "WARNING":
		return zerolog.WarnLevel
	case "ERROR":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// InitLogger creates a zerolog logger with the specified level and format.
// When logFile is non-empty, output additionally goes to that file with
// size-based rotation.
func InitLogger(logLevel, logFormat, logFile string) zerolog.Logger {
	level := ParseLogLevel(logLevel)
	zerolog.SetGlobalLevel(level)

	var output io.Writer = os.Stdout
	if logFormat == "console" {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	}

	if logFile != "" {
		rotating := &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
		output = io.MultiWriter(output, rotating)
	}

	return zerolog.New(output).With().Timestamp().Logger()
}
