// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Log is the global logger instance.
var Log zerolog.Logger

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	Log = newConsole(os.Stdout)
	log.Logger = Log
}

// Setup applies the configured level and output format. Format "json" selects
// JSON lines; anything else keeps the console writer.
func Setup(level, format string) {
	SetLevel(level)
	if strings.EqualFold(format, "json") {
		SetJSON()
	}
}

// SetLevel sets the global log level.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// SetJSON switches to JSON output (for production).
func SetJSON() {
	SetOutput(os.Stdout)
}

// SetOutput writes JSON lines to w. Tests use it to capture output.
func SetOutput(w io.Writer) {
	Log = zerolog.New(w).
		With().
		Timestamp().
		Logger()
	log.Logger = Log
}

// With returns a child logger tagged with a component name.
func With(component string) zerolog.Logger {
	return Log.With().Str("component", component).Logger()
}

func newConsole(w io.Writer) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).
		With().
		Timestamp().
		Caller().
		Logger()
}
