// Package logging configures the process-wide zerolog logger used by the
// dataset tools. Pipeline stages log structured counts through it so a run
// can be audited from its log output alone.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger settings.
type Config struct {
	// Level is the minimum level: debug, info, warn, error. Default info.
	Level string
	// Format is "console" or "json". Default console.
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

var log zerolog.Logger

func init() {
	Init(Config{})
}

// Init configures the package logger. Safe to call again to reconfigure.
func Init(cfg Config) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "console"
	}
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	zerolog.TimeFieldFormat = time.RFC3339

	out := cfg.Output
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: "15:04:05", NoColor: true}
	}
	log = zerolog.New(out).With().Timestamp().Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Logger returns the configured logger.
func Logger() zerolog.Logger {
	return log
}

// With creates a child logger context, typically to tag a component:
//
//	lg := logging.With().Str("collection", "azuki").Logger()
func With() zerolog.Context {
	return log.With()
}

func Debug() *zerolog.Event { return log.Debug() }
func Info() *zerolog.Event  { return log.Info() }
func Warn() *zerolog.Event  { return log.Warn() }
func Error() *zerolog.Event { return log.Error() }

// Fatal logs at fatal level and exits the process.
func Fatal() *zerolog.Event { return log.Fatal() }

// Err is shorthand for Error().Err(err).
func Err(err error) *zerolog.Event { return log.Err(err) }

// NewTestLogger returns a logger writing JSON lines to w, for capturing
// output in tests.
func NewTestLogger(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}
