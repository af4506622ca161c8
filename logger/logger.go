// Package logger provides the process-wide structured logger. Components
// derive their own loggers from it with a "component" field.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

// Logger returns the shared logger.
func Logger() zerolog.Logger {
	return logger
}

// Set replaces the shared logger.
func Set(l zerolog.Logger) {
	logger = l
}

// Disable turns logging off completely.
func Disable() {
	logger = zerolog.Nop()
}
