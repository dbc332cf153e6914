// Package logger builds the zerolog logger used by the textbelt CLI.
package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const consoleTimeFormat = "02-01-2006 15:04:05"

// New constructs a zerolog logger according to the runtime environment.
// Development environments receive human readable console logs while other
// environments emit JSON for easy ingestion.
func New(env, level string, writers ...io.Writer) (*zerolog.Logger, error) {
	lvl, err := parseLevel(level)
	if err != nil {
		return nil, err
	}
	zerolog.DurationFieldUnit = time.Millisecond

	var output io.Writer
	switch {
	case len(writers) > 0:
		output = io.MultiWriter(writers...)
	case strings.EqualFold(env, "development") || strings.EqualFold(env, "dev"):
		output = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: consoleTimeFormat}
	default:
		output = os.Stderr
	}

	logger := zerolog.New(output).With().Timestamp().Logger().Level(lvl)
	return &logger, nil
}

func parseLevel(level string) (zerolog.Level, error) {
	level = strings.TrimSpace(level)
	if level == "" {
		level = zerolog.InfoLevel.String()
	}
	return zerolog.ParseLevel(strings.ToLower(level))
}
