// Package logging builds the process slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Options selects the logger level and output format.
type Options struct {
	Level  string
	Format string
	// Output defaults to os.Stderr.
	Output io.Writer
}

// New builds a logger. Text output uses tint for readable local logs; json
// output is meant for log collectors.
func New(opts Options) (*slog.Logger, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	out := opts.Output
	if out == nil {
		out = os.Stderr
	}

	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		return slog.New(tint.NewHandler(out, &tint.Options{
			Level:      level,
			TimeFormat: time.DateTime,
		})), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", opts.Format)
	}
}

// ParseLevel converts a level name into a slog.Level. Empty means info.
func ParseLevel(value string) (slog.Level, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log level %q: %w", value, err)
	}
	return level, nil
}
