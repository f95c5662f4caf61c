// Package cmd wires process startup for the leaderboard binaries: .env
// loading, env and flag parsing, and the tracing lifecycle around a run loop.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/louisbranch/leaderboard/internal/platform/config"
	"github.com/louisbranch/leaderboard/internal/platform/otel"
)

// Names reported as the telemetry service resource.
const (
	ServiceLeaderboard       = "leaderboard"
	ServiceLeaderboardLambda = "leaderboard-lambda"
)

// TelemetryShutdownTimeout bounds the final span export on exit.
const TelemetryShutdownTimeout = 5 * time.Second

// LoadDotEnv copies variables from .env files into the process environment.
// Variables that are already set win. A missing file is not an error.
func LoadDotEnv(paths ...string) {
	if err := godotenv.Load(paths...); err != nil {
		slog.Debug("skip .env", "error", err)
	}
}

// ParseConfig fills cfg from the environment. Call ParseArgs afterwards so
// flags take precedence over env values.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("parse config: nil target")
	}
	if err := config.ParseEnv(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// ParseArgs applies command-line args to fs.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("parse args: nil flag set")
	}
	return fs.Parse(args)
}

// RunWithTelemetry registers tracing for service, calls run and stops
// tracing after run returns.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error) error {
	service = strings.TrimSpace(service)
	switch {
	case service == "":
		return errors.New("run: empty service name")
	case run == nil:
		return fmt.Errorf("run %s: nil run function", service)
	}

	shutdown, err := otel.Setup(ctx, service)
	if err != nil {
		return fmt.Errorf("run %s: %w", service, err)
	}
	defer StopTelemetry(service, shutdown)
	return run(ctx)
}

// StopTelemetry calls shutdown within TelemetryShutdownTimeout and logs any
// failure.
func StopTelemetry(service string, shutdown func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), TelemetryShutdownTimeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		slog.Error("stop telemetry", "service", service, "error", err)
	}
}
