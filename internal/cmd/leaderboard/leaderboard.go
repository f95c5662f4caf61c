// Package leaderboard parses leaderboard service flags and launches the service.
package leaderboard

import (
	"context"
	"flag"
	"log/slog"

	entrypoint "github.com/louisbranch/leaderboard/internal/platform/cmd"
	server "github.com/louisbranch/leaderboard/internal/services/leaderboard/app"
)

// Config holds leaderboard command configuration.
type Config struct {
	Port    int `env:"LEADERBOARD_PORT" envDefault:"8080"`
	Runtime server.Config
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The leaderboard HTTP server port")
	fs.StringVar(&cfg.Runtime.Store, "store", cfg.Runtime.Store, "Score store: sqlite, dynamodb, postgres, mongodb or memory")
	fs.StringVar(&cfg.Runtime.DBPath, "db-path", cfg.Runtime.DBPath, "SQLite database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the leaderboard HTTP API service.
func Run(ctx context.Context, cfg Config) error {
	logger, err := cfg.Runtime.Logger()
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLeaderboard, func(ctx context.Context) error {
		return server.Run(ctx, cfg.Port, cfg.Runtime, logger)
	})
}
