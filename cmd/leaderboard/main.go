// Package main starts the leaderboard HTTP service process lifecycle.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	leaderboardcmd "github.com/louisbranch/leaderboard/internal/cmd/leaderboard"
	entrypoint "github.com/louisbranch/leaderboard/internal/platform/cmd"
	"github.com/louisbranch/leaderboard/internal/platform/config"
)

func main() {
	entrypoint.LoadDotEnv()
	cfg, err := leaderboardcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := leaderboardcmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
