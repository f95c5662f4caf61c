// Package main runs the leaderboard as an AWS Lambda function behind API
// Gateway.
package main

import (
	"context"
	"log/slog"

	"github.com/aws/aws-lambda-go/lambda"
	entrypoint "github.com/louisbranch/leaderboard/internal/platform/cmd"
	"github.com/louisbranch/leaderboard/internal/platform/config"
	"github.com/louisbranch/leaderboard/internal/platform/otel"
	server "github.com/louisbranch/leaderboard/internal/services/leaderboard/app"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/transport/lambdaapi"
)

func main() {
	ctx := context.Background()

	cfg, err := server.LoadConfig()
	if err != nil {
		config.Exitf("load config: %v", err)
	}
	// The function filesystem is ephemeral, so the SQLite default maps to DynamoDB.
	if cfg.Store == storage.KindSQLite {
		cfg.Store = storage.KindDynamoDB
	}
	logger, err := cfg.Logger()
	if err != nil {
		config.Exitf("build logger: %v", err)
	}
	slog.SetDefault(logger)

	shutdown, err := otel.Setup(ctx, entrypoint.ServiceLeaderboardLambda)
	if err != nil {
		config.Exitf("setup telemetry: %v", err)
	}

	runtime, err := server.NewRuntime(ctx, cfg, logger)
	if err != nil {
		config.Exitf("build runtime: %v", err)
	}
	handler := lambdaapi.NewHandler(runtime.Service, logger).WithFlush(otel.ForceFlush)

	lambda.StartWithOptions(handler.Invoke,
		lambda.WithEnableSIGTERM(func() {
			entrypoint.StopTelemetry(entrypoint.ServiceLeaderboardLambda, shutdown)
			if err := runtime.Close(); err != nil {
				logger.Error("close leaderboard store", "error", err)
			}
		}),
	)
}
