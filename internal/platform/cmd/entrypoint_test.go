package cmd

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Addr  string `env:"CMD_TEST_ADDR" envDefault:"127.0.0.1:8080"`
	Store string `env:"CMD_TEST_STORE" envDefault:"sqlite"`
}

func TestParseConfigReadsEnvAndFlags(t *testing.T) {
	t.Setenv("CMD_TEST_ADDR", "env:9000")
	t.Setenv("CMD_TEST_STORE", "memory")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("load config defaults: %v", err)
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "address")
	fs.StringVar(&cfg.Store, "store", cfg.Store, "store")

	if err := ParseArgs(fs, []string{"-addr", "flag:9001"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	if cfg.Addr != "flag:9001" {
		t.Fatalf("addr = %q, want flag value", cfg.Addr)
	}
	if cfg.Store != "memory" {
		t.Fatalf("store = %q, want env value", cfg.Store)
	}
}

func TestParseArgsKeepsEnvWhenFlagAbsent(t *testing.T) {
	t.Setenv("CMD_TEST_ADDR", "configarg:9000")
	t.Setenv("CMD_TEST_STORE", "dynamodb")

	cfg := testConfig{}
	if err := ParseConfig(&cfg); err != nil {
		t.Fatalf("parse config: %v", err)
	}
	fs := flag.NewFlagSet("configargs", flag.ContinueOnError)
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "address")
	if err := ParseArgs(fs, nil); err != nil {
		t.Fatalf("parse args: %v", err)
	}
	if cfg.Store != "dynamodb" || cfg.Addr != "configarg:9000" {
		t.Fatalf("cfg = %+v, want env values", cfg)
	}
}

func TestParseConfigRejectsNilTarget(t *testing.T) {
	t.Parallel()

	if err := ParseConfig[testConfig](nil); err == nil {
		t.Fatal("expected nil target error")
	}
}

func TestParseArgsRejectsNilParser(t *testing.T) {
	t.Parallel()

	if err := ParseArgs(nil, []string{}); err == nil {
		t.Fatal("expected parse args to reject nil parser")
	}
}

func TestLoadDotEnvKeepsExistingValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("CMD_TEST_DOTENV=from-file\nCMD_TEST_DOTENV_SET=from-file\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv("CMD_TEST_DOTENV_SET", "from-env")
	t.Setenv("CMD_TEST_DOTENV", "")
	os.Unsetenv("CMD_TEST_DOTENV")

	LoadDotEnv(path)

	if got := os.Getenv("CMD_TEST_DOTENV"); got != "from-file" {
		t.Fatalf("CMD_TEST_DOTENV = %q, want from-file", got)
	}
	if got := os.Getenv("CMD_TEST_DOTENV_SET"); got != "from-env" {
		t.Fatalf("CMD_TEST_DOTENV_SET = %q, want from-env", got)
	}
}

func TestRunWithTelemetryRejectsMissingInputs(t *testing.T) {
	if err := RunWithTelemetry(context.Background(), "", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected missing service error")
	}
	if err := RunWithTelemetry(context.Background(), ServiceLeaderboard, nil); err == nil {
		t.Fatal("expected missing run function error")
	}
}

func TestRunWithTelemetryReturnsRunError(t *testing.T) {
	t.Setenv("LEADERBOARD_OTEL_ENDPOINT", "")

	want := errors.New("boom")
	err := RunWithTelemetry(context.Background(), ServiceLeaderboard, func(context.Context) error { return want })
	if !errors.Is(err, want) {
		t.Fatalf("err = %v, want %v", err, want)
	}
}

func TestStopTelemetryTimesOut(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	StopTelemetry(ServiceLeaderboard, func(ctx context.Context) error {
		deadline, _ = ctx.Deadline()
		return errors.New("exporter unavailable")
	})
	if deadline.IsZero() || time.Until(deadline) > TelemetryShutdownTimeout {
		t.Fatalf("deadline = %v, want within %v", deadline, TelemetryShutdownTimeout)
	}
}
