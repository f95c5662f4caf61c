package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/leaderboard/internal/platform/config"
	"github.com/louisbranch/leaderboard/internal/platform/logging"
	"github.com/louisbranch/leaderboard/internal/platform/timeouts"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/api"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/sanitize"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
	leaderboarddynamodb "github.com/louisbranch/leaderboard/internal/services/leaderboard/storage/dynamodb"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage/memory"
	leaderboardmongodb "github.com/louisbranch/leaderboard/internal/services/leaderboard/storage/mongodb"
	leaderboardpostgres "github.com/louisbranch/leaderboard/internal/services/leaderboard/storage/postgres"
	leaderboardsqlite "github.com/louisbranch/leaderboard/internal/services/leaderboard/storage/sqlite"
)

// Config holds the runtime settings shared by the HTTP server and the
// Lambda function.
type Config struct {
	TableName          string   `env:"TABLE_NAME,required,notEmpty"`
	Store              string   `env:"LEADERBOARD_STORE" envDefault:"sqlite"`
	DBPath             string   `env:"LEADERBOARD_DB_PATH" envDefault:"data/leaderboard.db"`
	DynamoDBEndpoint   string   `env:"LEADERBOARD_DYNAMODB_ENDPOINT"`
	PostgresDSN        string   `env:"LEADERBOARD_POSTGRES_DSN"`
	MongoDBURI         string   `env:"LEADERBOARD_MONGODB_URI"`
	MongoDBDatabase    string   `env:"LEADERBOARD_MONGODB_DATABASE" envDefault:"leaderboard"`
	CORSOrigins        []string `env:"LEADERBOARD_CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	ProfanityWordsFile string   `env:"LEADERBOARD_PROFANITY_WORDS_FILE"`
	LogLevel           string   `env:"LEADERBOARD_LOG_LEVEL" envDefault:"info"`
	LogFormat          string   `env:"LEADERBOARD_LOG_FORMAT" envDefault:"text"`
}

// LoadConfig reads Config from the process environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse leaderboard env: %w", err)
	}
	return cfg, nil
}

// LoadConfigFrom reads Config from an explicit environment map.
func LoadConfigFrom(environ map[string]string) (Config, error) {
	var cfg Config
	if err := config.ParseEnvFrom(&cfg, environ); err != nil {
		return Config{}, fmt.Errorf("parse leaderboard env: %w", err)
	}
	return cfg, nil
}

// Logger builds the process logger from the log settings.
func (c Config) Logger() (*slog.Logger, error) {
	return logging.New(logging.Options{Level: c.LogLevel, Format: c.LogFormat})
}

// Runtime is a ready-to-use service and the resources it owns.
type Runtime struct {
	Service *api.Service
	store   storage.ScoreStore
}

// Close releases the store when it holds resources.
func (r *Runtime) Close() error {
	if r == nil || r.store == nil {
		return nil
	}
	if closer, ok := r.store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// NewRuntime opens the configured store and builds the score service.
func NewRuntime(ctx context.Context, cfg Config, logger *slog.Logger) (*Runtime, error) {
	if logger == nil {
		logger = slog.Default()
	}
	sanitizer, err := NewSanitizer(cfg)
	if err != nil {
		return nil, err
	}
	store, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	service, err := api.NewService(store, sanitizer, logger)
	if err != nil {
		if closer, ok := store.(io.Closer); ok {
			_ = closer.Close()
		}
		return nil, err
	}
	logger.Info("leaderboard runtime ready", "store", storeKind(cfg), "table", cfg.TableName)
	return &Runtime{Service: service, store: store}, nil
}

// NewSanitizer builds the name sanitizer backed by the go-away detector.
func NewSanitizer(cfg Config) (*sanitize.Sanitizer, error) {
	detector, err := sanitize.LoadDetector(cfg.ProfanityWordsFile)
	if err != nil {
		return nil, fmt.Errorf("load profanity words: %w", err)
	}
	return sanitize.New(detector), nil
}

// OpenStore opens the ScoreStore selected by cfg.Store.
func OpenStore(ctx context.Context, cfg Config) (storage.ScoreStore, error) {
	table := strings.TrimSpace(cfg.TableName)
	if table == "" {
		return nil, fmt.Errorf("TABLE_NAME is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	switch storeKind(cfg) {
	case storage.KindSQLite:
		return openSQLiteStore(cfg.DBPath, table)
	case storage.KindDynamoDB:
		connectCtx, cancel := context.WithTimeout(ctx, timeouts.StoreConnect)
		defer cancel()
		store, err := leaderboarddynamodb.New(connectCtx, table, leaderboarddynamodb.Options{
			Endpoint: cfg.DynamoDBEndpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("open dynamodb store: %w", err)
		}
		return store, nil
	case storage.KindPostgres:
		connectCtx, cancel := context.WithTimeout(ctx, timeouts.StoreConnect)
		defer cancel()
		store, err := leaderboardpostgres.Open(connectCtx, cfg.PostgresDSN, table)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		return store, nil
	case storage.KindMongoDB:
		connectCtx, cancel := context.WithTimeout(ctx, timeouts.StoreConnect)
		defer cancel()
		store, err := leaderboardmongodb.Open(connectCtx, table, leaderboardmongodb.Options{
			URI:      cfg.MongoDBURI,
			Database: cfg.MongoDBDatabase,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongodb store: %w", err)
		}
		return store, nil
	case storage.KindMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported store %q", cfg.Store)
	}
}

func storeKind(cfg Config) string {
	kind := strings.ToLower(strings.TrimSpace(cfg.Store))
	if kind == "" {
		return storage.KindSQLite
	}
	return kind
}

func openSQLiteStore(path, table string) (*leaderboardsqlite.Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = filepath.Join("data", "leaderboard.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := leaderboardsqlite.Open(path, table)
	if err != nil {
		return nil, fmt.Errorf("open leaderboard sqlite store: %w", err)
	}
	return store, nil
}
