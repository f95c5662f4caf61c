// Package postgres provides a PostgreSQL-backed score storage implementation.
//
// Scores are stored as NUMERIC so ordering and key equality are exact; the
// raw timestamp JSON token is stored as text.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
)

// DB is the subset of *pgxpool.Pool used by Store.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store persists score entries in a PostgreSQL table.
type Store struct {
	db       DB
	pool     *pgxpool.Pool
	table    string
	putSQL   string
	querySQL string
}

// Open connects to dsn, creates the score table when missing and returns a
// Store backed by a connection pool.
func Open(ctx context.Context, dsn, table string) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	store, err := NewWithDB(pool, table)
	if err != nil {
		pool.Close()
		return nil, err
	}
	store.pool = pool
	if err := store.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// NewWithDB wraps an existing connection or pool.
func NewWithDB(db DB, table string) (*Store, error) {
	if db == nil {
		return nil, fmt.Errorf("postgres db is required")
	}
	table = strings.TrimSpace(table)
	if table == "" {
		return nil, fmt.Errorf("table name is required")
	}
	ident := pgx.Identifier{table}.Sanitize()
	return &Store{
		db:    db,
		table: table,
		putSQL: `INSERT INTO ` + ident + ` (game_id, score, player_name, "timestamp")
VALUES ($1, $2::numeric, $3, $4)
ON CONFLICT (game_id, score) DO UPDATE SET
	player_name = EXCLUDED.player_name,
	"timestamp" = EXCLUDED."timestamp",
	recorded_at = now()`,
		querySQL: `SELECT game_id, score::text, player_name, "timestamp"
FROM ` + ident + `
WHERE game_id = $1
ORDER BY score DESC
LIMIT $2`,
	}, nil
}

// SchemaSQL returns the statements that create the score table.
func SchemaSQL(table string) string {
	ident := pgx.Identifier{strings.TrimSpace(table)}.Sanitize()
	return `CREATE TABLE IF NOT EXISTS ` + ident + ` (
	game_id TEXT NOT NULL CHECK (btrim(game_id) <> ''),
	score NUMERIC NOT NULL,
	player_name TEXT NOT NULL,
	"timestamp" TEXT NOT NULL,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (game_id, score)
)`
}

// EnsureSchema creates the score table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, SchemaSQL(s.table)); err != nil {
		return fmt.Errorf("create score table: %w", err)
	}
	return nil
}

// Close releases the pool opened by Open.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Put inserts entry, replacing the entry with the same game and score.
func (s *Store) Put(ctx context.Context, entry domain.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return apperrors.Store("storage is not configured", nil)
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, s.putSQL,
		entry.GameID,
		entry.Score.String(),
		entry.PlayerName,
		string(entry.Timestamp.Raw()),
	)
	if err != nil {
		return storeError("put score", err)
	}
	return nil
}

// QueryTop returns up to limit entries for gameID, highest score first.
func (s *Store) QueryTop(ctx context.Context, gameID string, limit int) ([]domain.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.db == nil {
		return nil, apperrors.Store("storage is not configured", nil)
	}
	if err := storage.ValidateQuery(gameID, limit); err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, s.querySQL, gameID, limit)
	if err != nil {
		return nil, storeError("query top scores", err)
	}
	defer rows.Close()

	entries := make([]domain.ScoreEntry, 0, limit)
	for rows.Next() {
		var (
			entry        domain.ScoreEntry
			score        string
			rawTimestamp string
		)
		if err := rows.Scan(&entry.GameID, &score, &entry.PlayerName, &rawTimestamp); err != nil {
			return nil, storeError("scan score", err)
		}
		if entry.Score, err = domain.ParsePreciseNumber(score); err != nil {
			return nil, apperrors.Store("", fmt.Errorf("decode score %q: %w", score, err))
		}
		if entry.Timestamp, err = domain.ParseTimestamp([]byte(rawTimestamp)); err != nil {
			return nil, apperrors.Store("", fmt.Errorf("decode timestamp: %w", err))
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, storeError("query top scores", err)
	}
	return entries, nil
}

func storeError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return apperrors.Store(pgErr.Message, err)
	}
	return apperrors.Store("", fmt.Errorf("%s: %w", op, err))
}

var _ storage.ScoreStore = (*Store)(nil)
