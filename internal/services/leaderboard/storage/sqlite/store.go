// Package sqlite provides a SQLite-backed score storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	sqlitemigrate "github.com/louisbranch/leaderboard/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists score entries in one SQLite table.
//
// The exact score is kept as canonical decimal text (part of the primary
// key) next to a REAL rank column used for index ordering. Top-K reads fetch
// every row whose rank reaches the K-th rank and order them exactly, so
// float rounding never misorders results.
type Store struct {
	sqlDB *sql.DB
	table string
	now   func() time.Time

	putSQL   string
	querySQL string
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

// Open opens a SQLite store at path using table and applies embedded
// migrations.
func Open(path, table string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	quoted, err := sqlitemigrate.QuoteIdentifier(table)
	if err != nil {
		return nil, fmt.Errorf("table name: %w", err)
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	err = sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, sqlitemigrate.Options{
		Namespace: table,
		Data:      struct{ Table string }{Table: table},
	})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{
		sqlDB: sqlDB,
		table: table,
		now:   time.Now,
		putSQL: fmt.Sprintf(`INSERT INTO %s (
		   game_id,
		   score,
		   score_rank,
		   player_name,
		   timestamp,
		   recorded_at
		 ) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (game_id, score) DO UPDATE SET
		   player_name = excluded.player_name,
		   timestamp = excluded.timestamp,
		   recorded_at = excluded.recorded_at`, quoted),
		querySQL: fmt.Sprintf(`WITH cutoff AS (
		   SELECT score_rank FROM %[1]s
		    WHERE game_id = ?
		    ORDER BY score_rank DESC
		    LIMIT 1 OFFSET ?
		 )
		 SELECT game_id, score, player_name, timestamp
		   FROM %[1]s
		  WHERE game_id = ?
		    AND (NOT EXISTS (SELECT 1 FROM cutoff)
		         OR score_rank >= (SELECT score_rank FROM cutoff))
		  ORDER BY score_rank DESC`, quoted),
	}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Put inserts entry, replacing the entry with the same game and score.
func (s *Store) Put(ctx context.Context, entry domain.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return apperrors.Store("storage is not configured", nil)
	}
	if err := entry.Validate(); err != nil {
		return err
	}

	_, err := s.sqlDB.ExecContext(
		ctx,
		s.putSQL,
		entry.GameID,
		entry.Score.String(),
		entry.Score.Float64(),
		entry.PlayerName,
		string(entry.Timestamp.Raw()),
		toMillis(s.now()),
	)
	if err != nil {
		return apperrors.Store("", fmt.Errorf("put score: %w", err))
	}
	return nil
}

// QueryTop returns up to limit entries for gameID, highest score first.
func (s *Store) QueryTop(ctx context.Context, gameID string, limit int) ([]domain.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, apperrors.Store("storage is not configured", nil)
	}
	if err := storage.ValidateQuery(gameID, limit); err != nil {
		return nil, err
	}

	rows, err := s.sqlDB.QueryContext(ctx, s.querySQL, gameID, limit-1, gameID)
	if err != nil {
		return nil, apperrors.Store("", fmt.Errorf("query top scores: %w", err))
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
			return nil, apperrors.Store("", fmt.Errorf("scan score: %w", err))
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
		return nil, apperrors.Store("", fmt.Errorf("query top scores: %w", err))
	}

	domain.SortByScoreDesc(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

var _ storage.ScoreStore = (*Store)(nil)
