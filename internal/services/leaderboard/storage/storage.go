// Package storage defines persistence contracts for leaderboard scores.
package storage

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
)

// ScoreStore persists score entries keyed by (game_id, score).
//
// Put overwrites an existing entry with the same key. QueryTop returns at
// most limit entries for a game ordered by score, highest first. Failures
// are returned as store errors (apperrors.CodeStore) carrying the underlying
// message; implementations do not retry.
type ScoreStore interface {
	Put(ctx context.Context, entry domain.ScoreEntry) error
	QueryTop(ctx context.Context, gameID string, limit int) ([]domain.ScoreEntry, error)
}

// Kinds of ScoreStore implementations selectable by configuration.
const (
	KindSQLite   = "sqlite"
	KindDynamoDB = "dynamodb"
	KindMemory   = "memory"
	KindPostgres = "postgres"
	KindMongoDB  = "mongodb"
)

// ValidateQuery checks QueryTop arguments.
func ValidateQuery(gameID string, limit int) error {
	if strings.TrimSpace(gameID) == "" {
		return apperrors.Validation("game_id is required")
	}
	if limit <= 0 {
		return apperrors.Validation(fmt.Sprintf("limit must be greater than zero, got %d", limit))
	}
	return nil
}
