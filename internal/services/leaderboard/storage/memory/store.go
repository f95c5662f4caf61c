// Package memory provides an in-process ScoreStore for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
)

// Store keeps score entries in memory. It is safe for concurrent use.
type Store struct {
	mu    sync.RWMutex
	games map[string]map[string]domain.ScoreEntry
}

// New returns an empty Store.
func New() *Store {
	return &Store{games: make(map[string]map[string]domain.ScoreEntry)}
}

// Put stores entry, replacing any entry with the same game and score.
func (s *Store) Put(ctx context.Context, entry domain.ScoreEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := entry.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	scores, ok := s.games[entry.GameID]
	if !ok {
		scores = make(map[string]domain.ScoreEntry)
		s.games[entry.GameID] = scores
	}
	scores[entry.Score.String()] = entry
	return nil
}

// QueryTop returns up to limit entries for gameID, highest score first.
func (s *Store) QueryTop(ctx context.Context, gameID string, limit int) ([]domain.ScoreEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateQuery(gameID, limit); err != nil {
		return nil, err
	}
	s.mu.RLock()
	entries := make([]domain.ScoreEntry, 0, len(s.games[gameID]))
	for _, entry := range s.games[gameID] {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	domain.SortByScoreDesc(entries)
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

var _ storage.ScoreStore = (*Store)(nil)
