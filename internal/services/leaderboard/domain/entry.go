// Package domain defines the leaderboard score model.
package domain

import (
	"sort"
	"strings"

	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
)

// MaxPlayerNameLength bounds sanitized player names.
const MaxPlayerNameLength = 20

// TopScoresLimit is the number of entries returned per game.
const TopScoresLimit = 10

// ScoreEntry is one submitted score. Entries are keyed by (GameID, Score)
// and never mutated once stored.
type ScoreEntry struct {
	GameID     string        `json:"game_id"`
	PlayerName string        `json:"player_name"`
	Score      PreciseNumber `json:"score"`
	Timestamp  Timestamp     `json:"timestamp"`
}

// Validate checks the invariants every stored entry must hold.
func (e ScoreEntry) Validate() error {
	if strings.TrimSpace(e.GameID) == "" {
		return apperrors.Validation("game_id is required")
	}
	if e.PlayerName == "" {
		return apperrors.Validation("player_name is required")
	}
	if err := e.Score.CheckRange(); err != nil {
		return apperrors.Validation("score is out of range")
	}
	if e.Timestamp.IsZero() {
		return apperrors.Validation("timestamp is required")
	}
	return nil
}

// SortByScoreDesc orders entries from highest to lowest score. Equal scores
// keep their relative order.
func SortByScoreDesc(entries []ScoreEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score.Cmp(entries[j].Score) > 0
	})
}
