// Package storagetest holds behavior checks shared by ScoreStore
// implementations.
package storagetest

import (
	"context"
	"fmt"
	"sync"
	"testing"

	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
)

// Run exercises a ScoreStore. newStore must return an empty store each call.
func Run(t *testing.T, newStore func(t *testing.T) storage.ScoreStore) {
	t.Helper()

	t.Run("put then query returns entry", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		entry := Entry("g1", "Visit", "50", `"t1"`)
		if err := store.Put(ctx, entry); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := store.QueryTop(ctx, "g1", domain.TopScoresLimit)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1", len(got))
		}
		AssertEntry(t, got[0], entry)
	})

	t.Run("query unknown game is empty", func(t *testing.T) {
		store := newStore(t)
		got, err := store.QueryTop(context.Background(), "nogame", domain.TopScoresLimit)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 0 {
			t.Fatalf("len = %d, want 0", len(got))
		}
	})

	t.Run("top ten strictly descending", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		scores := []string{"5", "100", "99.5", "-2", "42", "7.25", "1000", "0", "13", "64", "3", "250", "99.49"}
		for i, score := range scores {
			if err := store.Put(ctx, Entry("arcade", fmt.Sprintf("P%d", i), score, `1700000000`)); err != nil {
				t.Fatalf("put %s: %v", score, err)
			}
		}
		if err := store.Put(ctx, Entry("other", "Elsewhere", "5000", `"t"`)); err != nil {
			t.Fatalf("put other game: %v", err)
		}

		got, err := store.QueryTop(ctx, "arcade", domain.TopScoresLimit)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		want := []string{"1000", "250", "100", "99.5", "99.49", "64", "42", "13", "7.25", "5"}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].Score.String() != want[i] {
				t.Fatalf("got[%d].Score = %s, want %s", i, got[i].Score, want[i])
			}
			if got[i].GameID != "arcade" {
				t.Fatalf("got[%d].GameID = %q", i, got[i].GameID)
			}
			if i > 0 && got[i-1].Score.Cmp(got[i].Score) <= 0 {
				t.Fatalf("not strictly descending at %d", i)
			}
		}
	})

	t.Run("limit smaller than result set", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		for _, score := range []string{"1", "2", "3"} {
			if err := store.Put(ctx, Entry("g", "P"+score, score, `"t"`)); err != nil {
				t.Fatalf("put: %v", err)
			}
		}
		got, err := store.QueryTop(ctx, "g", 2)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 2 || got[0].Score.String() != "3" || got[1].Score.String() != "2" {
			t.Fatalf("got = %+v", got)
		}
	})

	t.Run("same key is last write wins", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if err := store.Put(ctx, Entry("g", "First", "100", `"t1"`)); err != nil {
			t.Fatalf("put first: %v", err)
		}
		second := Entry("g", "Second", "100.0", `"t2"`)
		if err := store.Put(ctx, second); err != nil {
			t.Fatalf("put second: %v", err)
		}
		got, err := store.QueryTop(ctx, "g", domain.TopScoresLimit)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("len = %d, want 1 after overwrite", len(got))
		}
		AssertEntry(t, got[0], second)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		if err := store.Put(ctx, Entry(" ", "Name", "1", `"t"`)); !apperrors.IsValidation(err) {
			t.Fatalf("put blank game err = %v, want validation", err)
		}
		if _, err := store.QueryTop(ctx, "g", 0); !apperrors.IsValidation(err) {
			t.Fatalf("query zero limit err = %v, want validation", err)
		}
	})

	t.Run("concurrent puts", func(t *testing.T) {
		store := newStore(t)
		ctx := context.Background()
		var wg sync.WaitGroup
		errs := make(chan error, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs <- store.Put(ctx, Entry("busy", fmt.Sprintf("P%d", i), fmt.Sprint(i), `"t"`))
			}(i)
		}
		wg.Wait()
		close(errs)
		for err := range errs {
			if err != nil {
				t.Fatalf("concurrent put: %v", err)
			}
		}
		got, err := store.QueryTop(ctx, "busy", domain.TopScoresLimit)
		if err != nil {
			t.Fatalf("query: %v", err)
		}
		if len(got) != domain.TopScoresLimit || got[0].Score.String() != "19" {
			t.Fatalf("got %d entries, first %v", len(got), got)
		}
	})
}

// Entry builds a ScoreEntry from literals.
func Entry(gameID, playerName, score, rawTimestamp string) domain.ScoreEntry {
	ts, err := domain.ParseTimestamp([]byte(rawTimestamp))
	if err != nil {
		panic(err)
	}
	return domain.ScoreEntry{
		GameID:     gameID,
		PlayerName: playerName,
		Score:      domain.MustParsePreciseNumber(score),
		Timestamp:  ts,
	}
}

// AssertEntry compares two entries field by field.
func AssertEntry(t *testing.T, got, want domain.ScoreEntry) {
	t.Helper()
	if got.GameID != want.GameID {
		t.Fatalf("game_id = %q, want %q", got.GameID, want.GameID)
	}
	if got.PlayerName != want.PlayerName {
		t.Fatalf("player_name = %q, want %q", got.PlayerName, want.PlayerName)
	}
	if !got.Score.Equal(want.Score) {
		t.Fatalf("score = %s, want %s", got.Score, want.Score)
	}
	if string(got.Timestamp.Raw()) != string(want.Timestamp.Raw()) {
		t.Fatalf("timestamp = %s, want %s", got.Timestamp.Raw(), want.Timestamp.Raw())
	}
}
