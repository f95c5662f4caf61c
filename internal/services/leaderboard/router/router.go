// Package router maps request method and path to leaderboard operations
// without depending on any transport.
package router

import (
	"net/http"
	"strings"
)

// Route names one leaderboard operation.
type Route int

const (
	// RouteNotFound means no operation matches.
	RouteNotFound Route = iota
	// RouteSubmitScore is POST /score.
	RouteSubmitScore
	// RouteTopScores is GET /score/{game_id}.
	RouteTopScores
)

const (
	scorePath   = "/score"
	scorePrefix = scorePath + "/"
)

// String returns a stable name for logs and span attributes.
func (r Route) String() string {
	switch r {
	case RouteSubmitScore:
		return "submit_score"
	case RouteTopScores:
		return "top_scores"
	default:
		return "not_found"
	}
}

// Match is the result of routing one request.
type Match struct {
	Route  Route
	GameID string
}

// Found reports whether m selects an operation.
func (m Match) Found() bool {
	return m.Route != RouteNotFound
}

// Resolve matches method and path literally; there is no trailing-slash or
// case normalization. GET /score/{game_id} requires a single non-empty path
// segment after the prefix.
func Resolve(method, path string) Match {
	switch {
	case method == http.MethodPost && path == scorePath:
		return Match{Route: RouteSubmitScore}
	case method == http.MethodGet && strings.HasPrefix(path, scorePrefix):
		gameID := strings.TrimPrefix(path, scorePrefix)
		if gameID == "" || strings.Contains(gameID, "/") {
			return Match{}
		}
		return Match{Route: RouteTopScores, GameID: gameID}
	default:
		return Match{}
	}
}
