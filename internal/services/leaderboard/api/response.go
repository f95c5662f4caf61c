package api

import (
	"encoding/json"
	"net/http"

	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
)

// Response messages returned to clients.
const (
	MessageScoreRecorded     = "Score recorded"
	MessageTopScores         = "Top scores retrieved"
	MessageNotFound          = "Not Found"
	MessageInvalidPayload    = "Invalid request payload: "
	MessageInvalidPlayerName = "player_name contains no valid characters or is entirely profane"
	MessageWriteFailed       = "Failed to write score: "
	MessageReadFailed        = "Error retrieving scores: "
	MessageMissingGameID     = "Missing required path parameter: game_id"
)

// Request is a transport-neutral inbound request.
type Request struct {
	Method string
	Path   string
	Body   []byte
	// PathParams holds parameters a front door already extracted, such as
	// API Gateway's pathParameters. A game_id entry overrides the path.
	PathParams map[string]string
}

// Response is a transport-neutral outbound response. Body is JSON-encodable.
type Response struct {
	StatusCode int
	Body       any
}

// MessageBody is the body of every response without scores.
type MessageBody struct {
	Message string `json:"message"`
}

// ScoresBody is the body of a successful top scores response.
type ScoresBody struct {
	Message string              `json:"message"`
	Scores  []domain.ScoreEntry `json:"scores"`
}

// EncodeBody renders the response body as JSON.
func (r Response) EncodeBody() ([]byte, error) {
	return json.Marshal(r.Body)
}

// Message returns the body message.
func (r Response) Message() string {
	switch body := r.Body.(type) {
	case MessageBody:
		return body.Message
	case ScoresBody:
		return body.Message
	default:
		return ""
	}
}

func messageResponse(status int, message string) Response {
	return Response{StatusCode: status, Body: MessageBody{Message: message}}
}

func notFoundResponse() Response {
	return messageResponse(http.StatusNotFound, MessageNotFound)
}
