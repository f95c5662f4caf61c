package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
)

// Submission field names.
const (
	fieldGameID     = "game_id"
	fieldPlayerName = "player_name"
	fieldTimestamp  = "timestamp"
	fieldScore      = "score"
)

// parseSubmission decodes a submit body into an unsanitized entry. An empty
// body is treated as an empty object.
func parseSubmission(body []byte) (domain.ScoreEntry, error) {
	var entry domain.ScoreEntry

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		body = []byte("{}")
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return entry, invalidPayload("body must be a JSON object")
	}

	gameID, err := requiredString(fields, fieldGameID)
	if err != nil {
		return entry, err
	}
	if strings.TrimSpace(gameID) == "" {
		return entry, invalidPayload(fmt.Sprintf("field %q must not be empty", fieldGameID))
	}
	entry.GameID = gameID

	if entry.PlayerName, err = requiredString(fields, fieldPlayerName); err != nil {
		return entry, err
	}

	raw, err := required(fields, fieldTimestamp)
	if err != nil {
		return entry, err
	}
	if entry.Timestamp, err = domain.ParseTimestamp(raw); err != nil {
		return entry, invalidPayload(fmt.Sprintf("field %q must be a string or a number", fieldTimestamp))
	}

	if raw, err = required(fields, fieldScore); err != nil {
		return entry, err
	}
	if err := json.Unmarshal(raw, &entry.Score); err != nil {
		if errors.Is(err, domain.ErrOutOfRange) {
			return entry, invalidPayload(fmt.Sprintf("field %q is out of range", fieldScore))
		}
		return entry, invalidPayload(fmt.Sprintf("field %q must be a decimal number", fieldScore))
	}
	return entry, nil
}

func required(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, invalidPayload(fmt.Sprintf("missing required field %q", name))
	}
	return raw, nil
}

func requiredString(fields map[string]json.RawMessage, name string) (string, error) {
	raw, err := required(fields, name)
	if err != nil {
		return "", err
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", invalidPayload(fmt.Sprintf("field %q must be a string", name))
	}
	return value, nil
}

func invalidPayload(detail string) *apperrors.Error {
	return apperrors.WithMetadata(apperrors.CodeValidation, MessageInvalidPayload+detail, map[string]string{
		"detail": detail,
	})
}
