// Package api implements the leaderboard score operations and their
// request/response contract.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	apperrors "github.com/louisbranch/leaderboard/internal/platform/errors"
	"github.com/louisbranch/leaderboard/internal/platform/requestctx"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/domain"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/router"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/sanitize"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/louisbranch/leaderboard/internal/services/leaderboard/api"

// Service validates submissions and serves top scores. It holds no
// per-request state and is safe for concurrent use.
type Service struct {
	store     storage.ScoreStore
	sanitizer *sanitize.Sanitizer
	logger    *slog.Logger
	tracer    trace.Tracer
}

// NewService creates a Service. A nil sanitizer disables censorship and a
// nil logger uses slog.Default.
func NewService(store storage.ScoreStore, sanitizer *sanitize.Sanitizer, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("score store is required")
	}
	if sanitizer == nil {
		sanitizer = sanitize.New(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:     store,
		sanitizer: sanitizer,
		logger:    logger,
		tracer:    otel.Tracer(tracerName),
	}, nil
}

// Handle routes req and runs the matching operation. Every failure is
// returned as a response; Handle never returns an error.
func (s *Service) Handle(ctx context.Context, req Request) Response {
	match := router.Resolve(req.Method, req.Path)

	ctx, span := s.tracer.Start(ctx, "leaderboard."+match.Route.String(), trace.WithAttributes(
		attribute.String("http.request.method", req.Method),
		attribute.String("url.path", req.Path),
	))
	defer span.End()

	var resp Response
	switch match.Route {
	case router.RouteSubmitScore:
		resp = s.SubmitScore(ctx, req.Body)
	case router.RouteTopScores:
		gameID := match.GameID
		if override, ok := req.PathParams["game_id"]; ok {
			gameID = override
		}
		span.SetAttributes(attribute.String("leaderboard.game_id", gameID))
		resp = s.GetTopScores(ctx, gameID)
	default:
		resp = notFoundResponse()
	}

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))
	if resp.StatusCode >= http.StatusInternalServerError {
		span.SetStatus(codes.Error, resp.Message())
	}
	return resp
}

// SubmitScore records one score from a JSON body.
func (s *Service) SubmitScore(ctx context.Context, body []byte) Response {
	if err := s.RecordScore(ctx, body); err != nil {
		return errorResponse(err)
	}
	return messageResponse(http.StatusOK, MessageScoreRecorded)
}

// GetTopScores returns the best scores for gameID.
func (s *Service) GetTopScores(ctx context.Context, gameID string) Response {
	entries, err := s.TopScores(ctx, gameID)
	if err != nil {
		return errorResponse(err)
	}
	message := MessageTopScores
	if len(entries) == 0 {
		message = `No scores found for game_id "` + gameID + `"`
		entries = []domain.ScoreEntry{}
	}
	return Response{
		StatusCode: http.StatusOK,
		Body:       ScoresBody{Message: message, Scores: entries},
	}
}

// RecordScore parses, validates, sanitizes and stores a submission. Errors
// carry apperrors.CodeValidation or apperrors.CodeStore and a client-facing
// message.
func (s *Service) RecordScore(ctx context.Context, body []byte) error {
	entry, err := parseSubmission(body)
	if err != nil {
		s.logger.DebugContext(ctx, "rejected score submission", "error", err)
		return err
	}

	name := s.sanitizer.Sanitize(entry.PlayerName, domain.MaxPlayerNameLength)
	if name == "" || sanitize.IsFullyMasked(name) {
		s.logger.DebugContext(ctx, "rejected player name", "game_id", entry.GameID)
		return apperrors.Validation(MessageInvalidPlayerName)
	}
	entry.PlayerName = name

	if err := s.store.Put(ctx, entry); err != nil {
		if apperrors.IsValidation(err) {
			return invalidPayload(err.Error())
		}
		s.logger.ErrorContext(ctx, "write score",
			"game_id", entry.GameID,
			"request_id", requestctx.RequestIDFromContext(ctx),
			"error", err,
		)
		return apperrors.Store(MessageWriteFailed+err.Error(), err)
	}
	s.logger.InfoContext(ctx, "score recorded",
		"game_id", entry.GameID,
		"score", entry.Score.String(),
	)
	return nil
}

// TopScores returns up to domain.TopScoresLimit entries for gameID, highest
// score first.
func (s *Service) TopScores(ctx context.Context, gameID string) ([]domain.ScoreEntry, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, apperrors.Validation(MessageMissingGameID)
	}
	entries, err := s.store.QueryTop(ctx, gameID, domain.TopScoresLimit)
	if err != nil {
		s.logger.ErrorContext(ctx, "query top scores",
			"game_id", gameID,
			"request_id", requestctx.RequestIDFromContext(ctx),
			"error", err,
		)
		return nil, apperrors.Store(MessageReadFailed+err.Error(), err)
	}
	return entries, nil
}

func errorResponse(err error) Response {
	var domainErr *apperrors.Error
	if errors.As(err, &domainErr) {
		return messageResponse(domainErr.Code.HTTPStatus(), domainErr.Message)
	}
	return messageResponse(http.StatusInternalServerError, err.Error())
}
