// Package httpapi serves the leaderboard operations over net/http.
package httpapi

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/louisbranch/leaderboard/internal/platform/httpx"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/api"
)

// MaxBodyBytes bounds the size of a submission body.
const MaxBodyBytes = 64 << 10

// Dispatcher runs one transport-neutral request.
type Dispatcher interface {
	Handle(ctx context.Context, req api.Request) api.Response
}

// Handler adapts HTTP requests to a Dispatcher.
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
}

// NewHandler returns a Handler for dispatcher. A nil logger uses slog.Default.
func NewHandler(dispatcher Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatcher: dispatcher, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := httpx.RequestContext(r)

	body, err := readBody(w, r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.write(ctx, w, api.Response{
				StatusCode: http.StatusRequestEntityTooLarge,
				Body:       api.MessageBody{Message: api.MessageInvalidPayload + "body too large"},
			})
			return
		}
		h.write(ctx, w, api.Response{
			StatusCode: http.StatusBadRequest,
			Body:       api.MessageBody{Message: api.MessageInvalidPayload + err.Error()},
		})
		return
	}

	h.write(ctx, w, h.dispatcher.Handle(ctx, api.Request{
		Method: r.Method,
		Path:   r.URL.Path,
		Body:   body,
	}))
}

func (h *Handler) write(ctx context.Context, w http.ResponseWriter, resp api.Response) {
	if err := httpx.WriteJSON(w, resp.StatusCode, resp.Body); err != nil {
		h.logger.WarnContext(ctx, "write response", "status", resp.StatusCode, "error", err)
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
}
