// Package lambdaapi serves the leaderboard operations as an AWS Lambda
// behind API Gateway.
package lambdaapi

import (
	"context"
	"encoding/base64"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/louisbranch/leaderboard/internal/platform/httpx"
	"github.com/louisbranch/leaderboard/internal/platform/requestctx"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/api"
)

const (
	defaultMethod = http.MethodGet
	defaultPath   = "/score"
)

// Event accepts both API Gateway REST (v1) and HTTP API (v2) proxy events.
type Event struct {
	// v1
	HTTPMethod string `json:"httpMethod"`
	Path       string `json:"path"`
	// v2
	RawPath        string         `json:"rawPath"`
	RequestContext RequestContext `json:"requestContext"`

	PathParameters  map[string]string `json:"pathParameters"`
	Body            string            `json:"body"`
	IsBase64Encoded bool              `json:"isBase64Encoded"`
}

// RequestContext holds the v2 request description.
type RequestContext struct {
	HTTP struct {
		Method string `json:"method"`
	} `json:"http"`
}

// Method returns the request method, preferring the v2 field.
func (e Event) Method() string {
	if e.RequestContext.HTTP.Method != "" {
		return e.RequestContext.HTTP.Method
	}
	if e.HTTPMethod != "" {
		return e.HTTPMethod
	}
	return defaultMethod
}

// RequestPath returns the decoded request path, preferring the v2 field.
// A path that fails to decode is returned as sent.
func (e Event) RequestPath() string {
	path := e.RawPath
	if path == "" {
		path = e.Path
	}
	if path == "" {
		return defaultPath
	}
	if decoded, err := url.PathUnescape(path); err == nil {
		return decoded
	}
	return path
}

// Dispatcher runs one transport-neutral request.
type Dispatcher interface {
	Handle(ctx context.Context, req api.Request) api.Response
}

// Handler is the Lambda entry point.
type Handler struct {
	dispatcher Dispatcher
	logger     *slog.Logger
	flush      func(context.Context) error
}

// NewHandler returns a Handler for dispatcher.
func NewHandler(dispatcher Dispatcher, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{dispatcher: dispatcher, logger: logger}
}

// WithFlush sets a function run after every invocation, before the
// response is returned. The execution environment may freeze between
// invocations, so buffered telemetry is exported here.
func (h *Handler) WithFlush(flush func(context.Context) error) *Handler {
	h.flush = flush
	return h
}

// Invoke handles one API Gateway event. Failures are reported in the
// response; the returned error is always nil so API Gateway never sees a
// function error.
func (h *Handler) Invoke(ctx context.Context, event Event) (events.APIGatewayV2HTTPResponse, error) {
	requestID := httpx.NewRequestID()
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		requestID = lc.AwsRequestID
	}
	ctx = requestctx.WithRequestID(ctx, requestID)
	defer h.flushTelemetry(ctx)

	req := api.Request{
		Method: event.Method(),
		Path:   event.RequestPath(),
	}
	if gameID, ok := event.PathParameters["game_id"]; ok {
		req.PathParams = map[string]string{"game_id": gameID}
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded && event.Body != "" {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return h.encode(ctx, requestID, api.Response{
				StatusCode: http.StatusBadRequest,
				Body:       api.MessageBody{Message: api.MessageInvalidPayload + "body is not valid base64"},
			}), nil
		}
		body = decoded
	}
	req.Body = body

	return h.encode(ctx, requestID, h.dispatcher.Handle(ctx, req)), nil
}

func (h *Handler) flushTelemetry(ctx context.Context) {
	if h.flush == nil {
		return
	}
	if err := h.flush(ctx); err != nil {
		h.logger.WarnContext(ctx, "flush telemetry", "request_id", requestctx.RequestIDFromContext(ctx), "error", err)
	}
}

func (h *Handler) encode(ctx context.Context, requestID string, resp api.Response) events.APIGatewayV2HTTPResponse {
	payload, err := resp.EncodeBody()
	if err != nil {
		h.logger.ErrorContext(ctx, "encode response", "status", resp.StatusCode, "error", err)
		resp.StatusCode = http.StatusInternalServerError
		payload = []byte(`{"message":"Internal Server Error"}`)
	}
	return events.APIGatewayV2HTTPResponse{
		StatusCode: resp.StatusCode,
		Headers: map[string]string{
			"Content-Type":        "application/json",
			httpx.RequestIDHeader: requestID,
		},
		Body:       string(payload),
	}
}
