// Package server wires the leaderboard runtime and HTTP lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/louisbranch/leaderboard/internal/platform/httpx"
	"github.com/louisbranch/leaderboard/internal/platform/timeouts"
	"github.com/louisbranch/leaderboard/internal/services/leaderboard/transport/httpapi"
	"github.com/rs/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const otelOperation = "leaderboard.http"

// Server hosts the leaderboard HTTP API and storage lifecycle.
type Server struct {
	listener   net.Listener
	httpServer *http.Server
	runtime    *Runtime
	logger     *slog.Logger
}

// New creates a configured leaderboard server listening on the provided port.
func New(ctx context.Context, port int, cfg Config, logger *slog.Logger) (*Server, error) {
	return NewWithAddr(ctx, fmt.Sprintf(":%d", port), cfg, logger)
}

// NewWithAddr creates a configured leaderboard server for the provided address.
func NewWithAddr(ctx context.Context, addr string, cfg Config, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	runtime, err := NewRuntime(ctx, cfg, logger)
	if err != nil {
		_ = listener.Close()
		return nil, err
	}

	return &Server{
		listener: listener,
		httpServer: &http.Server{
			Handler:           NewHandler(runtime, cfg.CORSOrigins, logger),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
		runtime: runtime,
		logger:  logger,
	}, nil
}

// NewHandler builds the instrumented HTTP handler for runtime.
func NewHandler(runtime *Runtime, origins []string, logger *slog.Logger) http.Handler {
	handler := httpx.Chain(
		httpapi.NewHandler(runtime.Service, logger),
		httpx.RecoverPanic(logger),
		httpx.RequestID(),
		httpx.RequestLogger(logger),
	)
	handler = cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", httpx.RequestIDHeader},
		ExposedHeaders: []string{httpx.RequestIDHeader},
	}).Handler(handler)
	return otelhttp.NewHandler(handler, otelOperation)
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a leaderboard server until context cancellation.
func Run(ctx context.Context, port int, cfg Config, logger *slog.Logger) error {
	server, err := New(ctx, port, cfg, logger)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the HTTP server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	s.logger.Info("leaderboard server listening", "addr", s.listener.Addr().String())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		err := <-serveErr
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case err := <-serveErr:
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases leaderboard server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.httpServer != nil {
		_ = s.httpServer.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.runtime != nil {
		if err := s.runtime.Close(); err != nil {
			s.logger.Error("close leaderboard store", "error", err)
		}
	}
}
