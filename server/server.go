// Package server assembles the HTTP server, background runners, and their
// shared dependencies.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/mugiwara-labs/receiptsense/internal/profile"
	"github.com/mugiwara-labs/receiptsense/plugin/ai"
	"github.com/mugiwara-labs/receiptsense/plugin/storage"
	"github.com/mugiwara-labs/receiptsense/plugin/storage/s3"
	"github.com/mugiwara-labs/receiptsense/server/internal/observability"
	"github.com/mugiwara-labs/receiptsense/server/middleware"
	apiv1 "github.com/mugiwara-labs/receiptsense/server/router/api/v1"
	"github.com/mugiwara-labs/receiptsense/server/runner/chatbot"
	"github.com/mugiwara-labs/receiptsense/server/runner/extract"
	"github.com/mugiwara-labs/receiptsense/store"
)

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer    *echo.Echo
	extractRunner *extract.Runner
	chatRunner    *chatbot.Runner
}

func NewServer(ctx context.Context, p *profile.Profile, st *store.Store) (*Server, error) {
	e := echo.New()
	e.Debug = p.IsDev()
	e.HideBanner = true
	e.HidePort = true

	metrics := observability.NewMetrics()
	e.Use(echomw.Recover())
	e.Use(observability.RequestLogger(metrics))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(middleware.RateLimitMiddleware(middleware.NewRateLimiter()))

	var completer ai.Completer
	if p.IsAIEnabled() {
		provider, err := ai.NewProvider(ai.ConfigFromProfile(p))
		if err != nil {
			return nil, errors.Wrap(err, "failed to create AI provider")
		}
		completer = provider
	} else {
		slog.Warn("AI provider is not configured, suggestion generation will use the deterministic fallback")
	}

	var objectStore storage.ObjectStore
	if p.IsObjectStorageEnabled() {
		client, err := s3.NewClient(ctx, p)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create object storage client")
		}
		objectStore = client
	} else {
		slog.Warn("object storage is not configured, uploads are disabled")
	}

	extractRunner := extract.NewRunner(st, p, completer)
	chatRunner := chatbot.NewRunner(st, completer)

	apiV1Service := apiv1.NewAPIV1Service(p, st, completer, objectStore, extractRunner)
	apiV1Service.Metrics = metrics
	apiV1Service.RegisterRoutes(e)

	s := &Server{
		Profile:       p,
		Store:         st,
		echoServer:    e,
		extractRunner: extractRunner,
		chatRunner:    chatRunner,
	}
	return s, nil
}

// Start launches the background runners and the HTTP listener.
func (s *Server) Start(ctx context.Context) error {
	go s.extractRunner.Run(ctx)
	go s.chatRunner.Run(ctx)

	addr := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server listening", "addr", addr, "mode", s.Profile.Mode)
	go func() {
		if err := s.echoServer.Start(addr); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start server", "err", err)
		}
	}()
	return nil
}

// Shutdown drains in-flight requests and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "err", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "err", err)
	}
	slog.Info("server shutdown complete")
}

func (s *Server) GetEcho() *echo.Echo {
	return s.echoServer
}
