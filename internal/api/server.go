package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/vigil/pkg/config"
	"github.com/wonny/vigil/pkg/logger"
)

// Server hosts the manual analysis HTTP API.
// ⭐ SSOT: HTTP 서버 수명주기는 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New wraps the router in an http.Server with sane timeouts.
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		config: cfg,
	}
}

// Start listens until the server is shut down or fails.
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port": s.config.Port,
		"env":  s.config.Env,
	}).Info("Analysis API listening")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("serve analysis api: %w", err)
	}

	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Analysis API shutting down")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown analysis api: %w", err)
	}

	return nil
}
