package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/smailliwhtes/Investment-Project-sub000/pkg/config"
	"github.com/smailliwhtes/Investment-Project-sub000/pkg/logger"
)

// Server is the read-only artifact server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	config     *config.Config
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.ServePort,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		config: cfg,
	}
}

// Start blocks until the server stops
func (s *Server) Start() error {
	s.logger.WithFields(map[string]interface{}{
		"port":    s.config.ServePort,
		"env":     s.config.Env,
		"out_dir": s.config.Paths.OutDir,
	}).Info("Starting artifact server")

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down artifact server")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}
