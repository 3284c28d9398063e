package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/router"
)

// Server represents the HTTP server
type Server struct {
	router *gin.Engine
	http   *http.Server
}

// New creates a server serving the API built from deps
func New(cfg *config.Config, deps api.Dependencies) *Server {
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.SetupRouter(deps)
	if cfg.S3Bucket == "" {
		// Images stored on local disk are served from MediaURL
		engine.Static(cfg.MediaURL, cfg.MediaRoot)
	}

	return &Server{
		router: engine,
		http: &http.Server{
			Addr:              fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
		},
	}
}

// Start blocks serving HTTP until Shutdown is called
func (s *Server) Start() error {
	logging.Info().Str("addr", s.http.Addr).Msg("server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}
