package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/api"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/server"
	"github.com/pageza/foodgram/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	db, err := database.Open(cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	if err := database.RunMigrations(db, cfg.Migrations); err != nil {
		logging.Fatal().Err(err).Msg("failed to run migrations")
	}

	deps := api.Dependencies{
		DB:     db,
		Auth:   service.NewAuthService(db, cfg.JWTSecret),
		Images: imageStore(cfg),
	}

	if cfg.RedisEnabled() {
		client, err := database.NewRedisClient(cfg)
		if err != nil {
			// Serve without rate limiting rather than refusing to start
			logging.Warn().Err(err).Msg("redis unavailable, rate limiting disabled")
		} else {
			deps.Redis = client
			defer client.Close()
		}
	}

	srv := server.New(cfg, deps)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logging.Fatal().Err(err).Msg("server error")
		}
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Msg("received signal")
	}

	logging.Info().Msg("shutting down server")
	if err := srv.Shutdown(context.Background()); err != nil {
		logging.Fatal().Err(err).Msg("server shutdown error")
	}
	logging.Info().Msg("server stopped")
}

func imageStore(cfg *config.Config) service.ImageStore {
	if cfg.S3Bucket == "" {
		return service.NewLocalImageStore(cfg.MediaRoot, cfg.MediaURL)
	}

	s3Config, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		logging.Fatal().Err(err).Str("bucket", cfg.S3Bucket).Msg("failed to initialize S3")
	}
	return service.NewS3ImageStore(s3Config)
}
