package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"catalog/internal/repositories"
	"catalog/internal/server"
	"catalog/internal/services"
	"catalog/pkg/config"
	"catalog/pkg/logger"
	"catalog/pkg/rabbitmq"
	"catalog/pkg/tracer"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// --- Configuration ---
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logger.New(logger.Config{}).Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})
	ctx := context.Background()

	// --- Tracing ---
	if cfg.Tracing.Enabled() {
		tp, err := tracer.InitTracer(ctx, cfg.App.Name, cfg.App.Env, cfg.Tracing.Endpoint)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize tracer")
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("Error shutting down tracer")
			}
		}()
	}

	// --- Store ---
	// A failed initial connection ends the process with a non-zero status.
	store, err := repositories.Open(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("Failed to connect to database")
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("Database connected")

	// --- Catalog events ---
	var publisher services.EventPublisher
	if cfg.RabbitMQ.Enabled() {
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Exchange: cfg.RabbitMQ.Exchange}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize RabbitMQ client")
		}
		defer mqClient.Close()
		publisher = mqClient
	} else {
		log.Info().Msg("RABBITMQ_URL not set, catalog events disabled")
	}

	app := server.NewApp(server.Deps{
		Config:    cfg,
		Logger:    log,
		Store:     store,
		Publisher: publisher,
	})

	// --- Start HTTP Server ---
	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr()).Msg("Starting server")
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during Fiber shutdown")
	}
	if err := store.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error closing database")
	}
	log.Info().Msg("Server gracefully stopped")
}
