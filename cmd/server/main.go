package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/quizgenai/quizgen-backend/internal/ai"
	"github.com/quizgenai/quizgen-backend/internal/config"
	"github.com/quizgenai/quizgen-backend/internal/forms"
	"github.com/quizgenai/quizgen-backend/internal/handler"
	"github.com/quizgenai/quizgen-backend/internal/logger"
	"github.com/quizgenai/quizgen-backend/internal/router"
	"github.com/quizgenai/quizgen-backend/internal/service"
	"github.com/quizgenai/quizgen-backend/internal/validator"
	"github.com/quizgenai/quizgen-backend/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting QuizGen Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Initialize External Clients ───────────────────────────────────
	generator := ai.NewGenerator(cfg, log)

	publisher, err := forms.NewClient(ctx, cfg.FormsCredentialsFile, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load Forms service-account credentials")
	}

	// ─── Initialize Services ──────────────────────────────────────────
	authService := service.NewAuthService(cfg)
	uploadService := service.NewUploadService(cfg)
	draftService := service.NewDraftService(cfg, log, uploadService, generator, publisher)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:  handler.NewAuthHandler(authService, cfg),
		Draft: handler.NewDraftHandler(draftService),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())

	reaperWorker := worker.NewReaperWorker(draftService, cfg.DraftTTL, log)
	go reaperWorker.Start(workerCtx)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	workerCancel()

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
