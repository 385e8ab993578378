package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/examport/internal/config"
	"github.com/campusworks/examport/internal/handler"
	"github.com/campusworks/examport/internal/logger"
	"github.com/campusworks/examport/internal/router"
	"github.com/campusworks/examport/internal/stub"
	"github.com/campusworks/examport/internal/validator"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.StubPort).
		Str("mode", cfg.GinMode).
		Msg("Starting Examport stub backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	// ─── Seed In-Memory Store ──────────────────────────────────────────
	store := stub.NewStore()
	if err := store.Seed(cfg.BcryptCost); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed fixture data")
	}
	log.Info().
		Str("admin", stub.SeedAdminEmail).
		Strs("students", stub.SeedStudentMatrics).
		Msg("Fixture data seeded")

	// ─── Initialize Handlers ───────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:    handler.NewAuthHandler(store, cfg),
		Student: handler.NewStudentHandler(store),
		Admin:   handler.NewAdminHandler(store, cfg),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.Setup(handlers, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.StubPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.StubPort).Msg("Stub backend listening")
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

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
