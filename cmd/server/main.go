package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acervo-digital/archive-content/pkg/archive"
	"github.com/acervo-digital/archive-content/pkg/archive/api"
	"github.com/acervo-digital/archive-content/pkg/archive/config"
	"github.com/acervo-digital/archive-content/pkg/archive/health"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	store, closeStore, err := cfg.BuildStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	service, err := archive.New(
		archive.WithStore(store),
		archive.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	aggregator := health.New(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Mount("/api/v1", api.NewPublicHandler(service).Routes())
	// The admin surface carries no authentication of its own; deploy it
	// behind the gateway's admin guard.
	r.Mount("/api/v1/admin", api.NewAdminHandler(service, aggregator).Routes())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
