// Command server runs the entity resolution HTTP API.
//
// Configuration is read from CONFIG_PATH (YAML) or environment variables;
// DATABASE_DSN is required.
//
// Exit codes: 0 = clean shutdown, 1 = error.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/glossarch/stratigraphy/internal/adapter/postgres"
	"github.com/glossarch/stratigraphy/internal/adapter/postgres/lsr"
	"github.com/glossarch/stratigraphy/internal/app"
	"github.com/glossarch/stratigraphy/internal/config"
	"github.com/glossarch/stratigraphy/internal/resolver"
	"github.com/glossarch/stratigraphy/internal/service/resolution"
	"github.com/glossarch/stratigraphy/internal/transport/rest"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := app.NewLogger(cfg.Log)
	logger.Info("starting server",
		slog.String("version", app.BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		logger.Error("connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	repo := lsr.New(pool)

	svc := resolution.New(logger, repo, resolver.Config{
		AutoMergeThreshold:     cfg.Resolver.AutoMergeThreshold,
		MergeWithFlagThreshold: cfg.Resolver.MergeWithFlagThreshold,
		ReviewThreshold:        cfg.Resolver.ReviewThreshold,
		Weights:                cfg.Resolver.Weights,
	})

	if err := svc.Reload(ctx); err != nil {
		logger.Error("load resolver store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("resolver store loaded", slog.Int("records", svc.StoreSize()))

	router := rest.NewRouter(rest.RouterDeps{
		Log:      logger,
		Resolver: svc,
		LSRs:     svc,
		DB:       pool,
		CORS:     cfg.CORS,
		Version:  app.BuildVersion(),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("server stopped")
}
