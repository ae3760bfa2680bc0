package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"watchtower/dashd/internal/alerts"
	"watchtower/dashd/internal/config"
	"watchtower/dashd/internal/db"
	"watchtower/dashd/internal/httpapi"
	"watchtower/dashd/internal/metrics"
	"watchtower/dashd/internal/positions"
	"watchtower/dashd/internal/refresh"
	"watchtower/dashd/internal/state"
	"watchtower/dashd/internal/stream"
	"watchtower/dashd/internal/upstream"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		bootLogger := httpapi.NewLogger("info")
		bootLogger.Fatal().Err(err).Msg("failed to load config")
	}

	logger := httpapi.NewLogger(cfg.LogLevel)

	topoInterval, err := cfg.TopologyInterval()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid topology refresh interval")
	}
	alertInterval, err := cfg.AlertInterval()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid alert refresh interval")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *db.Pool
	var kv positions.KV = positions.NewMemoryKV()
	if cfg.DatabaseURL != "" {
		p, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer p.Close()
		pool = p

		pkv, err := positions.NewPostgresKV(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to prepare position storage")
		}
		kv = pkv
	}

	m := metrics.New()
	alertStore := alerts.New(logger)
	defer alertStore.Close()
	posStore := positions.New(ctx, kv, logger)
	store := state.New(logger, alertStore, posStore)

	client, err := upstream.New(cfg.Upstream.BaseURL, cfg.Upstream.WebSocketPath, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid upstream configuration")
	}

	rec := stream.New(client.WebSocketURL(), store, m, logger)
	go rec.Run(ctx)

	refresher := refresh.New(logger, client, store, m, refresh.Options{
		TopologyInterval: topoInterval,
		AlertInterval:    alertInterval,
	})
	go refresher.Run(ctx)

	h := httpapi.NewHandler(logger, store, rec, client, pool, m)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           h.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.ListenAddr).Msg("dashd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server error")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info().Msg("shutdown complete")
}
