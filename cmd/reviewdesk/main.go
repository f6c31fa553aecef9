// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the reviewdesk server.
// It loads configuration, connects to services, restores the project store,
// sets up routing, and starts the HTTP server with graceful shutdown support.
package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"reviewdesk/internal/ai"
	"reviewdesk/internal/cache"
	"reviewdesk/internal/config"
	"reviewdesk/internal/database"
	"reviewdesk/internal/handlers"
	"reviewdesk/internal/keywords"
	"reviewdesk/internal/metrics"
	"reviewdesk/internal/middleware"
	"reviewdesk/internal/notify"
	"reviewdesk/internal/router"
	"reviewdesk/internal/scoring"
	"reviewdesk/internal/service"
	"reviewdesk/internal/storage"
	"reviewdesk/internal/store"
	"reviewdesk/internal/workflow"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	// A local .env file is optional; real environment variables win.
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	} else if !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("configuration loaded",
		"env", cfg.Env,
		"addr", cfg.Addr(),
	)

	// Connect to PostgreSQL.
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repo := store.NewRepository(db)
	history := store.NewHistoryStore(db)
	notifiers := notify.Multi{notify.LogNotifier{}, history}

	// Valkey backs the keyword metrics cache and status notifications. The
	// review workflow keeps running without it.
	var marketCache keywords.Cache
	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword, cfg.ValkeyDB)
	if err != nil {
		slog.Warn("valkey unavailable, notifications and keyword cache disabled", "error", err)
	} else {
		defer valkeyClient.Close()
		marketCache = cache.NewMarketCache(valkeyClient, cfg.KeywordsCacheTTL)
		notifiers = append(notifiers, notify.NewValkeyNotifier(valkeyClient))
	}

	// S3-compatible archive for raw content documents (optional).
	var archive service.Archiver
	sources, err := storage.New(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey, cfg.S3Bucket)
	switch {
	case err != nil:
		slog.Error("failed to initialize S3 storage", "error", err)
		os.Exit(1)
	case sources == nil:
		slog.Warn("s3 storage not configured, source documents will not be archived")
	default:
		archive = sources
		slog.Info("s3 storage connected", "endpoint", cfg.S3Endpoint, "bucket", sources.Bucket())
	}

	var enricher service.Enricher
	if cfg.KeywordsBaseURL != "" {
		client := keywords.NewClient(cfg.KeywordsBaseURL, cfg.KeywordsAPIKey, cfg.KeywordsPerSecond)
		enricher = keywords.NewEnricher(client, marketCache)
	} else {
		slog.Warn("keyword metrics provider not configured, market figures disabled")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	svc := service.New(service.Deps{
		Repo:     repo,
		Scorer:   newScorer(cfg),
		Enricher: enricher,
		Archive:  archive,
		Notifier: notifiers,
		Metrics:  m,
	}, service.Options{
		Workflow:        workflow.Policy{LockFinal: cfg.WorkflowLockFinal},
		ClearOnRevision: cfg.RevisionClearsData,
		ScoringDelay:    cfg.ScoringDelay,
		ScoringTimeout:  cfg.ScoringTimeout,
	})

	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 30*time.Second)
	err = svc.Load(loadCtx)
	cancelLoad()
	if err != nil {
		slog.Error("failed to load projects", "error", err)
		os.Exit(1)
	}

	var limiter *middleware.RateLimiter
	if cfg.APIRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst)
		defer limiter.Stop()
	}

	r := router.New(handlers.New(svc, history), router.Options{
		Metrics:  m,
		Gatherer: prometheus.DefaultGatherer,
		Limiter:  limiter,
	})

	// WriteTimeout must cover the analysis long-poll.
	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown: wait for SIGINT or SIGTERM, then drain connections.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	svc.Close()

	slog.Info("server stopped gracefully")
}

// newScorer picks the AI scorer when a provider is configured, otherwise
// the random range scorer used for development.
func newScorer(cfg *config.Config) scoring.Scorer {
	if cfg.AIProvider == "" {
		slog.Warn("no AI provider configured, using generated scores")
		return scoring.NewRangeScorer(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15), scoring.DefaultRanges)
	}

	registry := ai.NewRegistry(cfg.AIProvider, map[string]ai.ProviderConfig{
		"openai":  {APIKey: cfg.OpenAIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL, RequestsPerMinute: cfg.AIRequestsPerMinute},
		"claude":  {APIKey: cfg.ClaudeKey, Model: cfg.ClaudeModel, BaseURL: cfg.ClaudeBaseURL, RequestsPerMinute: cfg.AIRequestsPerMinute},
		"mistral": {APIKey: cfg.MistralKey, Model: cfg.MistralModel, BaseURL: cfg.MistralBaseURL, RequestsPerMinute: cfg.AIRequestsPerMinute},
	})
	slog.Info("ai providers initialized",
		"active", registry.ActiveName(),
		"available", registry.Available(),
	)
	return ai.NewScorer(registry)
}
