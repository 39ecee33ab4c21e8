// Copyright (c) 2026 PageForge Authors
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/pageforge/pageforge/internal/cache"
	"github.com/pageforge/pageforge/internal/config"
	"github.com/pageforge/pageforge/internal/handler"
	"github.com/pageforge/pageforge/internal/i18n"
	"github.com/pageforge/pageforge/internal/logging"
	"github.com/pageforge/pageforge/internal/middleware"
	"github.com/pageforge/pageforge/internal/scheduler"
	"github.com/pageforge/pageforge/internal/service"
	"github.com/pageforge/pageforge/internal/session"
	"github.com/pageforge/pageforge/internal/sites"
	"github.com/pageforge/pageforge/internal/store"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "PageForge - multilingual page content server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PF_SESSION_SECRET    Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PF_DB_PATH           SQLite database path (default: ./data/pageforge.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PF_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PF_ENV               Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PF_SITE_DOMAIN       Default site domain (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  PF_REDIS_URL         Redis URL for distributed caching (optional)\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("pageforge %s (commit: %s)\n", appVersion, appGitCommit)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Upgrade logger to also write WARN and ERROR logs to the event log
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx := context.Background()
	if cfg.DoSeed {
		if err := store.Seed(ctx, db, cfg.SiteDomain); err != nil {
			return fmt.Errorf("seeding database: %w", err)
		}
		slog.Info("database seeded", "site_domain", cfg.SiteDomain)
	}

	queries := store.New(db)

	// Language matcher over the active languages
	matcherCodes := []string{cfg.DefaultLanguage}
	if languages, err := queries.ListActiveLanguages(ctx); err == nil && len(languages) > 0 {
		matcherCodes = matcherCodes[:0]
		for _, lang := range languages {
			matcherCodes = append(matcherCodes, lang.Code)
		}
	}
	matcher := i18n.NewMatcher(matcherCodes)

	sessionManager := session.New(db, cfg.IsDevelopment())

	// Cache backend: Redis when configured, in-process memory otherwise
	ttl := time.Duration(cfg.CacheTTL) * time.Second
	var backend cache.Cache
	if cfg.UseRedisCache() {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheOptions{
			URL:        cfg.RedisURL,
			Prefix:     cfg.CachePrefix,
			DefaultTTL: ttl,
		})
		if err != nil {
			slog.Warn("redis unavailable, falling back to memory cache", "error", err)
			backend = cache.NewMemoryCache(ttl)
		} else {
			slog.Info("cache initialized", "backend", "redis", "url", cfg.RedisURL)
			backend = redisCache
		}
	} else {
		slog.Info("cache initialized", "backend", "memory")
		backend = cache.NewMemoryCache(ttl)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			slog.Error("closing cache", "error", err)
		}
	}()
	pageCache := cache.NewPageCache(backend, db)

	siteResolver := sites.NewResolver(db)
	titleService := service.NewTitleService(db, i18n.NewChains(db))
	titleService.SetCache(pageCache)
	pageService := service.NewPageService(db, siteResolver)
	pageService.SetCache(pageCache)

	// Publication-window sweep
	sched := scheduler.New(db, logger, pageCache)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	api := handler.New(db, sessionManager, titleService, pageService,
		siteResolver, matcher, cfg.DefaultLanguage)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(sessionManager.LoadAndSave)
	r.Use(middleware.CSRF([]byte(cfg.SessionSecret), cfg.TrustedOrigins))

	r.Mount("/api/v1", api.Routes())

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
