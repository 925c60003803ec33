package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/quizdeck/quizdeck/internal/content"
	"github.com/quizdeck/quizdeck/internal/httpapi"
	"github.com/quizdeck/quizdeck/internal/platform/cache"
	"github.com/quizdeck/quizdeck/internal/platform/config"
	"github.com/quizdeck/quizdeck/internal/platform/database"
	"github.com/quizdeck/quizdeck/internal/progress"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogging(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Content is loaded once, fail-fast: serving a partial catalogue is
	// worse than not starting.
	idx, err := content.Load(cfg.Content.Dir)
	if err != nil {
		slog.Error("failed to load content", "dir", cfg.Content.Dir, "error", err)
		os.Exit(1)
	}
	store := content.NewStore(idx)

	progressStore, cleanup, err := setupProgress(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up progress persistence", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	srv := httpapi.New(store, progressStore, cfg.Content.Dir)

	watcher, err := content.StartWatcher(cfg.Content.Dir, store, content.WatcherOptions{
		Debounce: cfg.Content.WatchDebounce,
		OnEvent:  srv.BroadcastEvent,
	})
	if err != nil {
		slog.Error("failed to start content watcher", "error", err)
		os.Exit(1)
	}
	defer watcher.Close()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

func setupLogging(cfg config.LogConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}

// setupProgress connects the optional persistence and cache layers. Without
// a database URL the server runs content-only and the progress routes
// answer 503.
func setupProgress(ctx context.Context, cfg *config.Config) (progress.Store, func(), error) {
	if !cfg.HasDatabase() {
		slog.Warn("QUIZ_DATABASE_URL not set, progress persistence disabled")
		return nil, func() {}, nil
	}

	db, err := database.New(ctx, cfg.Database.URL, cfg.Database.MaxConns, cfg.Database.MinConns)
	if err != nil {
		return nil, nil, err
	}
	if err := progress.EnsureSchema(ctx, db.Pool); err != nil {
		db.Close()
		return nil, nil, err
	}
	store, err := progress.NewPostgresStore(db.Pool)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	slog.Info("progress persistence enabled")

	if !cfg.HasCache() {
		return store, db.Close, nil
	}

	c, err := cache.New(ctx, cfg.Cache.URL)
	if err != nil {
		// The cache is an optimization; a missing Redis should not keep
		// the server from starting.
		slog.Warn("cache unavailable, serving aggregates uncached", "error", err)
		return store, db.Close, nil
	}
	slog.Info("progress aggregate cache enabled")
	cleanup := func() {
		c.Close()
		db.Close()
	}
	return progress.NewCachedStore(store, c.Client), cleanup, nil
}
