package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.etcd.io/bbolt"

	"github.com/alorle/stream-bridge/internal/adapter/driven"
	"github.com/alorle/stream-bridge/internal/adapter/driver"
	"github.com/alorle/stream-bridge/internal/application"
	"github.com/alorle/stream-bridge/internal/config"
	port "github.com/alorle/stream-bridge/internal/port/driven"
	"github.com/alorle/stream-bridge/internal/scheduler"
	"github.com/alorle/stream-bridge/internal/snapshot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// Create structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting stream-bridge", "config", cfg)
	if cfg.Upstream.AuthToken == "" {
		logger.Error("PPV_AUTH_TOKEN is not set, the playlist will be unavailable")
	}

	repo, closeRepo, err := openRepository(cfg)
	if err != nil {
		log.Fatalf("failed to open snapshot storage: %v", err)
	}
	defer closeRepo()

	// Create driven adapters
	api := driven.NewStreamsAPIHTTPClient(driven.StreamsAPIOptions{
		CatalogURL:      cfg.Upstream.CatalogURL,
		DetailBaseURL:   cfg.Upstream.DetailBaseURL,
		AuthToken:       cfg.Upstream.AuthToken,
		UserAgent:       cfg.Upstream.UserAgent,
		Timeout:         cfg.Upstream.RequestTimeout,
		DetailRateLimit: cfg.Upstream.DetailRateLimit,
	}, nil)

	// Create application services
	store := snapshot.NewStore()
	filter := application.NewCategoryFilter(cfg.Output.Categories)
	refresher := application.NewRefreshService(api, repo, store, logger, cfg.Upstream.DetailConcurrency)

	services := driver.Services{
		Status:   application.NewStatusService(store, refresher, cfg.Upstream.AuthToken),
		Playlist: application.NewPlaylistService(store, cfg.Upstream.AuthToken, cfg.Output.PublicBaseURL, filter, logger),
		Guide:    application.NewGuideService(store, cfg.Output.GeneratorName, filter, logger),
		Refresh:  refresher,
		Health:   application.NewHealthService(store, repo, cfg.Upstream.AuthToken),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	restored, err := refresher.Restore(ctx)
	if err != nil {
		logger.Warn("failed to restore persisted snapshot", "error", err)
	}
	if !restored {
		// Serve 503s until the first refresh lands rather than blocking startup
		go func() {
			if _, err := refresher.Refresh(ctx); err != nil {
				logger.Error("initial refresh failed", "error", err)
			}
		}()
	}

	sched, err := scheduler.New(cfg.RefreshSchedule(), func(ctx context.Context) error {
		_, err := refresher.Refresh(ctx)
		return err
	}, logger)
	if err != nil {
		log.Fatalf("failed to create scheduler: %v", err)
	}
	sched.Start(ctx)
	logger.Info("refresh scheduled", "schedule", cfg.RefreshSchedule(), "next", sched.Next())

	handler, err := driver.NewRouter(services, logger)
	if err != nil {
		log.Fatalf("failed to create router: %v", err)
	}

	server := &http.Server{
		Addr:         net.JoinHostPort(cfg.HTTP.Address, cfg.HTTP.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * time.Minute, // forced guide refreshes run inside the request
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received, shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		logger.Warn("refresh still running at shutdown")
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}

// openRepository opens the configured snapshot storage. The returned func
// releases it.
func openRepository(cfg *config.Config) (port.SnapshotRepository, func(), error) {
	if cfg.Storage.Backend != config.StorageBolt {
		repo, err := driven.NewSnapshotFileRepository(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {}, nil
	}

	path := cfg.BoltPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo, err := driven.NewSnapshotBoltDBRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	return repo, func() {
		if err := db.Close(); err != nil {
			log.Printf("error closing database: %v", err)
		}
	}, nil
}
