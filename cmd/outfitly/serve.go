package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"outfitly/internal/cache"
	"outfitly/internal/config"
	"outfitly/internal/database"
	"outfitly/internal/handlers"
	"outfitly/internal/imaging"
	"outfitly/internal/middleware"
	"outfitly/internal/outfit"
	"outfitly/internal/router"
	"outfitly/internal/storage"
	"outfitly/internal/store"
)

// serve connects to every backing service, wires the composer and runs
// the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config) error {
	slog.Info("configuration loaded", "env", cfg.Env, "addr", cfg.Addr())

	policy, err := outfit.ParseImageFailurePolicy(cfg.ItemImageFailure)
	if err != nil {
		return err
	}

	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if cfg.IsDev() {
		if err := database.Seed(db); err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
	}

	valkeyClient, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect to valkey: %w", err)
	}
	defer valkeyClient.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, "outfitly"),
	)
	metrics := outfit.NewMetrics(reg)

	deps := outfit.Deps{
		Outfits:    store.NewOutfitStore(db),
		Items:      store.NewItemStore(db),
		Categories: store.NewCategoryStore(db),
		Saved:      store.NewSavedStore(db),
		References: store.NewReferenceStore(db),
		Cache:      cache.NewOutfitCache(valkeyClient, cfg.CacheTTL),
	}

	// The app starts without a blob store; image uploads then fail per
	// the item image policy and main images fail the saga.
	blobs, err := storage.New(storage.Options{
		Endpoint:  cfg.S3Endpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		PublicURL: cfg.S3PublicURL,
	})
	if err != nil {
		return fmt.Errorf("initialize blob storage: %w", err)
	}
	if blobs != nil {
		deps.Images = imaging.New(blobs,
			imaging.WithMaxWidth(cfg.IngestMaxWidth),
			imaging.WithQuality(cfg.IngestQuality),
			imaging.WithHTTPClient(&http.Client{Timeout: cfg.IngestFetchTimeout}),
			imaging.WithObserver(metrics),
		)
		deps.Blobs = blobs
		slog.Info("blob storage configured", "endpoint", cfg.S3Endpoint, "bucket", cfg.S3Bucket)
	} else {
		slog.Warn("blob storage not configured, image uploads will fail")
	}

	svc := outfit.NewService(deps,
		outfit.WithImageFailurePolicy(policy),
		outfit.WithMetrics(metrics),
	)

	var limiter *middleware.RateLimiter
	if cfg.WriteRateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.WriteRateLimit, time.Minute)
		defer limiter.Stop()
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(router.Deps{
			Outfits:   handlers.NewOutfits(svc),
			JWTSecret: []byte(cfg.JWTSecret),
			Limiter:   limiter,
			Gatherer:  reg,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		// Multipart bodies with many item images take a while to upload,
		// and a create runs one blob write per image.
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", cfg.Addr(), "item_image_failure", policy)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutdown signal received")

	// Give active requests up to 30 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}
