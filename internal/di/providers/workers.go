package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/config"
	"github.com/listenupapp/moviescope/internal/logger"
	"github.com/listenupapp/moviescope/internal/ratelimit"
	"github.com/listenupapp/moviescope/internal/service"
	"github.com/listenupapp/moviescope/internal/watcher"
)

// DatasetWatcherHandle wraps the dataset file watcher with shutdown
// capability. Watcher is nil when watching is disabled.
type DatasetWatcherHandle struct {
	*watcher.Watcher
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *DatasetWatcherHandle) Shutdown() error {
	h.cancel()
	if h.Watcher == nil {
		return nil
	}
	return h.Watcher.Stop()
}

// ProvideDatasetWatcher reloads the dataset whenever its file settles after
// a change.
func ProvideDatasetWatcher(i do.Injector) (*DatasetWatcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	datasetService := do.MustInvoke[*service.DatasetService](i)

	ctx, cancel := context.WithCancel(context.Background())

	if !cfg.Dataset.Watch {
		log.Info("Dataset watching disabled")
		return &DatasetWatcherHandle{cancel: cancel}, nil
	}

	w, err := watcher.New(log.Logger, watcher.Options{SettleDelay: cfg.Dataset.SettleDelay})
	if err != nil {
		cancel()
		return nil, err
	}
	if err := w.Watch(cfg.Dataset.Path); err != nil {
		cancel()
		_ = w.Stop()
		return nil, err
	}

	// Start in background
	go func() {
		if err := w.Start(ctx); err != nil {
			log.Error("Dataset watcher error", "error", err)
		}
	}()

	go watcher.Follow(ctx, w, log.Logger, func(ctx context.Context) error {
		_, err := datasetService.Reload(ctx)
		return err
	})

	log.Info("Dataset watcher started",
		"dir", filepath.Dir(cfg.Dataset.Path),
		"settle_delay", cfg.Dataset.SettleDelay)

	return &DatasetWatcherHandle{Watcher: w, cancel: cancel}, nil
}

// RateLimiterHandle wraps the gesture rate limiter with shutdown capability.
type RateLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *RateLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideRateLimiter provides the per-client gesture rate limiter.
func ProvideRateLimiter(i do.Injector) (*RateLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(cfg.RateLimit.GesturesPerSecond, cfg.RateLimit.Burst)
	return &RateLimiterHandle{KeyedRateLimiter: limiter}, nil
}
