package watcher

import (
	"context"
	"log/slog"
)

// ReloadFunc is called after the watched file settles.
type ReloadFunc func(ctx context.Context) error

// Follow feeds settled add/modify events to reload until ctx is canceled.
// Reload failures are logged and the loop keeps going, so a half-written
// file followed by a good one still ends on the good data.
func Follow(ctx context.Context, w *Watcher, logger *slog.Logger, reload ReloadFunc) {
	for {
		select {
		case <-ctx.Done():
			return

		case err := <-w.Errors():
			logger.Warn("file watcher error", "error", err)

		case event := <-w.Events():
			if !event.Reloadable() {
				logger.Warn("watched file missing or empty, keeping current data",
					"path", event.Path,
					"change", event.Type.String())
				continue
			}

			logger.Info("watched file changed",
				"path", event.Path,
				"change", event.Type.String(),
				"size", event.Size)
			if err := reload(ctx); err != nil {
				logger.Error("reload failed", "path", event.Path, "error", err)
			}
		}
	}
}
