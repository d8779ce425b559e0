// Command api serves the MovieScope dashboard: the movie dataset, the linked
// views and the gesture endpoints that drive them.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/di"
	"github.com/listenupapp/moviescope/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "moviescope: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	injector := di.NewContainer()
	if err := di.Bootstrap(injector); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	log := do.MustInvoke[*logger.Logger](injector)

	<-ctx.Done()
	stop()

	started := time.Now()
	log.Info("shutdown requested")

	// Handles stop in reverse dependency order, so the HTTP server drains
	// before the views and the stream manager go away.
	if err := injector.Shutdown(); err != nil {
		log.Error("shutdown incomplete", "error", err)
		return fmt.Errorf("shutdown: %v", err)
	}
	log.Info("server stopped", "took", time.Since(started).Round(time.Millisecond))
	return nil
}
