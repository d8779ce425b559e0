package providers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/api"
	"github.com/listenupapp/moviescope/internal/color"
	"github.com/listenupapp/moviescope/internal/config"
	"github.com/listenupapp/moviescope/internal/logger"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/service"
	"github.com/listenupapp/moviescope/internal/store"
)

const (
	// version is reported in the OpenAPI document.
	version = "1.0.0"

	// shutdownTimeout bounds each handle's graceful shutdown.
	shutdownTimeout = 30 * time.Second
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	viewsHandle := do.MustInvoke[*ViewRegistryHandle](i)
	limiterHandle := do.MustInvoke[*RateLimiterHandle](i)

	services := &api.Services{
		Dashboard: do.MustInvoke[*service.Dashboard](i),
		Search:    do.MustInvoke[*service.SearchService](i),
		Dataset:   do.MustInvoke[*service.DatasetService](i),
	}

	handler := api.NewServer(api.Deps{
		Store:      do.MustInvoke[*store.Store](i),
		Selection:  do.MustInvoke[*selection.State](i),
		Views:      viewsHandle.Registry,
		Palette:    do.MustInvoke[*color.Palette](i),
		Services:   services,
		SSEManager: sseHandle.Manager,
		Limiter:    limiterHandle.KeyedRateLimiter,
		Logger:     log.Logger,
	}, api.Options{
		Title:          cfg.Server.Name + " API",
		Version:        version,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if !cfg.IsProduction() {
			log.Info("API docs available", "url", "http://"+srv.Addr+"/docs")
		}
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
