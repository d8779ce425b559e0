// Package di provides dependency injection configuration for the MovieScope server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/color"
	"github.com/listenupapp/moviescope/internal/config"
	"github.com/listenupapp/moviescope/internal/di/providers"
	"github.com/listenupapp/moviescope/internal/logger"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/service"
	"github.com/listenupapp/moviescope/internal/store"
	"github.com/listenupapp/moviescope/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideTracerProvider)

	// Shared dashboard state
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSelection)
	do.Provide(injector, providers.ProvideBus)
	do.Provide(injector, providers.ProvidePalette)
	do.Provide(injector, providers.ProvideValidator)

	// Views and streaming
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideViewRegistry)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)

	// Business services
	do.Provide(injector, providers.ProvideDashboard)
	do.Provide(injector, providers.ProvideDatasetService)

	// Workers
	do.Provide(injector, providers.ProvideDatasetWatcher)
	do.Provide(injector, providers.ProvideRateLimiter)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Configuration errors are the common startup failure; report them
	// instead of panicking inside a provider.
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}

	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*logger.Logger](injector)
	// Installed before the bus and the services create their tracers.
	if _, err := do.Invoke[*providers.TracerProviderHandle](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*store.Store](injector)
	_ = do.MustInvoke[*selection.State](injector)
	_ = do.MustInvoke[*bus.Bus](injector)
	_ = do.MustInvoke[*color.Palette](injector)
	_ = do.MustInvoke[*validation.Validator](injector)

	// The SSE mirror subscribes before the views so streams see each event
	// ahead of the frames it causes.
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.ViewRegistryHandle](injector)

	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*service.SearchService](injector)
	_ = do.MustInvoke[*service.Dashboard](injector)
	_ = do.MustInvoke[*service.DatasetService](injector)

	// Load before accepting requests so the first frames carry data.
	providers.LoadInitialDataset(injector)

	// Workers
	_ = do.MustInvoke[*providers.DatasetWatcherHandle](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
