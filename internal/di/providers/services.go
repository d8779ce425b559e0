package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/config"
	"github.com/listenupapp/moviescope/internal/logger"
	"github.com/listenupapp/moviescope/internal/search"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/service"
	"github.com/listenupapp/moviescope/internal/store"
)

// ProvideDashboard provides the gesture orchestrator.
func ProvideDashboard(i do.Injector) (*service.Dashboard, error) {
	log := do.MustInvoke[*logger.Logger](i)
	views := do.MustInvoke[*ViewRegistryHandle](i)

	dashboard := service.NewDashboard(
		do.MustInvoke[*store.Store](i),
		do.MustInvoke[*selection.State](i),
		do.MustInvoke[*bus.Bus](i),
		views.Registry,
		log.Logger,
	)

	log.Info("Dashboard ready", "session_id", dashboard.SessionID())
	return dashboard, nil
}

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.Index
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the in-memory Bleve index.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	index, err := search.NewIndex(log.Logger)
	if err != nil {
		return nil, err
	}
	return &SearchIndexHandle{Index: index}, nil
}

// ProvideSearchService provides the search service. It reindexes on every
// dataset load.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSearchService(
		indexHandle.Index,
		do.MustInvoke[*store.Store](i),
		do.MustInvoke[*selection.State](i),
		do.MustInvoke[*bus.Bus](i),
		log.Logger,
	)
}

// ProvideDatasetService provides the dataset loader.
func ProvideDatasetService(i do.Injector) (*service.DatasetService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	dashboard := do.MustInvoke[*service.Dashboard](i)

	return service.NewDatasetService(cfg.Dataset.Path, cfg.Dataset.MinYear, dashboard, log.Logger), nil
}

// LoadInitialDataset installs the dataset before the server takes gestures.
// A failed load is logged and the server keeps running on an empty store;
// the watcher picks up a corrected file.
func LoadInitialDataset(i do.Injector) {
	log := do.MustInvoke[*logger.Logger](i)
	datasetService := do.MustInvoke[*service.DatasetService](i)
	views := do.MustInvoke[*ViewRegistryHandle](i)

	ctx := context.Background()
	if _, err := datasetService.Reload(ctx); err != nil {
		log.Error("Initial dataset load failed, serving an empty dashboard",
			"path", datasetService.Path(),
			"error", err)
		// Without a DatasetLoaded event nothing renders; push empty frames
		// so connected clients and the health check see every view.
		if err := views.RefreshAll(ctx); err != nil {
			log.Warn("Initial empty render failed", "error", err)
		}
	}
}
