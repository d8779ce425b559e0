package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/color"
	"github.com/listenupapp/moviescope/internal/config"
	"github.com/listenupapp/moviescope/internal/logger"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/sse"
	"github.com/listenupapp/moviescope/internal/store"
	"github.com/listenupapp/moviescope/internal/validation"
	"github.com/listenupapp/moviescope/internal/view"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	defer h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager. It mirrors
// every bus event to stream clients, and is subscribed before any view so
// clients see an event ahead of the frames it causes.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	b := do.MustInvoke[*bus.Bus](i)

	manager := sse.NewManager(log.Logger, sse.Options{
		Heartbeat:    cfg.Stream.Heartbeat,
		ClientBuffer: cfg.Stream.ClientBuffer,
	})
	if err := sse.Mirror(b, manager, log.Logger); err != nil {
		return nil, err
	}

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// ViewRegistryHandle wraps the view registry with shutdown capability.
type ViewRegistryHandle struct {
	*view.Registry
}

// Shutdown implements do.Shutdownable.
func (h *ViewRegistryHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideViewRegistry builds the dashboard's views. Frames are streamed to
// SSE clients.
func ProvideViewRegistry(i do.Injector) (*ViewRegistryHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	registry, err := view.Build(view.DefaultConfigs(), view.Deps{
		Store:     do.MustInvoke[*store.Store](i),
		Selection: do.MustInvoke[*selection.State](i),
		Bus:       do.MustInvoke[*bus.Bus](i),
		Renderer:  sse.NewFrameRenderer(sseHandle.Manager),
		Palette:   do.MustInvoke[*color.Palette](i),
		Validator: do.MustInvoke[*validation.Validator](i),
		Logger:    log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Views registered", "views", registry.IDs())

	return &ViewRegistryHandle{Registry: registry}, nil
}
