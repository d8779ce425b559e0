package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/listenupapp/moviescope/internal/config"
	"github.com/listenupapp/moviescope/internal/logger"
	"github.com/listenupapp/moviescope/internal/tracing"
)

// TracerProviderHandle flushes exported spans on shutdown.
type TracerProviderHandle struct {
	shutdown tracing.ShutdownFunc
}

// Shutdown implements do.Shutdownable.
func (h *TracerProviderHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.shutdown(ctx)
}

// ProvideTracerProvider installs the global tracer provider when a trace
// endpoint is configured.
func ProvideTracerProvider(i do.Injector) (*TracerProviderHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	shutdown, err := tracing.Setup(context.Background(), tracing.Options{
		Endpoint:    cfg.Tracing.Endpoint,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: cfg.Server.Name,
		Environment: cfg.App.Environment,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Tracing.Enabled() {
		log.Info("Trace export enabled",
			"endpoint", cfg.Tracing.Endpoint,
			"sample_ratio", cfg.Tracing.SampleRatio,
		)
	} else {
		log.Debug("Trace export disabled")
	}

	return &TracerProviderHandle{shutdown: shutdown}, nil
}
