package sse

import (
	"context"
	"log/slog"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/view"
)

// MirrorHandlerID is the bus handler id used by Mirror.
const MirrorHandlerID = "sse-mirror"

// FrameRenderer streams view frames to connected browsers.
type FrameRenderer struct {
	manager *Manager
}

var _ view.Renderer = (*FrameRenderer)(nil)

// NewFrameRenderer creates a renderer that emits frames through m.
func NewFrameRenderer(m *Manager) *FrameRenderer {
	return &FrameRenderer{manager: m}
}

// Render queues the frame for every client watching its view.
func (r *FrameRenderer) Render(_ context.Context, f view.Frame) error {
	r.manager.Emit(NewFrameEvent(f))
	return nil
}

// Mirror forwards every bus event to SSE clients as a dashboard.* event.
func Mirror(b *bus.Bus, m *Manager, logger *slog.Logger) error {
	forward := func(_ context.Context, evt bus.Event) error {
		out, ok := NewBusEvent(evt)
		if !ok {
			logger.Warn("no stream mapping for bus event", slog.String("event", string(evt.Kind())))
			return nil
		}
		m.Emit(out)
		return nil
	}

	for _, kind := range bus.Kinds() {
		if err := b.Subscribe(kind, MirrorHandlerID, forward); err != nil {
			return err
		}
	}
	return nil
}
