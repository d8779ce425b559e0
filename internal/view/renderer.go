package view

import (
	"context"
	"sync"

	"github.com/listenupapp/moviescope/internal/errors"
)

// Renderer draws frames. It is called synchronously from event delivery and
// receives its own copy of every frame.
type Renderer interface {
	Render(ctx context.Context, f Frame) error
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, f Frame) error

// Render implements Renderer.
func (fn RendererFunc) Render(ctx context.Context, f Frame) error {
	return fn(ctx, f)
}

// Renderers fans a frame out to several renderers. All are called; their
// errors are joined.
type Renderers []Renderer

// Render implements Renderer.
func (rs Renderers) Render(ctx context.Context, f Frame) error {
	var errs []error
	for _, r := range rs {
		if err := r.Render(ctx, f.Clone()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordingRenderer keeps every frame it is given, per view.
type RecordingRenderer struct {
	mu     sync.Mutex
	frames map[string][]Frame
}

// NewRecordingRenderer returns an empty recorder.
func NewRecordingRenderer() *RecordingRenderer {
	return &RecordingRenderer{frames: make(map[string][]Frame)}
}

// Render implements Renderer.
func (r *RecordingRenderer) Render(_ context.Context, f Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames[f.ViewID] = append(r.frames[f.ViewID], f)
	return nil
}

// Frames returns the frames recorded for a view, oldest first.
func (r *RecordingRenderer) Frames(viewID string) []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Frame, len(r.frames[viewID]))
	for i, f := range r.frames[viewID] {
		out[i] = f.Clone()
	}
	return out
}

// Last returns the most recent frame for a view.
func (r *RecordingRenderer) Last(viewID string) (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := r.frames[viewID]
	if len(frames) == 0 {
		return Frame{}, false
	}
	return frames[len(frames)-1].Clone(), true
}

// Count returns how many frames a view rendered.
func (r *RecordingRenderer) Count(viewID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames[viewID])
}

// Reset forgets all recorded frames.
func (r *RecordingRenderer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.frames)
}
