package view

import (
	"context"
	"slices"
	"sync"

	"github.com/listenupapp/moviescope/internal/errors"
)

// Registry holds the dashboard's views in creation order.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*Coordinator
	order []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{views: make(map[string]*Coordinator)}
}

// Build creates a coordinator per config, registers them in order, and links
// focus views to their context views. Views created before a failure are
// closed.
func Build(cfgs []Config, deps Deps) (*Registry, error) {
	r := NewRegistry()
	for _, cfg := range cfgs {
		c, err := New(cfg, deps)
		if err == nil {
			err = r.Add(c)
			if err != nil {
				c.Close()
			}
		}
		if err != nil {
			r.Close()
			return nil, err
		}
	}
	if err := r.Link(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

// Add registers a view. View ids are unique.
func (r *Registry) Add(c *Coordinator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.views[c.ID()]; exists {
		return errors.Validationf("duplicate view id %q", c.ID())
	}
	r.views[c.ID()] = c
	r.order = append(r.order, c.ID())
	return nil
}

// Get returns the view with the given id.
func (r *Registry) Get(id string) (*Coordinator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.views[id]
	if !ok {
		return nil, errors.NotFoundf("view %q not found", id)
	}
	return c, nil
}

// List returns every view in creation order.
func (r *Registry) List() []*Coordinator {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Coordinator, len(r.order))
	for i, id := range r.order {
		out[i] = r.views[id]
	}
	return out
}

// IDs returns the view ids in creation order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Link resolves FocusOf on every view: the named context view's brush will
// drive the focus view's window. A context view must be brushable and plot
// the same fields as its focus view.
func (r *Registry) Link() error {
	for _, focus := range r.List() {
		ctxID := focus.cfg.FocusOf
		if ctxID == "" {
			continue
		}
		contextView, err := r.Get(ctxID)
		if err != nil {
			return errors.Validationf("view %s: focus_of names unknown view %q", focus.ID(), ctxID)
		}
		if !contextView.Brushable() {
			return errors.Validationf("view %s: context view %q cannot be brushed", focus.ID(), ctxID)
		}
		// The context window is handed over in domain units, so both views
		// must plot the same fields.
		if focus.cfg.X.Field != contextView.cfg.X.Field || focus.cfg.Y.Field != contextView.cfg.Y.Field {
			return errors.Validationf("view %s: axes %s/%s do not match context view %q (%s/%s)",
				focus.ID(), focus.cfg.X.Field, focus.cfg.Y.Field,
				ctxID, contextView.cfg.X.Field, contextView.cfg.Y.Field)
		}
		contextView.setFocus(focus)
	}
	return nil
}

// RefreshAll re-renders every view. Every view is attempted; errors are
// joined.
func (r *Registry) RefreshAll(ctx context.Context) error {
	var errs []error
	for _, c := range r.List() {
		if err := c.Refresh(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close unsubscribes every view.
func (r *Registry) Close() {
	for _, c := range r.List() {
		c.Close()
	}
}
