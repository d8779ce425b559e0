// Package service turns dashboard gestures into state changes and keeps
// the search index and dataset in step with the record store.
package service

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/listenupapp/moviescope/internal/brush"
	"github.com/listenupapp/moviescope/internal/bus"
	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/genre"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/store"
	"github.com/listenupapp/moviescope/internal/view"
)

// Dashboard turns user gestures into state changes and bus events.
//
// Each gesture runs as one chain (mutation, publish, subscriber callbacks,
// renders) while holding the dashboard lock, so two gestures never
// interleave even when they arrive on concurrent HTTP requests.
type Dashboard struct {
	mu sync.Mutex

	store     *store.Store
	selection *selection.State
	bus       *bus.Bus
	views     *view.Registry
	logger    *slog.Logger
	tracer    trace.Tracer
	sessionID string
}

// NewDashboard creates a dashboard over the shared state.
func NewDashboard(
	st *store.Store,
	sel *selection.State,
	b *bus.Bus,
	views *view.Registry,
	logger *slog.Logger,
) *Dashboard {
	return &Dashboard{
		store:     st,
		selection: sel,
		bus:       b,
		views:     views,
		logger:    logger,
		tracer:    otel.Tracer("github.com/listenupapp/moviescope/internal/service"),
		sessionID: uuid.NewString(),
	}
}

// SessionID identifies this dashboard instance in traces and snapshots.
func (d *Dashboard) SessionID() string {
	return d.sessionID
}

// State is the shared selection state as seen by clients.
type State struct {
	SessionID    string   `json:"session_id"`
	Selected     []string `json:"selected"`
	ActiveGenres []string `json:"active_genres"`
	Active       int      `json:"active"`
	Total        int      `json:"total"`
}

// State returns a snapshot of the selection and filter.
func (d *Dashboard) State() State {
	snap := d.selection.Snapshot()
	names := make([]string, len(snap.Selected))
	for i, m := range snap.Selected {
		names[i] = m.Name
	}
	return State{
		SessionID:    d.sessionID,
		Selected:     names,
		ActiveGenres: snap.ActiveGenres,
		Active:       d.store.Index().Total,
		Total:        len(d.store.Base()),
	}
}

// ToggleMovie selects the named movie, or deselects it if it was selected.
// Movies filtered out by the genre filter cannot be selected.
func (d *Dashboard) ToggleMovie(ctx context.Context, name string) (selected bool, err error) {
	err = d.gesture(ctx, "toggleMovie", []attribute.KeyValue{attribute.String("movie.name", name)},
		func(ctx context.Context) error {
			m, err := d.store.Lookup(name)
			if err != nil {
				return err
			}
			if !d.selection.Includes(m.Genre) && !d.selection.IsSelected(m.Name) {
				return domainerrors.Validationf("movie %q is filtered out by the genre filter", name).
					WithDetails(map[string]string{"genre": m.Genre})
			}
			selected = d.selection.Toggle(m)
			d.bus.Publish(ctx, bus.SelectMovie{Movie: m, Selected: selected})
			return nil
		})
	return selected, err
}

// ToggleGenre adds g to the active genres, or removes it if present, as a
// click on a treemap rectangle does. It returns the new active set.
func (d *Dashboard) ToggleGenre(ctx context.Context, g string) (active []string, err error) {
	err = d.gesture(ctx, "toggleGenre", []attribute.KeyValue{attribute.String("genre", g)},
		func(ctx context.Context) error {
			if err := d.checkGenres([]string{g}); err != nil {
				return err
			}
			active = d.applyGenresLocked(ctx, d.selection.ToggledGenres(g))
			return nil
		})
	return active, err
}

// SetActiveGenres replaces the active genre set. An empty set removes the
// filter. It returns the new active set.
func (d *Dashboard) SetActiveGenres(ctx context.Context, genres []string) (active []string, err error) {
	err = d.gesture(ctx, "setActiveGenres", []attribute.KeyValue{attribute.StringSlice("genres", genres)},
		func(ctx context.Context) error {
			if err := d.checkGenres(genres); err != nil {
				return err
			}
			active = d.applyGenresLocked(ctx, genres)
			return nil
		})
	return active, err
}

// applyGenresLocked runs the genre filter chain: filterGenre first so views
// recompute their visible sets, then deselectMovie so they prune highlights.
func (d *Dashboard) applyGenresLocked(ctx context.Context, genres []string) []string {
	active := d.selection.SetActiveGenres(genres)
	d.store.ApplyGenreFilter(active)
	d.bus.Publish(ctx, bus.FilterGenre{Genres: active})
	d.bus.Publish(ctx, bus.DeselectMovie{Genres: active})
	return active
}

// checkGenres accepts labels of the closed genre set and any other label
// present in the loaded data.
func (d *Dashboard) checkGenres(genres []string) error {
	present := d.store.Genres()
	var unknown []string
	for _, g := range genres {
		if !genre.IsKnown(g) && !slices.Contains(present, g) {
			unknown = append(unknown, g)
		}
	}
	if len(unknown) > 0 {
		return domainerrors.ValidationWithDetails("unknown genre", map[string][]string{"genres": unknown})
	}
	return nil
}

// BrushRequest is a brush gesture in pixel coordinates. A nil axis is not
// brushed.
type BrushRequest struct {
	X *brush.Range
	Y *brush.Range
}

// Brush narrows the window of a scatter view.
func (d *Dashboard) Brush(ctx context.Context, viewID string, req BrushRequest) error {
	return d.gesture(ctx, "brush", []attribute.KeyValue{attribute.String("view.id", viewID)},
		func(ctx context.Context) error {
			v, err := d.views.Get(viewID)
			if err != nil {
				return err
			}
			switch {
			case req.X != nil && req.Y != nil:
				return v.Brush2D(ctx, *req.X, *req.Y)
			case req.X != nil:
				return v.Brush(ctx, brush.AxisX, *req.X)
			case req.Y != nil:
				return v.Brush(ctx, brush.AxisY, *req.Y)
			default:
				return domainerrors.Validation("brush needs an x or y interval")
			}
		})
}

// ClearBrush returns a scatter view to its full domain.
func (d *Dashboard) ClearBrush(ctx context.Context, viewID string) error {
	return d.gesture(ctx, "clearBrush", []attribute.KeyValue{attribute.String("view.id", viewID)},
		func(ctx context.Context) error {
			v, err := d.views.Get(viewID)
			if err != nil {
				return err
			}
			return v.ClearBrush(ctx)
		})
}

// Reset clears the selection and the genre filter.
func (d *Dashboard) Reset(ctx context.Context) error {
	return d.gesture(ctx, "reset", nil, func(ctx context.Context) error {
		d.resetLocked(ctx)
		return nil
	})
}

func (d *Dashboard) resetLocked(ctx context.Context) {
	d.selection.Reset()
	d.store.ApplyGenreFilter(nil)
	d.bus.Publish(ctx, bus.SelectionReset{})
}

// LoadReport summarizes a dataset load.
type LoadReport struct {
	Loaded       int              `json:"loaded"`
	Dropped      []store.RowError `json:"dropped,omitempty"`
	BelowMinYear int              `json:"below_min_year"`
}

// Load installs a new dataset: rows are parsed, rows before minYear are cut,
// selection and filter are reset, and every view is told to redraw.
// Malformed rows are reported but never fail the load.
func (d *Dashboard) Load(ctx context.Context, rows []store.RawRow, minYear int) (report LoadReport, err error) {
	err = d.gesture(ctx, "load", []attribute.KeyValue{attribute.Int("dataset.rows", len(rows))},
		func(ctx context.Context) error {
			set, loadErr := store.Load(rows)
			report.Dropped = store.DroppedRows(loadErr)
			if loadErr != nil && report.Dropped == nil {
				return loadErr
			}

			kept := store.FilterByYear(set, minYear)
			report.Loaded = len(kept)
			report.BelowMinYear = len(set) - len(kept)

			d.store.Replace(kept)
			d.selection.Reset()
			d.bus.Publish(ctx, bus.DatasetLoaded{Count: report.Loaded, Dropped: len(report.Dropped)})
			return nil
		})

	if err == nil && len(report.Dropped) > 0 {
		d.logger.Warn("dataset rows dropped",
			slog.Int("dropped", len(report.Dropped)),
			slog.String("first", report.Dropped[0].String()))
	}
	return report, err
}

// gesture runs fn as one serialized, traced gesture chain.
func (d *Dashboard) gesture(ctx context.Context, name string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	attrs = append(attrs, attribute.String("dashboard.session", d.sessionID))
	ctx, span := d.tracer.Start(ctx, "dashboard."+name, trace.WithAttributes(attrs...))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Debug("gesture rejected",
			slog.String("gesture", name),
			slog.String("error", err.Error()))
		return err
	}
	return nil
}
