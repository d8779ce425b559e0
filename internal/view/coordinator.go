// Package view derives what each dashboard view shows from the shared record
// store and selection, and keeps every view in step by reacting to bus
// events.
//
// A Coordinator owns one view. It subscribes to the events its kind needs
// under its view id, recomputes the parts of its state each event
// invalidates, and hands a fresh Frame to its Renderer.
package view

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/listenupapp/moviescope/internal/brush"
	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/color"
	"github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/store"
	"github.com/listenupapp/moviescope/internal/validation"
)

// CauseRefresh and CauseBrush label frames not caused by a bus event.
const (
	CauseRefresh = "refresh"
	CauseBrush   = "brush"
)

// Deps are the shared collaborators of every coordinator.
type Deps struct {
	Store     *store.Store
	Selection *selection.State
	Bus       *bus.Bus
	Renderer  Renderer

	// Optional. Defaults: color.Default(), validation.New(), slog.Default().
	Palette   *color.Palette
	Validator *validation.Validator
	Logger    *slog.Logger
}

// Coordinator keeps one view consistent with the shared state.
type Coordinator struct {
	cfg       Config
	store     *store.Store
	selection *selection.State
	bus       *bus.Bus
	palette   *color.Palette
	renderer  Renderer
	logger    *slog.Logger

	// brush is nil for views that cannot be brushed.
	brush *brush.Controller

	mu          sync.Mutex
	visible     store.RecordSet
	highlighted []string
	colorGenres []string
	colors      map[string]string
	focus       *Coordinator
	seq         uint64
	last        Frame
}

// Subscriptions returns the events a view of kind k reacts to.
func Subscriptions(k Kind) []bus.Kind {
	if k == KindTreemap {
		return []bus.Kind{bus.KindFilterGenre, bus.KindSelectionReset, bus.KindDatasetLoaded}
	}
	return []bus.Kind{
		bus.KindSelectMovie,
		bus.KindFilterGenre,
		bus.KindDeselectMovie,
		bus.KindSelectionReset,
		bus.KindDatasetLoaded,
	}
}

// New validates cfg, subscribes the view to the bus, and derives its initial
// state. Nothing is rendered until the first event or Refresh.
func New(cfg Config, deps Deps) (*Coordinator, error) {
	if deps.Store == nil || deps.Selection == nil || deps.Bus == nil || deps.Renderer == nil {
		return nil, errors.Internal("view: store, selection state, bus and renderer are required")
	}
	if deps.Validator == nil {
		deps.Validator = validation.New()
	}
	if deps.Palette == nil {
		deps.Palette = color.Default()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	cfg = cfg.withDefaults()
	if err := deps.Validator.Validate(cfg); err != nil {
		return nil, err
	}
	if cfg.Kind == KindScatter && (cfg.X.Field == "" || cfg.Y.Field == "") {
		return nil, errors.ValidationWithDetails("scatter views need a field on both axes",
			map[string]string{"x.field": "is required", "y.field": "is required"})
	}
	if cfg.FocusOf != "" && cfg.Kind != KindScatter {
		return nil, errors.Validationf("view %s: only scatter views can be a focus view", cfg.ID)
	}

	c := &Coordinator{
		cfg:       cfg,
		store:     deps.Store,
		selection: deps.Selection,
		bus:       deps.Bus,
		palette:   deps.Palette,
		renderer:  deps.Renderer,
		logger:    deps.Logger.With(slog.String("view_id", cfg.ID)),
	}
	if cfg.Kind == KindScatter {
		c.brush = brush.NewController(brush.Options{
			XPixels: cfg.X.Pixels,
			YPixels: cfg.Y.Pixels,
			Default: cfg.DefaultWindow,
		})
	}

	for _, kind := range Subscriptions(cfg.Kind) {
		if err := c.bus.Subscribe(kind, cfg.ID, c.handle); err != nil {
			c.Close()
			return nil, fmt.Errorf("subscribe view %s: %w", cfg.ID, err)
		}
	}

	c.mu.Lock()
	c.refreshColorsLocked()
	c.refreshVisibleLocked()
	c.refreshWindowLocked()
	c.refreshHighlightLocked()
	c.mu.Unlock()

	return c, nil
}

// ID returns the view id.
func (c *Coordinator) ID() string { return c.cfg.ID }

// Kind returns the view kind.
func (c *Coordinator) Kind() Kind { return c.cfg.Kind }

// Config returns the view's effective configuration.
func (c *Coordinator) Config() Config { return c.cfg }

// Brushable reports whether the view accepts brush gestures.
func (c *Coordinator) Brushable() bool { return c.brush != nil }

// Close unsubscribes the view from every event.
func (c *Coordinator) Close() {
	c.bus.UnsubscribeAll(c.cfg.ID)
}

// Frame returns the last rendered frame.
func (c *Coordinator) Frame() Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last.Clone()
}

// Visible returns the records the view currently shows.
func (c *Coordinator) Visible() store.RecordSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.visible)
}

// Highlighted returns the names of the selected movies the view shows.
func (c *Coordinator) Highlighted() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.highlighted)
}

// Window returns the visible domain window. ok is false for views that
// cannot be brushed.
func (c *Coordinator) Window() (w brush.Window, ok bool) {
	if c.brush == nil {
		return brush.Window{}, false
	}
	return c.brush.Window(), true
}

// Refresh recomputes everything and renders.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshColorsLocked()
	c.refreshVisibleLocked()
	c.refreshWindowLocked()
	c.refreshHighlightLocked()
	frame := c.buildFrameLocked(CauseRefresh)
	c.mu.Unlock()

	return c.render(ctx, frame)
}

func (c *Coordinator) handle(ctx context.Context, evt bus.Event) error {
	c.mu.Lock()
	switch evt.(type) {
	case bus.SelectMovie, bus.DeselectMovie:
		c.refreshHighlightLocked()
	case bus.FilterGenre:
		c.refreshVisibleLocked()
		c.refreshWindowLocked()
	case bus.SelectionReset:
		c.refreshVisibleLocked()
		c.refreshWindowLocked()
		c.refreshHighlightLocked()
	case bus.DatasetLoaded:
		c.refreshColorsLocked()
		c.refreshVisibleLocked()
		c.refreshWindowLocked()
		c.refreshHighlightLocked()
	}
	frame := c.buildFrameLocked(string(evt.Kind()))
	c.mu.Unlock()

	return c.render(ctx, frame)
}

func (c *Coordinator) render(ctx context.Context, frame Frame) error {
	if err := c.renderer.Render(ctx, frame.Clone()); err != nil {
		return fmt.Errorf("render view %s: %w", c.cfg.ID, err)
	}
	return nil
}

// refreshVisibleLocked recomputes the subset of records the view draws.
func (c *Coordinator) refreshVisibleLocked() {
	switch {
	case c.cfg.Kind == KindTreemap:
		c.visible = c.store.Base()
	case c.cfg.Inclusion == InclusionDim:
		c.visible = c.store.Base()
	default:
		c.visible = c.store.Active()
	}
}

// refreshWindowLocked installs the full domain of the current active set.
func (c *Coordinator) refreshWindowLocked() {
	if c.brush == nil {
		return
	}
	active := c.store.Active()
	maxX, _ := active.Max(c.cfg.X.Field)
	maxY, _ := active.Max(c.cfg.Y.Field)
	c.brush.SetFullDomain(brush.FullDomain(maxX, maxY))
}

func (c *Coordinator) refreshHighlightLocked() {
	if c.cfg.Kind == KindTreemap {
		c.highlighted = nil
		return
	}
	names := c.selection.SelectedNames()
	c.highlighted = slices.DeleteFunc(names, func(name string) bool {
		_, ok := c.visible.Find(name)
		return !ok
	})
}

// refreshColorsLocked rebuilds the color table when the set of genres in the
// data changed.
func (c *Coordinator) refreshColorsLocked() {
	genres := c.store.Genres()
	if c.colors != nil && slices.Equal(genres, c.colorGenres) {
		return
	}
	c.colorGenres = genres
	c.colors = c.palette.Table(genres)
	c.logger.Debug("color domain updated", slog.Int("genres", len(genres)))
}

func (c *Coordinator) buildFrameLocked(cause string) Frame {
	c.seq++
	f := Frame{
		ViewID:      c.cfg.ID,
		Kind:        c.cfg.Kind,
		Title:       c.cfg.Title,
		Seq:         c.seq,
		Cause:       cause,
		At:          time.Now(),
		Colors:      c.colors,
		Highlighted: c.highlighted,
	}
	if len(c.visible) == 0 {
		f.Empty = true
		f.EmptyReason = errors.EmptyDomainf("view %s has no records to draw", c.cfg.ID).Error()
	}

	switch c.cfg.Kind {
	case KindScatter:
		f.Scatter = c.scatterFrameLocked()
	case KindTreemap:
		f.Treemap = c.treemapFrameLocked()
	case KindYearGrid:
		f.YearGrid = c.yearGridFrameLocked()
	}

	c.last = f.Clone()
	return f
}

func (c *Coordinator) opacity(included bool) float64 {
	if included {
		return c.cfg.FullOpacity
	}
	return c.cfg.DimOpacity
}

func (c *Coordinator) scatterFrameLocked() *ScatterFrame {
	window := c.brush.Window()
	wx, wy := c.brush.WindowScales()

	sf := &ScatterFrame{
		Window:     window,
		FullDomain: c.brush.FullDomain(),
		BrushState: c.brush.State().String(),
		X:          axisFrame(c.cfg.X, wx, c.cfg.Ticks),
		Y:          axisFrame(c.cfg.Y, wy, c.cfg.Ticks),
		Points:     make([]Point, 0, len(c.visible)),
	}

	for _, m := range c.visible {
		x, okX := m.Value(c.cfg.X.Field)
		y, okY := m.Value(c.cfg.Y.Field)
		if !okX || !okY {
			sf.Omitted++
			continue
		}
		if !window.X.Contains(x) || !window.Y.Contains(y) {
			continue
		}
		included := c.selection.Includes(m.Genre)
		sf.Points = append(sf.Points, Point{
			Name:        m.Name,
			Genre:       m.Genre,
			X:           x,
			Y:           y,
			Color:       c.palette.For(m.Genre),
			Opacity:     c.opacity(included),
			Clickable:   included,
			Highlighted: slices.Contains(c.highlighted, m.Name),
			Tooltip:     m.Tooltip(),
		})
	}
	return sf
}

func axisFrame(cfg AxisConfig, s brush.Scale, n int) AxisFrame {
	ticks := s.Ticks(n)
	labels := make([]string, len(ticks))
	for i, v := range ticks {
		labels[i] = strconv.FormatFloat(v, 'f', -1, 64) + cfg.Unit
	}
	return AxisFrame{
		Field:      cfg.Field,
		Title:      cfg.Title,
		Domain:     s.Domain(),
		Pixels:     s.Pixels(),
		Ticks:      ticks,
		TickLabels: labels,
	}
}

func (c *Coordinator) treemapFrameLocked() *TreemapFrame {
	counts := store.AggregateByGenre(c.visible)
	active := c.store.Index()

	tf := &TreemapFrame{Rects: make([]Rect, len(counts)), Total: len(c.visible)}
	for i, gc := range counts {
		tf.Rects[i] = Rect{
			Genre:       gc.Genre,
			Count:       gc.Count,
			ActiveCount: active.GenreCount(gc.Genre),
			Color:       c.palette.For(gc.Genre),
			Selected:    c.selection.GenreActive(gc.Genre),
			Opacity:     c.opacity(c.selection.Includes(gc.Genre)),
			Tooltip:     fmt.Sprintf("%s: %d movies", gc.Genre, gc.Count),
		}
	}
	return tf
}

func (c *Coordinator) yearGridFrameLocked() *YearGridFrame {
	buckets := store.AggregateByYear(c.visible)

	gf := &YearGridFrame{CellsPerRow: c.cfg.CellsPerRow, Columns: make([]Column, len(buckets))}
	for i, b := range buckets {
		col := Column{
			Year:    b.Year,
			Count:   b.Count(),
			Label:   fmt.Sprintf("%d movies", b.Count()),
			Squares: make([]Square, len(b.Movies)),
		}
		for j, m := range b.Movies {
			included := c.selection.Includes(m.Genre)
			if included {
				col.Included++
			}
			col.Squares[j] = Square{
				Name:        m.Name,
				Genre:       m.Genre,
				Cell:        CellAt(j, c.cfg.CellsPerRow),
				Color:       c.palette.For(m.Genre),
				Opacity:     c.opacity(included),
				Clickable:   included,
				Highlighted: slices.Contains(c.highlighted, m.Name),
				Tooltip:     m.Tooltip(),
			}
		}
		gf.Columns[i] = col
	}
	return gf
}
