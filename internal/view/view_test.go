package view

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/moviescope/internal/brush"
	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/domain"
	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/selection"
	"github.com/listenupapp/moviescope/internal/store"
)

type fixture struct {
	store    *store.Store
	sel      *selection.State
	bus      *bus.Bus
	recorder *RecordingRenderer
	deps     Deps
}

func testMovies() store.RecordSet {
	return store.RecordSet{
		{Name: "M1", Genre: "Drama", Year: 2012, Score: 7, HasScore: true, Votes: 1, Gross: 2},
		{Name: "M2", Genre: "Action", Year: 2012, Score: 6, HasScore: true, Votes: 2, Gross: 5},
		{Name: "M3", Genre: "Drama", Year: 2014, Score: 8, HasScore: true, Votes: 0.5, Gross: 10},
		{Name: "M4", Genre: "Comedy", Year: 2013, Votes: 0.2, Gross: 0.1},
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	f := &fixture{
		store:    store.New(logger),
		sel:      selection.New(),
		bus:      bus.New(logger),
		recorder: NewRecordingRenderer(),
	}
	f.store.Replace(testMovies())
	f.deps = Deps{
		Store:     f.store,
		Selection: f.sel,
		Bus:       f.bus,
		Renderer:  f.recorder,
		Logger:    logger,
	}
	return f
}

func scatterConfig(id string) Config {
	return Config{
		ID:   id,
		Kind: KindScatter,
		X:    AxisConfig{Field: domain.FieldGross, Title: "Revenue", Unit: " B", Pixels: brush.Range{Min: 0, Max: 500}},
		Y:    AxisConfig{Field: domain.FieldScore, Title: "Score", Pixels: brush.Range{Min: 400, Max: 0}},
	}
}

func (f *fixture) newView(t *testing.T, cfg Config) *Coordinator {
	t.Helper()
	c, err := New(cfg, f.deps)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}

// filter runs the genre filter gesture chain the dashboard runs.
func (f *fixture) filter(genres ...string) {
	ctx := context.Background()
	active := f.sel.SetActiveGenres(genres)
	f.store.ApplyGenreFilter(active)
	f.bus.Publish(ctx, bus.FilterGenre{Genres: active})
	f.bus.Publish(ctx, bus.DeselectMovie{Genres: active})
}

func (f *fixture) toggle(t *testing.T, name string) {
	t.Helper()
	m, err := f.store.Lookup(name)
	require.NoError(t, err)
	selected := f.sel.Toggle(m)
	f.bus.Publish(context.Background(), bus.SelectMovie{Movie: m, Selected: selected})
}

func (f *fixture) last(t *testing.T, viewID string) Frame {
	t.Helper()
	frame, ok := f.recorder.Last(viewID)
	require.True(t, ok, "view %s never rendered", viewID)
	return frame
}

func pointNames(f Frame) []string {
	names := make([]string, 0, len(f.Scatter.Points))
	for _, p := range f.Scatter.Points {
		names = append(names, p.Name)
	}
	return names
}

func TestNew_SubscribesByKind(t *testing.T) {
	f := newFixture(t)
	f.newView(t, scatterConfig("scatter"))
	f.newView(t, Config{ID: "genres", Kind: KindTreemap})

	assert.Equal(t, []string{"scatter"}, f.bus.Subscribers(bus.KindSelectMovie))
	assert.Equal(t, []string{"scatter", "genres"}, f.bus.Subscribers(bus.KindFilterGenre))
	assert.Equal(t, []string{"scatter", "genres"}, f.bus.Subscribers(bus.KindDatasetLoaded))
}

func TestNew_ValidatesConfig(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing id", Config{Kind: KindTreemap}},
		{"bad id", Config{ID: "Genres View", Kind: KindTreemap}},
		{"unknown kind", Config{ID: "pie", Kind: "pie"}},
		{"scatter without axes", Config{ID: "s", Kind: KindScatter}},
		{"unknown field", func() Config {
			cfg := scatterConfig("s")
			cfg.X.Field = "runtime"
			return cfg
		}()},
		{"focus on itself", func() Config {
			cfg := scatterConfig("s")
			cfg.FocusOf = "s"
			return cfg
		}()},
		{"focus on treemap", Config{ID: "g", Kind: KindTreemap, FocusOf: "s"}},
		{"opacity out of range", Config{ID: "y", Kind: KindYearGrid, DimOpacity: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cfg, f.deps)
			assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
		})
	}
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(scatterConfig("s"), Deps{})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	f := newFixture(t)
	scatter := f.newView(t, scatterConfig("s"))
	grid := f.newView(t, Config{ID: "years", Kind: KindYearGrid})

	assert.Equal(t, InclusionHide, scatter.Config().Inclusion)
	assert.Equal(t, DefaultTicks, scatter.Config().Ticks)
	assert.Equal(t, InclusionDim, grid.Config().Inclusion)
	assert.Equal(t, DefaultCellsPerRow, grid.Config().CellsPerRow)
	assert.InDelta(t, DefaultDimOpacity, grid.Config().DimOpacity, 1e-9)
	assert.InDelta(t, DefaultFullOpacity, grid.Config().FullOpacity, 1e-9)
}

func TestDefaultConfigsAreValid(t *testing.T) {
	f := newFixture(t)

	r, err := Build(DefaultConfigs(), f.deps)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	assert.Equal(t, []string{"score-revenue", "votes-score", "genres", "years", "revenue-detail"}, r.IDs())
}

func TestScatter_Refresh(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, scatterConfig("s"))

	require.NoError(t, v.Refresh(context.Background()))
	frame := f.last(t, "s")

	assert.Equal(t, CauseRefresh, frame.Cause)
	assert.False(t, frame.Empty)
	assert.Equal(t, brush.FullDomain(10, 8), frame.Scatter.Window)
	assert.Equal(t, "unbrushed", frame.Scatter.BrushState)
	assert.Equal(t, []string{"M1", "M2", "M3"}, pointNames(frame))
	assert.Equal(t, 1, frame.Scatter.Omitted)
	assert.LessOrEqual(t, len(frame.Scatter.X.Ticks), DefaultTicks)
	require.NotEmpty(t, frame.Scatter.X.TickLabels)
	assert.Equal(t, "0 B", frame.Scatter.X.TickLabels[0])
	assert.Equal(t, "Revenue", frame.Scatter.X.Title)
	assert.Equal(t, "#2ca02c", frame.Colors["Drama"])
}

// Filtering to Drama leaves only Drama movies
// in a hiding view and shrinks its domain to the active set.
func TestScatter_GenreFilterHidesRecords(t *testing.T) {
	f := newFixture(t)
	f.newView(t, scatterConfig("s"))

	f.filter("Drama")

	frame := f.last(t, "s")
	assert.Equal(t, bus.KindDeselectMovie, bus.Kind(frame.Cause))
	assert.Equal(t, []string{"M1", "M3"}, pointNames(frame))
	assert.Equal(t, brush.FullDomain(10, 8), frame.Scatter.Window)

	f.filter("Action")
	frame = f.last(t, "s")
	assert.Equal(t, []string{"M2"}, pointNames(frame))
	assert.Equal(t, brush.FullDomain(5, 6), frame.Scatter.Window)
}

func TestScatter_EmptyVisibleSet(t *testing.T) {
	f := newFixture(t)
	f.newView(t, scatterConfig("s"))

	f.filter("Western")

	frame := f.last(t, "s")
	assert.True(t, frame.Empty)
	assert.Contains(t, frame.EmptyReason, "no records")
	assert.Empty(t, frame.Scatter.Points)
}

func TestScatter_HighlightFollowsSelection(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, scatterConfig("s"))

	f.toggle(t, "M1")
	f.toggle(t, "M2")

	frame := f.last(t, "s")
	assert.Equal(t, bus.KindSelectMovie, bus.Kind(frame.Cause))
	assert.Equal(t, []string{"M1", "M2"}, frame.Highlighted)
	for _, p := range frame.Scatter.Points {
		assert.Equal(t, p.Name == "M1" || p.Name == "M2", p.Highlighted, p.Name)
	}

	// Filtering to Drama prunes M2.
	f.filter("Drama")
	assert.Equal(t, []string{"M1"}, v.Highlighted())
	assert.Equal(t, []string{"M1"}, f.last(t, "s").Highlighted)

	f.toggle(t, "M1")
	assert.Empty(t, v.Highlighted())
}

func TestScatter_ResetRestoresEverything(t *testing.T) {
	f := newFixture(t)
	f.newView(t, scatterConfig("s"))
	f.toggle(t, "M1")
	f.filter("Drama")

	f.sel.Reset()
	f.store.ApplyGenreFilter(nil)
	f.bus.Publish(context.Background(), bus.SelectionReset{})

	frame := f.last(t, "s")
	assert.Equal(t, bus.KindSelectionReset, bus.Kind(frame.Cause))
	assert.Empty(t, frame.Highlighted)
	assert.Equal(t, []string{"M1", "M2", "M3"}, pointNames(frame))
}

// Brush then clear on a scatter view.
func TestScatter_BrushAndClear(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, scatterConfig("s"))
	ctx := context.Background()

	require.NoError(t, v.Brush(ctx, brush.AxisX, brush.Range{Min: 100, Max: 200}))

	frame := f.last(t, "s")
	assert.Equal(t, CauseBrush, frame.Cause)
	assert.Equal(t, "brushed", frame.Scatter.BrushState)
	assert.InDelta(t, 2, frame.Scatter.Window.X.Min, 1e-9)
	assert.InDelta(t, 4, frame.Scatter.Window.X.Max, 1e-9)
	assert.Equal(t, []string{"M1"}, pointNames(frame))

	require.NoError(t, v.ClearBrush(ctx))
	frame = f.last(t, "s")
	assert.Equal(t, brush.FullDomain(10, 8), frame.Scatter.Window)
	assert.Equal(t, []string{"M1", "M2", "M3"}, pointNames(frame))
}

func TestScatter_BrushSurvivesFilterClamped(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, scatterConfig("s"))

	require.NoError(t, v.Brush2D(context.Background(),
		brush.Range{Min: 150, Max: 400}, brush.Range{Min: 400, Max: 0}))
	f.filter("Action")

	w, ok := v.Window()
	require.True(t, ok)
	assert.InDelta(t, 3, w.X.Min, 1e-9)
	assert.InDelta(t, 5, w.X.Max, 1e-9)
	assert.Equal(t, brush.Range{Min: 0, Max: 6}, w.Y)

	f.filter()

	w, ok = v.Window()
	require.True(t, ok)
	assert.InDelta(t, 3, w.X.Min, 1e-9)
	assert.InDelta(t, 8, w.X.Max, 1e-9)
	assert.Equal(t, brush.Range{Min: 0, Max: 8}, w.Y)
	assert.Equal(t, []string{"M2"}, pointNames(f.last(t, "s")))
}

// Views are built before the first load, so a default window has to
// survive the empty store.
func TestScatter_DefaultWindowAppliedAfterFirstLoad(t *testing.T) {
	f := newFixture(t)
	f.store.Replace(nil)

	cfg := scatterConfig("s")
	cfg.DefaultWindow = &brush.Window{
		X: brush.Range{Min: 0, Max: 5},
		Y: brush.Range{Min: 0, Max: 10},
	}
	v := f.newView(t, cfg)

	f.store.Replace(testMovies())
	f.bus.Publish(context.Background(), bus.DatasetLoaded{Count: 4})

	frame := f.last(t, "s")
	assert.Equal(t, "brushed", frame.Scatter.BrushState)
	assert.Equal(t, brush.FullDomain(10, 8), frame.Scatter.FullDomain)
	assert.Equal(t, brush.Window{
		X: brush.Range{Min: 0, Max: 5},
		Y: brush.Range{Min: 0, Max: 8},
	}, frame.Scatter.Window)
	assert.Equal(t, []string{"M1", "M2"}, pointNames(frame))

	require.NoError(t, v.ClearBrush(context.Background()))
	assert.Equal(t, brush.FullDomain(10, 8), f.last(t, "s").Scatter.Window)
}

func TestBrush_RejectedOnTreemap(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, Config{ID: "genres", Kind: KindTreemap})

	err := v.Brush(context.Background(), brush.AxisX, brush.Range{Min: 0, Max: 10})

	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	_, ok := v.Window()
	assert.False(t, ok)
}

func TestFocusContext(t *testing.T) {
	f := newFixture(t)
	focusCfg := scatterConfig("focus")
	focusCfg.FocusOf = "context"

	r, err := Build([]Config{scatterConfig("context"), focusCfg}, f.deps)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	contextView, err := r.Get("context")
	require.NoError(t, err)
	focusID, ok := contextView.Focus()
	require.True(t, ok)
	assert.Equal(t, "focus", focusID)

	ctx := context.Background()
	require.NoError(t, contextView.Brush(ctx, brush.AxisX, brush.Range{Min: 100, Max: 200}))

	focusFrame := f.last(t, "focus")
	assert.Equal(t, "brushed", focusFrame.Scatter.BrushState)
	assert.InDelta(t, 2, focusFrame.Scatter.Window.X.Min, 1e-9)
	assert.InDelta(t, 4, focusFrame.Scatter.Window.X.Max, 1e-9)

	require.NoError(t, contextView.ClearBrush(ctx))
	assert.Equal(t, brush.FullDomain(10, 8), f.last(t, "focus").Scatter.Window)
}

func TestBuild_RejectsBadLinks(t *testing.T) {
	f := newFixture(t)

	focusCfg := scatterConfig("focus")
	focusCfg.FocusOf = "missing"
	_, err := Build([]Config{focusCfg}, f.deps)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))
	assert.Empty(t, f.bus.Subscribers(bus.KindSelectMovie), "failed build must unsubscribe")

	_, err = Build([]Config{scatterConfig("a"), scatterConfig("a")}, f.deps)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	votesCfg := scatterConfig("votes")
	votesCfg.X.Field = domain.FieldVotes
	votesCfg.FocusOf = "context"
	_, err = Build([]Config{scatterConfig("context"), votesCfg}, f.deps)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
	assert.Empty(t, f.bus.Subscribers(bus.KindSelectMovie))

	yearCfg := scatterConfig("years-focus")
	yearCfg.Y.Field = domain.FieldYear
	yearCfg.FocusOf = "context"
	_, err = Build([]Config{scatterConfig("context"), yearCfg}, f.deps)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation), "got %v", err)
}

func TestRegistry_Get(t *testing.T) {
	f := newFixture(t)
	r, err := Build([]Config{{ID: "years", Kind: KindYearGrid}}, f.deps)
	require.NoError(t, err)
	t.Cleanup(r.Close)

	_, err = r.Get("nope")
	assert.True(t, domainerrors.Is(err, domainerrors.ErrNotFound))

	require.NoError(t, r.RefreshAll(context.Background()))
	assert.Equal(t, 1, f.recorder.Count("years"))
}

func TestTreemap_Frame(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, Config{ID: "genres", Kind: KindTreemap})
	require.NoError(t, v.Refresh(context.Background()))

	frame := f.last(t, "genres")
	require.Len(t, frame.Treemap.Rects, 3)
	assert.Equal(t, "Drama", frame.Treemap.Rects[0].Genre)
	assert.Equal(t, 2, frame.Treemap.Rects[0].Count)
	assert.Equal(t, "Drama: 2 movies", frame.Treemap.Rects[0].Tooltip)
	assert.Equal(t, 4, frame.Treemap.Total)

	f.filter("Action")

	frame = f.last(t, "genres")
	assert.Equal(t, bus.KindFilterGenre, bus.Kind(frame.Cause), "treemap does not take deselectMovie")
	for _, r := range frame.Treemap.Rects {
		assert.Equal(t, r.Genre == "Action", r.Selected, r.Genre)
		if r.Genre == "Action" {
			assert.Equal(t, 1, r.ActiveCount)
			assert.InDelta(t, DefaultFullOpacity, r.Opacity, 1e-9)
		} else {
			assert.Equal(t, 0, r.ActiveCount)
			assert.InDelta(t, DefaultDimOpacity, r.Opacity, 1e-9)
		}
	}
	assert.Equal(t, 4, frame.Treemap.Total, "filtered genres keep their area")
}

func TestYearGrid_DimsFilteredRecords(t *testing.T) {
	f := newFixture(t)
	f.newView(t, Config{ID: "years", Kind: KindYearGrid})

	f.filter("Drama")

	frame := f.last(t, "years")
	require.Len(t, frame.YearGrid.Columns, 3)

	col := frame.YearGrid.Columns[0]
	assert.Equal(t, 2012, col.Year)
	assert.Equal(t, 2, col.Count)
	assert.Equal(t, 1, col.Included)
	assert.Equal(t, "2 movies", col.Label)

	m1, m2 := col.Squares[0], col.Squares[1]
	assert.Equal(t, "M1", m1.Name)
	assert.True(t, m1.Clickable)
	assert.InDelta(t, DefaultFullOpacity, m1.Opacity, 1e-9)
	assert.Equal(t, "M2", m2.Name)
	assert.False(t, m2.Clickable)
	assert.InDelta(t, DefaultDimOpacity, m2.Opacity, 1e-9)
	assert.Equal(t, Cell{Col: 1, Row: 0}, m2.Cell)

	assert.Equal(t, []int{2012, 2013, 2014}, []int{
		frame.YearGrid.Columns[0].Year, frame.YearGrid.Columns[1].Year, frame.YearGrid.Columns[2].Year,
	})
}

func TestYearGrid_HideInclusion(t *testing.T) {
	f := newFixture(t)
	f.newView(t, Config{ID: "years", Kind: KindYearGrid, Inclusion: InclusionHide})

	f.filter("Comedy")

	frame := f.last(t, "years")
	require.Len(t, frame.YearGrid.Columns, 1)
	assert.Equal(t, 2013, frame.YearGrid.Columns[0].Year)
}

func TestCellAt(t *testing.T) {
	assert.Equal(t, Cell{Col: 0, Row: 0}, CellAt(0, 5))
	assert.Equal(t, Cell{Col: 4, Row: 0}, CellAt(4, 5))
	assert.Equal(t, Cell{Col: 0, Row: 1}, CellAt(5, 5))
	assert.Equal(t, Cell{Col: 2, Row: 2}, CellAt(12, 5))
}

func TestColors_RebuiltOnlyWhenGenresChange(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, scatterConfig("s"))
	ctx := context.Background()

	f.filter("Drama")
	assert.Len(t, f.last(t, "s").Colors, 3)

	f.store.Replace(append(testMovies(), domain.Movie{
		Name: "M5", Genre: "Noir", Year: 2015, Score: 5, HasScore: true, Votes: 1, Gross: 1,
	}))
	f.sel.Reset()
	f.bus.Publish(ctx, bus.DatasetLoaded{Count: 5})

	frame := f.last(t, "s")
	assert.Len(t, frame.Colors, 4)
	assert.NotEmpty(t, frame.Colors["Noir"])
	assert.Len(t, v.Visible(), 5)
}

func TestRenderFailureIsIsolated(t *testing.T) {
	f := newFixture(t)

	var reported []*bus.SubscriberError
	f.bus.SetErrorSink(func(_ context.Context, err *bus.SubscriberError) {
		reported = append(reported, err)
	})

	broken := f.deps
	broken.Renderer = RendererFunc(func(context.Context, Frame) error {
		return errors.New("socket closed")
	})
	_, err := New(scatterConfig("broken"), broken)
	require.NoError(t, err)
	f.newView(t, scatterConfig("healthy"))

	f.toggle(t, "M1")

	require.Len(t, reported, 1)
	assert.Equal(t, "broken", reported[0].HandlerID)
	assert.Equal(t, []string{"M1"}, f.last(t, "healthy").Highlighted)
}

func TestFramesAreCopies(t *testing.T) {
	f := newFixture(t)
	v := f.newView(t, scatterConfig("s"))
	f.toggle(t, "M1")

	frame := f.last(t, "s")
	frame.Highlighted[0] = "changed"
	frame.Colors["Drama"] = "#000000"
	frame.Scatter.Points[0].Name = "changed"

	again := v.Frame()
	assert.Equal(t, []string{"M1"}, again.Highlighted)
	assert.Equal(t, "#2ca02c", again.Colors["Drama"])
	assert.Equal(t, "M1", again.Scatter.Points[0].Name)
}

func TestRenderers_FanOut(t *testing.T) {
	a, b := NewRecordingRenderer(), NewRecordingRenderer()
	failing := RendererFunc(func(context.Context, Frame) error { return errors.New("down") })

	err := Renderers{a, failing, b}.Render(context.Background(), Frame{ViewID: "s"})

	assert.Error(t, err)
	assert.Equal(t, 1, a.Count("s"))
	assert.Equal(t, 1, b.Count("s"))
}
