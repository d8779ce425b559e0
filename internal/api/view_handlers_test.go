package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/moviescope/internal/view"
)

func TestListViews(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/views")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[ViewsResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Views, 5)

	ids := make([]string, len(env.Data.Views))
	for i, v := range env.Data.Views {
		ids[i] = v.ID
		assert.Positive(t, v.Seq, v.ID)
	}
	assert.Equal(t, []string{"score-revenue", "votes-score", "genres", "years", "revenue-detail"}, ids)

	assert.True(t, env.Data.Views[0].Brushable)
	assert.NotNil(t, env.Data.Views[0].Window)
	assert.False(t, env.Data.Views[2].Brushable)
	assert.Nil(t, env.Data.Views[2].Window)
}

func TestGetViewFrame(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/views/genres")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[view.Frame](t, resp.Body.Bytes())
	assert.Equal(t, "genres", env.Data.ViewID)
	assert.Equal(t, view.KindTreemap, env.Data.Kind)
	assert.False(t, env.Data.Empty)
	require.NotNil(t, env.Data.Treemap)
	assert.Nil(t, env.Data.Scatter)
	assert.Contains(t, env.Data.Colors, "Comedy")
}

func TestGetViewFrame_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/views/pie")
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp.Body.Bytes()).Code)
}

// Brushing the left half of the x axis halves the revenue window; clearing
// restores the full domain.
func TestBrushView_AndClear(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/views/score-revenue/brush", map[string]any{"x": []float64{472.5, 0}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[view.Frame](t, resp.Body.Bytes())
	require.NotNil(t, env.Data.Scatter)
	sf := env.Data.Scatter
	assert.Equal(t, "brushed", sf.BrushState)
	assert.Equal(t, view.CauseBrush, env.Data.Cause)
	assert.InDelta(t, 0, sf.Window.X.Min, 1e-9)
	assert.InDelta(t, sf.FullDomain.X.Max/2, sf.Window.X.Max, 1e-9)
	assert.Equal(t, sf.FullDomain.Y, sf.Window.Y)

	resp = ts.api.Delete("/api/v1/views/score-revenue/brush")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env = decode[view.Frame](t, resp.Body.Bytes())
	assert.Equal(t, "unbrushed", env.Data.Scatter.BrushState)
	assert.Equal(t, env.Data.Scatter.FullDomain, env.Data.Scatter.Window)
}

func TestBrushView_NotBrushable(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/views/genres/brush", map[string]any{"x": []float64{0, 100}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)
}

func TestBrushView_NeedsAnAxis(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/views/score-revenue/brush", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBrushView_UnknownView(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Delete("/api/v1/views/pie/brush")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func scatterNames(f *view.ScatterFrame) []string {
	names := make([]string, len(f.Points))
	for i, p := range f.Points {
		names[i] = p.Name
	}
	return names
}

// The detail view is built before the dataset loads, so its opening window
// only takes shape once the first load sets the revenue domain.
func TestRevenueDetail_OpensOnDefaultWindow(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/views/revenue-detail")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[view.Frame](t, resp.Body.Bytes())
	require.NotNil(t, env.Data.Scatter)
	sf := env.Data.Scatter
	assert.Equal(t, "brushed", sf.BrushState)
	assert.InDelta(t, 1.081142612, sf.FullDomain.X.Max, 1e-9)
	assert.InDelta(t, 0, sf.Window.X.Min, 1e-9)
	assert.InDelta(t, 1, sf.Window.X.Max, 1e-9)
	assert.InDelta(t, 0, sf.Window.Y.Min, 1e-9)
	assert.InDelta(t, 8.8, sf.Window.Y.Max, 1e-9)
	assert.ElementsMatch(t, []string{"Inception", "Her", "The Grand Budapest Hotel"}, scatterNames(sf))
}

func TestRevenueDetail_FollowsScoreRevenueBrush(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/views/score-revenue/brush", map[string]any{"x": []float64{472.5, 0}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	contextWindow := decode[view.Frame](t, resp.Body.Bytes()).Data.Scatter.Window

	resp = ts.api.Get("/api/v1/views/revenue-detail")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	sf := decode[view.Frame](t, resp.Body.Bytes()).Data.Scatter
	require.NotNil(t, sf)
	assert.Equal(t, "brushed", sf.BrushState)
	assert.InDelta(t, contextWindow.X.Max, sf.Window.X.Max, 1e-9)
	assert.ElementsMatch(t, []string{"Her", "The Grand Budapest Hotel"}, scatterNames(sf))

	resp = ts.api.Delete("/api/v1/views/score-revenue/brush")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/views/revenue-detail")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	sf = decode[view.Frame](t, resp.Body.Bytes()).Data.Scatter
	require.NotNil(t, sf)
	assert.Equal(t, "unbrushed", sf.BrushState)
	assert.Equal(t, sf.FullDomain, sf.Window)
}
