package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/moviescope/internal/service"
)

func TestToggleMovie_SelectsAndDeselects(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/selection/toggle", map[string]any{"name": "Her"})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[ToggleMovieResponse](t, resp.Body.Bytes())
	assert.True(t, env.Data.Selected)
	assert.Equal(t, []string{"Her"}, env.Data.State.Selected)

	frame, ok := ts.recorder.Last("votes-score")
	require.True(t, ok)
	assert.Equal(t, []string{"Her"}, frame.Highlighted)

	resp = ts.api.Post("/api/v1/selection/toggle", map[string]any{"name": "Her"})
	require.Equal(t, http.StatusOK, resp.Code)
	env = decode[ToggleMovieResponse](t, resp.Body.Bytes())
	assert.False(t, env.Data.Selected)
	assert.Empty(t, env.Data.State.Selected)
}

func TestToggleMovie_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/selection/toggle", map[string]any{"name": "Jaws"})
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decode[any](t, resp.Body.Bytes()).Code)
}

func TestToggleMovie_EmptyName(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/selection/toggle", map[string]any{"name": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestToggleMovie_FilteredOut(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/genres/comedy/toggle")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/selection/toggle", map[string]any{"name": "Her"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, "VALIDATION", decode[any](t, resp.Body.Bytes()).Code)
}

// A genre filter that excludes a selected movie drops it from the selection.
func TestSetActiveGenres_PrunesSelection(t *testing.T) {
	ts := setupTestServer(t)

	for _, name := range []string{"Her", "The Grand Budapest Hotel"} {
		resp := ts.api.Post("/api/v1/selection/toggle", map[string]any{"name": name})
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	}

	resp := ts.api.Put("/api/v1/genres/active", map[string]any{"genres": []string{"comedy"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	active := decode[ActiveGenresResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"Comedy"}, active.Data.ActiveGenres)
	assert.Equal(t, 1, active.Data.Active)

	resp = ts.api.Get("/api/v1/selection")
	require.Equal(t, http.StatusOK, resp.Code)
	state := decode[service.State](t, resp.Body.Bytes())
	assert.Equal(t, []string{"The Grand Budapest Hotel"}, state.Data.Selected)
	assert.Equal(t, 4, state.Data.Total)
}

func TestSetActiveGenres_EmptyClearsFilter(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/genres/active", map[string]any{"genres": []string{"Drama", "Action"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, 2, decode[ActiveGenresResponse](t, resp.Body.Bytes()).Data.Active)

	resp = ts.api.Put("/api/v1/genres/active", map[string]any{"genres": []string{}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[ActiveGenresResponse](t, resp.Body.Bytes())
	assert.Empty(t, env.Data.ActiveGenres)
	assert.Equal(t, 4, env.Data.Active)
}

func TestSetActiveGenres_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/genres/active", map[string]any{"genres": []string{"Drama", "Noir"}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.Equal(t, "VALIDATION", env.Code)
}

func TestToggleGenre_TwiceRemoves(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/genres/sci-fi/toggle")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	assert.Equal(t, []string{"Sci-Fi"}, decode[ActiveGenresResponse](t, resp.Body.Bytes()).Data.ActiveGenres)

	resp = ts.api.Post("/api/v1/genres/sci-fi/toggle")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decode[ActiveGenresResponse](t, resp.Body.Bytes()).Data.ActiveGenres)
}

func TestToggleGenre_Unknown(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/genres/noir/toggle")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestResetSelection(t *testing.T) {
	ts := setupTestServer(t)

	ts.api.Post("/api/v1/selection/toggle", map[string]any{"name": "Inception"})
	ts.api.Post("/api/v1/genres/sci-fi/toggle")

	resp := ts.api.Post("/api/v1/selection/reset")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[service.State](t, resp.Body.Bytes())
	assert.Empty(t, env.Data.Selected)
	assert.Empty(t, env.Data.ActiveGenres)
	assert.Equal(t, 4, env.Data.Active)
}

func TestGestureRateLimit(t *testing.T) {
	ts := setupTestServer(t, withGestureLimit(0.001, 1))

	resp := ts.api.Post("/api/v1/selection/reset")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Post("/api/v1/selection/reset")
	assert.Equal(t, http.StatusTooManyRequests, resp.Code)
	assert.NotEmpty(t, resp.Header().Get("Retry-After"))

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "RATE_LIMITED", env.Code)

	// Reads are not throttled.
	resp = ts.api.Get("/api/v1/selection")
	assert.Equal(t, http.StatusOK, resp.Code)
}
