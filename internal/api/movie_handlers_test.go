package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListMovies_DropsRowsBeforeMinYear(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/movies")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[MoviesResponse](t, resp.Body.Bytes())
	assert.True(t, env.Success)
	assert.Equal(t, 4, env.Data.Total)
	assert.Equal(t, 4, env.Data.Active)

	names := make([]string, len(env.Data.Movies))
	for i, m := range env.Data.Movies {
		names[i] = m.Name
		assert.True(t, m.Included)
		assert.False(t, m.Selected)
	}
	assert.NotContains(t, names, "Superbad")
}

func TestListMovies_GenreSlug(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/movies?genre=sci-fi")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[MoviesResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Movies, 1)
	assert.Equal(t, "Inception", env.Data.Movies[0].Name)
	assert.Equal(t, "Sci-Fi", env.Data.Movies[0].Genre)
}

func TestListMovies_UnknownGenre(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/movies?genre=noir")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestListMovies_ActiveScopeFollowsFilter(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/genres/active", map[string]any{"genres": []string{"Comedy"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/movies?scope=active")
	require.Equal(t, http.StatusOK, resp.Code)
	env := decode[MoviesResponse](t, resp.Body.Bytes())
	require.Len(t, env.Data.Movies, 1)
	assert.Equal(t, "The Grand Budapest Hotel", env.Data.Movies[0].Name)
	assert.Equal(t, 1, env.Data.Active)

	resp = ts.api.Get("/api/v1/movies")
	env = decode[MoviesResponse](t, resp.Body.Bytes())
	assert.Len(t, env.Data.Movies, 4)
	for _, m := range env.Data.Movies {
		assert.Equal(t, m.Genre == "Comedy", m.Included, m.Name)
	}
}

func TestGetMovie(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/movies/The%20Dark%20Knight%20Rises")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	env := decode[MovieResponse](t, resp.Body.Bytes())
	assert.Equal(t, "The Dark Knight Rises", env.Data.Name)
	assert.Equal(t, "Christopher Nolan", env.Data.Director)
	require.NotNil(t, env.Data.Score)
	assert.InDelta(t, 8.4, *env.Data.Score, 1e-9)
	assert.InDelta(t, 1.7, env.Data.Votes, 1e-9)
}

func TestGetMovie_NotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/movies/Superbad")
	assert.Equal(t, http.StatusNotFound, resp.Code)

	env := decode[any](t, resp.Body.Bytes())
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
	assert.Equal(t, "movie not found", env.Error)
}

func TestListGenres(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/genres/comedy/toggle")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/genres")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[GenresResponse](t, resp.Body.Bytes())
	assert.Equal(t, []string{"Comedy"}, env.Data.ActiveGenres)
	require.Len(t, env.Data.Genres, 4)

	byGenre := make(map[string]GenreResponse)
	for _, g := range env.Data.Genres {
		byGenre[g.Genre] = g
		assert.NotEmpty(t, g.Color, g.Genre)
	}
	assert.Equal(t, GenreResponse{
		Genre: "Comedy", Slug: "comedy", Count: 1, ActiveCount: 1,
		Color: byGenre["Comedy"].Color, Active: true,
	}, byGenre["Comedy"])
	assert.Equal(t, 1, byGenre["Drama"].Count)
	assert.Equal(t, 0, byGenre["Drama"].ActiveCount)
	assert.False(t, byGenre["Drama"].Active)
	assert.Equal(t, "sci-fi", byGenre["Sci-Fi"].Slug)
}

func TestListYears(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Put("/api/v1/genres/active", map[string]any{"genres": []string{"drama"}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/years")
	require.Equal(t, http.StatusOK, resp.Code)

	env := decode[YearsResponse](t, resp.Body.Bytes())
	assert.Equal(t, []YearResponse{
		{Year: 2010, Count: 1, Included: 0},
		{Year: 2012, Count: 1, Included: 0},
		{Year: 2013, Count: 1, Included: 1},
		{Year: 2014, Count: 1, Included: 0},
	}, env.Data.Years)
}
