package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/moviescope/internal/domain"
)

func setupTestIndex(t *testing.T) *Index {
	t.Helper()

	index, err := NewIndex(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	require.NoError(t, index.Replace([]domain.Movie{
		{Name: "Inception", Director: "Christopher Nolan", Genre: "Action", Year: 2010, Score: 8.8, HasScore: true},
		{Name: "Interstellar", Director: "Christopher Nolan", Genre: "Adventure", Year: 2014, Score: 8.6, HasScore: true},
		{Name: "Inside Out", Director: "Pete Docter", Genre: "Animation", Year: 2015, Score: 8.1, HasScore: true},
		{Name: "Drive", Director: "Nicolas Winding Refn", Genre: "Crime", Year: 2011, Score: 7.8, HasScore: true},
		{Name: "Untitled Project", Director: "Unknown", Genre: "Drama", Year: 2016},
	}))
	return index
}

func hitNames(r *Result) []string {
	names := make([]string, len(r.Hits))
	for i, h := range r.Hits {
		names[i] = h.Name
	}
	return names
}

func TestIndex_Replace(t *testing.T) {
	index := setupTestIndex(t)

	count, err := index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(5), count)

	require.NoError(t, index.Replace([]domain.Movie{{Name: "Arrival", Genre: "Drama", Year: 2016}}))

	count, err = index.DocumentCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)
}

func TestSearch_ByTitle(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultParams()
	params.Query = "inception"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	require.NotEmpty(t, result.Hits)
	hit := result.Hits[0]
	assert.Equal(t, "Inception", hit.Name)
	assert.Equal(t, "Christopher Nolan", hit.Director)
	assert.Equal(t, "Action", hit.Genre)
	assert.Equal(t, 2010, hit.Year)
	assert.InDelta(t, 8.8, hit.Score, 1e-9)
}

func TestSearch_ByDirector(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultParams()
	params.Query = "nolan"
	params.SortBy = "year"
	params.SortOrder = "asc"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"Inception", "Interstellar"}, hitNames(result))
}

func TestSearch_Fuzzy(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultParams()
	params.Query = "drve"

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Contains(t, hitNames(result), "Drive")
}

func TestSearch_Filters(t *testing.T) {
	index := setupTestIndex(t)

	t.Run("genre", func(t *testing.T) {
		params := DefaultParams()
		params.Genres = []string{"Crime", "Animation"}
		params.SortBy = "name"
		params.SortOrder = "asc"

		result, err := index.Search(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, []string{"Drive", "Inside Out"}, hitNames(result))
	})

	t.Run("year range", func(t *testing.T) {
		params := DefaultParams()
		params.MinYear = 2014
		params.MaxYear = 2015
		params.SortBy = "year"
		params.SortOrder = "asc"

		result, err := index.Search(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, []string{"Interstellar", "Inside Out"}, hitNames(result))
	})

	t.Run("min score skips unscored", func(t *testing.T) {
		params := DefaultParams()
		params.MinScore = 1
		params.SortBy = "score"

		result, err := index.Search(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, uint64(4), result.Total)
		assert.Equal(t, "Inception", result.Hits[0].Name)
	})
}

func TestSearch_GenreFacets(t *testing.T) {
	index := setupTestIndex(t)

	result, err := index.Search(context.Background(), DefaultParams())
	require.NoError(t, err)

	assert.Equal(t, uint64(5), result.Total)
	assert.Len(t, result.Genres, 5)
}

func TestSearch_Pagination(t *testing.T) {
	index := setupTestIndex(t)

	params := DefaultParams()
	params.SortBy = "name"
	params.SortOrder = "asc"
	params.Limit = 2
	params.Offset = 2

	result, err := index.Search(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, uint64(5), result.Total)
	assert.Equal(t, []string{"Inside Out", "Interstellar"}, hitNames(result))
}

func TestMovieDocument_ToMap(t *testing.T) {
	doc := NewMovieDocument(domain.Movie{Name: "Her", Genre: "Sci-Fi", Year: 2013})
	m := doc.ToMap()

	assert.Equal(t, "sci-fi", m["genre_slug"])
	assert.Equal(t, float64(2013), m["year"])
	assert.NotContains(t, m, "score")
}
