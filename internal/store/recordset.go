package store

import (
	"slices"

	"github.com/listenupapp/moviescope/internal/domain"
)

// RecordSet is an ordered sequence of movies. Filters return subsequences
// and never modify the movies themselves.
type RecordSet []domain.Movie

// Names returns the movie names in set order.
func (rs RecordSet) Names() []string {
	names := make([]string, len(rs))
	for i, m := range rs {
		names[i] = m.Name
	}
	return names
}

// Find returns the movie with the given name.
func (rs RecordSet) Find(name string) (domain.Movie, bool) {
	i := slices.IndexFunc(rs, func(m domain.Movie) bool { return m.Name == name })
	if i < 0 {
		return domain.Movie{}, false
	}
	return rs[i], true
}

// Max returns the largest value of f in the set, skipping missing values.
// ok is false when no movie has a value for f.
func (rs RecordSet) Max(f domain.Field) (maxValue float64, ok bool) {
	for _, m := range rs {
		v, has := m.Value(f)
		if !has {
			continue
		}
		if !ok || v > maxValue {
			maxValue, ok = v, true
		}
	}
	return maxValue, ok
}

// FilterByYear keeps movies released in minYear or later, preserving order.
func FilterByYear(set RecordSet, minYear int) RecordSet {
	out := make(RecordSet, 0, len(set))
	for _, m := range set {
		if m.Year >= minYear {
			out = append(out, m)
		}
	}
	return out
}

// FilterByGenres keeps movies whose genre is in genres, preserving order.
// An empty genre list means no filter and returns a copy of set.
func FilterByGenres(set RecordSet, genres []string) RecordSet {
	if len(genres) == 0 {
		return slices.Clone(set)
	}
	out := make(RecordSet, 0, len(set))
	for _, m := range set {
		if slices.Contains(genres, m.Genre) {
			out = append(out, m)
		}
	}
	return out
}
