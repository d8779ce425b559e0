// Package store is the dashboard's record store: it loads and normalizes
// movies, filters them, and keeps the aggregate index for the active set.
package store

import (
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/listenupapp/moviescope/internal/domain"
	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/genre"
)

// ErrMovieNotFound is returned when a name does not match a loaded movie.
var ErrMovieNotFound = domainerrors.NotFound("movie not found")

// Store holds the loaded base set, the active (genre-filtered) subset, and
// the aggregate index of the active subset.
//
// The active set and its index are shared by every view. They only change
// through Replace and ApplyGenreFilter, and are always rebuilt as a whole.
type Store struct {
	logger *slog.Logger

	mu       sync.RWMutex
	base     RecordSet
	byName   map[string]int
	active   RecordSet
	index    Index
	filter   []string
	loadedAt time.Time
}

// New creates an empty store.
func New(logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		logger: logger,
		byName: make(map[string]int),
		index:  BuildIndex(nil),
	}
}

// Replace installs a freshly loaded base set. Any genre filter is cleared.
func (s *Store) Replace(set RecordSet) {
	base := slices.Clone(set)
	byName := make(map[string]int, len(base))
	for i, m := range base {
		byName[m.Name] = i
	}

	s.mu.Lock()
	s.base = base
	s.byName = byName
	s.filter = nil
	s.rebuildLocked()
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.logger.Info("record store loaded",
		slog.Int("movies", len(base)),
		slog.Int("genres", len(s.Index().Genres)))
}

// ApplyGenreFilter makes the movies of the given genres the active set.
// An empty list shows everything. It returns the new active set.
func (s *Store) ApplyGenreFilter(genres []string) RecordSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.filter = slices.Clone(genres)
	s.rebuildLocked()

	s.logger.Debug("genre filter applied",
		slog.Any("genres", genres),
		slog.Int("active", len(s.active)))

	return slices.Clone(s.active)
}

func (s *Store) rebuildLocked() {
	s.active = FilterByGenres(s.base, s.filter)
	s.index = BuildIndex(s.active)
}

// Base returns the full loaded set.
func (s *Store) Base() RecordSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.base)
}

// Active returns the genre-filtered set.
func (s *Store) Active() RecordSet {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.active)
}

// Index returns a copy of the aggregate index of the active set.
func (s *Store) Index() Index {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Clone()
}

// Filter returns the genres the active set is filtered to.
func (s *Store) Filter() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.filter)
}

// LoadedAt returns when the current base set was installed.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

// Lookup finds a movie of the base set by name.
func (s *Store) Lookup(name string) (domain.Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byName[name]
	if !ok {
		return domain.Movie{}, ErrMovieNotFound.WithDetails(map[string]string{"name": name})
	}
	return s.base[i], nil
}

// Genres returns the distinct genres of the base set: known labels in
// canonical order first, then any others in the order they were seen.
func (s *Store) Genres() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	present := make(map[string]bool)
	var extra []string
	for _, m := range s.base {
		if !present[m.Genre] && !genre.IsKnown(m.Genre) {
			extra = append(extra, m.Genre)
		}
		present[m.Genre] = true
	}

	out := make([]string, 0, len(present))
	for _, label := range genre.Labels() {
		if present[label] {
			out = append(out, label)
		}
	}
	return append(out, extra...)
}
