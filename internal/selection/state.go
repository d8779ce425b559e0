// Package selection holds the dashboard's shared selection and genre filter.
package selection

import (
	"slices"
	"sync"

	"github.com/listenupapp/moviescope/internal/domain"
)

// Snapshot is a point-in-time copy of the state.
type Snapshot struct {
	Selected     []domain.Movie `json:"selected"`
	ActiveGenres []string       `json:"active_genres"`
}

// State is the set of selected movies plus the set of active genres.
// An empty active set means no genre filter is applied. When the active set
// is non-empty every selected movie belongs to one of its genres.
type State struct {
	mu       sync.RWMutex
	selected []domain.Movie
	active   []string
}

// New returns an empty state.
func New() *State {
	return &State{}
}

// Toggle removes m from the selection if present, otherwise adds it.
// A movie whose genre is filtered out is never added.
// It reports whether m is selected afterwards.
func (s *State) Toggle(m domain.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(m.Name); i >= 0 {
		s.selected = slices.Delete(s.selected, i, i+1)
		return false
	}
	if len(s.active) > 0 && !slices.Contains(s.active, m.Genre) {
		return false
	}
	s.selected = append(s.selected, m)
	return true
}

// SetActiveGenres replaces the active set with genres (duplicates dropped,
// first occurrence wins). When the new set is non-empty, selected movies of
// other genres are deselected. It returns the resulting active set.
func (s *State) SetActiveGenres(genres []string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make([]string, 0, len(genres))
	for _, g := range genres {
		if !slices.Contains(active, g) {
			active = append(active, g)
		}
	}
	s.active = active

	if len(active) > 0 {
		s.selected = slices.DeleteFunc(s.selected, func(m domain.Movie) bool {
			return !slices.Contains(active, m.Genre)
		})
	}
	return slices.Clone(active)
}

// ToggledGenres returns the active set with g removed if present, otherwise
// appended. The state is not modified.
func (s *State) ToggledGenres(g string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := slices.Index(s.active, g); i >= 0 {
		return slices.Delete(slices.Clone(s.active), i, i+1)
	}
	return append(slices.Clone(s.active), g)
}

// Reset clears the selection and the genre filter.
func (s *State) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = nil
	s.active = nil
}

// Selected returns the selected movies in selection order.
func (s *State) Selected() []domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.selected)
}

// SelectedNames returns the names of the selected movies in selection order.
func (s *State) SelectedNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.selected))
	for i, m := range s.selected {
		names[i] = m.Name
	}
	return names
}

// IsSelected reports whether the movie called name is selected.
func (s *State) IsSelected(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(name) >= 0
}

// ActiveGenres returns the active genres in the order they were set.
func (s *State) ActiveGenres() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.active)
}

// GenreActive reports whether g is in the active set.
func (s *State) GenreActive(g string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.active, g)
}

// Includes reports whether records of genre g pass the filter.
func (s *State) Includes(g string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.active) == 0 || slices.Contains(s.active, g)
}

// Snapshot returns a copy of the whole state.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Selected:     slices.Clone(s.selected),
		ActiveGenres: slices.Clone(s.active),
	}
}

func (s *State) indexOf(name string) int {
	return slices.IndexFunc(s.selected, func(m domain.Movie) bool {
		return m.Name == name
	})
}
