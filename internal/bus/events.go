package bus

import (
	"slices"

	"github.com/listenupapp/moviescope/internal/domain"
)

// Kind is the name of an event. Subscriptions are keyed by it.
type Kind string

const (
	// KindSelectMovie is published after a movie was toggled in any view.
	KindSelectMovie Kind = "selectMovie"
	// KindFilterGenre is published after the active genre set changed.
	KindFilterGenre Kind = "filterGenre"
	// KindDeselectMovie follows KindFilterGenre and carries the genres that
	// remain valid, so views can prune their highlight caches.
	KindDeselectMovie Kind = "deselectMovie"
	// KindSelectionReset is published by the reset control.
	KindSelectionReset Kind = "resetSelection"
	// KindDatasetLoaded is published after a (re)load replaced the record store.
	KindDatasetLoaded Kind = "datasetLoaded"
)

// Kinds lists every event kind.
func Kinds() []Kind {
	return []Kind{KindSelectMovie, KindFilterGenre, KindDeselectMovie, KindSelectionReset, KindDatasetLoaded}
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return slices.Contains(Kinds(), k)
}

// Event is the closed set of events carried by the bus. Only the types in
// this file implement it.
type Event interface {
	Kind() Kind
	event()
}

// SelectMovie announces a click-toggle on a movie.
type SelectMovie struct {
	Movie domain.Movie `json:"movie"`
	// Selected is true when the toggle added the movie to the selection.
	Selected bool `json:"selected"`
}

// FilterGenre announces the new active genre set. Empty means unfiltered.
type FilterGenre struct {
	Genres []string `json:"genres"`
}

// DeselectMovie carries the genres selected movies must belong to.
type DeselectMovie struct {
	Genres []string `json:"genres"`
}

// SelectionReset announces that selection and genre filter were cleared.
type SelectionReset struct{}

// DatasetLoaded announces a new base record set.
type DatasetLoaded struct {
	Count   int `json:"count"`
	Dropped int `json:"dropped"`
}

// Kind implements Event.
func (SelectMovie) Kind() Kind { return KindSelectMovie }

// Kind implements Event.
func (FilterGenre) Kind() Kind { return KindFilterGenre }

// Kind implements Event.
func (DeselectMovie) Kind() Kind { return KindDeselectMovie }

// Kind implements Event.
func (SelectionReset) Kind() Kind { return KindSelectionReset }

// Kind implements Event.
func (DatasetLoaded) Kind() Kind { return KindDatasetLoaded }

func (SelectMovie) event()    {}
func (FilterGenre) event()    {}
func (DeselectMovie) event()  {}
func (SelectionReset) event() {}
func (DatasetLoaded) event()  {}
