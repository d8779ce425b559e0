// Package sse implements Server-Sent Events for streaming view frames and dashboard events to browsers.
package sse

import (
	"time"

	"github.com/listenupapp/moviescope/internal/bus"
	"github.com/listenupapp/moviescope/internal/view"
)

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventFrame carries a freshly rendered view frame.
	EventFrame EventType = "view.frame"

	// EventSelectMovie mirrors a selectMovie bus event.
	EventSelectMovie EventType = "dashboard.select_movie"
	// EventFilterGenre mirrors a filterGenre bus event.
	EventFilterGenre EventType = "dashboard.filter_genre"
	// EventDeselectMovie mirrors a deselectMovie bus event.
	EventDeselectMovie EventType = "dashboard.deselect_movie"
	// EventSelectionReset mirrors a resetSelection bus event.
	EventSelectionReset EventType = "dashboard.selection_reset"
	// EventDatasetLoaded mirrors a datasetLoaded bus event.
	EventDatasetLoaded EventType = "dashboard.dataset_loaded"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// ViewID restricts delivery to clients watching this view.
	// Empty means broadcast to everyone.
	ViewID string `json:"-"`
}

// FrameEventData is the data payload for frame events.
type FrameEventData struct {
	Frame view.Frame `json:"frame"`
}

// SelectMovieEventData is the data payload for select_movie events.
type SelectMovieEventData struct {
	Name     string `json:"name"`
	Genre    string `json:"genre"`
	Selected bool   `json:"selected"`
}

// GenresEventData is the data payload for filter_genre and deselect_movie events.
type GenresEventData struct {
	Genres []string `json:"genres"`
}

// DatasetLoadedEventData is the data payload for dataset_loaded events.
type DatasetLoadedEventData struct {
	Count   int `json:"count"`
	Dropped int `json:"dropped"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewFrameEvent creates a view.frame event addressed to watchers of the frame's view.
func NewFrameEvent(f view.Frame) Event {
	return Event{
		Type:      EventFrame,
		Data:      FrameEventData{Frame: f},
		ViewID:    f.ViewID,
		Timestamp: time.Now(),
	}
}

// NewBusEvent converts a bus event into its dashboard.* counterpart.
func NewBusEvent(evt bus.Event) (Event, bool) {
	out := Event{Timestamp: time.Now()}

	switch e := evt.(type) {
	case bus.SelectMovie:
		out.Type = EventSelectMovie
		out.Data = SelectMovieEventData{Name: e.Movie.Name, Genre: e.Movie.Genre, Selected: e.Selected}
	case bus.FilterGenre:
		out.Type = EventFilterGenre
		out.Data = GenresEventData{Genres: nonNil(e.Genres)}
	case bus.DeselectMovie:
		out.Type = EventDeselectMovie
		out.Data = GenresEventData{Genres: nonNil(e.Genres)}
	case bus.SelectionReset:
		out.Type = EventSelectionReset
		out.Data = struct{}{}
	case bus.DatasetLoaded:
		out.Type = EventDatasetLoaded
		out.Data = DatasetLoadedEventData{Count: e.Count, Dropped: e.Dropped}
	default:
		return Event{}, false
	}
	return out, true
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	now := time.Now()
	return Event{
		Type:      EventHeartbeat,
		Data:      HeartbeatEventData{ServerTime: now},
		Timestamp: now,
	}
}

func nonNil(genres []string) []string {
	if genres == nil {
		return []string{}
	}
	return append([]string(nil), genres...)
}
