package watcher

import "time"

// DefaultSettleDelay is how long the dataset file must stay unchanged after
// a write before the change is reported. Editors and exporters often write
// a CSV in several chunks.
const DefaultSettleDelay = 250 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	SettleDelay time.Duration
}

func (o *Options) setDefaults() {
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
}

// EventType classifies a settled change.
type EventType int

const (
	EventAdded EventType = iota
	EventModified
	EventRemoved
)

var eventTypeNames = [...]string{
	EventAdded:    "added",
	EventModified: "modified",
	EventRemoved:  "removed",
}

func (t EventType) String() string {
	if t < 0 || int(t) >= len(eventTypeNames) {
		return "unknown"
	}
	return eventTypeNames[t]
}

// Event is a settled change to the watched dataset file. Size and ModTime
// are zero for EventRemoved.
type Event struct {
	Type    EventType
	Path    string
	Size    int64
	ModTime time.Time
}

// Reloadable reports whether the file is present and worth reparsing. A
// removed dataset keeps the last good load on screen.
func (e Event) Reloadable() bool {
	return e.Type != EventRemoved && e.Size > 0
}
