package brush

import (
	"sync"

	"github.com/listenupapp/moviescope/internal/errors"
)

// State is the brush state of a controller.
type State int

const (
	// Unbrushed means the window follows the full domain.
	Unbrushed State = iota
	// Brushed means the window is a user-chosen sub-window.
	Brushed
)

func (s State) String() string {
	if s == Brushed {
		return "brushed"
	}
	return "unbrushed"
}

// Options configure a Controller.
type Options struct {
	// XPixels and YPixels are the pixel ranges of the axes the brush is
	// drawn on. Y ranges are usually inverted ([height, 0]).
	XPixels Range
	YPixels Range

	// Default, when set, starts the controller brushed at this window. It
	// stays in force across domain changes until the first brush or clear;
	// Clear still returns to the full domain.
	Default *Window
}

// Controller owns the visible window of one view.
//
// A brushed controller remembers the window that was asked for, either the
// configured default or the user's brush, and shows its intersection with
// the current full domain. Narrowing and then widening the full domain
// brings the requested window back.
type Controller struct {
	mu      sync.RWMutex
	xPixels Range
	yPixels Range
	full    Window
	window  Window
	state   State

	// target is the requested window while brushed. It is never clamped by
	// SetFullDomain.
	target Window
	// fromDefault is true while target is the configured default.
	fromDefault bool
}

// NewController returns an unbrushed controller with an empty domain, or a
// brushed one when opts.Default is set.
func NewController(opts Options) *Controller {
	c := &Controller{xPixels: opts.XPixels, yPixels: opts.YPixels}
	if opts.Default != nil {
		c.state = Brushed
		c.target = Window{X: opts.Default.X.Ordered(), Y: opts.Default.Y.Ordered()}
		c.fromDefault = true
	}
	c.deriveLocked()
	return c
}

// State returns the current brush state.
func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Window returns the visible window.
func (c *Controller) Window() Window {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.window
}

// Target returns the requested window and whether the controller is
// brushed. Unlike Window it is not clamped into the full domain.
func (c *Controller) Target() (Window, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.target, c.state == Brushed
}

// FullDomain returns the full domain last set with SetFullDomain.
func (c *Controller) FullDomain() Window {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.full
}

// Scales returns the full-domain scales of both axes. These are the scales
// brush gestures are measured against.
func (c *Controller) Scales() (x, y Scale) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewScale(c.full.X, c.xPixels), NewScale(c.full.Y, c.yPixels)
}

// WindowScales returns scales over the visible window.
func (c *Controller) WindowScales() (x, y Scale) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return NewScale(c.window.X, c.xPixels), NewScale(c.window.Y, c.yPixels)
}

// Brush narrows one axis to the domain interval under the pixel interval px.
// The other axis keeps its requested window. A zero-width or NaN interval
// clears the brush.
func (c *Controller) Brush(axis Axis, px Range) (Window, error) {
	if !axis.Valid() {
		return Window{}, errors.Validationf("unknown axis %q", axis)
	}
	if px.Degenerate() {
		return c.Clear(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.full
	if c.state == Brushed {
		next = c.target
	}
	switch axis {
	case AxisX:
		next.X = c.toDomain(c.full.X, c.xPixels, px)
	case AxisY:
		next.Y = c.toDomain(c.full.Y, c.yPixels, px)
	}
	return c.brushLocked(next), nil
}

// Brush2D narrows both axes at once. Either interval being degenerate clears
// the brush.
func (c *Controller) Brush2D(xPx, yPx Range) Window {
	if xPx.Degenerate() || yPx.Degenerate() {
		return c.Clear()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	return c.brushLocked(Window{
		X: c.toDomain(c.full.X, c.xPixels, xPx),
		Y: c.toDomain(c.full.Y, c.yPixels, yPx),
	})
}

// Set brushes directly to a window given in domain units, as when a linked
// context view drives this one. The visible part is its intersection with
// the full domain.
func (c *Controller) Set(w Window) Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.brushLocked(Window{X: w.X.Ordered(), Y: w.Y.Ordered()})
}

// Clear returns to the unbrushed state with the window reset to the full
// domain. A configured default is dropped as well.
func (c *Controller) Clear() Window {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = Unbrushed
	c.target = Window{}
	c.fromDefault = false
	c.window = c.full
	return c.window
}

// SetFullDomain installs the full domain of the current active set. An
// unbrushed controller follows it. A brushed one shows its requested window
// clamped into it. A user brush with nothing left inside the new domain
// falls back to unbrushed; a configured default waits for data that
// overlaps it.
func (c *Controller) SetFullDomain(full Window) Window {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.full = full
	c.deriveLocked()
	return c.window
}

func (c *Controller) deriveLocked() {
	if c.state == Unbrushed {
		c.window = c.full
		return
	}
	if w, ok := clampWindow(c.target, c.full); ok {
		c.window = w
		return
	}
	c.window = c.full
	if !c.fromDefault {
		c.state = Unbrushed
		c.target = Window{}
	}
}

// brushLocked installs next as the user's requested window.
func (c *Controller) brushLocked(next Window) Window {
	clamped, ok := clampWindow(next, c.full)
	if !ok || clamped.X.Degenerate() && clamped.Y.Degenerate() {
		c.state = Unbrushed
		c.target = Window{}
		c.fromDefault = false
		c.window = c.full
		return c.window
	}
	c.state = Brushed
	c.target = next
	c.fromDefault = false
	c.window = clamped
	return c.window
}

func (c *Controller) toDomain(full, pixels, px Range) Range {
	s := NewScale(full, pixels)
	d := Range{Min: s.ToDomain(px.Min), Max: s.ToDomain(px.Max)}.Ordered()
	// A drag past the end of the axis stops at the data.
	if in, ok := d.Intersect(full); ok {
		return in
	}
	return d
}

func clampWindow(w, full Window) (Window, bool) {
	x, okX := w.X.Intersect(full.X)
	y, okY := w.Y.Intersect(full.Y)
	if !okX || !okY {
		return Window{}, false
	}
	return Window{X: x, Y: y}, true
}
