// Package brush maps brush gestures in pixel space to windows over the data
// domain of a two-axis view.
package brush

import (
	"math"

	"github.com/aclements/go-moremath/scale"
)

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Ordered returns r with Min <= Max.
func (r Range) Ordered() Range {
	if r.Min > r.Max {
		return Range{Min: r.Max, Max: r.Min}
	}
	return r
}

// Degenerate reports whether r is empty, zero-width, or not a number.
func (r Range) Degenerate() bool {
	return math.IsNaN(r.Min) || math.IsNaN(r.Max) || r.Min == r.Max
}

// Contains reports whether v lies in r.
func (r Range) Contains(v float64) bool {
	o := r.Ordered()
	return v >= o.Min && v <= o.Max
}

// Intersect returns the overlap of r and o. ok is false when they are
// disjoint.
func (r Range) Intersect(o Range) (Range, bool) {
	a, b := r.Ordered(), o.Ordered()
	out := Range{Min: math.Max(a.Min, b.Min), Max: math.Min(a.Max, b.Max)}
	if out.Min > out.Max {
		return Range{}, false
	}
	return out, true
}

// Axis names one of the two axes of a view.
type Axis string

const (
	AxisX Axis = "x"
	AxisY Axis = "y"
)

// Valid reports whether a is AxisX or AxisY.
func (a Axis) Valid() bool {
	return a == AxisX || a == AxisY
}

// Window is the visible domain of both axes.
type Window struct {
	X Range `json:"x"`
	Y Range `json:"y"`
}

// FullDomain returns the window anchored at zero that spans [0, maxX] by
// [0, maxY].
func FullDomain(maxX, maxY float64) Window {
	return Window{X: Range{Max: maxX}, Y: Range{Max: maxY}}
}

// Scale is a linear map from a data domain to a pixel range. The pixel
// range may be inverted, as it is for y axes drawn top-down.
type Scale struct {
	domain Range
	pixels Range
	lin    scale.Linear
}

// NewScale returns a scale mapping domain onto pixels.
func NewScale(domain, pixels Range) Scale {
	return Scale{
		domain: domain,
		pixels: pixels,
		lin:    scale.Linear{Min: domain.Min, Max: domain.Max},
	}
}

// Domain returns the scale's domain.
func (s Scale) Domain() Range { return s.domain }

// Pixels returns the scale's pixel range.
func (s Scale) Pixels() Range { return s.pixels }

// ToPixel maps a domain value to pixels. A zero-width domain maps
// everything to the start of the pixel range.
func (s Scale) ToPixel(d float64) float64 {
	if s.domain.Span() == 0 {
		return s.pixels.Min
	}
	return s.pixels.Min + s.lin.Map(d)*s.pixels.Span()
}

// ToDomain is the inverse of ToPixel.
func (s Scale) ToDomain(p float64) float64 {
	if s.pixels.Span() == 0 {
		return s.domain.Min
	}
	return s.lin.Unmap((p - s.pixels.Min) / s.pixels.Span())
}

// Ticks returns at most n tick values inside the domain.
func (s Scale) Ticks(n int) []float64 {
	if n < 1 {
		return nil
	}
	if s.domain.Degenerate() {
		return []float64{s.domain.Min}
	}
	lin := s.lin
	if lin.Min > lin.Max {
		lin.Min, lin.Max = lin.Max, lin.Min
	}
	major, _ := lin.Ticks(scale.TickOptions{Max: n})
	return major
}
