// Package color owns the shared, read-only genre color table that every
// view's frames are painted with.
package color

import (
	"fmt"
	"maps"

	"github.com/listenupapp/moviescope/internal/genre"
)

// Palette maps genre labels to hex colors. A Palette is immutable once built
// and safe to share between views.
type Palette struct {
	colors map[string]string
}

// category20 is the d3 Category20 scheme in the order the genres are listed.
//
//nolint:gochecknoglobals // Static color table
var category20 = map[string]string{
	genre.Comedy:    "#1f77b4",
	genre.Action:    "#ff7f0e",
	genre.Drama:     "#2ca02c",
	genre.Crime:     "#d62728",
	genre.Biography: "#9467bd",
	genre.Adventure: "#8c564b",
	genre.Animation: "#e377c2",
	genre.Horror:    "#7f7f7f",
	genre.Fantasy:   "#bcbd22",
	genre.Mystery:   "#17becf",
	genre.Thriller:  "#aec7e8",
	genre.Family:    "#ffbb78",
	genre.SciFi:     "#98df8a",
	genre.Romance:   "#ff9896",
	genre.Western:   "#c5b0d5",
	genre.Musical:   "#c49c94",
	genre.Music:     "#f7b6d2",
	genre.History:   "#c7c7c7",
	genre.Sport:     "#dbdb8d",
}

// Default returns the palette for the closed genre set.
func Default() *Palette {
	return &Palette{colors: maps.Clone(category20)}
}

// For returns the color for a genre. Labels outside the table get a stable
// color derived from the label itself.
func (p *Palette) For(label string) string {
	if c, ok := p.colors[label]; ok {
		return c
	}
	return ForLabel(label)
}

// Table returns a copy of the palette restricted to the given labels, in the
// shape renderers expect for a legend.
func (p *Palette) Table(labels []string) map[string]string {
	out := make(map[string]string, len(labels))
	for _, l := range labels {
		out[l] = p.For(l)
	}
	return out
}

// ForLabel generates a consistent hex color for an arbitrary label using a
// deterministic hash. Colors use fixed saturation and lightness.
func ForLabel(label string) string {
	h := 0
	for _, c := range label {
		h = 31*h + int(c)
	}
	if h < 0 {
		h = -h
	}
	hue := float64(h % 360)

	r, g, b := hslToRGB(hue, 0.4, 0.65)

	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// hslToRGB converts HSL color space to RGB.
// h: hue (0-360), s: saturation (0-1), l: lightness (0-1)
func hslToRGB(h, s, l float64) (r, g, b uint8) {
	h /= 360.0

	var r1, g1, b1 float64

	if s == 0 {
		r1, g1, b1 = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r1 = hueToRGB(p, q, h+1.0/3.0)
		g1 = hueToRGB(p, q, h)
		b1 = hueToRGB(p, q, h-1.0/3.0)
	}

	return uint8(r1 * 255), uint8(g1 * 255), uint8(b1 * 255)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6.0:
		return p + (q-p)*6*t
	case t < 1.0/2.0:
		return q
	case t < 2.0/3.0:
		return p + (q-p)*(2.0/3.0-t)*6
	default:
		return p
	}
}
