package view

import (
	"maps"
	"slices"
	"time"

	"github.com/listenupapp/moviescope/internal/brush"
	"github.com/listenupapp/moviescope/internal/domain"
)

// Frame is everything a renderer needs to draw one view. Frames are built
// fresh for every render and handed out as copies.
type Frame struct {
	ViewID string    `json:"view_id"`
	Kind   Kind      `json:"kind"`
	Title  string    `json:"title"`
	Seq    uint64    `json:"seq"`
	Cause  string    `json:"cause"`
	At     time.Time `json:"at"`

	// Empty is set when the visible subset has no records to draw.
	Empty       bool   `json:"empty"`
	EmptyReason string `json:"empty_reason,omitempty"`

	// Colors is the genre color table of the data currently loaded.
	Colors map[string]string `json:"colors"`
	// Highlighted lists the selected movies shown by this view.
	Highlighted []string `json:"highlighted"`

	Scatter  *ScatterFrame  `json:"scatter,omitempty"`
	Treemap  *TreemapFrame  `json:"treemap,omitempty"`
	YearGrid *YearGridFrame `json:"year_grid,omitempty"`
}

// ScatterFrame is the body of a scatter view frame.
type ScatterFrame struct {
	Window     brush.Window `json:"window"`
	FullDomain brush.Window `json:"full_domain"`
	BrushState string       `json:"brush_state"`
	X          AxisFrame    `json:"x"`
	Y          AxisFrame    `json:"y"`
	Points     []Point      `json:"points"`
	// Omitted counts visible records with a missing value on either axis.
	Omitted int `json:"omitted"`
}

// AxisFrame is one scatter axis as drawn.
type AxisFrame struct {
	Field      domain.Field `json:"field"`
	Title      string       `json:"title"`
	Domain     brush.Range  `json:"domain"`
	Pixels     brush.Range  `json:"pixels"`
	Ticks      []float64    `json:"ticks"`
	TickLabels []string     `json:"tick_labels"`
}

// Point is one movie in a scatter view.
type Point struct {
	Name        string         `json:"name"`
	Genre       string         `json:"genre"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Color       string         `json:"color"`
	Opacity     float64        `json:"opacity"`
	Clickable   bool           `json:"clickable"`
	Highlighted bool           `json:"highlighted"`
	Tooltip     domain.Tooltip `json:"tooltip"`
}

// TreemapFrame is the body of a treemap frame.
type TreemapFrame struct {
	Rects []Rect `json:"rects"`
	Total int    `json:"total"`
}

// Rect is one genre of the treemap. Count is over the whole dataset so
// filtered-out genres keep their area and stay clickable.
type Rect struct {
	Genre       string  `json:"genre"`
	Count       int     `json:"count"`
	ActiveCount int     `json:"active_count"`
	Color       string  `json:"color"`
	Selected    bool    `json:"selected"`
	Opacity     float64 `json:"opacity"`
	Tooltip     string  `json:"tooltip"`
}

// YearGridFrame is the body of a year grid frame.
type YearGridFrame struct {
	CellsPerRow int      `json:"cells_per_row"`
	Columns     []Column `json:"columns"`
}

// Column is one year of the grid.
type Column struct {
	Year  int `json:"year"`
	Count int `json:"count"`
	// Included counts the column's movies that pass the genre filter.
	Included int      `json:"included"`
	Label    string   `json:"label"`
	Squares  []Square `json:"squares"`
}

// Square is one movie of the year grid.
type Square struct {
	Name        string         `json:"name"`
	Genre       string         `json:"genre"`
	Cell        Cell           `json:"cell"`
	Color       string         `json:"color"`
	Opacity     float64        `json:"opacity"`
	Clickable   bool           `json:"clickable"`
	Highlighted bool           `json:"highlighted"`
	Tooltip     domain.Tooltip `json:"tooltip"`
}

// Cell is a square's position in its column: Col counts from the left,
// Row from the bottom.
type Cell struct {
	Col int `json:"col"`
	Row int `json:"row"`
}

// CellAt places the i-th square of a column with perRow squares per row.
func CellAt(i, perRow int) Cell {
	return Cell{Col: i % perRow, Row: i / perRow}
}

// Clone returns a deep copy of f.
func (f Frame) Clone() Frame {
	out := f
	out.Colors = maps.Clone(f.Colors)
	out.Highlighted = slices.Clone(f.Highlighted)

	if f.Scatter != nil {
		s := *f.Scatter
		s.X.Ticks = slices.Clone(s.X.Ticks)
		s.X.TickLabels = slices.Clone(s.X.TickLabels)
		s.Y.Ticks = slices.Clone(s.Y.Ticks)
		s.Y.TickLabels = slices.Clone(s.Y.TickLabels)
		s.Points = slices.Clone(s.Points)
		out.Scatter = &s
	}
	if f.Treemap != nil {
		t := *f.Treemap
		t.Rects = slices.Clone(t.Rects)
		out.Treemap = &t
	}
	if f.YearGrid != nil {
		g := *f.YearGrid
		g.Columns = slices.Clone(g.Columns)
		for i := range g.Columns {
			g.Columns[i].Squares = slices.Clone(g.Columns[i].Squares)
		}
		out.YearGrid = &g
	}
	return out
}
