package view

import (
	"github.com/listenupapp/moviescope/internal/brush"
	"github.com/listenupapp/moviescope/internal/domain"
)

// Kind is the chart type a view draws.
type Kind string

// View kinds.
const (
	KindScatter  Kind = "scatter"
	KindTreemap  Kind = "treemap"
	KindYearGrid Kind = "yeargrid"
)

// Inclusion decides what happens to records the genre filter excludes.
type Inclusion string

const (
	// InclusionHide drops excluded records from the frame.
	InclusionHide Inclusion = "hide"
	// InclusionDim keeps excluded records, dimmed and not clickable.
	InclusionDim Inclusion = "dim"
)

// Defaults applied by Config.withDefaults.
const (
	DefaultTicks       = 6
	DefaultCellsPerRow = 5
	DefaultDimOpacity  = 0.15
	DefaultFullOpacity = 0.8
)

// AxisConfig describes one axis of a scatter view.
type AxisConfig struct {
	Field domain.Field `json:"field" validate:"omitempty,field"`
	Title string       `json:"title" validate:"max=80"`
	// Unit is appended to tick labels, e.g. " B".
	Unit string `json:"unit,omitempty" validate:"max=8"`
	// Pixels is the drawn extent of the axis. Y axes are inverted.
	Pixels brush.Range `json:"pixels"`
}

// Config is the explicit configuration of one view.
//
// Zero values take the documented defaults: Ticks 6, CellsPerRow 5,
// DimOpacity 0.15, FullOpacity 0.8. Inclusion defaults to hide for scatter
// views and dim for the treemap and the year grid.
type Config struct {
	ID    string `json:"id" validate:"required,viewid,max=64"`
	Kind  Kind   `json:"kind" validate:"required,oneof=scatter treemap yeargrid"`
	Title string `json:"title" validate:"max=120"`

	// X and Y are required for scatter views and ignored otherwise.
	X AxisConfig `json:"x"`
	Y AxisConfig `json:"y"`

	Inclusion Inclusion `json:"inclusion" validate:"omitempty,oneof=hide dim"`
	Ticks     int       `json:"ticks" validate:"gte=0,lte=20"`

	// DefaultWindow starts a scatter view brushed at this sub-window.
	DefaultWindow *brush.Window `json:"default_window,omitempty"`

	// FocusOf names the context view whose brush drives this view's window.
	FocusOf string `json:"focus_of,omitempty" validate:"omitempty,viewid,nefield=ID"`

	CellsPerRow int     `json:"cells_per_row" validate:"gte=0,lte=50"`
	DimOpacity  float64 `json:"dim_opacity" validate:"gte=0,lte=1"`
	FullOpacity float64 `json:"full_opacity" validate:"gte=0,lte=1"`
}

func (c Config) withDefaults() Config {
	if c.Inclusion == "" {
		c.Inclusion = InclusionDim
		if c.Kind == KindScatter {
			c.Inclusion = InclusionHide
		}
	}
	if c.Ticks == 0 {
		c.Ticks = DefaultTicks
	}
	if c.CellsPerRow == 0 {
		c.CellsPerRow = DefaultCellsPerRow
	}
	if c.DimOpacity == 0 {
		c.DimOpacity = DefaultDimOpacity
	}
	if c.FullOpacity == 0 {
		c.FullOpacity = DefaultFullOpacity
	}
	return c
}

// DefaultConfigs returns the dashboard's standard layout: two scatter plots,
// the genre treemap, the per-year grid, and a revenue detail view driven by
// the score-revenue brush.
//
// The detail view opens on movies under one billion in revenue, where most
// of the dataset sits, until the score-revenue view is brushed or cleared.
func DefaultConfigs() []Config {
	xPixels := brush.Range{Min: 0, Max: 945}
	yPixels := brush.Range{Min: 305, Max: 0}
	detailWindow := brush.Window{
		X: brush.Range{Min: 0, Max: 1},
		Y: brush.Range{Min: 0, Max: 10},
	}

	return []Config{
		{
			ID:    "score-revenue",
			Kind:  KindScatter,
			Title: "Movie Score vs Revenue",
			X:     AxisConfig{Field: domain.FieldGross, Title: "Movie Revenue (in Billions)", Unit: " B", Pixels: xPixels},
			Y:     AxisConfig{Field: domain.FieldScore, Title: "Movie Score", Pixels: yPixels},
		},
		{
			ID:    "votes-score",
			Kind:  KindScatter,
			Title: "Number of Votes vs Movie Score",
			X:     AxisConfig{Field: domain.FieldVotes, Title: "Number of Votes (in Millions)", Unit: " M", Pixels: xPixels},
			Y:     AxisConfig{Field: domain.FieldScore, Title: "Movie Score", Pixels: yPixels},
		},
		{
			ID:    "genres",
			Kind:  KindTreemap,
			Title: "Movies per Genre",
		},
		{
			ID:    "years",
			Kind:  KindYearGrid,
			Title: "Movies per Year",
		},
		{
			ID:            "revenue-detail",
			Kind:          KindScatter,
			Title:         "Score vs Revenue (detail)",
			X:             AxisConfig{Field: domain.FieldGross, Title: "Movie Revenue (in Billions)", Unit: " B", Pixels: xPixels},
			Y:             AxisConfig{Field: domain.FieldScore, Title: "Movie Score", Pixels: yPixels},
			DefaultWindow: &detailWindow,
			FocusOf:       "score-revenue",
		},
	}
}
