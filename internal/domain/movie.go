// Package domain contains the movie record and its derived values.
package domain

import (
	"fmt"
	"strconv"
)

// Movie is one row of the dataset. Name is the identity used to join the
// same movie across views. Movies are built once at load time and never
// mutated afterwards.
type Movie struct {
	Name     string  `json:"name"`
	Genre    string  `json:"genre"`
	Director string  `json:"director"`
	Year     int     `json:"year"`
	Score    float64 `json:"score"`
	HasScore bool    `json:"has_score"`
	Votes    float64 `json:"votes"` // millions
	Gross    float64 `json:"gross"` // billions
}

// Field names a numeric movie attribute a view can plot.
type Field string

// Plottable fields.
const (
	FieldScore Field = "score"
	FieldVotes Field = "votes"
	FieldGross Field = "gross"
	FieldYear  Field = "year"
)

// Valid reports whether f names a plottable field.
func (f Field) Valid() bool {
	switch f {
	case FieldScore, FieldVotes, FieldGross, FieldYear:
		return true
	default:
		return false
	}
}

// Value returns the movie's value for f. ok is false when the value is
// missing (an unscored movie) or f is unknown.
func (m Movie) Value(f Field) (v float64, ok bool) {
	switch f {
	case FieldScore:
		return m.Score, m.HasScore
	case FieldVotes:
		return m.Votes, true
	case FieldGross:
		return m.Gross, true
	case FieldYear:
		return float64(m.Year), true
	default:
		return 0, false
	}
}

// Tooltip is the detail block shown when hovering a movie in any view.
type Tooltip struct {
	Title    string `json:"title"`
	Director string `json:"director"`
	Votes    string `json:"votes"`
	Year     string `json:"year"`
	Revenue  string `json:"revenue"`
	Score    string `json:"score"`
}

// Tooltip formats the movie for display.
func (m Movie) Tooltip() Tooltip {
	score := "NA"
	if m.HasScore {
		score = strconv.FormatFloat(m.Score, 'f', -1, 64)
	}
	return Tooltip{
		Title:    m.Name,
		Director: m.Director,
		Votes:    strconv.FormatFloat(m.Votes, 'f', -1, 64) + " M",
		Year:     strconv.Itoa(m.Year),
		Revenue:  fmt.Sprintf("%.2f B", m.Gross),
		Score:    score,
	}
}
