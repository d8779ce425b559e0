// Package search provides full-text search over the loaded movies using an
// in-memory Bleve index. Matches feed the selection like a click would.
package search

import (
	"github.com/listenupapp/moviescope/internal/domain"
	"github.com/listenupapp/moviescope/internal/genre"
)

// MovieDocument is the indexed form of a movie. The movie name is both the
// document id and the primary searchable text.
type MovieDocument struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Director string  `json:"director"`
	Genre    string  `json:"genre"`
	Slug     string  `json:"genre_slug"`
	Year     int     `json:"year"`
	Score    float64 `json:"score,omitempty"`
	HasScore bool    `json:"-"`
	Gross    float64 `json:"gross"`
	Votes    float64 `json:"votes"`
}

// NewMovieDocument builds the document for m.
func NewMovieDocument(m domain.Movie) *MovieDocument {
	return &MovieDocument{
		ID:       m.Name,
		Name:     m.Name,
		Director: m.Director,
		Genre:    m.Genre,
		Slug:     genre.Slugify(m.Genre),
		Year:     m.Year,
		Score:    m.Score,
		HasScore: m.HasScore,
		Gross:    m.Gross,
		Votes:    m.Votes,
	}
}

// ToMap converts the document to the field names used by the mapping.
// Unscored movies carry no score field so score ranges never match them.
func (d *MovieDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"name":       d.Name,
		"director":   d.Director,
		"genre":      d.Genre,
		"genre_slug": d.Slug,
		"year":       float64(d.Year),
		"gross":      d.Gross,
		"votes":      d.Votes,
	}
	if d.HasScore {
		m["score"] = d.Score
	}
	return m
}
