// Package genre defines the closed set of movie genre labels and maps raw
// dataset values onto it.
package genre

import (
	"regexp"
	"slices"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Genre labels as they appear in the dataset.
const (
	Comedy    = "Comedy"
	Action    = "Action"
	Drama     = "Drama"
	Crime     = "Crime"
	Biography = "Biography"
	Adventure = "Adventure"
	Animation = "Animation"
	Horror    = "Horror"
	Fantasy   = "Fantasy"
	Mystery   = "Mystery"
	Thriller  = "Thriller"
	Family    = "Family"
	SciFi     = "Sci-Fi"
	Romance   = "Romance"
	Western   = "Western"
	Musical   = "Musical"
	Music     = "Music"
	History   = "History"
	Sport     = "Sport"
)

// labels is the canonical genre order. Color assignment and legend order
// follow it.
//
//nolint:gochecknoglobals // Static genre table
var labels = []string{
	Comedy, Action, Drama, Crime, Biography, Adventure, Animation, Horror, Fantasy, Mystery,
	Thriller, Family, SciFi, Romance, Western, Musical, Music, History, Sport,
}

var (
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	multipleHyphens = regexp.MustCompile(`-+`)
	titleCaser      = cases.Title(language.English)
)

// Labels returns the closed genre set in canonical order.
func Labels() []string {
	return slices.Clone(labels)
}

// IsKnown reports whether label is one of the closed set.
func IsKnown(label string) bool {
	return slices.Contains(labels, label)
}

// Index returns the position of label in the canonical order, or -1.
func Index(label string) int {
	return slices.Index(labels, label)
}

// Canonical maps a raw dataset value to a genre label.
// Known labels and aliases resolve to the closed set ("sci fi" -> "Sci-Fi").
// Anything else is trimmed and title-cased so it still groups consistently;
// ok is false in that case.
func Canonical(raw string) (label string, ok bool) {
	slug := Slugify(raw)
	if slug == "" {
		return "", false
	}
	if label, found := bySlug[slug]; found {
		return label, true
	}
	return titleCaser.String(strings.TrimSpace(raw)), false
}

// Slugify converts a label to a URL-safe slug.
// "Sci-Fi" -> "sci-fi", "Science Fiction" -> "science-fiction".
func Slugify(s string) string {
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)
	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// FromSlug resolves a slug (as used in URL paths) back to its label.
func FromSlug(slug string) (string, bool) {
	label, ok := bySlug[Slugify(slug)]
	return label, ok
}
