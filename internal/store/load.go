package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/listenupapp/moviescope/internal/domain"
	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/genre"
)

// Normalization divisors applied at load time.
const (
	votesUnit = 1.0e6 // votes are stored in millions
	grossUnit = 1.0e9 // gross is stored in billions
)

// RawRow is one unparsed dataset row as handed over by a loader.
type RawRow struct {
	Line     int
	Name     string
	Genre    string
	Year     string
	Score    string
	Votes    string
	Gross    string
	Director string
}

// RowError describes why a row was dropped.
type RowError struct {
	Line   int    `json:"line"`
	Name   string `json:"name,omitempty"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e RowError) String() string {
	return fmt.Sprintf("line %d (%s): %s %s", e.Line, e.Name, e.Field, e.Reason)
}

// Load parses and normalizes rows into a RecordSet.
//
// Rows that cannot be coerced are dropped, not the whole load. When any row
// was dropped, Load returns the good rows together with a single
// MALFORMED_RECORD error whose Details is the []RowError list.
func Load(rows []RawRow) (RecordSet, error) {
	set := make(RecordSet, 0, len(rows))
	seen := make(map[string]bool, len(rows))
	var dropped []RowError

	for _, row := range rows {
		m, rowErr := parseRow(row)
		if rowErr == nil && seen[m.Name] {
			rowErr = &RowError{Line: row.Line, Name: m.Name, Field: "name", Reason: "is duplicated"}
		}
		if rowErr != nil {
			dropped = append(dropped, *rowErr)
			continue
		}
		seen[m.Name] = true
		set = append(set, m)
	}

	if len(dropped) > 0 {
		return set, domainerrors.MalformedRecordf("%d of %d rows dropped", len(dropped), len(rows)).
			WithDetails(dropped)
	}
	return set, nil
}

// DroppedRows returns the rows listed by an error returned from Load.
func DroppedRows(err error) []RowError {
	var domainErr *domainerrors.Error
	if !domainerrors.As(err, &domainErr) {
		return nil
	}
	rows, _ := domainErr.Details.([]RowError)
	return rows
}

func parseRow(row RawRow) (domain.Movie, *RowError) {
	fail := func(field, reason string) (domain.Movie, *RowError) {
		return domain.Movie{}, &RowError{Line: row.Line, Name: row.Name, Field: field, Reason: reason}
	}

	name := strings.TrimSpace(row.Name)
	if name == "" {
		return fail("name", "is required")
	}

	label, _ := genre.Canonical(row.Genre)
	if label == "" {
		return fail("genre", "is required")
	}

	year, err := strconv.Atoi(strings.TrimSpace(row.Year))
	if err != nil {
		return fail("year", fmt.Sprintf("%q is not an integer", row.Year))
	}

	votes, ok := parseNumber(row.Votes)
	if !ok {
		return fail("votes", fmt.Sprintf("%q is not a number", row.Votes))
	}

	gross, ok := parseNumber(row.Gross)
	if !ok {
		return fail("gross", fmt.Sprintf("%q is not a number", row.Gross))
	}

	m := domain.Movie{
		Name:     name,
		Genre:    label,
		Director: strings.TrimSpace(row.Director),
		Year:     year,
		Votes:    math.Abs(votes) / votesUnit,
		Gross:    math.Abs(gross) / grossUnit,
	}

	// Score is optional; an empty cell means "not rated".
	if strings.TrimSpace(row.Score) != "" {
		score, ok := parseNumber(row.Score)
		if !ok {
			return fail("score", fmt.Sprintf("%q is not a number", row.Score))
		}
		m.Score, m.HasScore = score, true
	}

	return m, nil
}

// parseNumber accepts finite decimal numbers only.
func parseNumber(raw string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
