package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/moviescope/internal/errors"
	"github.com/listenupapp/moviescope/internal/genre"
)

func rawRow(line int, name, genreLabel, year string) RawRow {
	return RawRow{
		Line:     line,
		Name:     name,
		Genre:    genreLabel,
		Year:     year,
		Score:    "7.5",
		Votes:    "1500000",
		Gross:    "250000000",
		Director: "Someone",
	}
}

func TestLoad_NormalizesUnits(t *testing.T) {
	row := rawRow(2, " Arrival ", "sci fi", "2016")
	row.Votes = "-700000"
	row.Gross = "203000000"

	set, err := Load([]RawRow{row})
	require.NoError(t, err)
	require.Len(t, set, 1)

	m := set[0]
	assert.Equal(t, "Arrival", m.Name)
	assert.Equal(t, genre.SciFi, m.Genre)
	assert.Equal(t, 2016, m.Year)
	assert.InDelta(t, 0.7, m.Votes, 1e-12)
	assert.InDelta(t, 0.203, m.Gross, 1e-12)
	assert.True(t, m.HasScore)
	assert.InDelta(t, 7.5, m.Score, 1e-12)
}

func TestLoad_MissingScoreIsRepresentable(t *testing.T) {
	row := rawRow(2, "Unrated", "Drama", "2012")
	row.Score = "  "

	set, err := Load([]RawRow{row})
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.False(t, set[0].HasScore)
}

func TestLoad_DropsMalformedRowsAndAggregatesErrors(t *testing.T) {
	badYear := rawRow(3, "Bad Year", "Drama", "twenty-ten")
	badVotes := rawRow(4, "Bad Votes", "Drama", "2011")
	badVotes.Votes = "lots"
	badGross := rawRow(5, "Bad Gross", "Drama", "2011")
	badGross.Gross = "NaN"
	badScore := rawRow(6, "Bad Score", "Drama", "2011")
	badScore.Score = "great"
	noName := rawRow(7, "", "Drama", "2011")

	rows := []RawRow{
		rawRow(2, "Good", "Comedy", "2010"),
		badYear,
		badVotes,
		badGross,
		badScore,
		noName,
		rawRow(8, "Good", "Drama", "2012"),
	}

	set, err := Load(rows)

	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrMalformedRecord))
	assert.Equal(t, []string{"Good"}, set.Names())

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	dropped, ok := domainErr.Details.([]RowError)
	require.True(t, ok)
	require.Len(t, dropped, 6)

	fields := make([]string, len(dropped))
	for i, d := range dropped {
		fields[i] = d.Field
	}
	assert.Equal(t, []string{"year", "votes", "gross", "score", "name", "name"}, fields)
	assert.Equal(t, 8, dropped[5].Line)
	assert.Contains(t, err.Error(), "6 of 7 rows dropped")
	assert.Equal(t, dropped, DroppedRows(err))
}

func TestDroppedRows_OtherErrors(t *testing.T) {
	assert.Nil(t, DroppedRows(nil))
	assert.Nil(t, DroppedRows(domainerrors.EmptyDomain("nothing")))
}

func TestLoad_UnknownGenreIsKept(t *testing.T) {
	set, err := Load([]RawRow{rawRow(2, "Noir", "film noir", "2014")})
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Equal(t, "Film Noir", set[0].Genre)
}

func TestLoad_Empty(t *testing.T) {
	set, err := Load(nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}
