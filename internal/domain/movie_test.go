package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMovie_Value(t *testing.T) {
	m := Movie{Name: "Inception", Year: 2010, Score: 8.8, HasScore: true, Votes: 2.4, Gross: 0.836}

	tests := []struct {
		field  Field
		want   float64
		wantOK bool
	}{
		{FieldScore, 8.8, true},
		{FieldVotes, 2.4, true},
		{FieldGross, 0.836, true},
		{FieldYear, 2010, true},
		{Field("runtime"), 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got, ok := m.Value(tt.field)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestMovie_ValueMissingScore(t *testing.T) {
	m := Movie{Name: "Unrated"}

	_, ok := m.Value(FieldScore)
	assert.False(t, ok)
	assert.Equal(t, "NA", m.Tooltip().Score)
}

func TestMovie_Tooltip(t *testing.T) {
	m := Movie{
		Name:     "Inception",
		Director: "Christopher Nolan",
		Year:     2010,
		Score:    8.8,
		HasScore: true,
		Votes:    2.4,
		Gross:    0.83653,
	}

	assert.Equal(t, Tooltip{
		Title:    "Inception",
		Director: "Christopher Nolan",
		Votes:    "2.4 M",
		Year:     "2010",
		Revenue:  "0.84 B",
		Score:    "8.8",
	}, m.Tooltip())
}

func TestField_Valid(t *testing.T) {
	assert.True(t, FieldGross.Valid())
	assert.False(t, Field("").Valid())
}
