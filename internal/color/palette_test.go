package color

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listenupapp/moviescope/internal/genre"
)

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

func TestPalette_CoversClosedSet(t *testing.T) {
	p := Default()

	seen := map[string]bool{}
	for _, label := range genre.Labels() {
		c := p.For(label)
		assert.Regexp(t, hexColor, c, label)
		assert.False(t, seen[c], "color %s reused for %s", c, label)
		seen[c] = true
	}

	assert.Equal(t, "#2ca02c", p.For(genre.Drama))
}

func TestPalette_UnknownLabelIsStable(t *testing.T) {
	p := Default()

	first := p.For("Film Noir")
	assert.Regexp(t, hexColor, first)
	assert.Equal(t, first, p.For("Film Noir"))
	assert.Equal(t, ForLabel("Film Noir"), first)
}

func TestPalette_Table(t *testing.T) {
	p := Default()

	table := p.Table([]string{genre.Comedy, genre.Horror})

	assert.Equal(t, map[string]string{
		genre.Comedy: "#1f77b4",
		genre.Horror: "#7f7f7f",
	}, table)
}
