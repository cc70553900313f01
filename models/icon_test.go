package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIcon_KnownValues(t *testing.T) {
	assert.Equal(t, IconStar, ParseIcon("star"))
	assert.Equal(t, IconDumbbell, ParseIcon("dumbbell"))
}

func TestParseIcon_UnknownFallsBack(t *testing.T) {
	assert.Equal(t, IconCircle, ParseIcon("definitely-not-an-icon"))
	assert.Equal(t, IconCircle, ParseIcon(""))
}

func TestIconGlyph_Total(t *testing.T) {
	// Glyph определён для любого значения, включая мусор из старых данных
	for ic := range iconGlyphs {
		assert.NotEmpty(t, ic.Glyph())
	}
	assert.Equal(t, IconCircle.Glyph(), Icon("garbage").Glyph())
}

func TestIconValid(t *testing.T) {
	assert.True(t, IconHeart.Valid())
	assert.False(t, Icon("garbage").Valid())
}
