package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatWidth(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "0%"},
		{75, "50%"},
		{100, "67%"},
		{150, "100%"},
		{255, "100%"},
		{-5, "0%"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatWidth(tt.value), "value %d", tt.value)
	}
}

func TestDetailRecord_BaseStatsCanonicalOrder(t *testing.T) {
	d := &DetailRecord{Stats: []Stat{
		{Name: "speed", BaseStat: 90},
		{Name: "hp", BaseStat: 35},
		{Name: "special-attack", BaseStat: 50},
	}}

	lines := d.BaseStats()

	keys := make([]string, len(lines))
	for i, l := range lines {
		keys[i] = l.Key
	}
	assert.Equal(t, []string{"hp", "attack", "defense", "special-attack", "special-defense", "speed"}, keys)
	assert.Equal(t, StatLine{Key: "hp", Label: "HP", Value: 35, Width: "23%"}, lines[0])
	assert.Equal(t, 0, lines[1].Value)
	assert.Equal(t, "Sp. Attack", lines[3].Label)
	assert.Equal(t, "60%", lines[5].Width)
}

func TestDetailRecord_ImageURL(t *testing.T) {
	d := &DetailRecord{Sprites: Sprites{FrontDefault: "front.png", OfficialArtwork: "art.png"}}
	assert.Equal(t, "art.png", d.ImageURL())

	d.Sprites.OfficialArtwork = ""
	assert.Equal(t, "front.png", d.ImageURL())

	assert.Empty(t, (&DetailRecord{}).ImageURL())
}

func TestDetailRecord_CryURL(t *testing.T) {
	assert.Empty(t, (&DetailRecord{}).CryURL("latest"))

	d := &DetailRecord{Cries: &Cries{Latest: "latest.ogg", Legacy: "legacy.ogg"}}
	assert.Equal(t, "latest.ogg", d.CryURL("latest"))
	assert.Equal(t, "legacy.ogg", d.CryURL("legacy"))
	assert.Equal(t, "latest.ogg", d.CryURL(""))
}

func TestDetailRecord_TypeNamesIsACopy(t *testing.T) {
	d := &DetailRecord{Types: []string{"grass", "poison"}}
	names := d.TypeNames()
	names[0] = "fire"
	assert.Equal(t, "grass", d.Types[0])
}

func TestCardItem_Enriched(t *testing.T) {
	assert.False(t, CardItem{ID: 1, Name: "bulbasaur"}.Enriched())

	h := 7
	assert.True(t, CardItem{ID: 1, Name: "bulbasaur", Height: &h}.Enriched())
	assert.True(t, CardItem{Types: []string{}}.Enriched())
}
