package models

import (
	"math"
	"strconv"
)

// NamedResource is the {name, url} pair PokeAPI uses for every cross-reference
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CatalogEntry is one raw listing unit. The numeric ID is only encoded in URL.
type CatalogEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CatalogPage is a single limit/offset page of the remote listing
type CatalogPage struct {
	Count   int            `json:"count"`
	Entries []CatalogEntry `json:"entries"`
}

// CardItem is the display unit of the catalog grid. Types, Height, Weight and
// BaseExp stay nil until enrichment has run for the page.
type CardItem struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	ImageURL string   `json:"image_url"`
	Types    []string `json:"types,omitempty"`
	Height   *int     `json:"height,omitempty"`
	Weight   *int     `json:"weight,omitempty"`
	BaseExp  *int     `json:"base_exp,omitempty"`
}

// Enriched reports whether the detail-derived fields have been attached
func (c CardItem) Enriched() bool {
	return c.Types != nil || c.Height != nil || c.Weight != nil || c.BaseExp != nil
}

type Stat struct {
	Name     string `json:"name"`
	BaseStat int    `json:"base_stat"`
	Effort   int    `json:"effort"`
}

type Ability struct {
	Name     string `json:"name"`
	URL      string `json:"url,omitempty"`
	IsHidden bool   `json:"is_hidden"`
	Slot     int    `json:"slot"`
}

type Sprites struct {
	FrontDefault    string `json:"front_default,omitempty"`
	OfficialArtwork string `json:"official_artwork,omitempty"`
}

type Cries struct {
	Latest string `json:"latest,omitempty"`
	Legacy string `json:"legacy,omitempty"`
}

// DetailRecord is the full detail payload for one creature
type DetailRecord struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	Height         int             `json:"height"`
	Weight         int             `json:"weight"`
	BaseExperience int             `json:"base_experience"`
	Stats          []Stat          `json:"stats"`
	Abilities      []Ability       `json:"abilities"`
	Types          []string        `json:"types"`
	Moves          []NamedResource `json:"moves"`
	Sprites        Sprites         `json:"sprites"`
	Cries          *Cries          `json:"cries,omitempty"`
}

// TypeNames returns the type names in slot order
func (d *DetailRecord) TypeNames() []string {
	out := make([]string, len(d.Types))
	copy(out, d.Types)
	return out
}

// ImageURL prefers the official artwork and falls back to the front sprite
func (d *DetailRecord) ImageURL() string {
	if d.Sprites.OfficialArtwork != "" {
		return d.Sprites.OfficialArtwork
	}
	return d.Sprites.FrontDefault
}

// CryURL returns the "latest" or "legacy" cry, or "" when the record has none
func (d *DetailRecord) CryURL(which string) string {
	if d.Cries == nil {
		return ""
	}
	if which == "legacy" {
		return d.Cries.Legacy
	}
	return d.Cries.Latest
}

// StatLine is one row of the base-stat table
type StatLine struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"value"`
	Width string `json:"width"`
}

var statOrder = []struct{ key, label string }{
	{"hp", "HP"},
	{"attack", "Attack"},
	{"defense", "Defense"},
	{"special-attack", "Sp. Attack"},
	{"special-defense", "Sp. Defense"},
	{"speed", "Speed"},
}

// BaseStats returns the six base stats in canonical order. Stats missing from
// the payload are reported as 0.
func (d *DetailRecord) BaseStats() []StatLine {
	byKey := make(map[string]int, len(d.Stats))
	for _, s := range d.Stats {
		byKey[s.Name] = s.BaseStat
	}
	lines := make([]StatLine, 0, len(statOrder))
	for _, s := range statOrder {
		v := byKey[s.key]
		lines = append(lines, StatLine{Key: s.key, Label: s.label, Value: v, Width: StatWidth(v)})
	}
	return lines
}

// maxStatForBar is the base stat that fills a bar completely
const maxStatForBar = 150

// StatWidth converts a base stat into a CSS width percentage capped at 100%
func StatWidth(v int) string {
	pct := int(math.Round(float64(v) / maxStatForBar * 100))
	if pct > 100 {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	return strconv.Itoa(pct) + "%"
}

// Species carries the rarity attributes and the evolution-chain reference
type Species struct {
	ID                int    `json:"id"`
	Name              string `json:"name"`
	IsLegendary       bool   `json:"is_legendary"`
	IsMythical        bool   `json:"is_mythical"`
	CaptureRate       int    `json:"capture_rate"`
	EvolutionChainURL string `json:"evolution_chain_url"`
}

// EvolutionDetail describes how a chain node is reached from its parent
type EvolutionDetail struct {
	MinLevel  *int           `json:"min_level,omitempty"`
	Item      *NamedResource `json:"item,omitempty"`
	Trigger   *NamedResource `json:"trigger,omitempty"`
	TimeOfDay string         `json:"time_of_day,omitempty"`
}

// EvolutionNode is one node of the branching evolution graph
type EvolutionNode struct {
	Species   NamedResource     `json:"species"`
	Details   []EvolutionDetail `json:"evolution_details"`
	EvolvesTo []EvolutionNode   `json:"evolves_to"`
}

// EvoStage is one step of the flattened evolution line
type EvoStage struct {
	Name     string `json:"name"`
	ID       int    `json:"id"`
	ImageURL string `json:"image_url"`
	Note     string `json:"note,omitempty"`
}

// MoveBasic is the subset of a move shown in the detail view
type MoveBasic struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Power       *int   `json:"power,omitempty"`
	Accuracy    *int   `json:"accuracy,omitempty"`
	PP          *int   `json:"pp,omitempty"`
	Type        string `json:"type,omitempty"`
	DamageClass string `json:"damage_class,omitempty"`
}
