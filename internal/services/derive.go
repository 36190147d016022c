package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/codyseavey/pokedex/backend/internal/models"
)

const artworkURLTemplate = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png"

// lastPathSegment returns the final non-empty "/"-separated segment of a
// resource URL, ignoring any trailing slash.
func lastPathSegment(resourceURL string) string {
	trimmed := strings.TrimRight(resourceURL, "/")
	if i := strings.LastIndexByte(trimmed, '/'); i >= 0 {
		return trimmed[i+1:]
	}
	return trimmed
}

// ExtractID derives the numeric identifier from a resource URL such as
// https://pokeapi.co/api/v2/pokemon-species/25/. Returns 0 when the trailing
// segment is not a number.
func ExtractID(resourceURL string) int {
	id, err := strconv.Atoi(lastPathSegment(resourceURL))
	if err != nil || id < 0 {
		return 0
	}
	return id
}

// ArtworkURL is the official artwork location for an identifier
func ArtworkURL(id int) string {
	return fmt.Sprintf(artworkURLTemplate, id)
}

// GenerationRange is an inclusive identifier range
type GenerationRange struct {
	Generation int `json:"generation"`
	First      int `json:"first"`
	Last       int `json:"last"`
}

// GenerationRanges is the closed table of national-dex ranges per generation
var GenerationRanges = []GenerationRange{
	{1, 1, 151},
	{2, 152, 251},
	{3, 252, 386},
	{4, 387, 493},
	{5, 494, 649},
	{6, 650, 721},
	{7, 722, 809},
	{8, 810, 905},
	{9, 906, 1025},
}

func generationRange(gen int) (GenerationRange, bool) {
	for _, r := range GenerationRanges {
		if r.Generation == gen {
			return r, true
		}
	}
	return GenerationRange{}, false
}

// InGeneration reports whether id belongs to gen. A zero or unrecognised
// generation does not filter anything.
func InGeneration(id, gen int) bool {
	r, ok := generationRange(gen)
	if !ok {
		return true
	}
	return id >= r.First && id <= r.Last
}

// RarityThresholds are the inclusive capture-rate ceilings for the two
// capture-rate based tiers.
type RarityThresholds struct {
	VeryRareMax int
	RareMax     int
}

// DefaultRarityThresholds classifies capture rate <= 45 as very rare and
// <= 90 as rare.
var DefaultRarityThresholds = RarityThresholds{VeryRareMax: 45, RareMax: 90}

// Classify maps species attributes to a rarity tier. First match wins:
// mythical, legendary, very rare, rare, common.
func (t RarityThresholds) Classify(sp *models.Species) models.Rarity {
	switch {
	case sp.IsMythical:
		return models.RarityMythical
	case sp.IsLegendary:
		return models.RarityLegendary
	case sp.CaptureRate <= t.VeryRareMax:
		return models.RarityVeryRare
	case sp.CaptureRate <= t.RareMax:
		return models.RarityRare
	default:
		return models.RarityCommon
	}
}

// ClassifyRarity uses DefaultRarityThresholds
func ClassifyRarity(sp *models.Species) models.Rarity {
	return DefaultRarityThresholds.Classify(sp)
}
