package services

import (
	"strings"
	"unicode/utf8"

	"github.com/codyseavey/pokedex/backend/internal/models"
)

// FilterOptions are the locally-applied predicates of alternate mode.
// A nil TypeSet and a zero Generation do not filter.
type FilterOptions struct {
	Prefix     string
	TypeSet    map[string]struct{}
	Generation int
}

// NewTypeSet builds a membership set from a type's member names
func NewTypeSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}

// normalizePrefix lower-cases the trimmed query and drops it entirely when it
// is shorter than models.MinQueryLength.
func normalizePrefix(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	if utf8.RuneCountInString(q) < models.MinQueryLength {
		return ""
	}
	return q
}

// ToCard derives the always-present display fields from a listing entry
func ToCard(e models.CatalogEntry) models.CardItem {
	id := ExtractID(e.URL)
	return models.CardItem{ID: id, Name: e.Name, ImageURL: ArtworkURL(id)}
}

// FilterCards keeps the entries matching every active predicate, in input
// order, and maps them to basic cards.
func FilterCards(entries []models.CatalogEntry, opts FilterOptions) []models.CardItem {
	prefix := normalizePrefix(opts.Prefix)

	cards := make([]models.CardItem, 0, len(entries))
	for _, e := range entries {
		if prefix != "" && !strings.HasPrefix(strings.ToLower(e.Name), prefix) {
			continue
		}
		card := ToCard(e)
		if !InGeneration(card.ID, opts.Generation) {
			continue
		}
		if opts.TypeSet != nil {
			if _, ok := opts.TypeSet[e.Name]; !ok {
				continue
			}
		}
		cards = append(cards, card)
	}
	return cards
}
