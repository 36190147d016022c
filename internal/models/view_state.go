package models

import (
	"strings"
	"unicode/utf8"
)

type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityRare      Rarity = "rare"
	RarityVeryRare  Rarity = "very-rare"
	RarityLegendary Rarity = "legendary"
	RarityMythical  Rarity = "mythical"
)

// Rarities lists every tier from most to least common
var Rarities = []Rarity{RarityCommon, RarityRare, RarityVeryRare, RarityLegendary, RarityMythical}

// ParseRarity returns the tier named by s, or false if s is not a known tier
func ParseRarity(s string) (Rarity, bool) {
	r := Rarity(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Rarities {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// MinQueryLength is the shortest query that activates prefix filtering
const MinQueryLength = 3

// MaxPage bounds requested page numbers so offsets stay in range
const MaxPage = 10000

// FilterState is the complete input that decides which page of which result
// set is shown. Page is 1-based.
type FilterState struct {
	Query          string `json:"query"`
	SelectedType   string `json:"selected_type,omitempty"`
	SelectedGen    int    `json:"selected_gen,omitempty"`
	SelectedRarity Rarity `json:"selected_rarity,omitempty"`
	Page           int    `json:"page"`
}

// QueryActive reports whether the trimmed query is long enough to filter by
func (f FilterState) QueryActive() bool {
	return utf8.RuneCountInString(strings.TrimSpace(f.Query)) >= MinQueryLength
}

// IsAltMode reports whether the result set has to be fetched in full and
// filtered locally instead of using remote pagination.
func (f FilterState) IsAltMode() bool {
	return f.QueryActive() || f.SelectedType != "" || f.SelectedGen != 0 || f.SelectedRarity != ""
}

// Offset is the index of the first item of the current page. Page is
// clamped to [1, MaxPage].
func (f FilterState) Offset(pageSize int) int {
	p := min(max(f.Page, 1), MaxPage)
	return (p - 1) * pageSize
}

// PageState is derived from a FilterState and is always rebuilt wholesale
type PageState struct {
	Total   int        `json:"total"`
	Items   []CardItem `json:"items"`
	Loading bool       `json:"loading"`
}

// TotalPages is never less than 1, even for an empty result set
func (p PageState) TotalPages(pageSize int) int {
	if pageSize <= 0 || p.Total <= 0 {
		return 1
	}
	return (p.Total + pageSize - 1) / pageSize
}

// DetailView is the state of the detail modal for one session
type DetailView struct {
	Open      bool          `json:"open"`
	Loading   bool          `json:"loading"`
	Name      string        `json:"name,omitempty"`
	Record    *DetailRecord `json:"record,omitempty"`
	Evolution []EvoStage    `json:"evolution"`
	Moves     []MoveBasic   `json:"moves"`
	Error     string        `json:"error,omitempty"`
}

// Snapshot is the immutable view handed to the presentation layer
type Snapshot struct {
	Version    uint64      `json:"version"`
	Mode       string      `json:"mode"`
	Filter     FilterState `json:"filter"`
	Page       PageState   `json:"page"`
	TotalPages int         `json:"total_pages"`
	Detail     DetailView  `json:"detail"`
}

const (
	ModeNormal    = "normal"
	ModeAlternate = "alternate"
)

// ModeOf names the pagination mode a filter state selects
func ModeOf(f FilterState) string {
	if f.IsAltMode() {
		return ModeAlternate
	}
	return ModeNormal
}
