package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/models"
)

const (
	pokeAPIBaseURL        = "https://pokeapi.co/api/v2"
	pokeAPIDefaultTimeout = 30 * time.Second
	defaultBulkListLimit  = 1500
)

// ErrNotFound is returned when PokeAPI answers 404 for a key
var ErrNotFound = errors.New("not found")

// CatalogClient is the read-only view of the remote catalog the pipeline needs
type CatalogClient interface {
	ListPage(ctx context.Context, limit, offset int) (*models.CatalogPage, error)
	ListAll(ctx context.Context) ([]models.CatalogEntry, error)
	GetPokemon(ctx context.Context, key string) (*models.DetailRecord, error)
	GetTypeNames(ctx context.Context) ([]string, error)
	GetPokemonNamesByType(ctx context.Context, typeName string) ([]string, error)
	GetSpecies(ctx context.Context, key string) (*models.Species, error)
	GetEvolutionChain(ctx context.Context, ref string) (*models.EvolutionNode, error)
	GetMove(ctx context.Context, ref string) (*models.MoveBasic, error)
}

// PokeAPIService is a thin typed accessor for the PokeAPI read endpoints.
// All responses are decoded in getJSON and mapped to models here.
type PokeAPIService struct {
	client    *http.Client
	baseURL   string
	bulkLimit int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

type PokeAPIOptions struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64 // <= 0 disables rate limiting
	Burst             int
	BulkListLimit     int
	Logger            *zap.Logger
}

func NewPokeAPIService(opts PokeAPIOptions) *PokeAPIService {
	if opts.BaseURL == "" {
		opts.BaseURL = pokeAPIBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = pokeAPIDefaultTimeout
	}
	if opts.BulkListLimit <= 0 {
		opts.BulkListLimit = defaultBulkListLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	return &PokeAPIService{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		bulkLimit: opts.BulkListLimit,
		limiter:   rate.NewLimiter(limit, burst),
		logger:    opts.Logger,
	}
}

type pokeListResponse struct {
	Results []models.NamedResource `json:"results"`
	Count   int                    `json:"count"`
}

type pokePokemonResponse struct {
	Cries          *pokeCries     `json:"cries"`
	BaseExperience *int           `json:"base_experience"`
	Name           string         `json:"name"`
	Sprites        pokeSprites    `json:"sprites"`
	Stats          []pokeStat     `json:"stats"`
	Abilities      []pokeAbility  `json:"abilities"`
	Moves          []pokeMoveRef  `json:"moves"`
	Types          []pokeTypeSlot `json:"types"`
	ID             int            `json:"id"`
	Height         int            `json:"height"`
	Weight         int            `json:"weight"`
}

type pokeStat struct {
	Stat     models.NamedResource `json:"stat"`
	BaseStat int                  `json:"base_stat"`
	Effort   int                  `json:"effort"`
}

type pokeAbility struct {
	Ability  models.NamedResource `json:"ability"`
	IsHidden bool                 `json:"is_hidden"`
	Slot     int                  `json:"slot"`
}

type pokeMoveRef struct {
	Move models.NamedResource `json:"move"`
}

type pokeTypeSlot struct {
	Type models.NamedResource `json:"type"`
	Slot int                  `json:"slot"`
}

type pokeSprites struct {
	FrontDefault *string `json:"front_default"`
	Other        struct {
		OfficialArtwork struct {
			FrontDefault *string `json:"front_default"`
		} `json:"official-artwork"`
	} `json:"other"`
}

type pokeCries struct {
	Latest *string `json:"latest"`
	Legacy *string `json:"legacy"`
}

type pokeTypeResponse struct {
	Pokemon []struct {
		Pokemon models.NamedResource `json:"pokemon"`
		Slot    int                  `json:"slot"`
	} `json:"pokemon"`
}

type pokeSpeciesResponse struct {
	EvolutionChain *struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
	Name        string `json:"name"`
	ID          int    `json:"id"`
	CaptureRate int    `json:"capture_rate"`
	IsLegendary bool   `json:"is_legendary"`
	IsMythical  bool   `json:"is_mythical"`
}

type pokeEvolutionChainResponse struct {
	Chain pokeChainLink `json:"chain"`
	ID    int           `json:"id"`
}

type pokeChainLink struct {
	Species          models.NamedResource  `json:"species"`
	EvolutionDetails []pokeEvolutionDetail `json:"evolution_details"`
	EvolvesTo        []pokeChainLink       `json:"evolves_to"`
}

type pokeEvolutionDetail struct {
	MinLevel  *int                  `json:"min_level"`
	Item      *models.NamedResource `json:"item"`
	Trigger   *models.NamedResource `json:"trigger"`
	TimeOfDay string                `json:"time_of_day"`
}

type pokeMoveResponse struct {
	Power       *int                 `json:"power"`
	Accuracy    *int                 `json:"accuracy"`
	PP          *int                 `json:"pp"`
	Name        string               `json:"name"`
	Type        models.NamedResource `json:"type"`
	DamageClass models.NamedResource `json:"damage_class"`
	ID          int                  `json:"id"`
}

// ListPage fetches one page of the listing using the service's own pagination
func (s *PokeAPIService) ListPage(ctx context.Context, limit, offset int) (*models.CatalogPage, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))

	var resp pokeListResponse
	if err := s.getJSON(ctx, "list", "/pokemon", params, &resp); err != nil {
		return nil, err
	}

	return &models.CatalogPage{
		Count:   resp.Count,
		Entries: toEntries(resp.Results),
	}, nil
}

// ListAll fetches the whole listing in one request
func (s *PokeAPIService) ListAll(ctx context.Context) ([]models.CatalogEntry, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(s.bulkLimit))
	params.Set("offset", "0")

	var resp pokeListResponse
	if err := s.getJSON(ctx, "list_all", "/pokemon", params, &resp); err != nil {
		return nil, err
	}
	return toEntries(resp.Results), nil
}

// GetPokemon fetches the detail record by name or numeric id
func (s *PokeAPIService) GetPokemon(ctx context.Context, key string) (*models.DetailRecord, error) {
	path, err := refPath("pokemon", key)
	if err != nil {
		return nil, err
	}

	var resp pokePokemonResponse
	if err := s.getJSON(ctx, "pokemon", path, nil, &resp); err != nil {
		return nil, err
	}
	return convertToDetail(resp), nil
}

// GetTypeNames returns every type name the service knows, in service order
func (s *PokeAPIService) GetTypeNames(ctx context.Context) ([]string, error) {
	params := url.Values{}
	params.Set("limit", "100")

	var resp pokeListResponse
	if err := s.getJSON(ctx, "type_list", "/type", params, &resp); err != nil {
		return nil, err
	}
	names := make([]string, len(resp.Results))
	for i, t := range resp.Results {
		names[i] = t.Name
	}
	return names, nil
}

// GetPokemonNamesByType returns the names of every member of a type
func (s *PokeAPIService) GetPokemonNamesByType(ctx context.Context, typeName string) ([]string, error) {
	path, err := refPath("type", typeName)
	if err != nil {
		return nil, err
	}

	var resp pokeTypeResponse
	if err := s.getJSON(ctx, "type", path, nil, &resp); err != nil {
		return nil, err
	}
	names := make([]string, len(resp.Pokemon))
	for i, p := range resp.Pokemon {
		names[i] = p.Pokemon.Name
	}
	return names, nil
}

// GetSpecies fetches rarity attributes and the evolution-chain reference
func (s *PokeAPIService) GetSpecies(ctx context.Context, key string) (*models.Species, error) {
	path, err := refPath("pokemon-species", key)
	if err != nil {
		return nil, err
	}

	var resp pokeSpeciesResponse
	if err := s.getJSON(ctx, "species", path, nil, &resp); err != nil {
		return nil, err
	}
	sp := &models.Species{
		ID:          resp.ID,
		Name:        resp.Name,
		IsLegendary: resp.IsLegendary,
		IsMythical:  resp.IsMythical,
		CaptureRate: resp.CaptureRate,
	}
	if resp.EvolutionChain != nil {
		sp.EvolutionChainURL = resp.EvolutionChain.URL
	}
	return sp, nil
}

// GetEvolutionChain resolves a chain reference (full URL or id) to its root node
func (s *PokeAPIService) GetEvolutionChain(ctx context.Context, ref string) (*models.EvolutionNode, error) {
	path, err := refPath("evolution-chain", ref)
	if err != nil {
		return nil, err
	}

	var resp pokeEvolutionChainResponse
	if err := s.getJSON(ctx, "evolution_chain", path, nil, &resp); err != nil {
		return nil, err
	}
	root := convertChainLink(resp.Chain)
	return &root, nil
}

// GetMove resolves a move by name, id or full reference URL
func (s *PokeAPIService) GetMove(ctx context.Context, ref string) (*models.MoveBasic, error) {
	path, err := refPath("move", ref)
	if err != nil {
		return nil, err
	}

	var resp pokeMoveResponse
	if err := s.getJSON(ctx, "move", path, nil, &resp); err != nil {
		return nil, err
	}
	return &models.MoveBasic{
		ID:          resp.ID,
		Name:        resp.Name,
		Power:       resp.Power,
		Accuracy:    resp.Accuracy,
		PP:          resp.PP,
		Type:        resp.Type.Name,
		DamageClass: resp.DamageClass.Name,
	}, nil
}

// refPath builds the request path for a key. Full resource URLs are reduced to
// their trailing key so requests only ever go to the configured base URL.
func refPath(collection, ref string) (string, error) {
	key := strings.TrimSpace(ref)
	if strings.HasPrefix(key, "http://") || strings.HasPrefix(key, "https://") {
		key = lastPathSegment(key)
	}
	if key == "" {
		return "", fmt.Errorf("empty %s key: %w", collection, ErrNotFound)
	}
	return "/" + collection + "/" + url.PathEscape(strings.ToLower(key)), nil
}

func (s *PokeAPIService) getJSON(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("pokeapi rate limiter: %w", err)
	}

	reqURL := s.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	start := time.Now()
	defer func() {
		metrics.UpstreamLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "not_found").Inc()
		return fmt.Errorf("%s: %w", path, ErrNotFound)
	}

	if resp.StatusCode != http.StatusOK {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		s.logger.Warn("pokeapi returned unexpected status",
			zap.String("path", path), zap.Int("status", resp.StatusCode))
		return fmt.Errorf("pokeapi returned status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return fmt.Errorf("failed to decode pokeapi response for %s: %w", path, err)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

func toEntries(results []models.NamedResource) []models.CatalogEntry {
	entries := make([]models.CatalogEntry, len(results))
	for i, r := range results {
		entries[i] = models.CatalogEntry{Name: r.Name, URL: r.URL}
	}
	return entries
}

func convertToDetail(p pokePokemonResponse) *models.DetailRecord {
	d := &models.DetailRecord{
		ID:     p.ID,
		Name:   p.Name,
		Height: p.Height,
		Weight: p.Weight,
	}
	if p.BaseExperience != nil {
		d.BaseExperience = *p.BaseExperience
	}

	d.Stats = make([]models.Stat, len(p.Stats))
	for i, st := range p.Stats {
		d.Stats[i] = models.Stat{Name: st.Stat.Name, BaseStat: st.BaseStat, Effort: st.Effort}
	}

	d.Abilities = make([]models.Ability, len(p.Abilities))
	for i, a := range p.Abilities {
		d.Abilities[i] = models.Ability{Name: a.Ability.Name, URL: a.Ability.URL, IsHidden: a.IsHidden, Slot: a.Slot}
	}

	slots := make([]pokeTypeSlot, len(p.Types))
	copy(slots, p.Types)
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Slot < slots[j].Slot })
	d.Types = make([]string, len(slots))
	for i, t := range slots {
		d.Types[i] = t.Type.Name
	}

	d.Moves = make([]models.NamedResource, len(p.Moves))
	for i, m := range p.Moves {
		d.Moves[i] = m.Move
	}

	if p.Sprites.FrontDefault != nil {
		d.Sprites.FrontDefault = *p.Sprites.FrontDefault
	}
	if art := p.Sprites.Other.OfficialArtwork.FrontDefault; art != nil {
		d.Sprites.OfficialArtwork = *art
	}

	if p.Cries != nil {
		d.Cries = &models.Cries{}
		if p.Cries.Latest != nil {
			d.Cries.Latest = *p.Cries.Latest
		}
		if p.Cries.Legacy != nil {
			d.Cries.Legacy = *p.Cries.Legacy
		}
	}

	return d
}

func convertChainLink(link pokeChainLink) models.EvolutionNode {
	node := models.EvolutionNode{Species: link.Species}

	if len(link.EvolutionDetails) > 0 {
		node.Details = make([]models.EvolutionDetail, len(link.EvolutionDetails))
		for i, d := range link.EvolutionDetails {
			node.Details[i] = models.EvolutionDetail{
				MinLevel:  d.MinLevel,
				Item:      d.Item,
				Trigger:   d.Trigger,
				TimeOfDay: d.TimeOfDay,
			}
		}
	}

	if len(link.EvolvesTo) > 0 {
		node.EvolvesTo = make([]models.EvolutionNode, len(link.EvolvesTo))
		for i, child := range link.EvolvesTo {
			node.EvolvesTo[i] = convertChainLink(child)
		}
	}

	return node
}
