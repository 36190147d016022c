package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/codyseavey/pokedex/backend/internal/models"
)

var errUpstream = errors.New("upstream unavailable")

// fakeClient is an in-memory CatalogClient. gate, when set, runs before every
// call and can block it or fail it.
type fakeClient struct {
	mu    sync.Mutex
	calls map[string]int

	entries    []models.CatalogEntry
	count      int
	listErr    error
	listAllErr error

	pokemon     map[string]*models.DetailRecord
	failPokemon map[string]bool

	typeNames []string
	typeErr   error
	byType    map[string][]string

	species map[string]*models.Species
	chains  map[string]*models.EvolutionNode
	moves   map[string]*models.MoveBasic

	gate func(ctx context.Context, method, arg string) error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		calls:       map[string]int{},
		pokemon:     map[string]*models.DetailRecord{},
		failPokemon: map[string]bool{},
		byType:      map[string][]string{},
		species:     map[string]*models.Species{},
		chains:      map[string]*models.EvolutionNode{},
		moves:       map[string]*models.MoveBasic{},
	}
}

func (f *fakeClient) enter(ctx context.Context, method, arg string) error {
	f.mu.Lock()
	f.calls[method]++
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		if err := gate(ctx, method, arg); err != nil {
			return err
		}
	}
	return ctx.Err()
}

func (f *fakeClient) callCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *fakeClient) ListPage(ctx context.Context, limit, offset int) (*models.CatalogPage, error) {
	if err := f.enter(ctx, "list", strconv.Itoa(offset)); err != nil {
		return nil, err
	}
	if f.listErr != nil {
		return nil, f.listErr
	}
	count := f.count
	if count == 0 {
		count = len(f.entries)
	}
	start := min(offset, len(f.entries))
	end := min(offset+limit, len(f.entries))
	out := make([]models.CatalogEntry, end-start)
	copy(out, f.entries[start:end])
	return &models.CatalogPage{Count: count, Entries: out}, nil
}

func (f *fakeClient) ListAll(ctx context.Context) ([]models.CatalogEntry, error) {
	if err := f.enter(ctx, "list_all", ""); err != nil {
		return nil, err
	}
	if f.listAllErr != nil {
		return nil, f.listAllErr
	}
	out := make([]models.CatalogEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeClient) GetPokemon(ctx context.Context, key string) (*models.DetailRecord, error) {
	if err := f.enter(ctx, "pokemon", key); err != nil {
		return nil, err
	}
	if f.failPokemon[key] {
		return nil, errUpstream
	}
	rec, ok := f.pokemon[key]
	if !ok {
		return nil, fmt.Errorf("/pokemon/%s: %w", key, ErrNotFound)
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeClient) GetTypeNames(ctx context.Context) ([]string, error) {
	if err := f.enter(ctx, "type_list", ""); err != nil {
		return nil, err
	}
	if f.typeErr != nil {
		return nil, f.typeErr
	}
	return f.typeNames, nil
}

func (f *fakeClient) GetPokemonNamesByType(ctx context.Context, typeName string) ([]string, error) {
	if err := f.enter(ctx, "type", typeName); err != nil {
		return nil, err
	}
	names, ok := f.byType[typeName]
	if !ok {
		return nil, fmt.Errorf("/type/%s: %w", typeName, ErrNotFound)
	}
	return names, nil
}

func (f *fakeClient) GetSpecies(ctx context.Context, key string) (*models.Species, error) {
	if err := f.enter(ctx, "species", key); err != nil {
		return nil, err
	}
	sp, ok := f.species[key]
	if !ok {
		return nil, fmt.Errorf("/pokemon-species/%s: %w", key, ErrNotFound)
	}
	return sp, nil
}

func (f *fakeClient) GetEvolutionChain(ctx context.Context, ref string) (*models.EvolutionNode, error) {
	if err := f.enter(ctx, "evolution_chain", ref); err != nil {
		return nil, err
	}
	node, ok := f.chains[ref]
	if !ok {
		return nil, fmt.Errorf("chain %s: %w", ref, ErrNotFound)
	}
	return node, nil
}

func (f *fakeClient) GetMove(ctx context.Context, ref string) (*models.MoveBasic, error) {
	if err := f.enter(ctx, "move", ref); err != nil {
		return nil, err
	}
	mv, ok := f.moves[ref]
	if !ok {
		return nil, errUpstream
	}
	return mv, nil
}

func entryURL(id int) string {
	return fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", id)
}

// namedEntries builds listing entries with ids 1..len(names)
func namedEntries(names ...string) []models.CatalogEntry {
	out := make([]models.CatalogEntry, len(names))
	for i, n := range names {
		out[i] = models.CatalogEntry{Name: n, URL: entryURL(i + 1)}
	}
	return out
}

// numberedEntries builds n entries named mon-1..mon-n with matching ids
func numberedEntries(n int) []models.CatalogEntry {
	out := make([]models.CatalogEntry, n)
	for i := range out {
		out[i] = models.CatalogEntry{Name: fmt.Sprintf("mon-%d", i+1), URL: entryURL(i + 1)}
	}
	return out
}

func record(id int, name string, types ...string) *models.DetailRecord {
	return &models.DetailRecord{
		ID:             id,
		Name:           name,
		Height:         id * 2,
		Weight:         id * 10,
		BaseExperience: id + 50,
		Types:          types,
	}
}

func intPtr(v int) *int { return &v }
