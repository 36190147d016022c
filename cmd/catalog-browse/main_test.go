package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/codyseavey/pokedex/backend/internal/config"
	"github.com/codyseavey/pokedex/backend/internal/models"
	"github.com/codyseavey/pokedex/backend/internal/services"
)

// stubCatalog serves mon-1..mon-n and counts upstream calls
type stubCatalog struct {
	n     int
	calls atomic.Int32
}

func (c *stubCatalog) entries() []models.CatalogEntry {
	out := make([]models.CatalogEntry, c.n)
	for i := range out {
		out[i] = models.CatalogEntry{
			Name: fmt.Sprintf("mon-%d", i+1),
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/pokemon/%d/", i+1),
		}
	}
	return out
}

func (c *stubCatalog) ListPage(_ context.Context, limit, offset int) (*models.CatalogPage, error) {
	c.calls.Add(1)
	all := c.entries()
	start, end := min(offset, len(all)), min(offset+limit, len(all))
	return &models.CatalogPage{Count: len(all), Entries: all[start:end]}, nil
}

func (c *stubCatalog) ListAll(context.Context) ([]models.CatalogEntry, error) {
	c.calls.Add(1)
	return c.entries(), nil
}

func (c *stubCatalog) GetPokemon(_ context.Context, key string) (*models.DetailRecord, error) {
	c.calls.Add(1)
	var id int
	if _, err := fmt.Sscanf(key, "mon-%d", &id); err != nil {
		return nil, services.ErrNotFound
	}
	return &models.DetailRecord{ID: id, Name: key, Height: 4, Weight: 60, Types: []string{"normal"}}, nil
}

func (c *stubCatalog) GetTypeNames(context.Context) ([]string, error) {
	return []string{"normal"}, nil
}

func (c *stubCatalog) GetPokemonNamesByType(context.Context, string) ([]string, error) {
	return nil, services.ErrNotFound
}

func (c *stubCatalog) GetSpecies(context.Context, string) (*models.Species, error) {
	return nil, services.ErrNotFound
}

func (c *stubCatalog) GetEvolutionChain(context.Context, string) (*models.EvolutionNode, error) {
	return nil, services.ErrNotFound
}

func (c *stubCatalog) GetMove(context.Context, string) (*models.MoveBasic, error) {
	return nil, services.ErrNotFound
}

// runCLI executes rootCmd against the stub catalog with fresh flag values
func runCLI(t *testing.T, catalog *stubCatalog, args ...string) (string, error) {
	t.Helper()
	t.Setenv("PAGE_SIZE", "20")

	orig := newCatalogClient
	newCatalogClient = func(config.Config, *zap.Logger) services.CatalogClient { return catalog }
	t.Cleanup(func() { newCatalogClient = orig })

	envFile, jsonOutput, verbose = "", false, false
	pageQuery, pageType, pageGen, pageRarity, pageNumber = "", "", 0, "", 1

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestPageCommandValidation(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"unknown rarity", []string{"page", "--rarity", "shiny"}, `unknown rarity "shiny"`},
		{"page zero", []string{"page", "--page", "0"}, "page must be between 1 and"},
		{"negative page", []string{"page", "-p", "-3"}, "page must be between 1 and"},
		{"huge page", []string{"page", "--q", "mon", "--page", "922337203685477580"}, "page must be between 1 and"},
		{"non numeric page", []string{"page", "--page", "two"}, "invalid argument"},
		{"stray argument", []string{"page", "extra"}, "unknown command"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := &stubCatalog{n: 30}
			_, err := runCLI(t, catalog, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Zero(t, catalog.calls.Load(), "nothing is fetched for invalid flags")
		})
	}
}

func TestPageCommand(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		wantMode  string
		wantTotal int
		wantFirst string
		wantItems int
	}{
		{"first page", []string{"page"}, models.ModeNormal, 30, "mon-1", 20},
		{"second page", []string{"page", "-p", "2"}, models.ModeNormal, 30, "mon-21", 10},
		{"prefix filter", []string{"page", "--q", "mon-2"}, models.ModeAlternate, 11, "mon-2", 11},
		{"valid rarity", []string{"page", "--rarity", "Common", "-p", "2"}, models.ModeAlternate, 30, "mon-21", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, &stubCatalog{n: 30}, append(tt.args, "--json")...)
			require.NoError(t, err)

			var snap models.Snapshot
			require.NoError(t, json.Unmarshal([]byte(out), &snap), out)
			assert.Equal(t, tt.wantMode, snap.Mode)
			assert.Equal(t, tt.wantTotal, snap.Page.Total)
			require.Len(t, snap.Page.Items, tt.wantItems)
			assert.Equal(t, tt.wantFirst, snap.Page.Items[0].Name)
		})
	}
}

func TestPageCommandTable(t *testing.T) {
	out, err := runCLI(t, &stubCatalog{n: 3}, "page")
	require.NoError(t, err)
	assert.Contains(t, out, "mon-3")
	assert.Contains(t, out, "normal mode, page 1 of 1, 3 results")
}
