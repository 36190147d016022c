package services

import (
	"context"
	"fmt"
	"slices"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/models"
)

// DefaultPageSize is the fixed number of cards per page
const DefaultPageSize = 20

// TypeOrder is the canonical order of the type filter chips
var TypeOrder = []string{
	"normal", "fighting", "flying", "poison", "ground", "rock", "bug", "ghost", "steel",
	"fire", "water", "grass", "electric", "psychic", "ice", "dragon", "dark", "fairy",
}

// Browser builds pages of cards for a filter state. Normal mode delegates
// pagination to PokeAPI, alternate mode fetches the full listing, filters it
// locally and slices the page window out of the result.
type Browser struct {
	client   CatalogClient
	rarity   *RarityResolver
	pageSize int
	fanOut   int
	logger   *zap.Logger
}

type BrowserOptions struct {
	PageSize   int
	FanOut     int
	Thresholds RarityThresholds
	Logger     *zap.Logger
}

func NewBrowser(client CatalogClient, opts BrowserOptions) *Browser {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.FanOut <= 0 {
		opts.FanOut = defaultFanOut
	}
	if opts.Thresholds == (RarityThresholds{}) {
		opts.Thresholds = DefaultRarityThresholds
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Browser{
		client:   client,
		rarity:   NewRarityResolver(client, opts.Thresholds, opts.FanOut, opts.Logger),
		pageSize: opts.PageSize,
		fanOut:   opts.FanOut,
		logger:   opts.Logger,
	}
}

func (b *Browser) PageSize() int {
	return b.pageSize
}

// Load builds the basic page and enriches it before returning
func (b *Browser) Load(ctx context.Context, f models.FilterState) (models.PageState, error) {
	page, err := b.LoadPage(ctx, f)
	if err != nil {
		return page, err
	}
	page.Items = b.Enrich(ctx, page.Items)
	return page, ctx.Err()
}

// LoadPage builds the basic (unenriched) page for f. On any error the
// returned state is the empty, zero-total page.
func (b *Browser) LoadPage(ctx context.Context, f models.FilterState) (models.PageState, error) {
	mode := models.ModeOf(f)
	start := time.Now()

	var (
		page models.PageState
		err  error
	)
	if mode == models.ModeAlternate {
		page, err = b.loadFiltered(ctx, f)
	} else {
		page, err = b.loadRemotePage(ctx, f)
	}
	metrics.PageLoadDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.PageLoadsTotal.WithLabelValues(mode, "failed").Inc()
		b.logger.Warn("page load failed", zap.String("mode", mode), zap.Int("page", f.Page), zap.Error(err))
		return emptyPage(), err
	}
	metrics.PageLoadsTotal.WithLabelValues(mode, "ok").Inc()
	return page, nil
}

func (b *Browser) loadRemotePage(ctx context.Context, f models.FilterState) (models.PageState, error) {
	res, err := b.client.ListPage(ctx, b.pageSize, f.Offset(b.pageSize))
	if err != nil {
		return models.PageState{}, fmt.Errorf("list page %d: %w", f.Page, err)
	}
	items := make([]models.CardItem, len(res.Entries))
	for i, e := range res.Entries {
		items[i] = ToCard(e)
	}
	return models.PageState{Total: res.Count, Items: items}, nil
}

func (b *Browser) loadFiltered(ctx context.Context, f models.FilterState) (models.PageState, error) {
	var (
		base     []models.CatalogEntry
		typeSet  map[string]struct{}
		typeName = f.SelectedType
	)

	// The listing and the type membership are independent of each other
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := b.client.ListAll(gctx)
		if err != nil {
			return fmt.Errorf("list all: %w", err)
		}
		base = entries
		return nil
	})
	if typeName != "" {
		g.Go(func() error {
			names, err := b.client.GetPokemonNamesByType(gctx, typeName)
			if err != nil {
				return fmt.Errorf("type %s members: %w", typeName, err)
			}
			typeSet = NewTypeSet(names)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.PageState{}, err
	}

	cards := FilterCards(base, FilterOptions{
		Prefix:     f.Query,
		TypeSet:    typeSet,
		Generation: f.SelectedGen,
	})

	if f.SelectedRarity != "" {
		var err error
		cards, err = b.rarity.Filter(ctx, cards, f.SelectedRarity)
		if err != nil {
			return models.PageState{}, fmt.Errorf("rarity %s: %w", f.SelectedRarity, err)
		}
	}

	return models.PageState{
		Total: len(cards),
		Items: pageWindow(cards, f.Offset(b.pageSize), b.pageSize),
	}, nil
}

// pageWindow copies cards[offset:offset+size], clamped to the slice bounds
func pageWindow(cards []models.CardItem, offset, size int) []models.CardItem {
	if offset < 0 || offset >= len(cards) {
		return []models.CardItem{}
	}
	end := min(offset+size, len(cards))
	return slices.Clone(cards[offset:end])
}

func emptyPage() models.PageState {
	return models.PageState{Total: 0, Items: []models.CardItem{}}
}

// Enrich fetches the detail record of every card and attaches types, height,
// weight and base experience. A card whose fetch fails keeps its basic fields.
// The result is only returned once every fetch has settled.
func (b *Browser) Enrich(ctx context.Context, items []models.CardItem) []models.CardItem {
	out := make([]models.CardItem, len(items))
	copy(out, items)
	if len(items) == 0 {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.fanOut)
	for i := range out {
		g.Go(func() error {
			d, err := b.client.GetPokemon(gctx, out[i].Name)
			if err != nil {
				metrics.FallbacksTotal.WithLabelValues("enrichment").Inc()
				b.logger.Debug("enrichment failed, keeping basic card",
					zap.String("name", out[i].Name), zap.Error(err))
				return nil
			}
			out[i] = enrichCard(out[i], d)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func enrichCard(c models.CardItem, d *models.DetailRecord) models.CardItem {
	height, weight, exp := d.Height, d.Weight, d.BaseExperience
	c.Types = d.TypeNames()
	c.Height = &height
	c.Weight = &weight
	c.BaseExp = &exp
	return c
}

// TypeOptions returns the type chips in canonical order, limited to types the
// service reports. When the lookup fails the canonical list is used as is.
func (b *Browser) TypeOptions(ctx context.Context) []string {
	names, err := b.client.GetTypeNames(ctx)
	if err != nil {
		b.logger.Warn("type list unavailable, using canonical order", zap.Error(err))
		return slices.Clone(TypeOrder)
	}
	known := NewTypeSet(names)
	opts := make([]string, 0, len(TypeOrder))
	for _, t := range TypeOrder {
		if _, ok := known[t]; ok {
			opts = append(opts, t)
		}
	}
	return opts
}
