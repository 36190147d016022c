package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/models"
)

const defaultFanOut = 16

// RarityResolver narrows an already-filtered candidate set to one rarity tier.
// It costs one species lookup per candidate.
type RarityResolver struct {
	client     CatalogClient
	thresholds RarityThresholds
	fanOut     int
	logger     *zap.Logger
}

func NewRarityResolver(client CatalogClient, thresholds RarityThresholds, fanOut int, logger *zap.Logger) *RarityResolver {
	if fanOut <= 0 {
		fanOut = defaultFanOut
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RarityResolver{
		client:     client,
		thresholds: thresholds,
		fanOut:     fanOut,
		logger:     logger,
	}
}

// Classify fetches the species for one candidate. A failed lookup counts as
// common rather than failing the page.
func (r *RarityResolver) Classify(ctx context.Context, name string) models.Rarity {
	sp, err := r.client.GetSpecies(ctx, name)
	if err != nil {
		metrics.FallbacksTotal.WithLabelValues("rarity").Inc()
		r.logger.Debug("species lookup failed, defaulting to common",
			zap.String("name", name), zap.Error(err))
		return models.RarityCommon
	}
	return r.thresholds.Classify(sp)
}

// Filter returns the candidates whose rarity equals want, preserving order.
// It only fails when ctx is cancelled before every lookup settles.
func (r *RarityResolver) Filter(ctx context.Context, cards []models.CardItem, want models.Rarity) ([]models.CardItem, error) {
	if len(cards) == 0 {
		return []models.CardItem{}, nil
	}

	tiers := make([]models.Rarity, len(cards))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.fanOut)
	for i := range cards {
		g.Go(func() error {
			tiers[i] = r.Classify(gctx, cards[i].Name)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	kept := make([]models.CardItem, 0, len(cards))
	for i, c := range cards {
		if tiers[i] == want {
			kept = append(kept, c)
		}
	}
	return kept, nil
}
