package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/models"
)

// FlattenChain walks an evolution graph depth first from the root and returns
// one stage per visited node. Only the first branch of every node is followed.
func FlattenChain(root models.EvolutionNode) []models.EvoStage {
	stages := []models.EvoStage{}
	for node := &root; node != nil; {
		if node.Species.Name == "" {
			break
		}
		id := ExtractID(node.Species.URL)
		stages = append(stages, models.EvoStage{
			Name:     node.Species.Name,
			ID:       id,
			ImageURL: ArtworkURL(id),
			Note:     transitionNote(node.Details),
		})

		if len(node.EvolvesTo) == 0 {
			break
		}
		node = &node.EvolvesTo[0]
	}
	return stages
}

// transitionNote summarises the first evolution detail. Precedence: minimum
// level, item, trigger, then time of day when nothing else applies.
func transitionNote(details []models.EvolutionDetail) string {
	if len(details) == 0 {
		return ""
	}
	d := details[0]

	var note string
	switch {
	case d.MinLevel != nil:
		note = fmt.Sprintf("Lv. %d", *d.MinLevel)
	case d.Item != nil && d.Item.Name != "":
		note = "Item: " + d.Item.Name
	case d.Trigger != nil && d.Trigger.Name != "":
		note = d.Trigger.Name
	}
	if note == "" && d.TimeOfDay != "" {
		note = d.TimeOfDay
	}
	return note
}

// Evolutions resolves a species to its flattened evolution line
type Evolutions struct {
	client CatalogClient
	logger *zap.Logger
}

func NewEvolutions(client CatalogClient, logger *zap.Logger) *Evolutions {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evolutions{client: client, logger: logger}
}

// Load returns the evolution line of the species identified by key. Any
// resolution failure yields an empty line.
func (e *Evolutions) Load(ctx context.Context, key string) []models.EvoStage {
	sp, err := e.client.GetSpecies(ctx, key)
	if err != nil {
		e.fail(key, "species lookup failed", err)
		return []models.EvoStage{}
	}
	if sp.EvolutionChainURL == "" {
		e.fail(key, "species has no evolution chain", nil)
		return []models.EvoStage{}
	}

	root, err := e.client.GetEvolutionChain(ctx, sp.EvolutionChainURL)
	if err != nil {
		e.fail(key, "evolution chain lookup failed", err)
		return []models.EvoStage{}
	}
	return FlattenChain(*root)
}

func (e *Evolutions) fail(key, msg string, err error) {
	metrics.FallbacksTotal.WithLabelValues("evolution").Inc()
	e.logger.Debug(msg, zap.String("key", key), zap.Error(err))
}
