package services

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/models"
)

const (
	// moveWindow bounds how many references are considered at all
	moveWindow = 50
	// maxMoves is the number of moves shown in the detail view
	maxMoves = 6
)

// SelectMoves picks the first maxMoves references of the first moveWindow, in
// list order.
// TODO: prefer moves with a defined power once the move list carries it;
// today the power is only known after the per-move fetch.
func SelectMoves(refs []models.NamedResource) []models.NamedResource {
	window := refs[:min(len(refs), moveWindow)]
	picked := make([]models.NamedResource, 0, maxMoves)
	for _, m := range window {
		if len(picked) >= maxMoves {
			break
		}
		picked = append(picked, m)
	}
	return picked
}

// Moves resolves a detail record's move references to basic move data
type Moves struct {
	client CatalogClient
	logger *zap.Logger
}

func NewMoves(client CatalogClient, logger *zap.Logger) *Moves {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Moves{client: client, logger: logger}
}

// Load resolves the selected moves in parallel, drops failed lookups and keeps
// list order. A record without moves returns immediately.
func (m *Moves) Load(ctx context.Context, d *models.DetailRecord) []models.MoveBasic {
	if d == nil {
		return []models.MoveBasic{}
	}
	picked := SelectMoves(d.Moves)
	if len(picked) == 0 {
		return []models.MoveBasic{}
	}

	resolved := make([]*models.MoveBasic, len(picked))
	g, gctx := errgroup.WithContext(ctx)
	for i, ref := range picked {
		g.Go(func() error {
			key := ref.URL
			if key == "" {
				key = ref.Name
			}
			mv, err := m.client.GetMove(gctx, key)
			if err != nil {
				metrics.FallbacksTotal.WithLabelValues("move").Inc()
				m.logger.Debug("move lookup failed, dropping", zap.String("move", ref.Name), zap.Error(err))
				return nil
			}
			resolved[i] = mv
			return nil
		})
	}
	_ = g.Wait()

	out := make([]models.MoveBasic, 0, len(resolved))
	for _, mv := range resolved {
		if mv != nil {
			out = append(out, *mv)
		}
	}
	if len(out) > maxMoves {
		out = out[:maxMoves]
	}
	return out
}
