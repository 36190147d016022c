package services

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/codyseavey/pokedex/backend/internal/models"
)

// DetailLoader gathers everything the detail view shows for one creature
type DetailLoader struct {
	client     CatalogClient
	evolutions *Evolutions
	moves      *Moves
	logger     *zap.Logger
}

func NewDetailLoader(client CatalogClient, logger *zap.Logger) *DetailLoader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DetailLoader{
		client:     client,
		evolutions: NewEvolutions(client, logger),
		moves:      NewMoves(client, logger),
		logger:     logger,
	}
}

// Record fetches the detail record. Unknown keys yield ErrNotFound.
func (l *DetailLoader) Record(ctx context.Context, key string) (*models.DetailRecord, error) {
	return l.client.GetPokemon(ctx, key)
}

func (l *DetailLoader) Evolution(ctx context.Context, key string) []models.EvoStage {
	return l.evolutions.Load(ctx, key)
}

func (l *DetailLoader) Moves(ctx context.Context, d *models.DetailRecord) []models.MoveBasic {
	return l.moves.Load(ctx, d)
}

// DetailCallbacks receive each part of the detail view as soon as it settles
type DetailCallbacks struct {
	OnRecord    func(*models.DetailRecord, error)
	OnEvolution func([]models.EvoStage)
	OnMoves     func([]models.MoveBasic)
}

// Load runs the evolution lookup and the record fetch side by side. Moves
// are loaded once the record arrives; a failed record means no moves.
// Load returns after every part has been reported.
func (l *DetailLoader) Load(ctx context.Context, key string, cb DetailCallbacks) {
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		stages := l.Evolution(ctx, key)
		if cb.OnEvolution != nil {
			cb.OnEvolution(stages)
		}
	}()

	go func() {
		defer wg.Done()
		rec, err := l.Record(ctx, key)
		if cb.OnRecord != nil {
			cb.OnRecord(rec, err)
		}
		if err != nil {
			l.logger.Debug("detail lookup failed", zap.String("key", key), zap.Error(err))
			return
		}
		mv := l.Moves(ctx, rec)
		if cb.OnMoves != nil {
			cb.OnMoves(mv)
		}
	}()

	wg.Wait()
}
