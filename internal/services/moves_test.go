package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codyseavey/pokedex/backend/internal/models"
)

func moveRefs(n int) []models.NamedResource {
	refs := make([]models.NamedResource, n)
	for i := range refs {
		refs[i] = models.NamedResource{
			Name: fmt.Sprintf("move-%d", i+1),
			URL:  fmt.Sprintf("https://pokeapi.co/api/v2/move/%d/", i+1),
		}
	}
	return refs
}

func withMoves(client *fakeClient, refs []models.NamedResource) {
	for i, r := range refs {
		client.moves[r.URL] = &models.MoveBasic{ID: i + 1, Name: r.Name, Power: intPtr(40), Type: "normal"}
	}
}

func TestSelectMoves(t *testing.T) {
	assert.Empty(t, SelectMoves(nil))
	assert.Len(t, SelectMoves(moveRefs(3)), 3)

	picked := SelectMoves(moveRefs(80))
	if assert.Len(t, picked, maxMoves) {
		assert.Equal(t, "move-1", picked[0].Name)
		assert.Equal(t, "move-6", picked[5].Name)
	}
}

func TestMoves_LoadNoRefsMakesNoRequests(t *testing.T) {
	client := newFakeClient()
	m := NewMoves(client, nil)

	got := m.Load(context.Background(), &models.DetailRecord{Name: "ditto"})
	assert.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, m.Load(context.Background(), nil))
	assert.Zero(t, client.callCount("move"))
}

func TestMoves_LoadCapsAtSix(t *testing.T) {
	refs := moveRefs(10)
	client := newFakeClient()
	withMoves(client, refs)

	got := NewMoves(client, nil).Load(context.Background(), &models.DetailRecord{Moves: refs})

	assert.Len(t, got, maxMoves)
	assert.Equal(t, maxMoves, client.callCount("move"))
	for i, mv := range got {
		assert.Equal(t, fmt.Sprintf("move-%d", i+1), mv.Name)
	}
}

func TestMoves_LoadDropsFailures(t *testing.T) {
	refs := moveRefs(3)
	client := newFakeClient()
	withMoves(client, refs)
	delete(client.moves, refs[1].URL)

	got := NewMoves(client, nil).Load(context.Background(), &models.DetailRecord{Moves: refs})

	if assert.Len(t, got, 2) {
		assert.Equal(t, "move-1", got[0].Name)
		assert.Equal(t, "move-3", got[1].Name)
	}
}

func TestMoves_LoadFallsBackToName(t *testing.T) {
	client := newFakeClient()
	client.moves["tackle"] = &models.MoveBasic{ID: 33, Name: "tackle"}

	got := NewMoves(client, nil).Load(context.Background(), &models.DetailRecord{
		Moves: []models.NamedResource{{Name: "tackle"}},
	})

	if assert.Len(t, got, 1) {
		assert.Equal(t, 33, got[0].ID)
	}
}
