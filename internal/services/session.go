package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/models"
)

// ErrSuperseded is returned when a newer trigger replaced the one in flight.
// The snapshot returned alongside it reflects the newer state.
var ErrSuperseded = errors.New("superseded by a newer request")

// ViewSession owns the filter state and the derived page of one viewer, plus
// its detail view. Every trigger bumps a token and cancels the work of the
// previous one; results are only committed while their token is current.
type ViewSession struct {
	ID string

	browser *Browser
	details *DetailLoader
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc

	// set while a SessionStore counts the session as active
	stored atomic.Bool

	mu      sync.Mutex
	version uint64
	filter  models.FilterState
	page    models.PageState

	pageToken  uint64
	pageCancel context.CancelFunc

	detail       models.DetailView
	detailToken  uint64
	detailCancel context.CancelFunc

	background sync.WaitGroup
}

func NewViewSession(id string, browser *Browser, details *DetailLoader, logger *zap.Logger) *ViewSession {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ViewSession{
		ID:      id,
		browser: browser,
		details: details,
		logger:  logger.With(zap.String("session", id)),
		ctx:     ctx,
		cancel:  cancel,
		filter:  models.FilterState{Page: 1},
		page:    emptyPage(),
		detail:  closedDetail(),
	}
}

// Snapshot returns a copy of the current state
func (s *ViewSession) Snapshot() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *ViewSession) snapshotLocked() models.Snapshot {
	page := s.page
	page.Items = slices.Clone(s.page.Items)
	detail := s.detail
	detail.Evolution = slices.Clone(s.detail.Evolution)
	detail.Moves = slices.Clone(s.detail.Moves)

	return models.Snapshot{
		Version:    s.version,
		Mode:       models.ModeOf(s.filter),
		Filter:     s.filter,
		Page:       page,
		TotalPages: s.page.TotalPages(s.browser.PageSize()),
		Detail:     detail,
	}
}

// Reload rebuilds the current page without changing the filter state
func (s *ViewSession) Reload() (models.Snapshot, error) {
	return s.apply(func(*models.FilterState) {})
}

// Search replaces the query and returns to the first page
func (s *ViewSession) Search(q string) (models.Snapshot, error) {
	return s.apply(func(f *models.FilterState) {
		f.Query = q
		f.Page = 1
	})
}

// ToggleType selects t, or clears the type filter if t is already selected
func (s *ViewSession) ToggleType(t string) (models.Snapshot, error) {
	t = strings.ToLower(strings.TrimSpace(t))
	return s.apply(func(f *models.FilterState) {
		if f.SelectedType == t {
			f.SelectedType = ""
		} else {
			f.SelectedType = t
		}
		f.Page = 1
	})
}

// ToggleGeneration selects gen, or clears the generation filter if gen is
// already selected
func (s *ViewSession) ToggleGeneration(gen int) (models.Snapshot, error) {
	return s.apply(func(f *models.FilterState) {
		if f.SelectedGen == gen {
			f.SelectedGen = 0
		} else {
			f.SelectedGen = gen
		}
		f.Page = 1
	})
}

// ToggleRarity selects r, or clears the rarity filter if r is already selected
func (s *ViewSession) ToggleRarity(r models.Rarity) (models.Snapshot, error) {
	return s.apply(func(f *models.FilterState) {
		if f.SelectedRarity == r {
			f.SelectedRarity = ""
		} else {
			f.SelectedRarity = r
		}
		f.Page = 1
	})
}

// ClearFilters drops the type, generation and rarity filters. The query is kept.
func (s *ViewSession) ClearFilters() (models.Snapshot, error) {
	return s.apply(func(f *models.FilterState) {
		f.SelectedType = ""
		f.SelectedGen = 0
		f.SelectedRarity = ""
		f.Page = 1
	})
}

// Go moves to page p. Pages outside [1, TotalPages] leave the state untouched.
func (s *ViewSession) Go(p int) (models.Snapshot, error) {
	s.mu.Lock()
	if p < 1 || p > s.page.TotalPages(s.browser.PageSize()) {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	s.filter.Page = p
	f := s.filter
	token, ctx := s.beginPageLocked()
	s.mu.Unlock()

	return s.runPage(ctx, token, f)
}

func (s *ViewSession) apply(mutate func(*models.FilterState)) (models.Snapshot, error) {
	s.mu.Lock()
	next := s.filter
	mutate(&next)
	s.filter = next
	token, ctx := s.beginPageLocked()
	s.mu.Unlock()

	return s.runPage(ctx, token, next)
}

func (s *ViewSession) beginPageLocked() (uint64, context.Context) {
	if s.pageCancel != nil {
		s.pageCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.pageToken++
	s.pageCancel = cancel
	s.page.Loading = true
	s.version++
	return s.pageToken, ctx
}

// runPage builds the basic page, commits it if still current and hands the
// visible cards to background enrichment. A failed load commits the empty page.
func (s *ViewSession) runPage(ctx context.Context, token uint64, f models.FilterState) (models.Snapshot, error) {
	page, err := s.browser.LoadPage(ctx, f)

	s.mu.Lock()
	defer s.mu.Unlock()

	if token != s.pageToken {
		metrics.SupersededTotal.WithLabelValues("page").Inc()
		return s.snapshotLocked(), ErrSuperseded
	}

	if err != nil {
		page = emptyPage()
	}
	page.Loading = false
	s.page = page
	s.version++

	if len(page.Items) > 0 {
		items := slices.Clone(page.Items)
		s.background.Add(1)
		go s.enrich(ctx, token, items)
	}
	return s.snapshotLocked(), nil
}

func (s *ViewSession) enrich(ctx context.Context, token uint64, items []models.CardItem) {
	defer s.background.Done()

	enriched := s.browser.Enrich(ctx, items)

	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.pageToken || ctx.Err() != nil {
		metrics.SupersededTotal.WithLabelValues("enrichment").Inc()
		return
	}
	s.page.Items = enriched
	s.version++
}

func closedDetail() models.DetailView {
	return models.DetailView{Evolution: []models.EvoStage{}, Moves: []models.MoveBasic{}}
}

// OpenDetail replaces the detail view with the creature identified by name.
// The record, evolution line and moves are committed as each settles.
func (s *ViewSession) OpenDetail(name string) (models.Snapshot, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	s.mu.Lock()
	if s.detailCancel != nil {
		s.detailCancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.detailToken++
	token := s.detailToken
	s.detailCancel = cancel
	s.detail = closedDetail()
	s.detail.Open = true
	s.detail.Loading = true
	s.detail.Name = name
	s.version++
	s.mu.Unlock()

	s.details.Load(ctx, name, DetailCallbacks{
		OnRecord: func(rec *models.DetailRecord, err error) {
			s.commitDetail(token, func(d *models.DetailView) {
				if err != nil {
					d.Error = detailError(err)
					return
				}
				d.Record = rec
			})
		},
		OnEvolution: func(stages []models.EvoStage) {
			s.commitDetail(token, func(d *models.DetailView) { d.Evolution = stages })
		},
		OnMoves: func(mv []models.MoveBasic) {
			s.commitDetail(token, func(d *models.DetailView) { d.Moves = mv })
		},
	})

	if !s.commitDetail(token, func(d *models.DetailView) { d.Loading = false }) {
		return s.Snapshot(), ErrSuperseded
	}
	return s.Snapshot(), nil
}

// commitDetail applies fn if token still names the open detail view
func (s *ViewSession) commitDetail(token uint64, fn func(*models.DetailView)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.detailToken || !s.detail.Open {
		metrics.SupersededTotal.WithLabelValues("detail").Inc()
		return false
	}
	fn(&s.detail)
	s.version++
	return true
}

// CloseDetail clears the detail view; anything still in flight for it is
// cancelled and its late results are ignored.
func (s *ViewSession) CloseDetail() models.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.detailCancel != nil {
		s.detailCancel()
		s.detailCancel = nil
	}
	s.detailToken++
	s.detail = closedDetail()
	s.version++
	return s.snapshotLocked()
}

func detailError(err error) string {
	if errors.Is(err, ErrNotFound) {
		return "not found"
	}
	return "failed to load"
}

// Close cancels all in-flight work of the session
func (s *ViewSession) Close() {
	s.cancel()
}

// Closed reports whether Close has been called
func (s *ViewSession) Closed() bool {
	return s.ctx.Err() != nil
}

// WaitIdle blocks until background enrichment has finished
func (s *ViewSession) WaitIdle() {
	s.background.Wait()
}
