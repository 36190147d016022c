package services

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
	"github.com/codyseavey/pokedex/backend/internal/models"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps view sessions in memory, bounded in count and idle time.
// Evicting a session cancels whatever it still has in flight.
type SessionStore struct {
	sessions *expirable.LRU[string, *ViewSession]
	browser  *Browser
	details  *DetailLoader
	logger   *zap.Logger
}

// NewSessionStore creates a store holding at most maxSessions sessions. A
// ttl <= 0 disables idle expiry.
func NewSessionStore(browser *Browser, details *DetailLoader, maxSessions int, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	onEvict := func(id string, s *ViewSession) {
		s.Close()
		if s.stored.CompareAndSwap(true, false) {
			metrics.ActiveSessions.Dec()
		}
		logger.Debug("session evicted", zap.String("session", id))
	}
	return &SessionStore{
		sessions: expirable.NewLRU[string, *ViewSession](maxSessions, onEvict, ttl),
		browser:  browser,
		details:  details,
		logger:   logger,
	}
}

// Create registers a new session and loads its first page
func (st *SessionStore) Create() (*ViewSession, models.Snapshot, error) {
	s := NewViewSession(uuid.NewString(), st.browser, st.details, st.logger)
	s.stored.Store(true)
	metrics.ActiveSessions.Inc()
	st.sessions.Add(s.ID, s)

	snap, err := s.Reload()
	return s, snap, err
}

// Get returns the session and refreshes its idle timer. A closed session is
// dropped and reported as not found.
func (st *SessionStore) Get(id string) (*ViewSession, error) {
	s, ok := st.sessions.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.Closed() {
		st.sessions.Remove(id)
		return nil, ErrSessionNotFound
	}
	st.sessions.Add(id, s)
	// an eviction between Get and Add would otherwise put it back
	if s.Closed() {
		st.sessions.Remove(id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session
func (st *SessionStore) Delete(id string) bool {
	return st.sessions.Remove(id)
}

func (st *SessionStore) Len() int {
	return st.sessions.Len()
}
