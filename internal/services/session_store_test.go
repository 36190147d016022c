package services

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/codyseavey/pokedex/backend/internal/metrics"
)

func newTestStore(client *fakeClient, capacity int) *SessionStore {
	b := NewBrowser(client, BrowserOptions{PageSize: 20, FanOut: 4})
	return NewSessionStore(b, NewDetailLoader(client, nil), capacity, 0, nil)
}

func TestSessionStore_CreateGetDelete(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	st := newTestStore(catalogClient(25), 10)

	s, snap, err := st.Create()
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.Len(t, snap.Page.Items, 20)
	assert.Equal(t, 1, st.Len())

	got, err := st.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)
	s.WaitIdle()

	assert.True(t, st.Delete(s.ID))
	assert.Error(t, s.ctx.Err(), "deleting a session cancels its context")
	assert.False(t, st.Delete(s.ID))

	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, st.Len())
}

func TestSessionStore_GetUnknown(t *testing.T) {
	st := newTestStore(newFakeClient(), 10)

	_, err := st.Get("does-not-exist")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionStore_EvictsOldestOverCapacity(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	st := newTestStore(catalogClient(5), 2)

	first, _, err := st.Create()
	require.NoError(t, err)
	second, _, err := st.Create()
	require.NoError(t, err)

	// Touch the first so the second becomes the oldest
	_, err = st.Get(first.ID)
	require.NoError(t, err)

	third, _, err := st.Create()
	require.NoError(t, err)

	for _, s := range []*ViewSession{first, second, third} {
		s.WaitIdle()
	}

	assert.Equal(t, 2, st.Len())
	assert.Error(t, second.ctx.Err())
	_, err = st.Get(second.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, first.ctx.Err())
	assert.NoError(t, third.ctx.Err())

	st.Delete(first.ID)
	st.Delete(third.ID)
}

func TestSessionStore_SessionsAreIndependent(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	client := catalogClient(25)
	st := newTestStore(client, 10)

	a, _, err := st.Create()
	require.NoError(t, err)
	b, _, err := st.Create()
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)

	snap, err := a.Search("mon-2")
	require.NoError(t, err)
	assert.Equal(t, "mon-2", snap.Filter.Query)
	assert.Empty(t, b.Snapshot().Filter.Query)

	a.WaitIdle()
	b.WaitIdle()
	st.Delete(a.ID)
	st.Delete(b.ID)
}

func TestSessionStore_GetDropsClosedSession(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	st := newTestStore(catalogClient(5), 10)
	before := testutil.ToFloat64(metrics.ActiveSessions)

	s, _, err := st.Create()
	require.NoError(t, err)
	s.WaitIdle()
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.ActiveSessions))

	s.Close()
	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, st.Len())
	assert.Equal(t, before, testutil.ToFloat64(metrics.ActiveSessions))
}

func TestSessionStore_ReinsertedSessionIsNotResurrected(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	st := newTestStore(catalogClient(5), 10)
	before := testutil.ToFloat64(metrics.ActiveSessions)

	s, _, err := st.Create()
	require.NoError(t, err)
	s.WaitIdle()

	// A Get racing a Delete can put the evicted session back
	require.True(t, st.Delete(s.ID))
	st.sessions.Add(s.ID, s)

	_, err = st.Get(s.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, st.Len())
	assert.Equal(t, before, testutil.ToFloat64(metrics.ActiveSessions), "gauge is decremented once")
}
