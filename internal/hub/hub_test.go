package hub

import (
	"context"
	"testing"
	"time"

	"github.com/DoyleJ11/bgg-shelf-mapper/internal/devapi"
	"github.com/DoyleJ11/bgg-shelf-mapper/internal/session"
	"github.com/DoyleJ11/bgg-shelf-mapper/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storeAPI serves session calls straight from a devapi store.
type storeAPI struct{ store *devapi.Store }

func (a storeAPI) ListFixtures(context.Context) ([]types.Fixture, error) {
	return a.store.Fixtures(), nil
}

func (a storeAPI) GetFixtureGrid(_ context.Context, id int) (*types.FixtureGrid, error) {
	return a.store.Grid(id)
}

func (a storeAPI) ListGames(_ context.Context, q string) ([]types.GameWithPlacement, error) {
	return a.store.Games(q), nil
}

func (a storeAPI) UpsertPlacement(_ context.Context, p types.PlacementUpsert) error {
	_, err := a.store.Place(p)
	return err
}

func (a storeAPI) ClearPlacement(_ context.Context, id int, slot string) error {
	_, err := a.store.Clear(id, slot)
	return err
}

func newTestHub(t *testing.T, size int) *Hub {
	t.Helper()
	store := devapi.NewStore()
	require.NoError(t, devapi.Seed(store))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	h, err := NewHub(ctx, storeAPI{store}, size, nil)
	require.NoError(t, err)
	return h
}

func closed(s *session.Session) bool {
	select {
	case <-s.Done():
		return true
	default:
		return false
	}
}

func TestHub_Create_Get_SamePointer(t *testing.T) {
	h := newTestHub(t, 4)
	ctx := context.Background()

	s1, err := h.Create(ctx)
	require.NoError(t, err)
	require.NotNil(t, s1)
	assert.NotEmpty(t, s1.ID())

	s2, err := h.Get(ctx, s1.ID())
	require.NoError(t, err)
	assert.Same(t, s1, s2)

	missing, err := h.Get(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHub_EvictsLeastRecentlyUsed(t *testing.T) {
	h := newTestHub(t, 2)
	ctx := context.Background()

	a, _ := h.Create(ctx)
	b, _ := h.Create(ctx)
	_, _ = h.Get(ctx, a.ID()) // a is now the most recent
	c, _ := h.Create(ctx)

	got, _ := h.Get(ctx, b.ID())
	assert.Nil(t, got)
	assert.Eventually(t, func() bool { return closed(b) }, time.Second, 5*time.Millisecond)
	assert.False(t, closed(a))
	assert.False(t, closed(c))
}

func TestHub_LastSocketLeavingRemovesSession(t *testing.T) {
	h := newTestHub(t, 4)
	ctx := context.Background()

	s, err := h.Create(ctx)
	require.NoError(t, err)

	out := make(chan session.Snapshot, 16)
	s.Inbox() <- session.Join{ClientID: "c1", Outbox: out}
	s.Inbox() <- session.Leave{ClientID: "c1"}

	require.Eventually(t, func() bool {
		got, _ := h.Get(ctx, s.ID())
		return got == nil && closed(s)
	}, time.Second, 5*time.Millisecond)
}

func TestHub_ShutdownClosesSessions(t *testing.T) {
	h := newTestHub(t, 4)
	ctx := context.Background()

	s, err := h.Create(ctx)
	require.NoError(t, err)

	h.Inbox() <- ShutdownHub{}

	require.Eventually(t, func() bool { return closed(s) }, time.Second, 5*time.Millisecond)
	_, err = h.Get(ctx, s.ID())
	assert.ErrorIs(t, err, context.Canceled)
}
