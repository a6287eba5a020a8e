package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() (*Manager, *memStore, *fakeClock) {
	store := newMemStore()
	clock := &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	return NewManager(store, nil, WithManagerClock(clock.Now)), store, clock
}

func TestManager_Create(t *testing.T) {
	m, store, _ := newTestManager()
	ctx := context.Background()

	session, err := m.Create(ctx, CreateRequest{HostID: "h1", HostName: "Alex", Avatar: "a.png"})
	require.NoError(t, err)
	assert.Len(t, session.ID, CodeLength)
	assert.Equal(t, "h1", session.HostID)
	assert.Nil(t, session.CurrentTrack)
	assert.False(t, session.IsPlaying)
	require.Len(t, session.Participants, 1)
	assert.True(t, session.Participants[0].IsHost)
	assert.Equal(t, "h1", session.Participants[0].ID)
	assert.Equal(t, session.CreatedAt, session.UpdatedAt)

	assert.NotNil(t, store.Get(ctx, session.ID))
}

func TestManager_CreateDefaults(t *testing.T) {
	m, _, _ := newTestManager()

	session, err := m.Create(context.Background(), CreateRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, session.HostID)
	assert.Equal(t, defaultHostName, session.HostName)
	assert.Equal(t, session.HostID, session.Participants[0].ID)
}

func TestManager_CreateSkipsTakenCodes(t *testing.T) {
	store := newMemStore()
	store.put(newHostSession("222222", "other", 1))
	calls := 0
	codes := &CodeGenerator{intn: func(int) int {
		calls++
		// 前 6 次调用生成 222222，之后生成 333333
		if calls <= CodeLength {
			return 0
		}
		return 1
	}}
	m := NewManager(store, codes)

	session, err := m.Create(context.Background(), CreateRequest{HostID: "h1"})
	require.NoError(t, err)
	assert.Equal(t, "333333", session.ID)
}

func TestManager_Join(t *testing.T) {
	m, store, _ := newTestManager()
	ctx := context.Background()
	created, err := m.Create(ctx, CreateRequest{HostID: "h1", HostName: "Host"})
	require.NoError(t, err)

	session, p, err := m.Join(ctx, created.ID, JoinRequest{UserID: "u1", Name: "Sam"})
	require.NoError(t, err)
	assert.False(t, p.IsHost)
	require.Len(t, session.Participants, 2)
	assert.Equal(t, "h1", session.Participants[0].ID)
	assert.Equal(t, "u1", session.Participants[1].ID)
	assert.Greater(t, session.UpdatedAt, created.UpdatedAt)

	_, _, err = m.Join(ctx, created.ID, JoinRequest{UserID: "u2", Name: "Kim"})
	require.NoError(t, err)

	t.Run("rejoin is idempotent", func(t *testing.T) {
		sets := store.sets
		session, p, err := m.Join(ctx, created.ID, JoinRequest{UserID: "u1", Name: "renamed"})
		require.NoError(t, err)
		assert.Equal(t, "Sam", p.Name)
		assert.Len(t, session.Participants, 3)
		assert.Equal(t, sets, store.sets)
	})

	t.Run("host cannot be duplicated", func(t *testing.T) {
		session, p, err := m.Join(ctx, created.ID, JoinRequest{UserID: "h1"})
		require.NoError(t, err)
		assert.True(t, p.IsHost)
		hosts := 0
		for _, participant := range session.Participants {
			if participant.IsHost {
				hosts++
			}
		}
		assert.Equal(t, 1, hosts)
	})

	t.Run("anonymous listener gets an id", func(t *testing.T) {
		_, p, err := m.Join(ctx, created.ID, JoinRequest{})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, defaultListenerName, p.Name)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, _, err := m.Join(ctx, "NOPE99", JoinRequest{UserID: "u3"})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestManager_Leave(t *testing.T) {
	m, store, _ := newTestManager()
	ctx := context.Background()
	created, err := m.Create(ctx, CreateRequest{HostID: "h1"})
	require.NoError(t, err)
	_, _, err = m.Join(ctx, created.ID, JoinRequest{UserID: "u1"})
	require.NoError(t, err)
	_, _, err = m.Join(ctx, created.ID, JoinRequest{UserID: "u2"})
	require.NoError(t, err)

	ended, err := m.Leave(ctx, created.ID, "u1")
	require.NoError(t, err)
	assert.False(t, ended)
	session := store.Get(ctx, created.ID)
	require.Len(t, session.Participants, 2)
	assert.Equal(t, "h1", session.Participants[0].ID)
	assert.Equal(t, "u2", session.Participants[1].ID)

	ended, err = m.Leave(ctx, created.ID, "stranger")
	require.NoError(t, err)
	assert.False(t, ended)

	ended, err = m.Leave(ctx, created.ID, "h1")
	require.NoError(t, err)
	assert.True(t, ended)
	assert.Nil(t, store.Get(ctx, created.ID))

	_, err = m.Leave(ctx, created.ID, "u2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManager_End(t *testing.T) {
	m, store, _ := newTestManager()
	ctx := context.Background()
	created, err := m.Create(ctx, CreateRequest{HostID: "h1"})
	require.NoError(t, err)

	assert.ErrorIs(t, m.End(ctx, created.ID, "u1"), ErrForbidden)
	assert.NotNil(t, store.Get(ctx, created.ID))

	require.NoError(t, m.End(ctx, created.ID, "h1"))
	assert.Nil(t, store.Get(ctx, created.ID))

	assert.ErrorIs(t, m.End(ctx, created.ID, "h1"), ErrNotFound)
	assert.ErrorIs(t, m.End(ctx, "", "h1"), ErrBadRequest)
}

func TestManager_List(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := m.Create(ctx, CreateRequest{})
		require.NoError(t, err)
	}
	assert.Len(t, m.List(ctx), 3)
}
