package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"ListenTogether/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// staticProvider 返回固定后端或错误
type staticProvider struct {
	backend Backend
	err     error
	calls   int
}

func (p *staticProvider) Durable() (Backend, error) {
	p.calls++
	return p.backend, p.err
}

func newTestStore(available *bool) (*SessionStore, *FallbackStore, *fakeRedis, *staticProvider) {
	fallback := NewFallbackStore()
	fake := newFakeRedis()
	provider := &staticProvider{backend: NewRedisBackend(fake, "test:", time.Hour)}
	store := NewSessionStore(fallback,
		WithDurable(provider),
		WithAvailability(func() bool { return *available }))
	return store, fallback, fake, provider
}

func TestSessionStore_SelectsBackendPerCall(t *testing.T) {
	available := false
	store, fallback, fake, _ := newTestStore(&available)
	ctx := context.Background()

	store.Set(ctx, "MEMORY", sampleSession("MEMORY", 1))
	assert.Equal(t, 1, fallback.Len())
	assert.Empty(t, fake.data)
	assert.Equal(t, backendMemory, store.BackendName())

	available = true
	store.Set(ctx, "DURABL", sampleSession("DURABL", 1))
	assert.Contains(t, fake.data, "test:DURABL")
	assert.Equal(t, 1, fallback.Len())
	assert.Equal(t, backendRedis, store.BackendName())

	// 两个后端互不可见
	assert.Nil(t, store.Get(ctx, "MEMORY"))
	assert.NotNil(t, store.Get(ctx, "DURABL"))

	available = false
	assert.NotNil(t, store.Get(ctx, "MEMORY"))
	assert.Nil(t, store.Get(ctx, "DURABL"))
}

func TestSessionStore_WithoutDurableUsesFallback(t *testing.T) {
	fallback := NewFallbackStore()
	store := NewSessionStore(fallback, WithAvailability(func() bool { return true }))

	store.Set(context.Background(), "A", sampleSession("A", 1))
	assert.Equal(t, 1, fallback.Len())
}

func TestSessionStore_AbsorbsDurableFailures(t *testing.T) {
	available := true
	store, _, fake, _ := newTestStore(&available)
	ctx := context.Background()

	store.Set(ctx, "AB12CD", sampleSession("AB12CD", 1))
	require.NotNil(t, store.Get(ctx, "AB12CD"))

	fake.err = errors.New("i/o timeout")

	assert.Nil(t, store.Get(ctx, "AB12CD"))
	assert.NotPanics(t, func() { store.Set(ctx, "AB12CD", sampleSession("AB12CD", 2)) })
	assert.False(t, store.Delete(ctx, "AB12CD"))
	assert.Empty(t, store.ListAll(ctx))
	assert.Zero(t, store.Cleanup(ctx))

	// 故障期间的写入被丢弃
	fake.err = nil
	got := store.Get(ctx, "AB12CD")
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.UpdatedAt)
}

func TestSessionStore_ProviderErrorIsAbsent(t *testing.T) {
	available := true
	store, fallback, _, provider := newTestStore(&available)
	provider.err = errors.New("bad credentials")
	provider.backend = nil
	ctx := context.Background()

	store.Set(ctx, "A", sampleSession("A", 1))
	assert.Nil(t, store.Get(ctx, "A"))
	assert.False(t, store.Delete(ctx, "A"))
	assert.Equal(t, []*model.Session{}, store.ListAll(ctx))
	// 凭据存在时不会偷偷写入内存回退
	assert.Zero(t, fallback.Len())
}

func TestSessionStore_CleanupOnlyEvictsFallback(t *testing.T) {
	base := time.Now()
	now := base
	fallback := NewFallbackStore(WithClock(func() time.Time { return now }))
	available := false
	fake := newFakeRedis()
	store := NewSessionStore(fallback,
		WithDurable(&staticProvider{backend: NewRedisBackend(fake, "test:", time.Hour)}),
		WithAvailability(func() bool { return available }))
	ctx := context.Background()

	store.Set(ctx, "A", sampleSession("A", base.UnixMilli()))
	now = base.Add(2*time.Hour + time.Second)
	assert.Equal(t, 1, store.Cleanup(ctx))
	assert.Nil(t, store.Get(ctx, "A"))

	available = true
	store.Set(ctx, "B", sampleSession("B", base.UnixMilli()))
	assert.Zero(t, store.Cleanup(ctx))
	assert.NotNil(t, store.Get(ctx, "B"))
}

func TestSessionStore_ListAllNeverNil(t *testing.T) {
	store := NewSessionStore(NewFallbackStore(), WithAvailability(func() bool { return false }))
	sessions := store.ListAll(context.Background())
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
}
