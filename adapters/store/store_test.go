package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/walletlink/core"
	"github.com/layer-3/walletlink/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runStoreContract(t *testing.T, s ports.Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "session")
	assert.ErrorIs(t, err, core.ErrNotFound)

	require.NoError(t, s.Set(ctx, "session", "first", time.Hour))
	require.NoError(t, s.Set(ctx, "session", "second", time.Hour))

	value, err := s.Get(ctx, "session")
	require.NoError(t, err)
	assert.Equal(t, "second", value)

	require.NoError(t, s.Delete(ctx, "session"))
	require.NoError(t, s.Delete(ctx, "session"), "deleting an absent key is a no-op")

	_, err = s.Get(ctx, "session")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestMemoryStore(t *testing.T) {
	runStoreContract(t, NewMemoryStore())
}

func TestMemoryStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s := NewMemoryStore()
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", "v", time.Minute))
	_, err := s.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrNotFound)
	assert.Equal(t, 0, s.Len())
}

func TestFileStore(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	runStoreContract(t, s)
}

func TestFileStoreSurvivesNewInstance(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := NewFileStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "walletlink:session", "payload", 0))

	second, err := NewFileStore(dir)
	require.NoError(t, err)
	value, err := second.Get(ctx, "walletlink:session")
	require.NoError(t, err)
	assert.Equal(t, "payload", value)
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	s.now = func() time.Time { return now }

	require.NoError(t, s.Set(ctx, "k", "v", time.Second))
	now = now.Add(2 * time.Second)

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func newMiniredisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client), mr
}

func TestRedisStore(t *testing.T) {
	s, _ := newMiniredisStore(t)
	runStoreContract(t, s)
}

func TestRedisStoreUsesPrefixAndTTL(t *testing.T) {
	ctx := context.Background()
	s, mr := newMiniredisStore(t)

	require.NoError(t, s.Set(ctx, "session", "v", time.Minute))
	assert.True(t, mr.Exists(DefaultRedisPrefix+"session"))
	assert.Equal(t, time.Minute, mr.TTL(DefaultRedisPrefix+"session"))

	mr.FastForward(time.Minute)
	_, err := s.Get(ctx, "session")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestRedisStoreReportsConnectionErrors(t *testing.T) {
	s, mr := newMiniredisStore(t)
	mr.Close()

	_, err := s.Get(context.Background(), "session")
	assert.ErrorIs(t, err, core.ErrStoreOperation)
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := DialRedis(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	_, err = DialRedis(context.Background(), "not a url")
	assert.Error(t, err)
}
