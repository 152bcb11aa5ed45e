package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mvp-foundry/internal/model"
	"mvp-foundry/internal/store"
)

func newRedisKV(t *testing.T, ttl time.Duration) (*RedisKV, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisKV(client, ttl), srv
}

func TestRedisKV_GetSet(t *testing.T) {
	ctx := context.Background()
	kv, _ := newRedisKV(t, 0)

	_, found, err := kv.Get(ctx, "foundry:history")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kv.Set(ctx, "foundry:history", []byte(`[]`)))
	raw, found, err := kv.Get(ctx, "foundry:history")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[]`, string(raw))
	assert.NoError(t, kv.Ping(ctx))
}

func TestRedisKV_TTL(t *testing.T) {
	ctx := context.Background()
	kv, srv := newRedisKV(t, time.Minute)

	require.NoError(t, kv.Set(ctx, "k", []byte("v")))
	assert.Equal(t, time.Minute, srv.TTL("k"))

	srv.FastForward(2 * time.Minute)
	_, found, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestRedisKV_ServerDown(t *testing.T) {
	kv, srv := newRedisKV(t, 0)
	srv.Close()

	_, _, err := kv.Get(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, kv.Set(context.Background(), "k", []byte("v")))
}

func TestRedisKV_UpdateRetriesOnConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	kv, srv := newRedisKV(t, 0)
	other := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = other.Close() })
	require.NoError(t, kv.Set(ctx, "k", []byte("a")))

	var seen []string
	err := kv.Update(ctx, "k", func(current []byte, found bool) ([]byte, error) {
		require.True(t, found)
		seen = append(seen, string(current))
		if len(seen) == 1 {
			// another instance writes between our read and EXEC
			require.NoError(t, other.Set(ctx, "k", "a+other", 0).Err())
		}
		return append(current, "+mine"...), nil
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "a+other"}, seen)
	got, err := srv.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "a+other+mine", got)
}

func TestRedisKV_UpdateReadFailureWritesNothing(t *testing.T) {
	kv, srv := newRedisKV(t, 0)
	srv.Close()

	called := false
	err := kv.Update(context.Background(), "k", func([]byte, bool) ([]byte, error) {
		called = true
		return []byte("v"), nil
	})
	assert.Error(t, err)
	assert.False(t, called)
}

func TestRedisKV_SharedByTwoStores(t *testing.T) {
	ctx := context.Background()
	kv, srv := newRedisKV(t, 0)
	otherClient := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = otherClient.Close() })

	first := store.NewDocumentStore(kv, 0, "", nil)
	second := store.NewDocumentStore(NewRedisKV(otherClient, 0), 0, "", nil)

	a := first.Create("a", model.DocumentPayload{})
	b := second.Create("b", model.DocumentPayload{})
	require.NoError(t, first.Record(ctx, a))
	require.NoError(t, second.Record(ctx, b))

	history := first.ListHistory(ctx)
	require.Len(t, history, 2)
	assert.Equal(t, b.ID, history[0].ID)
	assert.Equal(t, a.ID, history[1].ID)
}

func TestRedisKV_BacksDocumentStore(t *testing.T) {
	ctx := context.Background()
	kv, srv := newRedisKV(t, 0)
	s := store.NewDocumentStore(kv, 0, "", nil)

	doc := s.Create("dog walking app", model.DocumentPayload{Title: "Walkies"})
	require.NoError(t, s.Record(ctx, doc))

	assert.True(t, srv.Exists("foundry:history"))
	assert.True(t, srv.Exists("foundry:bp:"+doc.ID))

	got, err := s.Get(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc, got)

	require.NoError(t, srv.Set("foundry:history", "garbage"))
	assert.Empty(t, s.ListHistory(ctx))
}
