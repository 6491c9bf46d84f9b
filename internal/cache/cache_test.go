package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/iwvelando/mortgage-calculator/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryGetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, ok, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, m.Set(ctx, "k", "v", 0))
	val, ok, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", val)

	require.NoError(t, m.Delete(ctx, "k"))
	_, ok, _ = m.Get(ctx, "k")
	assert.False(t, ok)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "rates", "x", time.Minute))
	require.NoError(t, m.Set(ctx, "forever", "y", 0))

	now = now.Add(59 * time.Second)
	_, ok, _ := m.Get(ctx, "rates")
	assert.True(t, ok, "entry should survive until its ttl")

	now = now.Add(time.Second)
	_, ok, _ = m.Get(ctx, "rates")
	assert.False(t, ok, "entry should expire at its ttl")
	assert.Equal(t, 1, m.Len(), "expired entry should be evicted on read")

	now = now.Add(24 * time.Hour)
	_, ok, _ = m.Get(ctx, "forever")
	assert.True(t, ok, "zero ttl should never expire")
}

func TestMemorySweepsExpiredEntriesOnSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	for i := 0; i < 1000; i++ {
		require.NoError(t, m.Set(ctx, fmt.Sprintf("chat:session:%d", i), "[]", time.Hour))
	}
	require.NoError(t, m.Set(ctx, "forever", "y", 0))
	assert.Equal(t, 1001, m.Len())

	now = now.Add(30 * time.Second)
	require.NoError(t, m.Set(ctx, "early", "z", time.Hour))
	assert.Equal(t, 1002, m.Len(), "no sweep before the interval elapses")

	now = now.Add(48 * time.Hour)
	require.NoError(t, m.Set(ctx, "fresh", "w", time.Hour))
	assert.Equal(t, 2, m.Len(), "only the unexpired entries should remain")

	_, ok, _ := m.Get(ctx, "forever")
	assert.True(t, ok)
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	type payload struct {
		Code string  `json:"code"`
		Mid  float64 `json:"mid"`
	}

	var got payload
	ok, err := GetJSON(ctx, m, "p", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, SetJSON(ctx, m, "p", payload{Code: "EUR", Mid: 4.32}, time.Minute))
	ok, err = GetJSON(ctx, m, "p", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, payload{Code: "EUR", Mid: 4.32}, got)

	require.NoError(t, m.Set(ctx, "bad", "{", 0))
	_, err = GetJSON(ctx, m, "bad", &got)
	assert.Error(t, err)
}

func TestNewSelectsBackend(t *testing.T) {
	ctx := context.Background()

	c := New(ctx, config.CacheConfig{}, nil)
	_, isMemory := c.(*Memory)
	assert.True(t, isMemory, "empty address should select the memory cache")

	// Nothing listens on port 1; the ping fails and New falls back.
	c = New(ctx, config.CacheConfig{RedisAddress: "127.0.0.1:1"}, nil)
	_, isMemory = c.(*Memory)
	assert.True(t, isMemory, "unreachable redis should fall back to memory")
}

func TestRedisKeyPrefix(t *testing.T) {
	r := NewRedis(config.CacheConfig{RedisAddress: "127.0.0.1:1", KeyPrefix: "mortgage:"})
	defer r.Close()
	assert.Equal(t, "mortgage:rates:exchange", r.key("rates:exchange"))
}
