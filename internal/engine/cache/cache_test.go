package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-rating-engine/internal/common/config"
	"review-rating-engine/internal/common/database"
	"review-rating-engine/internal/common/logger"
)

func TestKey_Deterministic(t *testing.T) {
	params := map[string]interface{}{
		"model":       "mistral-small-latest",
		"temperature": 0.3,
		"max_tokens":  1000,
	}

	first := Key("analyze this review", params)
	second := Key("analyze this review", params)

	assert.Equal(t, first, second)
}

func TestKey_SensitiveToPromptAndParams(t *testing.T) {
	base := map[string]interface{}{"model": "mistral-small-latest", "temperature": 0.3}

	tests := []struct {
		name   string
		prompt string
		params map[string]interface{}
	}{
		{
			name:   "different prompt",
			prompt: "analyze this other review",
			params: base,
		},
		{
			name:   "different temperature",
			prompt: "analyze this review",
			params: map[string]interface{}{"model": "mistral-small-latest", "temperature": 0.7},
		},
		{
			name:   "different model",
			prompt: "analyze this review",
			params: map[string]interface{}{"model": "mistral-large-latest", "temperature": 0.3},
		},
	}

	reference := Key("analyze this review", base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotEqual(t, reference, Key(tt.prompt, tt.params))
		})
	}
}

func TestMemoryStore_GetPut(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	store.Put(ctx, "k1", "v1", time.Hour)
	value, ok := store.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "v1", value)
}

func TestMemoryStore_TTLExpiry(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	store.Put(ctx, "k1", "v1", time.Hour)

	current = current.Add(30 * time.Minute)
	_, ok := store.Get(ctx, "k1")
	assert.True(t, ok)

	current = current.Add(31 * time.Minute)
	_, ok = store.Get(ctx, "k1")
	assert.False(t, ok, "entry must be absent after ttl elapses")
}

func TestMemoryStore_PruneKeepsHalf(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	current := time.Now()
	store.now = func() time.Time { return current }

	for i := 0; i < 101; i++ {
		store.Put(ctx, fmt.Sprintf("k%d", i), "v", time.Hour)
		current = current.Add(time.Millisecond)
	}

	stats := store.Stats()
	assert.LessOrEqual(t, stats.Entries, 50)
	assert.Greater(t, stats.Evictions, int64(0))

	// Newest entries survive the prune.
	_, ok := store.Get(ctx, "k100")
	assert.True(t, ok)
	_, ok = store.Get(ctx, "k0")
	assert.False(t, ok)
}

func TestMemoryStore_Stats(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	store.Put(ctx, "k1", "v1", time.Hour)
	store.Get(ctx, "k1")
	store.Get(ctx, "absent")

	stats := store.Stats()
	assert.Equal(t, 1, stats.Entries)
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
}

func setupRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client, err := database.NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, logger.NewTestLogger(t)), mr
}

func TestRedisStore_GetPut(t *testing.T) {
	store, _ := setupRedisStore(t)
	ctx := context.Background()

	_, ok := store.Get(ctx, "missing")
	assert.False(t, ok)

	store.Put(ctx, "k1", "v1", time.Hour)
	value, ok := store.Get(ctx, "k1")
	require.True(t, ok)
	assert.Equal(t, "v1", value)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	store.Put(ctx, "k1", "v1", time.Hour)
	mr.FastForward(2 * time.Hour)

	_, ok := store.Get(ctx, "k1")
	assert.False(t, ok)
}

func TestRedisStore_FailureIsMiss(t *testing.T) {
	store, mr := setupRedisStore(t)
	ctx := context.Background()

	store.Put(ctx, "k1", "v1", time.Hour)
	mr.Close()

	// An unreachable backend must read as a miss, never an error.
	_, ok := store.Get(ctx, "k1")
	assert.False(t, ok)

	// And writes must not panic or propagate.
	store.Put(ctx, "k2", "v2", time.Hour)
}
