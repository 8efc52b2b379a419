package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewInstructionCache(client)
	ctx := context.Background()

	key := "42:11"
	value := []byte(`{"escrow_address":"GkXr9DqBR1v3mF2eWcVdYAT8HqkXtAKxjrCpuSfMwQnE"}`)

	// Get before set => nil
	result, err := cache.Get(ctx, key)
	assert.NoError(t, err)
	assert.Nil(t, result)

	// Set
	err = cache.Set(ctx, key, value, time.Hour)
	require.NoError(t, err)

	// Get after set
	result, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, value, result)
}

func TestInstructionCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewInstructionCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "42:11", []byte("payload"), time.Second)
	require.NoError(t, err)

	// Fast-forward time in miniredis
	s.FastForward(2 * time.Second)

	result, err := cache.Get(ctx, "42:11")
	assert.NoError(t, err)
	assert.Nil(t, result, "expired key should return nil")
}

func TestInstructionCache_KeyPrefix(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewInstructionCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "42:11", []byte("payload"), time.Hour)
	require.NoError(t, err)

	// The raw key carries the namespace prefix so escrow entries never
	// collide with other cache users on the same instance.
	assert.True(t, s.Exists("escrow:create:42:11"))
}
