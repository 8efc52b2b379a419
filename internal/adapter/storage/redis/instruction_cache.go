package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// InstructionCache implements ports.InstructionCache using Redis. It holds
// serialized create_escrow responses so retried requests return the exact
// payload that was built the first time.
type InstructionCache struct {
	client *goredis.Client
	prefix string
}

// NewInstructionCache creates a new Redis-backed instruction cache.
func NewInstructionCache(client *goredis.Client) *InstructionCache {
	return &InstructionCache{
		client: client,
		prefix: "escrow:create:",
	}
}

// Get retrieves a cached response. Returns nil, nil if the key does not exist.
func (c *InstructionCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis instruction get: %w", err)
	}
	return val, nil
}

// Set stores a response with TTL.
func (c *InstructionCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.client.Set(ctx, c.prefix+key, value, ttl).Err()
	if err != nil {
		return fmt.Errorf("redis instruction set: %w", err)
	}
	return nil
}
