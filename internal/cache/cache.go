// Package cache backs command hash storage with Redis so sync state
// survives restarts and is shared between replicas.
package cache

import (
	"context"
	"fmt"

	"github.com/mediocregopher/radix/v3"
)

// RedisCache stores scope hashes under a shared key prefix. It satisfies
// appcmd.HashCache.
type RedisCache struct {
	pool   *radix.Pool
	prefix string
}

// NewRedisCache opens a connection pool against host:port.
func NewRedisCache(host string, port int, poolSize int) (*RedisCache, error) {
	pool, err := radix.NewPool("tcp", fmt.Sprintf("%s:%d", host, port), poolSize)
	if err != nil {
		return nil, fmt.Errorf("creating redis pool: %w", err)
	}

	return &RedisCache{pool: pool, prefix: "command_hash:"}, nil
}

// Get returns the stored hash for key, or "" when no hash is stored.
func (c *RedisCache) Get(_ context.Context, key string) (string, error) {
	var value string
	if err := c.pool.Do(radix.Cmd(&value, "GET", c.prefix+key)); err != nil {
		return "", fmt.Errorf("getting hash for %s: %w", key, err)
	}

	return value, nil
}

// Set stores the hash for key.
func (c *RedisCache) Set(_ context.Context, key, value string) error {
	if err := c.pool.Do(radix.Cmd(nil, "SET", c.prefix+key, value)); err != nil {
		return fmt.Errorf("setting hash for %s: %w", key, err)
	}

	return nil
}

// Close releases the connection pool.
func (c *RedisCache) Close() error {
	return c.pool.Close()
}
