// Package cache stores computed health reports in Redis, keyed by snapshot.
// Snapshots are immutable, so a cached report never goes stale; the TTL only
// bounds memory.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ukydev/autocare/internal/health"
)

const keyPrefix = "autocare:health:"

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type HealthCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewHealthCache connects to Redis and pings it.
func NewHealthCache(ctx context.Context, cfg RedisConfig) (*HealthCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewHealthCacheWithClient(client, cfg.TTL), nil
}

// NewHealthCacheWithClient wraps an existing client.
func NewHealthCacheWithClient(client *redis.Client, ttl time.Duration) *HealthCache {
	return &HealthCache{client: client, ttl: ttl}
}

func key(snapshotID string) string {
	return keyPrefix + snapshotID
}

// Get returns the cached report for a snapshot. A miss returns (nil, nil).
func (c *HealthCache) Get(ctx context.Context, snapshotID string) (*health.Report, error) {
	data, err := c.client.Get(ctx, key(snapshotID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report health.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode cached report: %w", err)
	}
	return &report, nil
}

// Set stores the report for a snapshot.
func (c *HealthCache) Set(ctx context.Context, snapshotID string, report *health.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(snapshotID), data, c.ttl).Err()
}

func (c *HealthCache) Close() error {
	return c.client.Close()
}
