// Package cache stores the computed admin dashboard between requests.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/adoption-service/internal/domain"
)

// DashboardKey is the Redis key for the cached dashboard.
const DashboardKey = "adoption:analytics:dashboard"

// DashboardCache stores one dashboard snapshot with a TTL.
type DashboardCache interface {
	Get(ctx context.Context) (*domain.Dashboard, bool, error)
	Set(ctx context.Context, dashboard *domain.Dashboard, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

type redisDashboardCache struct {
	client *redis.Client
	key    string
}

// NewRedisDashboardCache returns a Redis-backed cache.
func NewRedisDashboardCache(client *redis.Client) DashboardCache {
	return &redisDashboardCache{client: client, key: DashboardKey}
}

func (c *redisDashboardCache) Get(ctx context.Context) (*domain.Dashboard, bool, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var dashboard domain.Dashboard
	if err := json.Unmarshal(raw, &dashboard); err != nil {
		return nil, false, err
	}
	return &dashboard, true, nil
}

func (c *redisDashboardCache) Set(ctx context.Context, dashboard *domain.Dashboard, ttl time.Duration) error {
	raw, err := json.Marshal(dashboard)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key, raw, ttl).Err()
}

func (c *redisDashboardCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, c.key).Err()
}

type memoryDashboardCache struct {
	mu        sync.Mutex
	dashboard *domain.Dashboard
	expiresAt time.Time
	now       func() time.Time
}

// NewMemoryDashboardCache returns an in-process cache for runs without Redis.
func NewMemoryDashboardCache(now func() time.Time) DashboardCache {
	if now == nil {
		now = time.Now
	}
	return &memoryDashboardCache{now: now}
}

func (c *memoryDashboardCache) Get(_ context.Context) (*domain.Dashboard, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dashboard == nil || !c.now().Before(c.expiresAt) {
		return nil, false, nil
	}
	copied := *c.dashboard
	return &copied, true, nil
}

func (c *memoryDashboardCache) Set(_ context.Context, dashboard *domain.Dashboard, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *dashboard
	c.dashboard = &copied
	c.expiresAt = c.now().Add(ttl)
	return nil
}

func (c *memoryDashboardCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.dashboard = nil
	return nil
}
