package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/n3on404/loauj-local-node-sub001/config"
	"github.com/n3on404/loauj-local-node-sub001/internal/domain"
)

// RedisCache holds the bounded-TTL route cache and the cross-process
// advisory lock the transfer scheduler takes before a run.
type RedisCache struct {
	client   *redis.Client
	routeTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, routeTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:   redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		routeTTL: routeTTL,
	}
}

func (c *RedisCache) GetRoute(ctx context.Context, destinationID string) (*domain.Route, error) {
	data, err := c.client.Get(ctx, routeKey(destinationID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var route domain.Route
	if err := json.Unmarshal(data, &route); err != nil {
		return nil, err
	}
	return &route, nil
}

func (c *RedisCache) SetRoute(ctx context.Context, route *domain.Route) error {
	payload, err := json.Marshal(route)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, routeKey(route.DestinationID), payload, c.routeTTL).Err()
}

func (c *RedisCache) InvalidateRoute(ctx context.Context, destinationID string) error {
	return c.client.Del(ctx, routeKey(destinationID)).Err()
}

// AcquireTransferLock backs the in-process running guard across processes,
// so a second worker instance cannot reorder the same groups concurrently.
func (c *RedisCache) AcquireTransferLock(ctx context.Context, stationID string, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, transferLockKey(stationID), "running", ttl).Result()
}

func (c *RedisCache) ReleaseTransferLock(ctx context.Context, stationID string) error {
	return c.client.Del(ctx, transferLockKey(stationID)).Err()
}

func routeKey(destinationID string) string {
	return fmt.Sprintf("cache:route:%s", destinationID)
}

func transferLockKey(stationID string) string {
	return fmt.Sprintf("lock:station:%s:transfer", stationID)
}
