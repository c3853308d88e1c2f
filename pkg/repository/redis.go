package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/MaverickLook/Big-Bite/pkg/config"
	"github.com/MaverickLook/Big-Bite/pkg/models"
	"github.com/go-redis/redis/v8"
)

// ErrCacheMiss is returned by cache lookups for absent keys.
var ErrCacheMiss = errors.New("cache miss")

const maxCacheWriteAttempts = 3

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrCacheMiss
		}
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func orderKey(id string) string {
	return fmt.Sprintf("order:%s", id)
}

// Orders returns the order cache used by clients that poll order status.
func (r *RedisRepository) Orders() *RedisOrderCache {
	return &RedisOrderCache{repo: r, ttl: r.config.OrderTTL}
}

type RedisOrderCache struct {
	repo *RedisRepository
	ttl  time.Duration
}

func (c *RedisOrderCache) Get(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := c.repo.GetJSON(ctx, orderKey(id), &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// Set stores order unless the cache already holds a later version of it.
// The compare and the write run under WATCH, so a reader filling the cache
// with a stale copy cannot replace the entry a status change just wrote.
func (c *RedisOrderCache) Set(ctx context.Context, order *models.Order) error {
	key := orderKey(order.ID)
	payload, err := json.Marshal(order)
	if err != nil {
		return err
	}

	write := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if err == nil {
			var cached models.Order
			if json.Unmarshal(data, &cached) == nil && !order.Supersedes(&cached) {
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, c.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < maxCacheWriteAttempts; attempt++ {
		err = c.repo.client.Watch(ctx, write, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return fmt.Errorf("cache entry %s kept changing: %w", key, err)
}

func (c *RedisOrderCache) Delete(ctx context.Context, id string) error {
	return c.repo.Del(ctx, orderKey(id))
}
