package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/venuehub/reservations/config"
	"github.com/venuehub/reservations/internal/domain"
)

// ErrLockTimeout is returned when a commit lock could not be acquired before
// the context ended.
var ErrLockTimeout = errors.New("commit lock not acquired")

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisCache struct {
	client       *redis.Client
	resourcesTTL time.Duration
	lockTTL      time.Duration
	retryEvery   time.Duration
	log          *zap.Logger
}

func NewRedisCache(cfg config.RedisConfig, resourcesTTL, lockTTL time.Duration, log *zap.Logger) *RedisCache {
	client := redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB})
	return NewRedisCacheWithClient(client, resourcesTTL, lockTTL, log)
}

func NewRedisCacheWithClient(client *redis.Client, resourcesTTL, lockTTL time.Duration, log *zap.Logger) *RedisCache {
	return &RedisCache{
		client:       client,
		resourcesTTL: resourcesTTL,
		lockTTL:      lockTTL,
		retryEvery:   25 * time.Millisecond,
		log:          log.With(zap.String("component", "redis_cache")),
	}
}

func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// GetResource returns nil, nil on a cache miss.
func (c *RedisCache) GetResource(ctx context.Context, id string) (*domain.Resource, error) {
	data, err := c.client.Get(ctx, resourceKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var res domain.Resource
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *RedisCache) SetResource(ctx context.Context, res *domain.Resource) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resourceKey(res.ID), payload, c.resourcesTTL).Err()
}

func (c *RedisCache) InvalidateResource(ctx context.Context, id string) error {
	return c.client.Del(ctx, resourceKey(id)).Err()
}

// Lock takes the cross-instance commit lock for key, polling until it is
// free or ctx is done. The lock expires after lockTTL if its holder dies.
func (c *RedisCache) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	k := commitLockKey(key)

	ticker := time.NewTicker(c.retryEvery)
	defer ticker.Stop()
	for {
		ok, err := c.client.SetNX(ctx, k, token, c.lockTTL).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockTimeout, key, ctx.Err())
		case <-ticker.C:
		}
	}

	return func() {
		// Release even if the request context has already ended.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
		defer cancel()
		released, err := releaseScript.Run(releaseCtx, c.client, []string{k}, token).Int()
		switch {
		case err != nil:
			c.log.Warn("failed to release commit lock", zap.String("key", key), zap.Error(err))
		case released == 0:
			c.log.Warn("commit lock expired before release", zap.String("key", key))
		}
	}, nil
}

func resourceKey(id string) string {
	return fmt.Sprintf("cache:resource:%s", id)
}

func commitLockKey(key string) string {
	return fmt.Sprintf("lock:commit:%s", key)
}
