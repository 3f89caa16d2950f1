package cache

import (
	"context"

	"go.uber.org/zap"

	"github.com/venuehub/reservations/internal/domain"
	"github.com/venuehub/reservations/internal/repository"
)

type ResourceCache interface {
	GetResource(ctx context.Context, id string) (*domain.Resource, error)
	SetResource(ctx context.Context, res *domain.Resource) error
	InvalidateResource(ctx context.Context, id string) error
}

// CachedResources reads resources cache-aside. Cache failures are logged and
// fall through to the repository.
type CachedResources struct {
	repo  repository.ResourceRepository
	cache ResourceCache
	log   *zap.Logger
}

func NewCachedResources(repo repository.ResourceRepository, cache ResourceCache, log *zap.Logger) *CachedResources {
	return &CachedResources{repo: repo, cache: cache, log: log.With(zap.String("component", "resource_cache"))}
}

func (c *CachedResources) GetByID(ctx context.Context, id string) (*domain.Resource, error) {
	cached, err := c.cache.GetResource(ctx, id)
	if err != nil {
		c.log.Warn("resource cache read failed", zap.String("resource_id", id), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	res, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.cache.SetResource(ctx, res); err != nil {
		c.log.Warn("resource cache write failed", zap.String("resource_id", id), zap.Error(err))
	}
	return res, nil
}

func (c *CachedResources) Save(ctx context.Context, res *domain.Resource) error {
	if err := c.repo.Save(ctx, res); err != nil {
		return err
	}
	if err := c.cache.InvalidateResource(ctx, res.ID); err != nil {
		c.log.Warn("resource cache invalidation failed", zap.String("resource_id", res.ID), zap.Error(err))
	}
	return nil
}

var (
	_ repository.ResourceRepository = (*CachedResources)(nil)
	_ ResourceCache                 = (*RedisCache)(nil)
)
