// internal/providers/cache.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"shopper-agents/internal/common/database"
	apperrors "shopper-agents/internal/common/errors"
	"shopper-agents/internal/common/logger"
	"shopper-agents/internal/models"
)

// CachedProvider wraps a Provider with a Redis result cache keyed by
// (provider, query, maxResults). Cache failures in either direction
// degrade to a plain provider call; the cache can slow nothing down
// and break nothing.
type CachedProvider struct {
	inner  Provider
	cache  *database.RedisClient
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedProvider(inner Provider, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedProvider {
	return &CachedProvider{
		inner:  inner,
		cache:  cache,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"provider": inner.Name()}),
	}
}

func (c *CachedProvider) Name() string {
	return c.inner.Name()
}

func (c *CachedProvider) Search(ctx context.Context, query string, maxResults int, render RenderMode) ([]models.Product, error) {
	key := fmt.Sprintf("discovery:%s:%s:%d", c.inner.Name(), query, maxResults)

	if cached, err := c.cache.Get(ctx, key); err == nil {
		var products []models.Product
		if err := json.Unmarshal([]byte(cached), &products); err == nil {
			c.logger.Debug("Discovery cache hit", map[string]interface{}{"query": query})
			return products, nil
		}
		// Unreadable entry; drop it and fall through to the provider.
		_ = c.cache.Del(ctx, key)
	}

	products, err := c.inner.Search(ctx, query, maxResults, render)
	if err != nil {
		return nil, err
	}

	if encoded, err := json.Marshal(products); err == nil {
		if err := c.cache.Set(ctx, key, string(encoded), c.ttl); err != nil {
			c.logger.WithError(apperrors.NewCacheFailedError("set", err)).Debug("Failed to cache discovery results", nil)
		}
	}

	return products, nil
}
