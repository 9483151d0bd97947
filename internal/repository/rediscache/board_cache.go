package rediscache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-hiring-workflow/internal/domain"
	"go-hiring-workflow/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// boardCache caches the public board projection in Redis. Entries are keyed
// by a generation counter; invalidation bumps the counter so stale pages
// simply age out via TTL. A nil client degrades to a no-op cache.
type boardCache struct {
	client *redis.Client
	ttl    time.Duration
}

const boardGenerationKey = "board:generation"

func NewPublishedBoardCache(client *redis.Client, ttl time.Duration) domain.PublishedBoardCache {
	return &boardCache{client: client, ttl: ttl}
}

func (c *boardCache) Get(ctx context.Context, page, pageSize int) (*domain.PostingPage, bool) {
	if c.client == nil {
		return nil, false
	}

	key, err := c.pageKey(ctx, page, pageSize)
	if err != nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var result domain.PostingPage
	if err := json.Unmarshal(raw, &result); err != nil {
		logger.Log.Warn("Discarding corrupt board cache entry", "key", key, "error", err)
		return nil, false
	}
	return &result, true
}

func (c *boardCache) Set(ctx context.Context, result *domain.PostingPage) {
	if c.client == nil || result == nil {
		return
	}

	key, err := c.pageKey(ctx, result.Page, result.PageSize)
	if err != nil {
		return
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		logger.Log.Warn("Failed to cache board page", "key", key, "error", err)
	}
}

// Invalidate bumps the generation counter. Old entries become unreachable
// immediately and expire on their own TTL.
func (c *boardCache) Invalidate(ctx context.Context) {
	if c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, boardGenerationKey).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate board cache", "error", err)
	}
}

func (c *boardCache) pageKey(ctx context.Context, page, pageSize int) (string, error) {
	generation, err := c.client.Get(ctx, boardGenerationKey).Int64()
	if err != nil && err != redis.Nil {
		return "", err
	}
	return fmt.Sprintf("board:g%d:p%d:s%d", generation, page, pageSize), nil
}
