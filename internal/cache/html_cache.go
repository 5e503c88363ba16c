package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Doc-Inf/Finanza/pkg/logger"
)

// A real quote page runs to hundreds of kilobytes; anything under this is
// an error stub or consent interstitial and not worth a cache slot.
const minCacheableHTMLLen = 2048

// HTMLCache keeps recently fetched quote pages so a manual refresh right
// after a scheduled one does not hit the upstream host again.
type HTMLCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewHTMLCache(redisURL string, ttl time.Duration) (*HTMLCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &HTMLCache{
		client: client,
		ttl:    ttl,
	}, nil
}

func (c *HTMLCache) Get(ctx context.Context, symbol string) (string, bool) {
	key := c.makeKey(symbol)
	html, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false
	}
	if err != nil {
		logger.Log.Debug().Err(err).Str("symbol", symbol).Msg("html cache get error")
		return "", false
	}
	return html, true
}

func (c *HTMLCache) Set(ctx context.Context, symbol string, html string) error {
	if len(html) < minCacheableHTMLLen {
		return nil
	}
	key := c.makeKey(symbol)
	return c.client.Set(ctx, key, html, c.ttl).Err()
}

func (c *HTMLCache) Close() error {
	return c.client.Close()
}

func (c *HTMLCache) makeKey(symbol string) string {
	hash := sha256.Sum256([]byte(symbol))
	return "quotehtml:" + hex.EncodeToString(hash[:])
}
