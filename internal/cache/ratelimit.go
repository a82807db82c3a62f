package cache

import (
	"context"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// WindowCounter counts hits per key in fixed windows. The first hit in a
// window sets the key's expiry.
type WindowCounter struct {
	client *redisv9.Client
	prefix string
}

func NewWindowCounter(client *redisv9.Client) *WindowCounter {
	return &WindowCounter{client: client, prefix: "studydeck:ratelimit:"}
}

// Hit increments key and returns the count so far in the current window.
func (w *WindowCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, error) {
	k := w.prefix + key
	pipe := w.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redis rate limit hit failed: %w", err)
	}
	return incr.Val(), nil
}
