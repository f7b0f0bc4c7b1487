package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const pingTimeout = 3 * time.Second

// ClientConfig describes how to reach the Redis instance backing the stats
// cache, the idempotency store and the event stream.
type ClientConfig struct {
	URL      string
	PoolSize int
	// ConnectAttempts bounds the number of pings before giving up. Zero means one.
	ConnectAttempts int
}

// NewClient connects to redisURL with a single ping attempt.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	return NewClientWithConfig(ctx, ClientConfig{URL: redisURL})
}

// NewClientWithConfig parses cfg.URL and waits until the server answers PING.
func NewClientWithConfig(ctx context.Context, cfg ClientConfig) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	client := redis.NewClient(opts)

	attempts := max(cfg.ConnectAttempts, 1)
	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(attempts-1))
	err = backoff.RetryNotify(func() error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return client.Ping(pingCtx).Err()
	}, backoff.WithContext(b, ctx), func(err error, wait time.Duration) {
		zerolog.Ctx(ctx).Warn().Err(err).Dur("retry_in", wait).Str("addr", opts.Addr).Msg("redis not ready")
	})
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}

	return client, nil
}
