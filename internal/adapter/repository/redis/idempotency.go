package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// pendingMarker holds a key while the first request is still running.
const pendingMarker = "processing"

// claimAttempts bounds SETNX/GET rounds when the key expires in between.
const claimAttempts = 3

// IdempotencyStore records replayable responses keyed by Idempotency-Key.
type IdempotencyStore struct {
	client redis.Cmdable
	keys   keyspace
}

// NewIdempotencyStore creates a store under the "idempotency" namespace.
func NewIdempotencyStore(client redis.Cmdable) *IdempotencyStore {
	return &IdempotencyStore{client: client, keys: newKeyspace("idempotency")}
}

// CheckAndSet claims key with response, or the pending marker when response
// is nil. When the key is already held it reports true with the stored value.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	fullKey := s.keys.key(key)

	value := response
	if value == nil {
		value = []byte(pendingMarker)
	}

	for range claimAttempts {
		claimed, err := s.client.SetNX(ctx, fullKey, value, ttl).Result()
		if err != nil {
			return false, nil, fmt.Errorf("claim idempotency key: %w", err)
		}
		if claimed {
			return false, nil, nil
		}

		existing, err := s.client.Get(ctx, fullKey).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return false, nil, fmt.Errorf("read idempotency key: %w", err)
		}
		return true, existing, nil
	}

	return false, nil, fmt.Errorf("idempotency key %q kept expiring during claim", key)
}

// Update replaces the claim with the final response and restarts its ttl.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.keys.key(key), response, ttl).Err(); err != nil {
		return fmt.Errorf("store idempotent response: %w", err)
	}
	return nil
}

// Release drops a claim so a failed request can be retried.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keys.key(key)).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

// IsPending reports whether a stored value is the in-flight marker.
func IsPending(value []byte) bool {
	return string(value) == pendingMarker
}
