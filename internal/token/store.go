package token

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshKeyPrefix   = "RT:"
	blacklistKeyPrefix = "BL:"
	blacklistMarker    = "logout"
)

// Store is the Redis-backed credential store. It keeps exactly one live
// refresh token per subject under RT:{subject} and a logout blacklist
// under BL:{token}, both with store-native TTLs. All durable token state
// lives here; the Store itself holds no mutable state.
type Store struct {
	redis redis.UniversalClient
}

// NewStore returns a Store backed by the given Redis client.
func NewStore(rdb redis.UniversalClient) *Store {
	return &Store{redis: rdb}
}

func refreshKey(subject string) string { return refreshKeyPrefix + subject }

func blacklistKey(token string) string { return blacklistKeyPrefix + token }

// SaveRefresh stores the refresh token for subject, overwriting any prior
// entry. The key expires with the refresh lifetime.
func (s *Store) SaveRefresh(ctx context.Context, subject, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, refreshKey(subject), token, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// GetRefresh returns the stored refresh token for subject. A missing entry
// surfaces redis.Nil so callers can distinguish absence from store failure.
func (s *Store) GetRefresh(ctx context.Context, subject string) (string, error) {
	val, err := s.redis.Get(ctx, refreshKey(subject)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return val, nil
}

// DeleteRefresh removes the refresh entry for subject. Deleting an absent
// entry is not an error.
func (s *Store) DeleteRefresh(ctx context.Context, subject string) error {
	if err := s.redis.Del(ctx, refreshKey(subject)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Blacklist marks an access token as revoked for the remainder of its
// lifetime. The entry disappears on its own once ttl elapses.
func (s *Store) Blacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.redis.Set(ctx, blacklistKey(token), blacklistMarker, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// IsBlacklisted reports whether token was revoked before its expiry.
func (s *Store) IsBlacklisted(ctx context.Context, token string) (bool, error) {
	n, err := s.redis.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return n > 0, nil
}

// Ping returns a point-in-time store availability check.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}
