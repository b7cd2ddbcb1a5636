// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/memberdesk/internal/platform/constants"
)

// RedisRevocationStore implements [RevocationStore]. Each revoked jti is a
// key that expires together with the token it names.
type RedisRevocationStore struct {
	client redis.UniversalClient
}

// NewRevocationStore creates a Redis backed revocation list.
func NewRevocationStore(client redis.UniversalClient) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (store *RedisRevocationStore) key(jti string) string {
	return constants.RedisPrefixRevokedJTI + jti
}

// Revoke marks jti as revoked until ttl elapses. Non-positive ttls are
// ignored since the token has already expired.
func (store *RedisRevocationStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}
	if err := store.client.Set(ctx, store.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_set_failed: %w", err)
	}
	return nil
}

// IsRevoked reports whether jti is on the list.
func (store *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	count, err := store.client.Exists(ctx, store.key(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_get_failed: %w", err)
	}
	return count > 0, nil
}
