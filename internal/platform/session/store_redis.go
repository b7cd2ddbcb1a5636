// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/memberdesk/internal/platform/constants"
)

// RedisStore implements [Store] with one JSON string key per session.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (store *RedisStore) key(id string) string {
	return constants.RedisPrefixSession + id
}

// Get implements [Store].
func (store *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := store.client.Get(ctx, store.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	record := &Record{}
	if err := json.Unmarshal(raw, record); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}
	record.ID = id
	return record, nil
}

// Save implements [Store].
func (store *RedisStore) Save(ctx context.Context, record *Record, ttl time.Duration) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}
	if err := store.client.Set(ctx, store.key(record.ID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis_session_set_failed: %w", err)
	}
	return nil
}

// Delete implements [Store].
func (store *RedisStore) Delete(ctx context.Context, id string) error {
	if err := store.client.Del(ctx, store.key(id)).Err(); err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}
	return nil
}
