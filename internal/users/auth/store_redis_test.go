// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/memberdesk/internal/users/auth"
)

func TestRevocationStore_ExpiresWithToken(t *testing.T) {
	server := miniredis.RunT(t)
	store := auth.NewRevocationStore(redis.NewClient(&redis.Options{Addr: server.Addr()}))
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti-1", 10*time.Minute))
	assert.True(t, server.Exists("memberdesk:revoked_jti:jti-1"))

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	server.FastForward(11 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// Already expired tokens are not stored.
	require.NoError(t, store.Revoke(ctx, "jti-2", -time.Second))
	assert.False(t, server.Exists("memberdesk:revoked_jti:jti-2"))
}

func TestRevocationStore_Unavailable(t *testing.T) {
	server := miniredis.RunT(t)
	store := auth.NewRevocationStore(redis.NewClient(&redis.Options{Addr: server.Addr()}))
	server.Close()

	_, err := store.IsRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}
