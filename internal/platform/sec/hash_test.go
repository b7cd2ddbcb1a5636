// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/memberdesk/internal/platform/sec"
)

func TestHashPassword(t *testing.T) {
	first, err := sec.HashPassword("correct horse")
	require.NoError(t, err)
	second, err := sec.HashPassword("correct horse")
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "hashes are salted")
	assert.True(t, sec.CheckPasswordHash("correct horse", first))
	assert.True(t, sec.CheckPasswordHash("correct horse", second))
	assert.False(t, sec.CheckPasswordHash("wrong horse", first))
	assert.False(t, sec.CheckPasswordHash("correct horse", "not-a-bcrypt-hash"))
}
