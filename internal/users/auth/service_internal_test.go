// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/memberdesk/internal/platform/sec"
)

func TestTimingHash_IsUsable(t *testing.T) {
	require.NotEmpty(t, timingHash)
	assert.True(t, sec.CheckPasswordHash("memberdesk-timing-equalizer", timingHash))
	assert.False(t, sec.CheckPasswordHash("anything else", timingHash))

	assert.NotPanics(t, func() { mustHash("another secret") })
}
