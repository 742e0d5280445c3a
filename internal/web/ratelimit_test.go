package web

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Window(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newLimiter(2, time.Minute, func() time.Time { return now })

	left, _, ok := rl.take("a")
	assert.True(t, ok)
	assert.Equal(t, 1, left)

	_, _, ok = rl.take("a")
	assert.True(t, ok)

	now = now.Add(20 * time.Second)
	_, wait, ok := rl.take("a")
	assert.False(t, ok)
	assert.Equal(t, 40*time.Second, wait)

	_, _, ok = rl.take("b")
	assert.True(t, ok, "buckets are per key")

	now = now.Add(40 * time.Second)
	_, _, ok = rl.take("a")
	assert.True(t, ok, "a new window starts after the old one ends")
}

func TestRateLimiter_EvictIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := newLimiter(5, time.Minute, func() time.Time { return now })

	rl.take("old")
	now = now.Add(90 * time.Second)
	rl.take("fresh")

	now = now.Add(45 * time.Second)
	rl.evictIdle()

	rl.mu.Lock()
	defer rl.mu.Unlock()
	assert.NotContains(t, rl.buckets, "old")
	assert.Contains(t, rl.buckets, "fresh")
}
