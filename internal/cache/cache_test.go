package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSetGetExpire(t *testing.T) {
	c := New(time.Minute).(*memoryCache)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Set("clients|0|10|", "page")
	v, ok := c.Get("clients|0|10|")
	assert.True(t, ok)
	assert.Equal(t, "page", v)

	now = now.Add(2 * time.Minute)
	_, ok = c.Get("clients|0|10|")
	assert.False(t, ok)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, 0, stats.CurrentSize)
}

func TestInvalidatePrefix(t *testing.T) {
	c := New(time.Minute)
	c.Set("products|0|10|", 1)
	c.Set("products|1|10|", 2)
	c.Set("clients|0|10|", 3)

	c.InvalidatePrefix("products|")

	_, ok := c.Get("products|0|10|")
	assert.False(t, ok)
	_, ok = c.Get("clients|0|10|")
	assert.True(t, ok)
	assert.Equal(t, int64(2), c.Stats().Invalidations)
}

func TestDisabled(t *testing.T) {
	c := New(0)
	c.Set("k", 1)
	_, ok := c.Get("k")
	assert.False(t, ok)
}
