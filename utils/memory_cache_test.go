package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestCache(ttl time.Duration) (*MemoryCache[string], *time.Time) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache[string](ttl, 0)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestMemoryCacheSetGet(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	c.Set("a", "1")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestMemoryCacheExpiration(t *testing.T) {
	c, now := newTestCache(time.Minute)

	c.Set("a", "1")
	*now = now.Add(2 * time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Size())
}

func TestMemoryCacheSlidingExpiration(t *testing.T) {
	c, now := newTestCache(time.Minute)

	c.Set("a", "1")
	*now = now.Add(50 * time.Second)
	_, ok := c.Get("a")
	assert.True(t, ok)

	*now = now.Add(50 * time.Second)
	_, ok = c.Get("a")
	assert.True(t, ok, "read should have extended the expiration")
}

func TestMemoryCacheGetOrSet(t *testing.T) {
	c, _ := newTestCache(time.Minute)

	calls := 0
	create := func() string {
		calls++
		return "v"
	}

	assert.Equal(t, "v", c.GetOrSet("k", create))
	assert.Equal(t, "v", c.GetOrSet("k", create))
	assert.Equal(t, 1, calls)
}

func TestMemoryCacheCleanup(t *testing.T) {
	c, now := newTestCache(time.Minute)

	c.Set("old", "1")
	*now = now.Add(30 * time.Second)
	c.Set("new", "2")
	*now = now.Add(45 * time.Second)

	c.cleanup()
	assert.Equal(t, []string{"new"}, c.Keys())

	c.Delete("new")
	assert.Equal(t, 0, c.Size())
	c.Close()
	c.Close()
}
