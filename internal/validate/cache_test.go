package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCache(t *testing.T) {
	t.Run("miss on empty cache", func(t *testing.T) {
		c := NewCache(time.Hour)

		_, ok := c.Get("9876543210")
		assert.False(t, ok)
	})

	t.Run("put and get", func(t *testing.T) {
		c := NewCache(time.Hour)
		c.Put("9876543210", "")

		msg, ok := c.Get("9876543210")
		assert.True(t, ok)
		assert.Empty(t, msg)
	})

	t.Run("entries expire after ttl", func(t *testing.T) {
		c := NewCache(time.Hour)
		current := time.Now()
		c.now = func() time.Time { return current }

		c.Put("9876543210", MsgUserNotFound)

		current = current.Add(61 * time.Minute)
		_, ok := c.Get("9876543210")
		assert.False(t, ok)
	})

	t.Run("entry within ttl stays fresh", func(t *testing.T) {
		c := NewCache(time.Hour)
		current := time.Now()
		c.now = func() time.Time { return current }

		c.Put("9876543210", "")

		current = current.Add(59 * time.Minute)
		msg, ok := c.Get("9876543210")
		assert.True(t, ok)
		assert.Empty(t, msg)
	})

	t.Run("invalidate drops a single entry", func(t *testing.T) {
		c := NewCache(time.Hour)
		c.Put("9876543210", "")
		c.Put("9123456789", "")

		c.Invalidate("9876543210")

		_, ok := c.Get("9876543210")
		assert.False(t, ok)
		_, ok = c.Get("9123456789")
		assert.True(t, ok)
	})

	t.Run("last write wins", func(t *testing.T) {
		c := NewCache(time.Hour)
		c.Put("9876543210", MsgUserNotFound)
		c.Put("9876543210", "")

		msg, ok := c.Get("9876543210")
		assert.True(t, ok)
		assert.Empty(t, msg)
	})
}

func TestCache_Sweep(t *testing.T) {
	c := NewCache(time.Hour)
	current := time.Now()
	c.now = func() time.Time { return current }

	c.Put("1111111111", "")
	current = current.Add(30 * time.Minute)
	c.Put("2222222222", "")
	current = current.Add(45 * time.Minute)

	removed := c.Sweep()

	assert.Equal(t, 1, removed)
	_, ok := c.Get("1111111111")
	assert.False(t, ok)
	_, ok = c.Get("2222222222")
	assert.True(t, ok)
}

func TestCache_Verified(t *testing.T) {
	c := NewCache(time.Hour)

	assert.False(t, c.IsVerified("9876543210"))

	c.MarkVerified("9876543210")
	assert.True(t, c.IsVerified("9876543210"))

	// Verified marks survive sweeps; they are identity facts, not lookups.
	c.Sweep()
	assert.True(t, c.IsVerified("9876543210"))
}

func TestCache_StartSweeper(t *testing.T) {
	c := NewCache(time.Nanosecond)
	c.Put("9876543210", "")

	stop := c.StartSweeper(5 * time.Millisecond)
	defer stop()

	assert.Eventually(t, func() bool {
		_, ok := c.Get("9876543210")
		return !ok
	}, time.Second, 5*time.Millisecond)

	// Stop twice is safe.
	stop()
	stop()
}
