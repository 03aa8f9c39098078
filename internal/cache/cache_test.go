package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTTLCache(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewTTLCache[string, int]().(*ttlCache[string, int])
	c.now = func() time.Time { return now }

	c.Set("forever", 1, 0)
	c.Set("short", 2, time.Minute)

	v, ok := c.Get("short")
	assert.True(t, ok)
	assert.Equal(t, 2, v)

	now = now.Add(time.Minute)
	_, ok = c.Get("short")
	assert.False(t, ok)

	v, ok = c.Get("forever")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	c.Delete("forever")
	_, ok = c.Get("forever")
	assert.False(t, ok)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "catalog|artist|42", Key(" Catalog ", "", "ARTIST", "42"))
	assert.Equal(t, "", Key())
}
