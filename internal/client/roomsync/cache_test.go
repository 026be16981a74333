package roomsync

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skomarov/boardkeeper/internal/scene"
)

func TestVersionCache(t *testing.T) {
	cache := NewVersionCache()

	_, ok := cache.Get("conn-1")
	assert.False(t, ok)

	elements := []scene.Element{
		{ID: "a", Version: 3},
		{ID: "b", Version: 4},
	}
	cache.Set("conn-1", elements)

	v, ok := cache.Get("conn-1")
	assert.True(t, ok)
	assert.Equal(t, int64(7), v)

	// Entries are per connection, not per room.
	_, ok = cache.Get("conn-2")
	assert.False(t, ok)

	cache.Evict("conn-1")
	_, ok = cache.Get("conn-1")
	assert.False(t, ok)

	// Evicting an absent entry is a no-op.
	cache.Evict("conn-1")
}
