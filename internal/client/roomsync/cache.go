package roomsync

import (
	"sync"

	"github.com/skomarov/boardkeeper/internal/scene"
)

// VersionCache remembers, per live connection, the scene version of the last
// payload successfully saved. A matching version lets Save skip the whole
// network round trip. The cache is best-effort only: losing an entry costs
// one redundant save, never correctness.
type VersionCache struct {
	mu       sync.Mutex
	versions map[string]int64
}

func NewVersionCache() *VersionCache {
	return &VersionCache{versions: make(map[string]int64)}
}

func (c *VersionCache) Get(connID string) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.versions[connID]
	return v, ok
}

// Set records the version of the given elements for the connection.
func (c *VersionCache) Set(connID string, elements []scene.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[connID] = scene.Version(elements)
}

// Evict drops the connection's entry. Called when the connection leaves the
// room; a stale entry under a reused id could wrongly skip a save.
func (c *VersionCache) Evict(connID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.versions, connID)
}
