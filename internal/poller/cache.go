package poller

import (
	"sync"
	"time"

	"github.com/joshuapare/webmap/internal/entity"
)

// Cache holds the most recent feature set. The poll loop replaces it whole;
// readers either copy it (Snapshot) or move it out (Take).
type Cache struct {
	mu       sync.RWMutex
	features []entity.Feature
	gen      uint64
	updated  time.Time
}

// Replace installs features, taking ownership of the slice.
func (c *Cache) Replace(features []entity.Feature) {
	c.mu.Lock()
	c.features = features
	c.gen++
	c.updated = time.Now()
	c.mu.Unlock()
}

// Take moves the features out, leaving the cache empty until the next
// Replace. It reports the generation the features belong to.
func (c *Cache) Take() ([]entity.Feature, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := c.features
	c.features = nil
	return f, c.gen
}

// Snapshot returns a copy of the features.
func (c *Cache) Snapshot() []entity.Feature {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.features == nil {
		return nil
	}
	out := make([]entity.Feature, len(c.features))
	copy(out, c.features)
	return out
}

// Generation counts Replace calls.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// Updated returns the time of the last Replace.
func (c *Cache) Updated() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.updated
}
