package cache

import (
	"context"
	"sync"
	"time"

	"gw2wvw/ingestion/internal/metrics"
	"gw2wvw/ingestion/internal/models"
)

// SnapshotCache holds the latest standings snapshot and a change signal.
// The snapshot is replaced as a whole, never mutated, so a reader can hold
// the returned value for as long as it likes without seeing a mix of two
// sync cycles.
type SnapshotCache struct {
	mu       sync.RWMutex
	snapshot models.Snapshot
	checksum string
	notify   chan struct{}
}

// NewSnapshotCache returns an empty cache. Get returns nil until the first
// Replace.
func NewSnapshotCache() *SnapshotCache {
	return &SnapshotCache{
		notify: make(chan struct{}),
	}
}

// Get returns the current snapshot without blocking. Nil before the first
// completed sync cycle.
func (c *SnapshotCache) Get() models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot
}

// Checksum returns the checksum of the current snapshot, empty when the
// cache is empty. Cheap to call, the value is computed once per Replace.
func (c *SnapshotCache) Checksum() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.checksum
}

// Replace installs a new snapshot and pulses the change signal. The signal
// is edge triggered: only waiters already blocked in WaitForChange observe
// this replacement, later callers wait for the next one. Returns whether
// the new snapshot differs structurally from the previous one.
func (c *SnapshotCache) Replace(snapshot models.Snapshot) bool {
	checksum := snapshot.Checksum()

	c.mu.Lock()
	changed := checksum != c.checksum
	c.snapshot = snapshot
	c.checksum = checksum
	close(c.notify)
	c.notify = make(chan struct{})
	c.mu.Unlock()

	metrics.RecordCacheRebuild(changed)
	return changed
}

// WaitForChange blocks until the cache is replaced or timeout elapses.
// The returned bool is false on timeout, which streaming consumers use as
// their keep-alive signal rather than closing the connection. The snapshot
// returned on timeout is the current one.
func (c *SnapshotCache) WaitForChange(ctx context.Context, timeout time.Duration) (models.Snapshot, bool) {
	c.mu.RLock()
	notify := c.notify
	c.mu.RUnlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-notify:
		return c.Get(), true
	case <-timer.C:
		return c.Get(), false
	case <-ctx.Done():
		return c.Get(), false
	}
}
