// Package progress tracks in-flight download state per video.
package progress

import (
	"sync"

	"github.com/cesargomez89/youaudio/internal/domain"
)

// Registry is a concurrency-safe map from video ID to its latest progress
// snapshot. Entries are overwritten on every update and never evicted;
// cardinality is bounded by the distinct videos fetched in one process
// lifetime.
type Registry struct {
	mu        sync.RWMutex
	snapshots map[string]domain.Snapshot
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		snapshots: make(map[string]domain.Snapshot),
	}
}

// Upsert stores the snapshot for a video, replacing any previous one
func (r *Registry) Upsert(videoID string, snap domain.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots[videoID] = snap
}

// Get returns the latest snapshot for a video, if any
func (r *Registry) Get(videoID string) (domain.Snapshot, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.snapshots[videoID]
	return snap, ok
}

// Len returns the number of tracked videos
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.snapshots)
}
