// Package registry caches which container currently backs each device UUID.
//
// Entries live only for the process lifetime. They are overwritten when a
// fresher identity is learned and never deleted, so an entry may point at a
// container the runtime has since removed. Callers detect that lazily
// through a failed runtime operation.
package registry

import (
	"sync"

	"fleetd"
	"fleetd/internal/check"

	"github.com/google/uuid"
)

// Registry maps device UUIDs to container identities. Each Lookup and Record
// is atomic on its own; a Lookup followed by a Record is not.
//
// Thread Safety: all methods are safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]fleetd.Container
}

// Entry is one device → container mapping.
type Entry struct {
	Device    uuid.UUID
	Container fleetd.Container
}

func New() *Registry {
	return &Registry{entries: make(map[uuid.UUID]fleetd.Container)}
}

// Lookup returns the container last recorded for device.
func (r *Registry) Lookup(device uuid.UUID) (fleetd.Container, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.entries[device]
	return c, ok
}

// Record upserts the container for device. The last writer wins.
func (r *Registry) Record(device uuid.UUID, c fleetd.Container) {
	check.Assert(device != uuid.Nil, "registry: record for nil device")
	check.Assertf(!c.IsZero(), "registry: empty container for device %s", device)
	r.mu.Lock()
	r.entries[device] = c
	r.mu.Unlock()
}

// Len returns the number of cached devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns a copy of all entries in no particular order.
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Entry, 0, len(r.entries))
	for device, c := range r.entries {
		out = append(out, Entry{Device: device, Container: c})
	}
	return out
}
