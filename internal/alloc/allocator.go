// Package alloc hands out file space for the writer. Space is only ever
// appended at the end of file; blocks that are superseded, such as an
// object header rewritten after a link was added, are recorded as
// abandoned rather than reused.
package alloc

import "sync"

// Alignment of every allocated address.
const Alignment = 8

// Stats summarizes allocator activity.
type Stats struct {
	Allocations    int
	AllocatedBytes uint64
	AbandonedBytes uint64
}

// Allocator tracks the end of file.
type Allocator struct {
	mu    sync.Mutex
	eof   uint64
	stats Stats
	tags  map[string]uint64
}

// New returns an allocator whose first block starts at or after eof.
func New(eof uint64) *Allocator {
	return &Allocator{eof: align(eof), tags: make(map[string]uint64)}
}

func align(v uint64) uint64 {
	return (v + Alignment - 1) &^ (Alignment - 1)
}

// Alloc reserves size bytes and returns their address. tag names the kind
// of block for Usage.
func (a *Allocator) Alloc(size uint64, tag string) uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	addr := a.eof
	a.eof = align(a.eof + size)
	a.stats.Allocations++
	a.stats.AllocatedBytes += size
	a.tags[tag] += size
	return addr
}

// Abandon records that a previously allocated block is no longer referenced.
func (a *Allocator) Abandon(size uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stats.AbandonedBytes += size
}

// EOF returns the current end of file address.
func (a *Allocator) EOF() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.eof
}

// Stats returns a snapshot of allocator activity.
func (a *Allocator) Stats() Stats {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Usage returns allocated bytes per tag.
func (a *Allocator) Usage() map[string]uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]uint64, len(a.tags))
	for k, v := range a.tags {
		out[k] = v
	}
	return out
}
