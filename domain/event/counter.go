package event

import "sync"

// Counter tallies event volume per type.
// A single instance is shared by every handler.
type Counter struct {
	mu     sync.RWMutex
	counts map[Type]uint64
}

func NewCounter() *Counter {
	return &Counter{counts: make(map[Type]uint64)}
}

func (c *Counter) Increment(eventType Type) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counts[eventType]++
}

func (c *Counter) Get(eventType Type) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.counts[eventType]
}

// Snapshot copies the current tallies, for reporting endpoints.
func (c *Counter) Snapshot() map[Type]uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[Type]uint64, len(c.counts))
	for eventType, count := range c.counts {
		out[eventType] = count
	}
	return out
}
