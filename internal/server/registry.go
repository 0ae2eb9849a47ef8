package server

import "sync"

// Registry tracks live connections. Its mutex is held only while the set is
// updated or copied, never across I/O.
type Registry struct {
	mu     sync.Mutex
	conns  map[uint64]*Conn
	nextID uint64
	closed bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{conns: make(map[uint64]*Conn)}
}

// add assigns c an id and inserts it. It fails when the registry is shut
// down or already holds limit connections (limit 0 means no limit).
func (r *Registry) add(c *Conn, limit int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || (limit > 0 && len(r.conns) >= limit) {
		return false
	}
	r.nextID++
	c.id = r.nextID
	r.conns[c.id] = c
	return true
}

func (r *Registry) remove(id uint64) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// Snapshot returns the live connections at the time of the call.
func (r *Registry) Snapshot() []*Conn {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*Conn, 0, len(r.conns))
	for _, c := range r.conns {
		out = append(out, c)
	}
	return out
}

// Shutdown refuses further additions and returns the live connections.
func (r *Registry) Shutdown() []*Conn {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.Snapshot()
}
