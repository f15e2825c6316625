package providers

import (
	"fmt"
	"sync"
)

// Registry maps provider IDs to their clients. It is populated at startup
// and read-only afterwards, so concurrent tasks can share it freely.
type Registry struct {
	mu      sync.RWMutex
	clients map[ID]Client
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[ID]Client),
	}
}

// Register adds a client. Registering the same ID twice is a wiring bug.
func (r *Registry) Register(c Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.clients[c.ID()]; exists {
		return fmt.Errorf("provider %s already registered", c.ID())
	}
	r.clients[c.ID()] = c
	return nil
}

// Get returns the client for id, or nil if none is registered.
func (r *Registry) Get(id ID) Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.clients[id]
}

// IDs returns the registered provider IDs.
func (r *Registry) IDs() []ID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ID, 0, len(r.clients))
	for id := range r.clients {
		ids = append(ids, id)
	}
	return ids
}
