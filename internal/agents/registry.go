package agents

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps agent keys to implementations. It is populated once at
// startup; lookups after that are read-only.
type Registry struct {
	mu     sync.RWMutex
	agents map[string]Agent
}

func NewRegistry() *Registry {
	return &Registry{agents: make(map[string]Agent)}
}

// Register adds an agent under its metadata key. Registering the same
// key twice is a wiring bug and fails loudly.
func (r *Registry) Register(a Agent) error {
	key := a.Meta().Key
	if key == "" {
		return fmt.Errorf("registry: agent has empty key")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.agents[key]; exists {
		return fmt.Errorf("registry: duplicate agent key %q", key)
	}
	r.agents[key] = a
	return nil
}

// MustRegister panics on registration failure. Used from composition
// roots where a duplicate key means the binary is miswired.
func (r *Registry) MustRegister(a Agent) {
	if err := r.Register(a); err != nil {
		panic(err)
	}
}

// Get returns the agent for key, or false when unknown.
func (r *Registry) Get(key string) (Agent, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.agents[key]
	return a, ok
}

// Keys returns all registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	keys := make([]string, 0, len(r.agents))
	for k := range r.agents {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns metadata for every registered agent, sorted by key.
func (r *Registry) List() []Metadata {
	keys := r.Keys()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Metadata, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.agents[k].Meta())
	}
	return out
}
