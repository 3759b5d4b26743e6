package strategy

import (
	"fmt"
	"slices"
	"sync"
)

// Info pairs a strategy name with its capabilities.
type Info struct {
	Name         string       `json:"name"`
	Capabilities Capabilities `json:"capabilities"`
}

// Registry holds registered strategies in registration order.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
	order      []string
}

// NewRegistry creates an empty strategy registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy under the given name. Registering a name again
// replaces the strategy but keeps its original position.
func (r *Registry) Register(name string, s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.strategies[name]; !ok {
		r.order = append(r.order, name)
	}
	r.strategies[name] = s
}

// Resolve returns the strategy registered under name.
func (r *Registry) Resolve(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("strategy %q is not registered", name)
	}
	return s, nil
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Len returns the number of registered strategies.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// List returns information about all registered strategies in registration
// order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		infos = append(infos, Info{
			Name:         name,
			Capabilities: r.strategies[name].Capabilities(),
		})
	}
	return infos
}

// Select returns a new registry holding only the named strategies, in this
// registry's order. Unknown names are an error.
func (r *Registry) Select(names []string) (*Registry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, name := range names {
		if _, ok := r.strategies[name]; !ok {
			return nil, fmt.Errorf("strategy %q is not registered", name)
		}
	}

	out := NewRegistry()
	for _, name := range r.order {
		if slices.Contains(names, name) {
			out.Register(name, r.strategies[name])
		}
	}
	return out, nil
}
