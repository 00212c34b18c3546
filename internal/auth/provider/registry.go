package provider

import "fmt"

// Registry holds all configured OAuth strategies and allows lookup by
// provider name. It performs no auth logic itself.
type Registry struct {
	order      []string
	strategies map[string]Strategy
}

// NewRegistry registers the given strategies by name.
// Provider names must be unique.
func NewRegistry(list ...Strategy) *Registry {
	r := &Registry{strategies: make(map[string]Strategy)}
	for _, s := range list {
		if _, dup := r.strategies[s.Name()]; dup {
			continue
		}
		r.order = append(r.order, s.Name())
		r.strategies[s.Name()] = s
	}
	return r
}

// Get returns the strategy by name or an error if not registered.
func (r *Registry) Get(name string) (Strategy, error) {
	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown oauth provider: %s", name)
	}
	return s, nil
}

// All returns the registered strategies in registration order.
func (r *Registry) All() []Strategy {
	out := make([]Strategy, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.strategies[name])
	}
	return out
}
