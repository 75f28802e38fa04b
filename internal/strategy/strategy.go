// Package strategy defines the Strategy interface for vote-casting
// sub-strategies and provides a Registry for managing multiple strategy
// implementations, plus the voting engine that combines votes into signals.
package strategy

import (
	"sort"

	"quantsim/internal/domain"
	"quantsim/internal/indicator"
)

// Strategy is the interface every sub-strategy implements. A strategy casts
// one directional vote per bar index, using only frame data at indices up to
// and including i — no lookahead.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// Vote returns the strategy's directional opinion at bar index i.
	// Indices inside an indicator's warm-up window vote Neutral.
	Vote(f *indicator.Frame, i int) domain.Direction
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates whether
// the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
