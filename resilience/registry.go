package resilience

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry maps dependency names to their invokers. It is built once at
// initialization and passed by reference to call sites; there is no
// package-level instance.
type Registry struct {
	mu       sync.RWMutex
	invokers map[string]*Invoker
}

// NewRegistry creates an empty dependency registry.
func NewRegistry() *Registry {
	return &Registry{
		invokers: make(map[string]*Invoker),
	}
}

// Register adds an invoker under its dependency name.
func (r *Registry) Register(inv *Invoker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.invokers[inv.Name()]; exists {
		return fmt.Errorf("%w: %q", ErrDependencyExists, inv.Name())
	}
	r.invokers[inv.Name()] = inv
	return nil
}

// Get returns the invoker for a dependency, or ErrDependencyNotFound.
func (r *Registry) Get(name string) (*Invoker, error) {
	r.mu.RLock()
	inv, ok := r.invokers[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDependencyNotFound, name)
	}
	return inv, nil
}

// Execute runs the operation through the named dependency's chain.
func (r *Registry) Execute(ctx context.Context, name string, op func(context.Context) error) error {
	inv, err := r.Get(name)
	if err != nil {
		return err
	}
	return inv.Execute(ctx, op)
}

// Names returns the registered dependency names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.invokers))
	for name := range r.invokers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Snapshots returns the breaker snapshot of every registered dependency.
func (r *Registry) Snapshots() map[string]BreakerSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snaps := make(map[string]BreakerSnapshot, len(r.invokers))
	for name, inv := range r.invokers {
		snaps[name] = inv.Breaker().Snapshot()
	}
	return snaps
}
