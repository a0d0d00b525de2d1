package hashing

import (
	"fmt"
	"slices"
	"sync"
)

// Registry is a thread-safe lookup table from scheme names to [Algorithm]
// implementations.
//
// Parameterless digests are registered once and shared; parameterised
// schemes such as scrypt are constructed per run from their options and do
// not need to live in a Registry, although a preconfigured instance may be
// registered under its own name.
//
// # Thread safety
//
// All Registry methods are safe for concurrent use by multiple goroutines.
// A [sync.RWMutex] serialises Register while allowing concurrent lookups.
type Registry struct {
	mu         sync.RWMutex
	algorithms map[Scheme]Algorithm
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{algorithms: make(map[Scheme]Algorithm)}
}

// NewDefaultRegistry creates a Registry with every entry of [FixedSchemes]
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, s := range FixedSchemes {
		d, err := NewFixedDigest(s)
		if err != nil {
			// FixedSchemes and the constructor table are kept in sync.
			panic(err)
		}
		_ = r.Register(s, d)
	}
	return r
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns a process-wide Registry built by
// [NewDefaultRegistry] on first use.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewDefaultRegistry()
	})
	return defaultRegistry
}

// Register adds or replaces the algorithm stored under name.
func (r *Registry) Register(name Scheme, a Algorithm) error {
	if name == "" {
		return ErrEmptySchemeName
	}
	if a == nil {
		return ErrNilAlgorithm
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.algorithms[name] = a
	return nil
}

// Algorithm returns the [Algorithm] registered under name, or
// [ErrUnknownScheme] if nothing has been registered for it.
func (r *Registry) Algorithm(name Scheme) (Algorithm, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not registered", ErrUnknownScheme, name)
	}
	return a, nil
}

// Lookup parses a user supplied name with [ParseScheme] and returns the
// registered algorithm.
func (r *Registry) Lookup(name string) (Algorithm, error) {
	s, err := ParseScheme(name)
	if err != nil {
		return nil, err
	}
	return r.Algorithm(s)
}

// Has reports whether an algorithm is registered under name.
func (r *Registry) Has(name Scheme) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.algorithms[name]
	return ok
}

// Schemes returns the registered scheme names in lexical order.
func (r *Registry) Schemes() []Scheme {
	r.mu.RLock()
	out := make([]Scheme, 0, len(r.algorithms))
	for s := range r.algorithms {
		out = append(out, s)
	}
	r.mu.RUnlock()
	slices.Sort(out)
	return out
}
