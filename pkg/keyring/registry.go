package keyring

import (
	"fmt"
	"sort"
)

// Factory creates a backend instance. Configuration is captured by the
// closure that builds the factory.
type Factory func(name string) (Backend, error)

// Registry manages backend creation by type
type Registry struct {
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in native backend registered.
func NewRegistry() *Registry {
	r := &Registry{
		factories: make(map[string]Factory),
	}

	r.Register("native", func(name string) (Backend, error) {
		return NewNativeBackend(name), nil
	})

	return r
}

// Register registers a factory for a backend type, replacing any existing one.
func (r *Registry) Register(backendType string, factory Factory) {
	r.factories[backendType] = factory
}

// Create builds a backend of the given type
func (r *Registry) Create(backendType string) (Backend, error) {
	factory, exists := r.factories[backendType]
	if !exists {
		return nil, fmt.Errorf("unknown backend type: %s (supported: %v)", backendType, r.SupportedTypes())
	}
	return factory(backendType)
}

// SupportedTypes returns the registered backend types in sorted order
func (r *Registry) SupportedTypes() []string {
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// IsSupported checks if a backend type is registered
func (r *Registry) IsSupported(backendType string) bool {
	_, exists := r.factories[backendType]
	return exists
}
