package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps type names to types. It lets definitions refer to structures by
// name, including structures that are registered after the referencing schema
// is compiled. A Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]Type
}

// builtins are preloaded into every registry and recognized by name even
// without one.
var builtins = map[string]Type{
	"string":  String,
	"number":  Number,
	"integer": Integer,
	"boolean": Boolean,
	"date":    Date,
	"any":     Any,
}

// NewRegistry creates a registry preloaded with the built-in primitives.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]Type, len(builtins))}
	for name, t := range builtins {
		r.types[name] = t
	}
	return r
}

// Register adds a named type. Registering a name twice is an error.
func (r *Registry) Register(name string, t Type) error {
	if name == "" {
		return fmt.Errorf("schema: register: empty type name")
	}
	if t == nil {
		return fmt.Errorf("schema: register %q: nil type", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.types[name]; exists {
		return fmt.Errorf("schema: register %q: type already registered", name)
	}
	r.types[name] = t
	return nil
}

// Lookup returns the type registered under name.
func (r *Registry) Lookup(name string) (Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.types[name]
	return t, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ref returns a lazy reference that looks name up on first use.
func (r *Registry) Ref(name string) *LazyRef {
	return LazyNamed(name, func() Type {
		t, ok := r.Lookup(name)
		if !ok {
			return nil
		}
		return t
	})
}

// typeByName resolves a type name. Built-ins resolve immediately; other names
// become lazy registry references.
func typeByName(name string, reg *Registry) (Type, error) {
	if t, ok := builtins[name]; ok {
		return t, nil
	}
	if reg == nil {
		return nil, fmt.Errorf("unknown type %q and no registry configured", name)
	}
	return reg.Ref(name), nil
}
