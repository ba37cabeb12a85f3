package schema

import (
	"sync"

	"github.com/zero-day-ai/structure/input"
)

// LazyRef is a deferred reference to a type that may not exist yet when the
// referencing schema is compiled. Two structures can embed each other by
// pointing at one another through LazyRefs.
//
// The thunk runs on first use. A successful result is cached so resolution
// happens at most once; a failed resolution is retried on the next use.
type LazyRef struct {
	name  string
	thunk func() Type

	mu       sync.Mutex
	resolved Type
}

// Lazy creates a reference resolved by calling thunk on first use.
//
// Example:
//
//	var Book *structure.Type[*BookModel]
//	userDefs := schema.Definitions{
//		schema.Attr("favoriteBook", schema.Lazy(func() schema.Type { return Book })),
//	}
func Lazy(thunk func() Type) *LazyRef {
	return &LazyRef{thunk: thunk}
}

// LazyNamed is Lazy with a name used in error messages.
func LazyNamed(name string, thunk func() Type) *LazyRef {
	return &LazyRef{name: name, thunk: thunk}
}

// Kind implements Type.
func (r *LazyRef) Kind() Kind { return KindLazy }

// Name returns the resolved type's name when available, otherwise the
// reference name.
func (r *LazyRef) Name() string {
	r.mu.Lock()
	resolved := r.resolved
	r.mu.Unlock()

	if resolved != nil {
		return resolved.Name()
	}
	if r.name != "" {
		return r.name
	}
	return "lazy"
}

// Resolved reports whether the reference has been resolved and cached.
func (r *LazyRef) Resolved() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolved != nil
}

// Resolve returns the referenced concrete type.
func (r *LazyRef) Resolve() (Type, error) {
	return resolveLazy(r, make(map[*LazyRef]bool))
}

// Resolve returns the concrete type behind t. Non-lazy types are returned as
// is; lazy references are resolved and cached.
func Resolve(t Type) (Type, error) {
	if input.IsNil(t) {
		return nil, &TypeResolutionError{Ref: "<nil>", Reason: "type is nil"}
	}

	if ref, ok := t.(*LazyRef); ok {
		return resolveLazy(ref, make(map[*LazyRef]bool))
	}

	if err := checkConcrete(t); err != nil {
		return nil, err
	}
	return t, nil
}

// resolveLazy follows a chain of lazy references, tracking visited refs to
// detect circular chains. The thunk runs without holding the lock so that a
// thunk may itself resolve other references.
func resolveLazy(ref *LazyRef, visited map[*LazyRef]bool) (Type, error) {
	ref.mu.Lock()
	if ref.resolved != nil {
		resolved := ref.resolved
		ref.mu.Unlock()
		return resolved, nil
	}
	ref.mu.Unlock()

	if visited[ref] {
		return nil, &TypeResolutionError{Ref: ref.refName(), Reason: "circular lazy reference"}
	}
	visited[ref] = true

	if ref.thunk == nil {
		return nil, &TypeResolutionError{Ref: ref.refName(), Reason: "reference has no thunk"}
	}

	target := ref.thunk()
	if input.IsNil(target) {
		return nil, &TypeResolutionError{Ref: ref.refName(), Reason: "reference resolved to nil"}
	}

	var resolved Type
	if next, ok := target.(*LazyRef); ok {
		var err error
		resolved, err = resolveLazy(next, visited)
		if err != nil {
			return nil, err
		}
	} else {
		if terr := checkConcrete(target); terr != nil {
			return nil, &TypeResolutionError{Ref: ref.refName(), Reason: terr.Reason}
		}
		resolved = target
	}

	ref.mu.Lock()
	if ref.resolved == nil {
		ref.resolved = resolved
	}
	resolved = ref.resolved
	ref.mu.Unlock()

	return resolved, nil
}

// checkConcrete accepts primitives, arrays and structures.
func checkConcrete(t Type) *TypeResolutionError {
	switch t.(type) {
	case *Primitive, *Array, Structure:
		return nil
	default:
		return &TypeResolutionError{
			Ref:    t.Name(),
			Reason: "not a primitive or structure type",
		}
	}
}

func (r *LazyRef) refName() string {
	if r.name != "" {
		return r.name
	}
	return "lazy"
}
