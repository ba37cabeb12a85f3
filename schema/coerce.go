package schema

import (
	"fmt"

	"github.com/zero-day-ai/structure/input"
)

// Coerce converts raw into t's representation.
//
// Coercion does not reject values: a value that cannot be converted is
// returned unchanged so that validation reports it. nil passes through; the
// caller decides whether a missing value means "unset". Errors are limited to
// unresolvable types and failures while constructing nested instances.
//
// Structure values are handled by identity: an instance already owned by the
// structure is returned as is, preserving aliasing and cycles, while a plain
// mapping becomes a new nested instance.
func Coerce(raw any, t Type) (any, error) {
	if raw == nil {
		return nil, nil
	}

	resolved, err := Resolve(t)
	if err != nil {
		return nil, err
	}

	switch rt := resolved.(type) {
	case *Primitive:
		return rt.Coerce(raw), nil

	case *Array:
		items, ok := input.Slice(raw)
		if !ok {
			return raw, nil
		}
		item, err := rt.Item()
		if err != nil {
			return nil, err
		}
		out := make([]any, len(items))
		for i, v := range items {
			coerced, err := Coerce(v, item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			out[i] = coerced
		}
		return out, nil

	case Structure:
		if rt.Owns(raw) {
			return raw, nil
		}
		m, ok := input.Map(raw)
		if !ok {
			return raw, nil
		}
		nested, err := rt.Build(m)
		if err != nil {
			return nil, fmt.Errorf("build %s: %w", rt.Name(), err)
		}
		return nested, nil

	default:
		return raw, nil
	}
}
