package structure

import (
	"context"
	"fmt"

	"github.com/zero-day-ai/structure/input"
	"github.com/zero-day-ai/structure/schema"
)

// owner is the structure type an Instance belongs to.
type owner interface {
	schema.Structure
	build(raw map[string]any) (Model, error)
	settings() *config
	countValidation(ctx context.Context, valid bool)
}

// Instance is the attribute store of one structure value. Embed *Instance in
// the base type to get the attribute accessors:
//
//	type Book struct {
//		*structure.Instance
//	}
//
// A slot is either unset (no entry) or materialized. Reads of unset slots go
// through the attribute's default and are memoized, so a computed default is
// only evaluated once until the slot is reassigned.
//
// Instances are not safe for concurrent use.
type Instance struct {
	owner  owner
	host   Model
	values map[string]any

	// pending is the stack of attributes whose defaults are being computed.
	pending []string
	cycle   *DefaultCycleError
}

// Store implements Model.
func (i *Instance) Store() *Instance { return i }

// Host returns the value built by the base constructor.
func (i *Instance) Host() Model { return i.host }

// Schema returns the compiled schema of the instance's structure type.
func (i *Instance) Schema() *schema.Schema { return i.owner.Schema() }

// StructureName returns the name of the instance's structure type.
func (i *Instance) StructureName() string { return i.owner.Name() }

// Get returns the value of a declared attribute, resolving and memoizing its
// default when the slot is unset. Attributes without a default read as nil.
func (i *Instance) Get(name string) (any, error) {
	d, ok := i.Schema().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	if v, ok := i.values[name]; ok {
		return v, nil
	}
	return i.resolveDefault(d)
}

// Set coerces v to the attribute's type and stores it, replacing any
// memoized value.
func (i *Instance) Set(name string, v any) error {
	d, ok := i.Schema().Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAttribute, name)
	}
	coerced, err := schema.Coerce(v, d.Type())
	if err != nil {
		return &Error{Op: "Instance.Set", Kind: KindResolution, Err: fmt.Errorf("attribute %q: %w", name, err)}
	}
	i.values[name] = coerced
	return nil
}

// IsSet reports whether the attribute's slot is materialized.
func (i *Instance) IsSet(name string) bool {
	_, ok := i.values[name]
	return ok
}

// Attributes materializes every declared attribute and returns a snapshot.
// The returned map is a copy; changing it does not affect the instance.
func (i *Instance) Attributes() (map[string]any, error) {
	descriptors := i.Schema().Descriptors()
	out := make(map[string]any, len(descriptors))
	for _, d := range descriptors {
		v, err := i.Get(d.Name())
		if err != nil {
			return nil, err
		}
		out[d.Name()] = v
	}
	return out, nil
}

// SetAttributes replaces the whole store. v must be a non-nil map with
// string keys; declared keys are coerced, unknown keys are dropped. On error
// the previous store is kept.
func (i *Instance) SetAttributes(v any) error {
	raw, ok := input.Map(v)
	if !ok {
		return &TypeError{Message: "#attributes can't be set to a non-object."}
	}

	next := make(map[string]any, i.Schema().Len())
	if err := coerceInto(next, i.Schema(), raw); err != nil {
		return &Error{Op: "Instance.SetAttributes", Kind: KindResolution, Err: err}
	}
	i.values = next
	return nil
}

// fill stores the declared keys of raw during construction.
func (i *Instance) fill(raw map[string]any) error {
	return coerceInto(i.values, i.Schema(), raw)
}

func coerceInto(dst map[string]any, s *schema.Schema, raw map[string]any) error {
	for _, d := range s.Descriptors() {
		v, ok := raw[d.Name()]
		if !ok {
			continue
		}
		coerced, err := schema.Coerce(v, d.Type())
		if err != nil {
			return fmt.Errorf("attribute %q: %w", d.Name(), err)
		}
		dst[d.Name()] = coerced
	}
	return nil
}

// resolveDefault computes, coerces and memoizes the default of an unset
// attribute. A default that reads its own attribute fails with
// *DefaultCycleError even when the default function drops the error.
func (i *Instance) resolveDefault(d *schema.Descriptor) (any, error) {
	if !d.HasDefault() {
		return nil, nil
	}
	name := d.Name()

	for idx, p := range i.pending {
		if p == name {
			chain := append(append([]string(nil), i.pending[idx:]...), name)
			err := &DefaultCycleError{Attribute: name, Chain: chain}
			if i.cycle == nil {
				i.cycle = err
			}
			return nil, err
		}
	}

	if d.DefaultIsFunc() && i.host == nil {
		return nil, fmt.Errorf("default for %q: %w", name, ErrConstructing)
	}

	i.pending = append(i.pending, name)
	raw, err := d.DefaultValue(i.host)
	i.pending = i.pending[:len(i.pending)-1]

	if i.cycle != nil {
		cycle := i.cycle
		if len(i.pending) == 0 {
			i.cycle = nil
		}
		return nil, cycle
	}
	if err != nil {
		return nil, fmt.Errorf("default for %q: %w", name, err)
	}

	coerced, err := schema.Coerce(raw, d.Type())
	if err != nil {
		return nil, fmt.Errorf("default for %q: %w", name, err)
	}
	i.values[name] = coerced

	i.owner.settings().logger.Debug("resolved default",
		"structure", i.owner.Name(),
		"attribute", name,
		"computed", d.DefaultIsFunc(),
	)
	return coerced, nil
}

// Value reads an attribute as V. A nil value yields the zero V.
func Value[V any](m Model, name string) (V, error) {
	var zero V

	v, err := m.Store().Get(name)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	out, ok := v.(V)
	if !ok {
		return zero, &Error{Op: "Value", Kind: KindType, Err: fmt.Errorf("attribute %q is %T, not %T", name, v, zero)}
	}
	return out, nil
}
