package structure

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/zero-day-ai/structure/input"
	"github.com/zero-day-ai/structure/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
)

// Model is implemented by every structure value. Types embedding *Instance
// get it for free.
type Model interface {
	Store() *Instance
}

// Base runs the base constructor. It receives the new instance's attribute
// store and must return a T that embeds it.
type Base[T Model] func(inst *Instance) T

// Decorator attaches a compiled schema to a base constructor.
type Decorator[T Model] func(base Base[T]) (*Type[T], error)

// Attributes compiles defs and returns a Decorator that produces the
// structure type for a base constructor:
//
//	type User struct {
//		*structure.Instance
//		Stuff string
//	}
//
//	var UserType = structure.Must(structure.Attributes[*User](defs)(
//		func(inst *structure.Instance) *User {
//			return &User{Instance: inst, Stuff: "Stuff value"}
//		},
//	))
//
// The schema is compiled when the Decorator is applied. A nil base is
// accepted when T is *Instance.
func Attributes[T Model](defs schema.Definitions, opts ...Option) Decorator[T] {
	return func(base Base[T]) (*Type[T], error) {
		return define(defs, base, opts)
	}
}

// Must panics if err is non-nil. It is intended for package-level structure
// variables.
func Must[T Model](t *Type[T], err error) *Type[T] {
	if err != nil {
		panic(err)
	}
	return t
}

// Type is a structure type: a base constructor plus a compiled schema. It is
// safe for concurrent use; the instances it builds are not.
type Type[T Model] struct {
	name        string
	schema      *schema.Schema
	base        Base[T]
	cfg         *config
	validations metric.Int64Counter
}

func define[T Model](defs schema.Definitions, base Base[T], opts []Option) (*Type[T], error) {
	cfg := newConfig(opts)

	if base == nil {
		var zero T
		if _, ok := any(zero).(*Instance); !ok {
			return nil, &Error{Op: "Attributes", Kind: KindSchema, Err: errors.New("base constructor is required")}
		}
		base = func(inst *Instance) T { return any(inst).(T) }
	}

	name := cfg.name
	if name == "" {
		name = typeName[T]()
	}

	compiled, err := schema.Compile(defs,
		schema.WithRegistry(cfg.registry),
		schema.WithStrictError(cfg.strictError),
		schema.WithDefaultAdapter(hostDefault[T]),
	)
	if err != nil {
		return nil, &Error{Op: "Attributes", Kind: KindSchema, Err: fmt.Errorf("%s: %w", name, err)}
	}

	validations, err := cfg.meter.Int64Counter(
		"structure.validations",
		metric.WithDescription("Number of validations performed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		cfg.logger.Warn("failed to create validation counter", "structure", name, "error", err)
		validations, _ = metricnoop.Meter{}.Int64Counter("structure.validations")
	}

	t := &Type[T]{
		name:        name,
		schema:      compiled,
		base:        base,
		cfg:         cfg,
		validations: validations,
	}

	if cfg.registry != nil {
		if err := cfg.registry.Register(name, t); err != nil {
			return nil, &Error{Op: "Attributes", Kind: KindSchema, Err: err}
		}
	}

	cfg.logger.Debug("defined structure", "structure", name, "attributes", compiled.Len())
	return t, nil
}

// typeName returns the name of T, dereferencing pointers.
func typeName[T any]() string {
	rt := reflect.TypeFor[T]()
	for rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
	}
	if rt.Name() != "" {
		return rt.Name()
	}
	return rt.String()
}

// hostDefault recognizes default functions taking the concrete host type.
func hostDefault[T Model](v any) (schema.DefaultFunc, bool) {
	switch fn := v.(type) {
	case func(T) any:
		return func(host any) (any, error) {
			h, err := asHost[T](host)
			if err != nil {
				return nil, err
			}
			return fn(h), nil
		}, true
	case func(T) (any, error):
		return func(host any) (any, error) {
			h, err := asHost[T](host)
			if err != nil {
				return nil, err
			}
			return fn(h)
		}, true
	}
	return nil, false
}

func asHost[T Model](host any) (T, error) {
	h, ok := host.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("default function expects %T, got %T", zero, host)
	}
	return h, nil
}

// Kind implements schema.Type.
func (t *Type[T]) Kind() schema.Kind { return schema.KindStructure }

// Name implements schema.Type.
func (t *Type[T]) Name() string { return t.name }

// Schema returns the compiled schema shared by every instance.
func (t *Type[T]) Schema() *schema.Schema { return t.schema }

// Build implements schema.Structure. It is New returning any.
func (t *Type[T]) Build(raw map[string]any) (any, error) {
	return t.New(raw)
}

// Owns reports whether v was built by this structure type.
func (t *Type[T]) Owns(v any) bool {
	if input.IsNil(v) {
		return false
	}
	m, ok := v.(Model)
	if !ok {
		return false
	}
	inst := m.Store()
	return inst != nil && inst.owner == t
}

// New builds an instance from raw attributes without validating it.
//
// Declared keys are coerced and stored; unknown keys are dropped. Coercion
// does not reject values, so New only fails on engine faults such as an
// unresolvable type or a base constructor that does not embed the instance.
// raw is not modified.
func (t *Type[T]) New(raw map[string]any) (T, error) {
	var zero T

	inst := &Instance{
		owner:  t,
		values: make(map[string]any, t.schema.Len()),
	}
	if err := inst.fill(raw); err != nil {
		return zero, &Error{Op: "Type.New", Kind: KindResolution, Err: fmt.Errorf("%s: %w", t.name, err)}
	}

	host := t.base(inst)
	if input.IsNil(host) || host.Store() != inst {
		return zero, &Error{Op: "Type.New", Kind: KindType, Err: fmt.Errorf("%s: %w", t.name, ErrForeignInstance)}
	}
	inst.host = host

	for key := range raw {
		if !t.schema.Has(key) {
			t.cfg.logger.Debug("dropping unknown attribute", "structure", t.name, "attribute", key)
		}
	}

	return host, nil
}

// BuildStrict builds an instance and validates it. When validation fails it
// returns the error produced by the schema's ErrorFactory, *ValidationError
// by default.
func (t *Type[T]) BuildStrict(raw map[string]any) (T, error) {
	return t.BuildStrictContext(context.Background(), raw)
}

// BuildStrictContext is BuildStrict with a context for tracing.
func (t *Type[T]) BuildStrictContext(ctx context.Context, raw map[string]any) (T, error) {
	var zero T

	host, err := t.New(raw)
	if err != nil {
		return zero, err
	}
	if err := host.Store().strict(ctx); err != nil {
		return zero, err
	}
	return host, nil
}

func (t *Type[T]) build(raw map[string]any) (Model, error) {
	return t.New(raw)
}

func (t *Type[T]) settings() *config { return t.cfg }

func (t *Type[T]) countValidation(ctx context.Context, valid bool) {
	t.validations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("structure", t.name),
		attribute.Bool("valid", valid),
	))
}
