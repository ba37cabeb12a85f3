package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// Options is the opaque bag of rule options attached to an attribute. The
// schema never interprets it; it is forwarded verbatim to the rule checker.
type Options map[string]any

// Definition is one raw attribute definition. Spec is either a bare type
// (a Type or a type name) or a full descriptor (a Field or a map with the
// keys "type", "default", "required" and any rule options).
type Definition struct {
	Name string
	Spec any
}

// Definitions is an ordered list of raw attribute definitions. Declaration
// order is kept by the compiled schema and by validation output.
type Definitions []Definition

// Attr creates a Definition.
func Attr(name string, spec any) Definition {
	return Definition{Name: name, Spec: spec}
}

// Field is the typed form of a full attribute descriptor.
type Field struct {
	// Type is a Type or a type name.
	Type any

	// Default is a static value or a default function invoked with the
	// instance on first read.
	Default any

	// Required makes a missing value a validation error.
	Required bool

	// Rules are forwarded to the rule checker.
	Rules Options
}

// DefaultFunc computes a default from the host instance that is reading it.
type DefaultFunc func(host any) (any, error)

// reservedNames collide with the generated instance surface.
var reservedNames = map[string]bool{
	"attributes":  true,
	"clone":       true,
	"buildStrict": true,
}

// Descriptor is a compiled, immutable attribute definition.
type Descriptor struct {
	name       string
	typ        Type
	required   bool
	rules      Options
	hasDefault bool
	static     any
	fn         DefaultFunc
}

// Name returns the attribute name.
func (d *Descriptor) Name() string { return d.name }

// Type returns the declared type, which may be a *LazyRef.
func (d *Descriptor) Type() Type { return d.typ }

// ResolveType returns the concrete type, resolving a lazy reference on first use.
func (d *Descriptor) ResolveType() (Type, error) { return Resolve(d.typ) }

// Required reports whether the attribute is required.
func (d *Descriptor) Required() bool { return d.required }

// Rules returns a copy of the rule options.
func (d *Descriptor) Rules() Options {
	if d.rules == nil {
		return nil
	}
	out := make(Options, len(d.rules))
	for k, v := range d.rules {
		out[k] = v
	}
	return out
}

// HasDefault reports whether a default is declared.
func (d *Descriptor) HasDefault() bool { return d.hasDefault }

// DefaultIsFunc reports whether the default is computed rather than static.
func (d *Descriptor) DefaultIsFunc() bool { return d.fn != nil }

// DefaultValue returns the uncoerced default for host: the static value, or
// the result of the default function called with host.
func (d *Descriptor) DefaultValue(host any) (any, error) {
	if d.fn != nil {
		return d.fn(host)
	}
	return d.static, nil
}

// Schema is the immutable, ordered set of descriptors for one structure. It is
// shared by every instance and safe for concurrent reads.
type Schema struct {
	descriptors []*Descriptor
	index       map[string]int
	strictError ErrorFactory
}

// Descriptors returns the descriptors in declaration order.
func (s *Schema) Descriptors() []*Descriptor {
	out := make([]*Descriptor, len(s.descriptors))
	copy(out, s.descriptors)
	return out
}

// Lookup returns the descriptor for name.
func (s *Schema) Lookup(name string) (*Descriptor, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.descriptors[i], true
}

// Has reports whether name is a declared attribute.
func (s *Schema) Has(name string) bool {
	_, ok := s.index[name]
	return ok
}

// Names returns the attribute names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.descriptors))
	for i, d := range s.descriptors {
		names[i] = d.name
	}
	return names
}

// Len returns the number of attributes.
func (s *Schema) Len() int { return len(s.descriptors) }

// StrictError builds the error for a failed strict operation using the
// configured factory.
func (s *Schema) StrictError(details []ErrorRecord) error {
	if s.strictError == nil {
		return fmt.Errorf("invalid attributes: %v", details)
	}
	return s.strictError(details)
}

// CompileOption configures Compile.
type CompileOption func(*compileConfig)

type compileConfig struct {
	registry       *Registry
	strictError    ErrorFactory
	defaultAdapter func(v any) (DefaultFunc, bool)
}

// WithRegistry resolves type names through reg.
func WithRegistry(reg *Registry) CompileOption {
	return func(c *compileConfig) {
		c.registry = reg
	}
}

// WithStrictError sets the factory used by strict operations.
func WithStrictError(f ErrorFactory) CompileOption {
	return func(c *compileConfig) {
		c.strictError = f
	}
}

// WithDefaultAdapter recognizes additional default function signatures, such
// as functions taking a concrete host type.
func WithDefaultAdapter(adapt func(v any) (DefaultFunc, bool)) CompileOption {
	return func(c *compileConfig) {
		c.defaultAdapter = adapt
	}
}

// Compile normalizes raw definitions into a Schema.
//
// Example:
//
//	s, err := schema.Compile(schema.Definitions{
//		schema.Attr("name", schema.Field{Type: schema.String, Default: "Name"}),
//		schema.Attr("age", schema.Number),
//		schema.Attr("password", map[string]any{"type": "string", "required": true, "minLength": 8}),
//	})
func Compile(defs Definitions, opts ...CompileOption) (*Schema, error) {
	cfg := &compileConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s := &Schema{
		descriptors: make([]*Descriptor, 0, len(defs)),
		index:       make(map[string]int, len(defs)),
		strictError: cfg.strictError,
	}

	for _, def := range defs {
		if def.Name == "" {
			return nil, &SchemaError{Reason: "attribute name is empty"}
		}
		if reservedNames[def.Name] {
			return nil, &SchemaError{Attribute: def.Name, Reason: "name is reserved"}
		}
		if _, dup := s.index[def.Name]; dup {
			return nil, &SchemaError{Attribute: def.Name, Reason: "attribute declared twice"}
		}

		d, err := cfg.descriptor(def)
		if err != nil {
			return nil, err
		}

		s.index[d.name] = len(s.descriptors)
		s.descriptors = append(s.descriptors, d)
	}

	return s, nil
}

// descriptor normalizes one definition.
func (c *compileConfig) descriptor(def Definition) (*Descriptor, error) {
	d := &Descriptor{name: def.Name}

	switch spec := def.Spec.(type) {
	case Field:
		return c.fill(d, spec.Type, spec.Default, spec.Default != nil, spec.Required, spec.Rules)
	case *Field:
		if spec == nil {
			return nil, &SchemaError{Attribute: def.Name, Reason: "nil descriptor"}
		}
		return c.fill(d, spec.Type, spec.Default, spec.Default != nil, spec.Required, spec.Rules)
	case map[string]any:
		return c.fromMap(d, spec)
	case Options:
		return c.fromMap(d, spec)
	default:
		// Bare type shorthand.
		return c.fill(d, spec, nil, false, false, nil)
	}
}

// fromMap splits a descriptor object into its recognized keys and the rule
// options that pass through.
func (c *compileConfig) fromMap(d *Descriptor, m map[string]any) (*Descriptor, error) {
	var rules Options
	for k, v := range m {
		switch k {
		case "type", "default", "required":
		default:
			if rules == nil {
				rules = make(Options)
			}
			rules[k] = v
		}
	}

	required := false
	if r, ok := m["required"]; ok {
		b, isBool := r.(bool)
		if !isBool {
			return nil, &SchemaError{Attribute: d.name, Reason: fmt.Sprintf("required must be a bool, got %T", r)}
		}
		required = b
	}

	def, hasDefault := m["default"]
	return c.fill(d, m["type"], def, hasDefault, required, rules)
}

func (c *compileConfig) fill(d *Descriptor, typ any, def any, hasDefault bool, required bool, rules Options) (*Descriptor, error) {
	t, err := c.typeOf(d.name, typ)
	if err != nil {
		return nil, err
	}
	d.typ = t
	d.required = required
	if len(rules) > 0 {
		d.rules = make(Options, len(rules))
		for k, v := range rules {
			d.rules[k] = v
		}
	}

	if hasDefault {
		d.hasDefault = true
		if def != nil && reflect.TypeOf(def).Kind() == reflect.Func {
			fn, ok := c.defaultFunc(def)
			if !ok {
				return nil, &SchemaError{
					Attribute: d.name,
					Reason:    fmt.Sprintf("unsupported default function signature %T", def),
				}
			}
			d.fn = fn
		} else {
			d.static = def
		}
	}

	return d, nil
}

// typeOf normalizes a type spec.
func (c *compileConfig) typeOf(attr string, spec any) (Type, error) {
	switch t := spec.(type) {
	case nil:
		return nil, &SchemaError{Attribute: attr, Reason: "type is missing"}
	case string:
		name := strings.TrimSpace(t)
		if strings.HasPrefix(name, "[]") {
			item, err := c.typeOf(attr, strings.TrimPrefix(name, "[]"))
			if err != nil {
				return nil, err
			}
			return ArrayOf(item), nil
		}
		resolved, err := typeByName(name, c.registry)
		if err != nil {
			return nil, &SchemaError{Attribute: attr, Reason: "unresolved type", Cause: err}
		}
		return resolved, nil
	case *LazyRef:
		if t == nil {
			return nil, &SchemaError{Attribute: attr, Reason: "type is missing"}
		}
		return t, nil
	case Type:
		resolved, err := Resolve(t)
		if err != nil {
			return nil, &SchemaError{Attribute: attr, Reason: "unresolved type", Cause: err}
		}
		return resolved, nil
	default:
		return nil, &SchemaError{Attribute: attr, Reason: fmt.Sprintf("unsupported type spec %T", spec)}
	}
}

// defaultFunc recognizes default function signatures.
func (c *compileConfig) defaultFunc(v any) (DefaultFunc, bool) {
	switch fn := v.(type) {
	case DefaultFunc:
		return fn, true
	case func(any) (any, error):
		return fn, true
	case func(any) any:
		return func(host any) (any, error) { return fn(host), nil }, true
	case func() any:
		return func(any) (any, error) { return fn(), nil }, true
	}

	if c.defaultAdapter != nil {
		return c.defaultAdapter(v)
	}
	return nil, false
}
