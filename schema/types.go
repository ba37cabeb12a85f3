package schema

import (
	"fmt"
	"math"
	"time"

	"github.com/zero-day-ai/structure/input"
)

// Kind identifies the variant of a Type.
type Kind int

const (
	// KindPrimitive is a scalar type with its own coercion and type check.
	KindPrimitive Kind = iota

	// KindStructure is a nested structure governed by its own Schema.
	KindStructure

	// KindArray is a list whose elements share one item type.
	KindArray

	// KindLazy is an unresolved reference to another type.
	KindLazy
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindStructure:
		return "structure"
	case KindArray:
		return "array"
	case KindLazy:
		return "lazy"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Type is an attribute type. Concrete types are *Primitive, *Array and
// implementations of Structure; *LazyRef defers to one of those.
type Type interface {
	Kind() Kind
	Name() string
}

// Structure is a type whose values are instances built from a compiled Schema.
type Structure interface {
	Type

	// Schema returns the compiled schema shared by every instance.
	Schema() *Schema

	// Build constructs a new instance from raw attributes without validating it.
	Build(raw map[string]any) (any, error)

	// Owns reports whether v is an instance of this structure.
	Owns(v any) bool
}

// CoerceFunc converts a raw value to a primitive's representation.
// It never fails: when no conversion applies it returns v unchanged.
type CoerceFunc func(v any) any

// CheckFunc reports why v does not conform to a primitive, as a message
// suffix such as "must be a number". It returns "" when v conforms.
type CheckFunc func(v any) string

// Primitive is a scalar attribute type.
type Primitive struct {
	name   string
	coerce CoerceFunc
	check  CheckFunc
}

// NewPrimitive creates a primitive type. A nil coerce is the identity and a
// nil check accepts every value.
func NewPrimitive(name string, coerce CoerceFunc, check CheckFunc) *Primitive {
	return &Primitive{name: name, coerce: coerce, check: check}
}

// Kind implements Type.
func (p *Primitive) Kind() Kind { return KindPrimitive }

// Name implements Type.
func (p *Primitive) Name() string { return p.name }

// Coerce applies the primitive's coercion rule.
func (p *Primitive) Coerce(v any) any {
	if p.coerce == nil || v == nil {
		return v
	}
	return p.coerce(v)
}

// Check applies the primitive's type check.
func (p *Primitive) Check(v any) string {
	if p.check == nil {
		return ""
	}
	return p.check(v)
}

// Built-in primitives.
var (
	// String holds Go strings. Numbers and booleans are formatted.
	String = NewPrimitive("string", coerceString, checkString)

	// Number holds float64 values. Numeric strings are parsed.
	Number = NewPrimitive("number", coerceNumber, checkNumber)

	// Integer holds int64 values. Integral numbers and integer strings are converted.
	Integer = NewPrimitive("integer", coerceInteger, checkInteger)

	// Boolean holds bool values.
	Boolean = NewPrimitive("boolean", coerceBoolean, checkBoolean)

	// Date holds time.Time values. RFC3339 strings and unix milliseconds are converted.
	Date = NewPrimitive("date", coerceDate, checkDate)

	// Any accepts every value unchanged.
	Any = NewPrimitive("any", nil, nil)
)

func coerceString(v any) any {
	if s, ok := input.String(v); ok {
		return s
	}
	return v
}

func checkString(v any) string {
	if _, ok := v.(string); ok {
		return ""
	}
	return "must be a string"
}

func coerceNumber(v any) any {
	if _, ok := v.(bool); ok {
		return v
	}
	if f, ok := input.Float64(v); ok {
		return f
	}
	return v
}

func checkNumber(v any) string {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return "must be a number"
	}
	return ""
}

func coerceInteger(v any) any {
	if _, ok := v.(bool); ok {
		return v
	}
	if i, ok := input.Int64(v); ok {
		return i
	}
	return v
}

func checkInteger(v any) string {
	if _, ok := v.(int64); ok {
		return ""
	}
	if input.IsNumber(v) {
		return "must be an integer"
	}
	return "must be a number"
}

func coerceBoolean(v any) any {
	if b, ok := input.Bool(v); ok {
		return b
	}
	return v
}

func checkBoolean(v any) string {
	if _, ok := v.(bool); ok {
		return ""
	}
	return "must be a boolean"
}

func coerceDate(v any) any {
	if t, ok := input.Time(v); ok {
		return t
	}
	return v
}

func checkDate(v any) string {
	if _, ok := v.(time.Time); ok {
		return ""
	}
	return "must be a valid date"
}

// Array is a list type. Its item type may be lazy.
type Array struct {
	item Type
}

// ArrayOf creates an array type whose elements are coerced to and validated
// against item.
func ArrayOf(item Type) *Array {
	return &Array{item: item}
}

// Kind implements Type.
func (a *Array) Kind() Kind { return KindArray }

// Name implements Type.
func (a *Array) Name() string {
	if a.item == nil {
		return "[]"
	}
	return "[]" + a.item.Name()
}

// Item resolves and returns the element type.
func (a *Array) Item() (Type, error) {
	if a.item == nil {
		return nil, &TypeResolutionError{Ref: a.Name(), Reason: "array has no item type"}
	}
	return Resolve(a.item)
}
