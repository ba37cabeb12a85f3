// Package structure augments plain Go types with a declared set of typed,
// validated, defaultable attributes.
//
// A structure value behaves like an ordinary Go value with its own methods
// and constructor side effects, but its attribute slots are schema-governed:
// coerced on input, lazily defaulted, validated on demand and clonable with
// overwrite semantics.
//
// # Core Concepts
//
//   - Schema: the immutable, ordered attribute descriptors of one structure (package schema)
//   - Instance: the attribute store of one value, embedded by the base type
//   - Type: a base constructor plus a compiled schema; builds instances
//   - Checker: the rule collaborator that checks rule options (package rules)
//
// # Defining a Structure
//
// A structure is defined in two stages: Attributes compiles the definitions
// and returns a Decorator, which is applied to the base constructor:
//
//	type User struct {
//		*structure.Instance
//		Stuff string
//	}
//
//	func (u *User) Greeting() string {
//		name, _ := structure.Value[string](u, "name")
//		return "Hello, " + name
//	}
//
//	var UserType = structure.Must(structure.Attributes[*User](schema.Definitions{
//		schema.Attr("name", schema.Field{Type: schema.String, Default: "Name"}),
//		schema.Attr("nickname", schema.Field{
//			Type:    schema.String,
//			Default: func(u *User) any { return u.Greeting() },
//		}),
//		schema.Attr("password", schema.Field{Type: schema.String, Required: true}),
//	})(func(inst *structure.Instance) *User {
//		return &User{Instance: inst, Stuff: "Stuff value"}
//	}))
//
// # Building and Validating
//
//	user, err := UserType.New(map[string]any{"name": "Jane"})
//	records, err := user.Validate()
//	// records: [{"password" is required password}]
//
//	_, err = UserType.BuildStrict(map[string]any{})
//	var verr *structure.ValidationError
//	if errors.As(err, &verr) {
//		fmt.Println(verr.Details)
//	}
//
// # Defaults
//
// Defaults are computed on first read and memoized. A default function
// receives the host value and may read other attributes and call methods, so
// defaults can depend on each other in any declaration order. A default that
// reads its own attribute fails with *DefaultCycleError.
//
// # Nested and Circular Structures
//
// A *Type can be used as an attribute type. Use schema.Lazy to refer to a
// structure declared later, or to two structures that embed each other.
// Instances already owned by the nested structure are stored by reference,
// so aliasing and cycles are preserved. Validation descends into nested
// instances with dotted paths such as "favoriteBook.pages".
//
// # Observability
//
// Logging uses log/slog (WithLogger). Every validation starts a
// "structure.validate" span (WithTracer) and increments the
// "structure.validations" counter (WithMeter).
package structure
