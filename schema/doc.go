// Package schema compiles attribute definitions into immutable schemas and
// converts raw values into attribute types.
//
// A schema is an ordered list of descriptors. Each descriptor has a name, a
// type, an optional default (a static value or a function of the instance),
// a required flag and an opaque bag of rule options that is forwarded to a
// rule checker during validation.
//
// # Defining Attributes
//
// Definitions keep declaration order, which is also the order of validation
// output:
//
//	defs := schema.Definitions{
//		schema.Attr("name", schema.Field{Type: schema.String, Default: "Name"}),
//		schema.Attr("password", schema.Field{Type: schema.String, Required: true}),
//		schema.Attr("age", schema.Number),
//		schema.Attr("nickname", map[string]any{"type": "string", "minLength": 3}),
//	}
//	s, err := schema.Compile(defs)
//
// The same definitions in YAML:
//
//	name:     { type: string, default: Name }
//	password: { type: string, required: true }
//	age:      number
//	nickname: { type: string, minLength: 3 }
//
// # Types
//
// Built-in primitives are String, Number, Integer, Boolean, Date and Any.
// ArrayOf builds list types. Structures are provided by the structure
// package; any value implementing Structure can be used as a type.
//
// # Forward and Circular References
//
// A LazyRef defers resolution until the type is first needed, so two
// structures may embed each other regardless of which is defined first:
//
//	var User, Book *structure.Type[*UserModel]
//	userDefs := schema.Definitions{
//		schema.Attr("favoriteBook", schema.Lazy(func() schema.Type { return Book })),
//	}
//
// A Registry gives the same behavior by name, which is how YAML definitions
// refer to structures.
//
// # Coercion
//
// Coerce never rejects a value. Numeric strings become numbers, numbers become
// strings, plain maps become nested instances; anything that cannot be
// converted is kept so that validation can report it.
package schema
