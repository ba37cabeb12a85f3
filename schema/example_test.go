package schema_test

import (
	"fmt"

	"github.com/zero-day-ai/structure/schema"
)

func ExampleCompile() {
	s, err := schema.Compile(schema.Definitions{
		schema.Attr("name", schema.Field{Type: schema.String, Default: "Name"}),
		schema.Attr("password", map[string]any{"type": "string", "required": true, "minLength": 8}),
		schema.Attr("age", schema.Number),
		schema.Attr("tags", "[]string"),
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, d := range s.Descriptors() {
		fmt.Println(d.Name(), d.Type().Name(), d.Required(), d.Rules())
	}
	// Output:
	// name string false map[]
	// password string true map[minLength:8]
	// age number false map[]
	// tags []string false map[]
}

func ExampleParseYAML() {
	defs, err := schema.ParseYAML([]byte(`
name:     { type: string, default: Name }
password: { type: string, required: true }
age:      number
friends:  [User]
`))
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, d := range defs {
		fmt.Println(d.Name)
	}
	// Output:
	// name
	// password
	// age
	// friends
}

func ExampleCoerce() {
	v, _ := schema.Coerce([]any{"1", 2, "three"}, schema.ArrayOf(schema.Number))
	fmt.Println(v)
	// Output: [1 2 three]
}
