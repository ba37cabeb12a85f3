package structure_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/structure"
	"github.com/zero-day-ai/structure/schema"
)

type User struct {
	*structure.Instance
	Stuff string
}

func newUser(inst *structure.Instance) *User {
	return &User{Instance: inst, Stuff: "Stuff value"}
}

func (u *User) UserMethod() string {
	return "I'm a user method"
}

func (u *User) MethodUsingAttr() string {
	name, _ := structure.Value[string](u, "name")
	return name + " with method"
}

type Book struct {
	*structure.Instance
}

func newBook(inst *structure.Instance) *Book {
	return &Book{Instance: inst}
}

// library holds two structures that embed each other.
type library struct {
	users *structure.Type[*User]
	books *structure.Type[*Book]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func userDefinitions(lib *library) schema.Definitions {
	bookRef := schema.Lazy(func() schema.Type { return lib.books })
	return schema.Definitions{
		schema.Attr("name", schema.Field{Type: schema.String, Default: "Name"}),
		schema.Attr("nickname", schema.Field{
			Type: schema.String,
			Default: func(u *User) any {
				name, _ := structure.Value[string](u, "name")
				return name
			},
		}),
		schema.Attr("attrUsingMethodUsingAttr", schema.Field{
			Type:    schema.String,
			Default: func(u *User) any { return u.MethodUsingAttr() },
		}),
		schema.Attr("password", schema.Field{Type: schema.String, Required: true}),
		schema.Attr("age", schema.Field{Type: schema.Number, Rules: schema.Options{"min": 0}}),
		schema.Attr("favoriteBook", bookRef),
		schema.Attr("books", schema.ArrayOf(bookRef)),
	}
}

func bookDefinitions(lib *library) schema.Definitions {
	return schema.Definitions{
		schema.Attr("title", schema.String),
		schema.Attr("pages", schema.Number),
		schema.Attr("owner", schema.Lazy(func() schema.Type { return lib.users })),
	}
}

// newLibrary defines User before Book.
func newLibrary(t testing.TB, opts ...structure.Option) *library {
	t.Helper()

	opts = append([]structure.Option{structure.WithLogger(quietLogger())}, opts...)

	lib := &library{}
	var err error
	lib.users, err = structure.Attributes[*User](userDefinitions(lib), opts...)(newUser)
	require.NoError(t, err)
	lib.books, err = structure.Attributes[*Book](bookDefinitions(lib), opts...)(newBook)
	require.NoError(t, err)
	return lib
}

// newLibraryReversed defines Book before User.
func newLibraryReversed(t testing.TB) *library {
	t.Helper()

	lib := &library{}
	var err error
	lib.books, err = structure.Attributes[*Book](bookDefinitions(lib), structure.WithLogger(quietLogger()))(newBook)
	require.NoError(t, err)
	lib.users, err = structure.Attributes[*User](userDefinitions(lib), structure.WithLogger(quietLogger()))(newUser)
	require.NoError(t, err)
	return lib
}
