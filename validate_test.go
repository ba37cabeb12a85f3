package structure_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/structure"
	"github.com/zero-day-ai/structure/rules"
	"github.com/zero-day-ai/structure/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func record(path, message string) schema.ErrorRecord {
	return schema.ErrorRecord{Message: message, Path: path}
}

func TestValidate(t *testing.T) {
	lib := newLibrary(t)

	tests := []struct {
		name string
		raw  map[string]any
		want []schema.ErrorRecord
	}{
		{
			name: "valid",
			raw:  map[string]any{"password": "pw", "age": 20},
			want: nil,
		},
		{
			name: "missing required",
			raw:  map[string]any{},
			want: []schema.ErrorRecord{record("password", `"password" is required`)},
		},
		{
			name: "explicit nil required",
			raw:  map[string]any{"password": nil},
			want: []schema.ErrorRecord{record("password", `"password" is required`)},
		},
		{
			name: "empty required string",
			raw:  map[string]any{"password": ""},
			want: []schema.ErrorRecord{record("password", `"password" is not allowed to be empty`)},
		},
		{
			name: "declaration order",
			raw:  map[string]any{"age": "old"},
			want: []schema.ErrorRecord{
				record("password", `"password" is required`),
				record("age", `"age" must be a number`),
			},
		},
		{
			name: "rule option",
			raw:  map[string]any{"password": "pw", "age": -1},
			want: []schema.ErrorRecord{record("age", `"age" must be greater than or equal to 0`)},
		},
		{
			name: "nested path",
			raw: map[string]any{
				"password":     "pw",
				"favoriteBook": map[string]any{"pages": "many"},
			},
			want: []schema.ErrorRecord{record("favoriteBook.pages", `"pages" must be a number`)},
		},
		{
			name: "nested value of the wrong shape",
			raw:  map[string]any{"password": "pw", "favoriteBook": "Dune"},
			want: []schema.ErrorRecord{record("favoriteBook", `"favoriteBook" must be an object`)},
		},
		{
			name: "array element path",
			raw: map[string]any{
				"password": "pw",
				"books": []any{
					map[string]any{"pages": 10},
					map[string]any{"pages": "many"},
				},
			},
			want: []schema.ErrorRecord{record("books.1.pages", `"pages" must be a number`)},
		},
		{
			name: "array element of the wrong shape",
			raw:  map[string]any{"password": "pw", "books": []any{"Dune"}},
			want: []schema.ErrorRecord{record("books.0", `"0" must be an object`)},
		},
		{
			name: "not an array",
			raw:  map[string]any{"password": "pw", "books": "Dune"},
			want: []schema.ErrorRecord{record("books", `"books" must be an array`)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := lib.users.New(tt.raw)
			require.NoError(t, err)

			records, err := user.Validate()
			require.NoError(t, err)
			assert.Equal(t, tt.want, records)
		})
	}
}

func TestValidate_WrongStructure(t *testing.T) {
	lib := newLibrary(t)

	other, err := lib.users.New(nil)
	require.NoError(t, err)
	user, err := lib.users.New(map[string]any{"password": "pw"})
	require.NoError(t, err)
	require.NoError(t, user.Set("favoriteBook", other))

	records, err := user.Validate()
	require.NoError(t, err)
	assert.Equal(t, []schema.ErrorRecord{
		record("favoriteBook", `"favoriteBook" must be an instance of Book`),
	}, records)
}

func TestValidate_DeepNesting(t *testing.T) {
	lib := newLibrary(t)

	user, err := lib.users.New(map[string]any{
		"password": "pw",
		"favoriteBook": map[string]any{
			"owner": map[string]any{"age": "young"},
		},
	})
	require.NoError(t, err)

	records, err := user.Validate()
	require.NoError(t, err)
	assert.Equal(t, []schema.ErrorRecord{
		record("favoriteBook.owner.password", `"password" is required`),
		record("favoriteBook.owner.age", `"age" must be a number`),
	}, records)
}

func TestValidate_CustomChecker(t *testing.T) {
	var labels []string
	checker := rules.CheckerFunc(func(label string, _ schema.Type, value any, opts schema.Options) []rules.Violation {
		labels = append(labels, label)
		if opts["even"] == true {
			if n, ok := value.(float64); ok && int(n)%2 != 0 {
				return []rules.Violation{{Rule: "even", Message: fmt.Sprintf("%q must be even", label)}}
			}
		}
		return nil
	})

	typ, err := structure.Attributes[*structure.Instance](schema.Definitions{
		schema.Attr("count", map[string]any{"type": "number", "even": true}),
		schema.Attr("label", schema.String),
	}, structure.WithChecker(checker), structure.WithLogger(quietLogger()))(nil)
	require.NoError(t, err)

	inst, err := typ.New(map[string]any{"count": 3, "label": "x"})
	require.NoError(t, err)

	records, err := inst.Validate()
	require.NoError(t, err)
	assert.Equal(t, []schema.ErrorRecord{record("count", `"count" must be even`)}, records)
	assert.Equal(t, []string{"count"}, labels, "attributes without rule options skip the checker")
}

func TestValidate_StandardRules(t *testing.T) {
	typ, err := structure.Attributes[*structure.Instance](schema.Definitions{
		schema.Attr("nickname", map[string]any{"type": "string", "minLength": 3}),
		schema.Attr("id", map[string]any{"type": "string", "uuid": true}),
		schema.Attr("email", map[string]any{"type": "string", "email": true}),
		schema.Attr("tags", map[string]any{"type": "[]string", "maxLength": 1}),
		schema.Attr("score", map[string]any{"type": "number", "expr": "value <= 100"}),
		schema.Attr("title", map[string]any{"type": "string", "cel": "value.startsWith('A')"}),
	}, structure.WithLogger(quietLogger()))(nil)
	require.NoError(t, err)

	inst, err := typ.New(map[string]any{
		"nickname": "ab",
		"id":       "nope",
		"email":    "nope",
		"tags":     []string{"a", "b"},
		"score":    "101",
		"title":    "Bravo",
	})
	require.NoError(t, err)

	records, err := inst.Validate()
	require.NoError(t, err)
	assert.Equal(t, []schema.ErrorRecord{
		record("nickname", `"nickname" length must be at least 3 characters long`),
		record("id", `"id" must be a valid GUID`),
		record("email", `"email" must be a valid email`),
		record("tags", `"tags" must contain less than or equal to 1 items`),
		record("score", `"score" fails to satisfy the expression: value <= 100`),
		record("title", `"title" fails to satisfy the expression: value.startsWith('A')`),
	}, records)
}

func TestBuildStrict(t *testing.T) {
	lib := newLibrary(t)

	t.Run("fails with details", func(t *testing.T) {
		user, err := lib.users.BuildStrict(map[string]any{})
		require.Error(t, err)
		assert.Nil(t, user)

		var verr *structure.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "Invalid Attributes", verr.Error())
		assert.Equal(t, []schema.ErrorRecord{record("password", `"password" is required`)}, verr.Details)
		assert.ErrorIs(t, err, &structure.Error{Kind: structure.KindValidation})
	})

	t.Run("returns valid instance", func(t *testing.T) {
		user, err := lib.users.BuildStrict(map[string]any{"password": "pw"})
		require.NoError(t, err)
		assert.Equal(t, "Stuff value", user.Stuff)
	})
}

type invalidUser struct {
	details []schema.ErrorRecord
}

func (e *invalidUser) Error() string {
	return fmt.Sprintf("invalid user: %d problems", len(e.details))
}

func TestBuildStrict_CustomError(t *testing.T) {
	lib := newLibrary(t, structure.WithStrictError(func(details []schema.ErrorRecord) error {
		return &invalidUser{details: details}
	}))

	_, err := lib.users.BuildStrict(map[string]any{"age": "x"})
	require.Error(t, err)

	var custom *invalidUser
	require.True(t, errors.As(err, &custom))
	assert.Equal(t, "invalid user: 2 problems", err.Error())
	assert.Equal(t, "password", custom.details[0].Path)
	assert.Equal(t, "age", custom.details[1].Path)
}

func TestValidate_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer tp.Shutdown(context.Background())

	lib := newLibrary(t,
		structure.WithTracer(tp.Tracer("test")),
		structure.WithMeter(noop.NewMeterProvider().Meter("test")),
	)

	user, err := lib.users.New(map[string]any{"favoriteBook": map[string]any{}})
	require.NoError(t, err)

	records, err := user.ValidateContext(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)

	spans := recorder.Ended()
	require.Len(t, spans, 1, "nested structures share the parent span")
	assert.Equal(t, "structure.validate", spans[0].Name())

	attrs := map[attribute.Key]attribute.Value{}
	for _, kv := range spans[0].Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "User", attrs["structure"].AsString())
	assert.Equal(t, int64(1), attrs["structure.errors"].AsInt64())
}
