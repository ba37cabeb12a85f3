package structure

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/structure/rules"
	"github.com/zero-day-ai/structure/schema"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func TestNewConfig_Defaults(t *testing.T) {
	c := newConfig(nil)

	assert.Equal(t, slog.Default(), c.logger)
	assert.NotNil(t, c.tracer)
	assert.NotNil(t, c.meter)
	assert.IsType(t, &rules.Standard{}, c.checker)
	assert.Nil(t, c.registry)
	assert.Empty(t, c.name)

	err := c.strictError(nil)
	assert.IsType(t, &ValidationError{}, err)
}

func TestOptions(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	tracer := tracenoop.NewTracerProvider().Tracer("test")
	meter := metricnoop.NewMeterProvider().Meter("test")
	checker := rules.CheckerFunc(func(string, schema.Type, any, schema.Options) []rules.Violation { return nil })
	reg := schema.NewRegistry()

	c := newConfig([]Option{
		WithName("Person"),
		WithLogger(logger),
		WithTracer(tracer),
		WithMeter(meter),
		WithChecker(checker),
		WithRegistry(reg),
		WithStrictError(func([]schema.ErrorRecord) error { return assert.AnError }),
	})

	assert.Equal(t, "Person", c.name)
	assert.Same(t, logger, c.logger)
	assert.Equal(t, tracer, c.tracer)
	assert.Equal(t, meter, c.meter)
	assert.NotNil(t, c.checker)
	assert.Same(t, reg, c.registry)
	assert.Equal(t, assert.AnError, c.strictError(nil))
}

func TestOptions_NilValuesKeepDefaults(t *testing.T) {
	c := newConfig([]Option{
		WithLogger(nil),
		WithTracer(nil),
		WithMeter(nil),
		WithChecker(nil),
		WithStrictError(nil),
	})

	assert.NotNil(t, c.logger)
	assert.NotNil(t, c.tracer)
	assert.NotNil(t, c.meter)
	assert.NotNil(t, c.checker)
	assert.NotNil(t, c.strictError)
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	typ, err := Attributes[*Instance](schema.Definitions{
		schema.Attr("name", schema.Field{Type: schema.String, Default: "Name"}),
	}, WithName("Person"), WithLogger(logger))(nil)
	require.NoError(t, err)

	inst, err := typ.New(map[string]any{"extra": 1})
	require.NoError(t, err)
	_, err = inst.Get("name")
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "defined structure")
	assert.Contains(t, out, "dropping unknown attribute")
	assert.Contains(t, out, "attribute=extra")
	assert.Contains(t, out, "resolved default")
	assert.Contains(t, out, "structure=Person")
}

func TestTypeName(t *testing.T) {
	type Person struct{ *Instance }

	assert.Equal(t, "Instance", typeName[*Instance]())
	assert.Equal(t, "Person", typeName[*Person]())
}
