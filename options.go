package structure

import (
	"log/slog"

	"github.com/zero-day-ai/structure/rules"
	"github.com/zero-day-ai/structure/schema"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/zero-day-ai/structure"

// Option configures a structure type.
type Option func(*config)

// config holds the settings shared by every instance of a structure type.
type config struct {
	name        string
	logger      *slog.Logger
	tracer      trace.Tracer
	meter       metric.Meter
	checker     rules.Checker
	registry    *schema.Registry
	strictError schema.ErrorFactory
}

func newConfig(opts []Option) *config {
	c := &config{
		logger:      slog.Default(),
		tracer:      tracenoop.NewTracerProvider().Tracer(instrumentationName),
		meter:       metricnoop.NewMeterProvider().Meter(instrumentationName),
		checker:     rules.New(),
		strictError: NewValidationError,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithName sets the structure name used in messages, logs, spans and
// registry lookups. Defaults to the Go type name of T.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTracer sets an OpenTelemetry tracer for validation spans.
// If not provided, spans are not recorded.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *config) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// WithMeter sets an OpenTelemetry meter for validation counters.
// If not provided, metrics are not recorded.
func WithMeter(meter metric.Meter) Option {
	return func(c *config) {
		if meter != nil {
			c.meter = meter
		}
	}
}

// WithChecker replaces the rule checker. Defaults to rules.New().
func WithChecker(checker rules.Checker) Option {
	return func(c *config) {
		if checker != nil {
			c.checker = checker
		}
	}
}

// WithRegistry resolves type names in the definitions through reg and
// registers the new structure in it under its name, so that other
// structures (including YAML definitions) can refer to it.
func WithRegistry(reg *schema.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithStrictError sets the factory used by BuildStrict and strict clones.
// Defaults to NewValidationError.
func WithStrictError(f schema.ErrorFactory) Option {
	return func(c *config) {
		if f != nil {
			c.strictError = f
		}
	}
}
