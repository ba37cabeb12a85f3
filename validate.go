package structure

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/zero-day-ai/structure/input"
	"github.com/zero-day-ai/structure/rules"
	"github.com/zero-day-ai/structure/schema"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Validate checks every attribute in declaration order and returns the
// failures. An empty result means the instance is valid. Nested structures
// are validated recursively and their paths are prefixed with the parent
// attribute name.
//
// The error is reserved for engine faults such as default cycles or
// unresolvable types; validation failures never produce an error.
func (i *Instance) Validate() ([]schema.ErrorRecord, error) {
	return i.ValidateContext(context.Background())
}

// ValidateContext is Validate with a context for tracing.
func (i *Instance) ValidateContext(ctx context.Context) ([]schema.ErrorRecord, error) {
	cfg := i.owner.settings()

	ctx, span := cfg.tracer.Start(ctx, "structure.validate",
		trace.WithAttributes(attribute.String("structure", i.owner.Name())),
	)
	defer span.End()

	v := &validator{ancestors: make(map[*Instance]bool)}
	if err := v.instance(i, ""); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	span.SetAttributes(attribute.Int("structure.errors", len(v.records)))
	if len(v.records) > 0 {
		span.SetStatus(codes.Error, "invalid attributes")
	} else {
		span.SetStatus(codes.Ok, "")
	}
	i.owner.countValidation(ctx, len(v.records) == 0)

	return v.records, nil
}

// strict validates and converts failures with the schema's ErrorFactory.
func (i *Instance) strict(ctx context.Context) error {
	records, err := i.ValidateContext(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	i.owner.settings().logger.Debug("strict validation failed",
		"structure", i.owner.Name(),
		"errors", len(records),
	)
	return i.Schema().StrictError(records)
}

// validator accumulates records for one validation run.
type validator struct {
	records []schema.ErrorRecord

	// ancestors holds the instances on the current path; revisiting one is a
	// cycle and is not descended into again.
	ancestors map[*Instance]bool
}

func (v *validator) add(path, message string) {
	v.records = append(v.records, schema.ErrorRecord{Message: message, Path: path})
}

func (v *validator) instance(inst *Instance, prefix string) error {
	v.ancestors[inst] = true
	defer delete(v.ancestors, inst)

	checker := inst.owner.settings().checker
	for _, d := range inst.Schema().Descriptors() {
		value, err := inst.Get(d.Name())
		if err != nil {
			return &Error{Op: "Instance.Validate", Kind: faultKind(err), Err: err}
		}

		typ, err := d.ResolveType()
		if err != nil {
			return &Error{Op: "Instance.Validate", Kind: KindResolution, Err: err}
		}

		if err := v.value(checker, d.Name(), join(prefix, d.Name()), typ, d.Rules(), d.Required(), value); err != nil {
			return err
		}
	}
	return nil
}

func (v *validator) value(checker rules.Checker, label, path string, typ schema.Type, opts schema.Options, required bool, value any) error {
	if input.IsNil(value) {
		if required {
			v.add(path, fmt.Sprintf("%q is required", label))
		}
		return nil
	}
	if s, ok := value.(string); ok && required && s == "" {
		v.add(path, fmt.Sprintf("%q is not allowed to be empty", label))
		return nil
	}

	switch t := typ.(type) {
	case *schema.Primitive:
		if msg := t.Check(value); msg != "" {
			v.add(path, fmt.Sprintf("%q %s", label, msg))
			return nil
		}
		v.rules(checker, label, path, t, opts, value)

	case *schema.Array:
		items, ok := input.Slice(value)
		if !ok {
			v.add(path, fmt.Sprintf("%q must be an array", label))
			return nil
		}
		v.rules(checker, label, path, t, opts, value)

		item, err := t.Item()
		if err != nil {
			return &Error{Op: "Instance.Validate", Kind: KindResolution, Err: err}
		}
		for idx, it := range items {
			key := strconv.Itoa(idx)
			if err := v.value(checker, key, path+"."+key, item, nil, false, it); err != nil {
				return err
			}
		}

	case schema.Structure:
		m, ok := value.(Model)
		if !ok {
			v.add(path, fmt.Sprintf("%q must be an object", label))
			return nil
		}
		if !t.Owns(value) {
			v.add(path, fmt.Sprintf("%q must be an instance of %s", label, t.Name()))
			return nil
		}
		nested := m.Store()
		if v.ancestors[nested] {
			return nil
		}
		return v.instance(nested, path)
	}

	return nil
}

func (v *validator) rules(checker rules.Checker, label, path string, t schema.Type, opts schema.Options, value any) {
	if len(opts) == 0 {
		return
	}
	for _, violation := range checker.Check(label, t, value, opts) {
		v.add(path, violation.Message)
	}
}

// faultKind classifies an error from attribute reads.
func faultKind(err error) string {
	var cycle *DefaultCycleError
	if errors.As(err, &cycle) {
		return KindCycle
	}
	return KindResolution
}

func join(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}
