package structure

import (
	"context"
	"fmt"
)

// CloneOption configures Clone.
type CloneOption func(*cloneConfig)

type cloneConfig struct {
	strict bool
}

// Strict validates the clone and fails with the schema's ErrorFactory error
// instead of returning an invalid clone.
func Strict() CloneOption {
	return func(c *cloneConfig) {
		c.strict = true
	}
}

// Clone builds a new instance of the same structure type from the current
// attribute values merged with overwrite.
//
// Every attribute is materialized first, so computed defaults carry over.
// Declared keys in overwrite replace the source values and are coerced;
// unknown keys are dropped. Nested structures are not copied: the clone
// shares them with the source unless overwritten.
func (i *Instance) Clone(overwrite map[string]any, opts ...CloneOption) (Model, error) {
	return i.CloneContext(context.Background(), overwrite, opts...)
}

// CloneContext is Clone with a context for tracing strict validation.
func (i *Instance) CloneContext(ctx context.Context, overwrite map[string]any, opts ...CloneOption) (Model, error) {
	cfg := &cloneConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	snapshot, err := i.Attributes()
	if err != nil {
		return nil, &Error{Op: "Instance.Clone", Kind: faultKind(err), Err: err}
	}
	for key, v := range overwrite {
		if i.Schema().Has(key) {
			snapshot[key] = v
		}
	}

	clone, err := i.owner.build(snapshot)
	if err != nil {
		return nil, err
	}

	if cfg.strict {
		if err := clone.Store().strict(ctx); err != nil {
			return nil, err
		}
	}
	return clone, nil
}

// Clone is Instance.Clone returning the host type.
func Clone[T Model](src T, overwrite map[string]any, opts ...CloneOption) (T, error) {
	var zero T

	m, err := src.Store().Clone(overwrite, opts...)
	if err != nil {
		return zero, err
	}
	out, ok := m.(T)
	if !ok {
		return zero, &Error{Op: "Clone", Kind: KindType, Err: fmt.Errorf("clone is %T, not %T", m, zero)}
	}
	return out, nil
}
