package schema

import (
	"errors"
	"fmt"
)

// Sentinel errors matched by SchemaError and TypeResolutionError through errors.Is.
var (
	// ErrInvalidSchema indicates a definition that cannot be compiled.
	ErrInvalidSchema = errors.New("invalid schema")

	// ErrUnresolvedType indicates a type reference that could not be resolved.
	ErrUnresolvedType = errors.New("unresolved type")
)

// SchemaError reports a definition problem found while compiling a schema.
// It is fatal for the structure being defined.
type SchemaError struct {
	// Attribute is the offending attribute name, empty for schema-wide problems.
	Attribute string

	// Reason describes the problem.
	Reason string

	// Cause is the underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	msg := "schema: " + e.Reason
	if e.Attribute != "" {
		msg = fmt.Sprintf("schema: attribute %q: %s", e.Attribute, e.Reason)
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the cause.
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is matches ErrInvalidSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// TypeResolutionError reports a type reference whose target is missing or is
// neither a primitive nor a structure type.
type TypeResolutionError struct {
	// Ref names the reference being resolved.
	Ref string

	// Reason describes the failure.
	Reason string
}

// Error implements the error interface.
func (e *TypeResolutionError) Error() string {
	return fmt.Sprintf("schema: cannot resolve type %q: %s", e.Ref, e.Reason)
}

// Is matches ErrUnresolvedType.
func (e *TypeResolutionError) Is(target error) bool {
	return target == ErrUnresolvedType
}

// ErrorRecord is one validation failure. Path is dot-delimited and prefixed by
// the parent attribute names of nested structures (e.g. "favoriteBook.pages").
type ErrorRecord struct {
	Message string `json:"message" yaml:"message"`
	Path    string `json:"path" yaml:"path"`
}

// String returns "path: message".
func (r ErrorRecord) String() string {
	return r.Path + ": " + r.Message
}

// ErrorFactory builds the error returned by strict operations from the
// ordered validation failures.
type ErrorFactory func(details []ErrorRecord) error
