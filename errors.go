package structure

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zero-day-ai/structure/schema"
)

// Sentinel errors for engine faults.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrUnknownAttribute indicates a Get or Set on a name the schema does not declare.
	ErrUnknownAttribute = errors.New("unknown attribute")

	// ErrDefaultCycle indicates a default function that depends on its own value.
	ErrDefaultCycle = errors.New("default depends on itself")

	// ErrForeignInstance indicates a base constructor that did not embed the
	// Instance it was given.
	ErrForeignInstance = errors.New("base constructor did not embed the provided instance")

	// ErrConstructing indicates a default function read while the base
	// constructor is still running.
	ErrConstructing = errors.New("instance is still being constructed")
)

// Error kinds categorize engine faults.
const (
	// KindSchema represents definitions that cannot be compiled.
	KindSchema = "schema"

	// KindType represents values or hosts of an unexpected Go type.
	KindType = "type"

	// KindValidation represents strict validation failures.
	KindValidation = "validation"

	// KindCycle represents default dependency cycles.
	KindCycle = "cycle"

	// KindResolution represents type references that could not be resolved.
	KindResolution = "resolution"
)

// Error wraps an engine fault with the operation that failed and its kind.
//
// Error supports errors.Is() and errors.As(). Matching against an *Error
// target compares Kind (and Op when the target sets it):
//
//	if errors.Is(err, &structure.Error{Kind: structure.KindSchema}) {
//		// definitions are broken
//	}
type Error struct {
	// Op is the operation that failed (e.g., "Attributes", "Type.New").
	Op string

	// Kind categorizes the error (e.g., KindSchema, KindCycle).
	Kind string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("structure: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("structure: %s (%s): %v", e.Op, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by Kind, and by Op when the target sets one.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Kind == "" || t.Kind != e.Kind {
		return false
	}
	return t.Op == "" || t.Op == e.Op
}

// ValidationError is the default error returned by strict operations.
type ValidationError struct {
	// Details lists every failure in declaration order.
	Details []schema.ErrorRecord `json:"details"`
}

// NewValidationError is the default schema.ErrorFactory.
func NewValidationError(details []schema.ErrorRecord) error {
	return &ValidationError{Details: details}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return "Invalid Attributes"
}

// Is matches any *Error of KindValidation.
func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindValidation
}

// TypeError reports a value of the wrong shape assigned to the attribute store.
type TypeError struct {
	Message string
}

// Error implements the error interface.
func (e *TypeError) Error() string {
	return e.Message
}

// DefaultCycleError reports a default function that reads, directly or
// through other defaults, the attribute it is computing.
type DefaultCycleError struct {
	// Attribute is the attribute read re-entrantly.
	Attribute string

	// Chain lists the attributes being resolved, ending with Attribute.
	Chain []string
}

// Error implements the error interface.
func (e *DefaultCycleError) Error() string {
	return fmt.Sprintf("structure: default for %q depends on itself: %s", e.Attribute, strings.Join(e.Chain, " -> "))
}

// Unwrap returns ErrDefaultCycle.
func (e *DefaultCycleError) Unwrap() error {
	return ErrDefaultCycle
}

// Is matches any *Error of KindCycle.
func (e *DefaultCycleError) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == KindCycle
}
