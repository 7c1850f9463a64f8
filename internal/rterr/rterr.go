// Package rterr defines the single tagged error type shared by the runtime.
//
// Every failure the runtime can produce carries a machine-checkable Kind and
// a map of structured detail fields, so callers branch on the kind with
// KindOf instead of matching message strings.
package rterr

import (
	"errors"
	"fmt"
)

// Kind identifies a category of runtime failure.
type Kind string

const (
	// KindNetworkNotFound is reported when the requested network has no
	// entry in the configuration's network table.
	KindNetworkNotFound Kind = "network_not_found"

	// KindUnknownTask is reported when Run is called with a task name that
	// is not present in the task registry.
	KindUnknownTask Kind = "unknown_task"

	// KindMissingArgument is reported when a mandatory parameter had no
	// supplied value.
	KindMissingArgument Kind = "missing_argument"

	// KindInvalidArgumentType is reported when a supplied value failed
	// type validation for its declared parameter type.
	KindInvalidArgumentType Kind = "invalid_argument_type"

	// KindNoParentImpl is reported when runSuper is invoked from a task
	// definition that does not override a previous one.
	KindNoParentImpl Kind = "no_parent_implementation"

	// KindDuplicateTask is reported when a plain definition reuses a name
	// already present in the registry.
	KindDuplicateTask Kind = "duplicate_task"

	// KindUnknownOverride is reported when an override targets a name that
	// was never defined.
	KindUnknownOverride Kind = "unknown_override_target"

	// KindConfigInvalid is reported when the project configuration file
	// cannot be parsed or fails validation.
	KindConfigInvalid Kind = "config_invalid"

	// KindProviderUnavailable is reported when the network provider cannot
	// be constructed or reached.
	KindProviderUnavailable Kind = "provider_unavailable"
)

// Error is the runtime's tagged error type.
type Error struct {
	Kind    Kind
	Message string
	Details map[string]any

	// Cause holds the wrapped underlying error, if any.
	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap exposes the underlying cause to errors.Is/errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Detail returns the named structured detail field, or nil when absent.
func (e *Error) Detail(name string) any {
	if e.Details == nil {
		return nil
	}
	return e.Details[name]
}

// New constructs a tagged error with the given kind and message.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithDetail attaches a structured detail field and returns the error for
// chaining.
func (e *Error) WithDetail(name string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[name] = value
	return e
}

// WithCause attaches an underlying error and returns the error for chaining.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// KindOf reports the Kind carried by err, unwrapping as needed. It returns
// the empty kind when err is not a runtime error.
func KindOf(err error) Kind {
	var rerr *Error
	if errors.As(err, &rerr) {
		return rerr.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
