// Package engine provides the core types shared across the namelist
// resolution engine: the classified error taxonomy, the resolved-flag set,
// and the run-level enumerations (start types, physics versions,
// biogeochemistry modes).
package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a fatal resolution error.
type ErrorKind string

const (
	// ErrorKindSchema indicates a problem with the variable schema itself:
	// an undeclared variable, a duplicate definition, or a missing source.
	ErrorKindSchema ErrorKind = "schema"

	// ErrorKindNotFound indicates that no default value could be resolved
	// for a variable that is required to have one.
	ErrorKindNotFound ErrorKind = "not-found"

	// ErrorKindConflict indicates that two equal- or higher-precedence
	// sources disagree on a variable's value.
	ErrorKindConflict ErrorKind = "conflict"

	// ErrorKindValidation indicates a value that fails its type or
	// allowed-value check.
	ErrorKindValidation ErrorKind = "validation"

	// ErrorKindConsistency indicates a violated cross-field rule.
	ErrorKindConsistency ErrorKind = "consistency"

	// ErrorKindIO indicates a missing source file or an output file that
	// cannot be created.
	ErrorKindIO ErrorKind = "io"
)

// ConfigError represents a classified, fatal configuration error with
// context about the offending variable, value, or rule.
type ConfigError struct {
	// Kind is the error classification.
	Kind ErrorKind

	// Message is the human-readable error message.
	Message string

	// Variable is the variable that caused the error, if applicable.
	Variable string

	// Value is the offending value, if applicable.
	Value string

	// Rule is the consistency rule that was violated, if applicable.
	Rule string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Kind, e.Message)
	if e.Variable != "" {
		msg += fmt.Sprintf(" (variable=%s", e.Variable)
		if e.Value != "" {
			msg += fmt.Sprintf(", value=%s", e.Value)
		}
		msg += ")"
	}
	if e.Rule != "" {
		msg += fmt.Sprintf(" (rule=%s)", e.Rule)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error for error chain inspection.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is implements error equality checking for errors.Is.
func (e *ConfigError) Is(target error) bool {
	t, ok := target.(*ConfigError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// WithVariable adds variable context to the error.
func (e *ConfigError) WithVariable(name string) *ConfigError {
	e.Variable = name
	return e
}

// WithValue adds the offending value to the error.
func (e *ConfigError) WithValue(value string) *ConfigError {
	e.Value = value
	return e
}

// WithRule adds the violated rule name to the error.
func (e *ConfigError) WithRule(rule string) *ConfigError {
	e.Rule = rule
	return e
}

// NewSchemaError creates a new schema error.
func NewSchemaError(message string, err error) *ConfigError {
	return &ConfigError{Kind: ErrorKindSchema, Message: message, Err: err}
}

// NewNotFoundError creates a new not-found error.
func NewNotFoundError(message string, err error) *ConfigError {
	return &ConfigError{Kind: ErrorKindNotFound, Message: message, Err: err}
}

// NewConflictError creates a new conflict error.
func NewConflictError(message string, err error) *ConfigError {
	return &ConfigError{Kind: ErrorKindConflict, Message: message, Err: err}
}

// NewValidationError creates a new validation error.
func NewValidationError(message string, err error) *ConfigError {
	return &ConfigError{Kind: ErrorKindValidation, Message: message, Err: err}
}

// NewConsistencyError creates a new consistency error.
func NewConsistencyError(message string, err error) *ConfigError {
	return &ConfigError{Kind: ErrorKindConsistency, Message: message, Err: err}
}

// NewIOError creates a new I/O error.
func NewIOError(message string, err error) *ConfigError {
	return &ConfigError{Kind: ErrorKindIO, Message: message, Err: err}
}

// kindOf extracts the error kind from an error chain.
func kindOf(err error) (ErrorKind, bool) {
	var e *ConfigError
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}

// IsSchemaError returns true if the error is classified as a schema error.
func IsSchemaError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindSchema
}

// IsNotFound returns true if the error is classified as not-found.
func IsNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindNotFound
}

// IsConflict returns true if the error is classified as a conflict.
func IsConflict(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindConflict
}

// IsValidation returns true if the error is classified as a validation error.
func IsValidation(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindValidation
}

// IsConsistency returns true if the error is classified as a consistency error.
func IsConsistency(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindConsistency
}

// IsIO returns true if the error is classified as an I/O error.
func IsIO(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ErrorKindIO
}
