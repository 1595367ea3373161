// Package errors provides custom error types for the evidentry system.
// These errors enable better error handling, programmatic error checking,
// and improved debugging throughout the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Common sentinel errors for the evidentry system
var (
	// ErrNotFound indicates that a requested record was not found
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates that a record already exists
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrEntityRequired indicates a record arrived without a valid entity tag
	ErrEntityRequired = errors.New("entity required")

	// ErrCitation indicates a finding cites a fact that does not exist
	ErrCitation = errors.New("invalid citation")

	// ErrExportBlocked indicates the export gate refused to release a snapshot
	ErrExportBlocked = errors.New("export blocked")

	// ErrReadOnly indicates an attempt to modify a read-only record set
	ErrReadOnly = errors.New("read only")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// NotFoundError represents an error when a record is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure on an inbound proposal.
// Validation problems are returned synchronously to the proposer so it can
// self-correct; they are never silently coerced.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// EntityError represents a missing or invalid entity tag. A missing entity
// is counted as a data-quality defect, never defaulted, and surfaces as a
// blocking condition at export time.
type EntityError struct {
	Value  string
	Source string // where the bad tag was observed (doc ID, fact ID)
}

// Error implements the error interface
func (e *EntityError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("entity tag missing (source %s)", e.Source)
	}
	return fmt.Sprintf("invalid entity tag %q (source %s)", e.Value, e.Source)
}

// Is implements errors.Is support
func (e *EntityError) Is(target error) bool {
	return target == ErrEntityRequired || target == ErrInvalidInput
}

// NewEntityError creates a new EntityError
func NewEntityError(value, source string) *EntityError {
	return &EntityError{Value: value, Source: source}
}

// CitationError represents a finding that cites a non-existent fact.
// The finding is rejected outright, never created in a partial state.
type CitationError struct {
	FindingTitle string
	MissingFacts []string
}

// Error implements the error interface
func (e *CitationError) Error() string {
	return fmt.Sprintf("finding %q cites unknown facts: %s",
		e.FindingTitle, strings.Join(e.MissingFacts, ", "))
}

// Is implements errors.Is support
func (e *CitationError) Is(target error) bool {
	return target == ErrCitation
}

// NewCitationError creates a new CitationError
func NewCitationError(title string, missing []string) *CitationError {
	return &CitationError{FindingTitle: title, MissingFacts: missing}
}

// ExportBlockedError is raised by the export gate, not by individual
// operations. It halts downstream artifact generation with the full list
// of blocking reasons.
type ExportBlockedError struct {
	Reasons []string
}

// Error implements the error interface
func (e *ExportBlockedError) Error() string {
	return fmt.Sprintf("export blocked: %s", strings.Join(e.Reasons, "; "))
}

// Is implements errors.Is support
func (e *ExportBlockedError) Is(target error) bool {
	return target == ErrExportBlocked
}

// NewExportBlockedError creates a new ExportBlockedError
func NewExportBlockedError(reasons []string) *ExportBlockedError {
	return &ExportBlockedError{Reasons: reasons}
}

// IOError represents a file system or persistence error
type IOError struct {
	Operation string // read, write, delete
	Path      string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Operation, e.Path, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// WrapIO wraps an IO error with context
func WrapIO(err error, operation, path string) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ParseError represents an error parsing data (YAML, proposals, etc.)
type ParseError struct {
	Format string
	Path   string
	Err    error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parsing %s from %s: %v", e.Format, e.Path, e.Err)
	}
	return fmt.Sprintf("parsing %s: %v", e.Format, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapParse wraps a parse error with context
func WrapParse(err error, format, path string) error {
	if err == nil {
		return nil
	}
	return &ParseError{Format: format, Path: path, Err: err}
}

// Is reports whether any error in err's tree matches target.
// It's an alias for the standard library errors.Is for convenience.
var Is = errors.Is

// As finds the first error in err's tree that matches target.
// It's an alias for the standard library errors.As for convenience.
var As = errors.As
