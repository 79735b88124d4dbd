// Package shared contains common domain types and errors that are used across
// all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrNothingToUndo    = errors.New("nothing to undo")
	ErrCapacityExceeded = errors.New("capacity exceeded")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "student", "directory", "journal"
	Op      string // Operation that failed, e.g., "AddGrade", "Undo"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// Report card domain errors with fixed messages.
var (
	ErrGradeOutOfRange  = NewDomainError("student", "ValidateGrade", ErrValueOutOfRange, "Grade must be between 0 and 100!")
	ErrEmptyStudentID   = NewDomainError("student", "Validate", ErrEmptyValue, "Student ID cannot be empty!")
	ErrEmptyStudentName = NewDomainError("student", "Validate", ErrEmptyValue, "Student Name cannot be empty!")
	ErrEmptySubject     = NewDomainError("student", "ValidateSubject", ErrEmptyValue, "Subject cannot be empty!")
	ErrUndoLogEmpty     = NewDomainError("undolog", "Undo", ErrNothingToUndo, "No operations to undo!")
	ErrUndoTopNotDelete = NewDomainError("undolog", "Undo", ErrInvalidState, "Last operation was not a delete. Cannot undo!")
	ErrJournalFull      = NewDomainError("journal", "Enqueue", ErrCapacityExceeded, "Operation queue is full!")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange)
}

// IsInvalidState checks if the operation was refused because of the current state.
func IsInvalidState(err error) bool {
	return errors.Is(err, ErrInvalidState) ||
		errors.Is(err, ErrNothingToUndo) ||
		errors.Is(err, ErrCapacityExceeded)
}

// Message returns the human-readable part of a domain error, or err.Error()
// for anything else.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var de *DomainError
	if errors.As(err, &de) {
		return de.Message
	}
	return err.Error()
}
