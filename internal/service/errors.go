// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Service errors.
var (
	ErrUnauthorized       = errors.New("unauthenticated")
	ErrInvalidCredentials = errors.New("the provided credentials are incorrect")
	ErrNoteNotFound       = errors.New("not found")
)

// ValidationError carries per-field messages for a rejected input.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError returns an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Add records a message for field.
func (e *ValidationError) Add(field, message string) {
	e.Fields[field] = append(e.Fields[field], message)
}

// HasErrors reports whether any field failed.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ConflictError reports a uniqueness clash on one input field.
type ConflictError struct {
	Field   string
	Message string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s: %s", e.Field, e.Message)
}

// Fields returns the conflict in ValidationError shape.
func (e *ConflictError) Fields() map[string][]string {
	return map[string][]string{e.Field: {e.Message}}
}

func taken(field string) *ConflictError {
	return &ConflictError{
		Field:   field,
		Message: "The " + humanize(field) + " has already been taken.",
	}
}
