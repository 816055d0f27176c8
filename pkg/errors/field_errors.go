package errors

import (
	"fmt"
	"strings"
)

// FieldError is a single failed rule on a named field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors aggregates validation failures so they can be reported together
type FieldErrors struct {
	errors []FieldError
}

// NewFieldErrors creates an empty collection
func NewFieldErrors() *FieldErrors {
	return &FieldErrors{errors: make([]FieldError, 0)}
}

// Add records a failure for field
func (f *FieldErrors) Add(field, message string) {
	f.errors = append(f.errors, FieldError{Field: field, Message: message})
}

// Addf records a formatted failure for field
func (f *FieldErrors) Addf(field, format string, args ...interface{}) {
	f.Add(field, fmt.Sprintf(format, args...))
}

// HasErrors returns true if any failure was recorded
func (f *FieldErrors) HasErrors() bool {
	return len(f.errors) > 0
}

// ToMap groups messages by field for JSON responses
func (f *FieldErrors) ToMap() map[string][]string {
	result := make(map[string][]string)
	for _, e := range f.errors {
		field := e.Field
		if field == "" {
			field = "general"
		}
		result[field] = append(result[field], e.Message)
	}
	return result
}

// Err returns nil when empty, otherwise a validation AppError carrying every failure
func (f *FieldErrors) Err() error {
	if !f.HasErrors() {
		return nil
	}

	messages := make([]string, len(f.errors))
	for i, e := range f.errors {
		messages[i] = e.Message
	}

	details := map[string]interface{}{"fields": f.ToMap()}
	return NewValidationError(fmt.Sprintf("validation failed: %s", strings.Join(messages, "; "))).
		WithDetails(details)
}
