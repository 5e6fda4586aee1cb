package validation

import (
	"fmt"
	"slices"
	"strings"
)

// ErrorType classifies a ConstructError.
type ErrorType string

const (
	ErrorTypeValidation    ErrorType = "VALIDATION"
	ErrorTypeConfiguration ErrorType = "CONFIGURATION"
	ErrorTypeRuntime       ErrorType = "RUNTIME"
	ErrorTypeDependency    ErrorType = "DEPENDENCY"
)

// ConstructError aborts instantiation of a construct.
type ConstructError struct {
	ConstructName string
	Type          ErrorType
	Message       string
	Suggestions   []string
}

// NewConstructError returns a ConstructError.
func NewConstructError(constructName string, typ ErrorType, message string, suggestions ...string) *ConstructError {
	return &ConstructError{
		ConstructName: constructName,
		Type:          typ,
		Message:       message,
		Suggestions:   suggestions,
	}
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("%s [%s]: %s", e.ConstructName, e.Type, e.Message)
}

// Is matches another *ConstructError whose non-empty fields equal e's, so
// errors.Is(err, &ConstructError{Type: ErrorTypeValidation}) matches any
// validation failure.
func (e *ConstructError) Is(target error) bool {
	t, ok := target.(*ConstructError)
	if !ok {
		return false
	}
	if t.Type != "" && t.Type != e.Type {
		return false
	}
	return t.ConstructName == "" || t.ConstructName == e.ConstructName
}

// Detail renders the message followed by one suggestion per line.
func (e *ConstructError) Detail() string {
	if len(e.Suggestions) == 0 {
		return e.Error()
	}
	var b strings.Builder
	b.WriteString(e.Error())
	for _, s := range e.Suggestions {
		b.WriteString("\n  - ")
		b.WriteString(s)
	}
	return b.String()
}

// Enforce returns nil when r is valid, otherwise a VALIDATION ConstructError
// carrying every error message and every suggestion from r.
func Enforce(constructName string, r Result) error {
	if r.IsValid() {
		return nil
	}
	return NewConstructError(
		constructName,
		ErrorTypeValidation,
		"Configuration validation failed: "+strings.Join(r.Errors, ", "),
		slices.Clone(r.Suggestions)...,
	)
}
