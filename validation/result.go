// Package validation checks construct configuration before any resource is declared.
//
// Checks are pure functions that return a Result. Composite validators fold the
// results of smaller checks together with Merge or a Collector, so a validator
// carries no state between calls and is safe to share.
//
// A failed check never returns an error on its own. Callers decide when an invalid
// Result should abort construction by passing it to Enforce.
package validation

import (
	"slices"
)

// Result is the outcome of validating a value.
//
// Errors make the value invalid. Warnings and Suggestions are advisory.
// Suggestions hold remediation text in the order the errors and warnings that
// produced them were recorded; it is nil when nothing was suggested.
type Result struct {
	Errors      []string
	Warnings    []string
	Suggestions []string
}

// IsValid reports whether the result carries no errors.
func (r Result) IsValid() bool {
	return len(r.Errors) == 0
}

// WithError returns a copy of r with message appended to Errors and suggestion,
// when non-empty, appended to Suggestions.
func (r Result) WithError(message, suggestion string) Result {
	r.Errors = append(slices.Clip(r.Errors), message)
	return r.withSuggestion(suggestion)
}

// WithWarning returns a copy of r with message appended to Warnings.
func (r Result) WithWarning(message, suggestion string) Result {
	r.Warnings = append(slices.Clip(r.Warnings), message)
	return r.withSuggestion(suggestion)
}

func (r Result) withSuggestion(suggestion string) Result {
	if suggestion != "" {
		r.Suggestions = append(slices.Clip(r.Suggestions), suggestion)
	}
	return r
}

// Prefixed returns a copy of r whose errors and warnings start with prefix.
func (r Result) Prefixed(prefix string) Result {
	out := Result{Suggestions: slices.Clone(r.Suggestions)}
	for _, e := range r.Errors {
		out.Errors = append(out.Errors, prefix+e)
	}
	for _, w := range r.Warnings {
		out.Warnings = append(out.Warnings, prefix+w)
	}
	return out
}

// Merge concatenates results in order.
func Merge(results ...Result) Result {
	var out Result
	for _, r := range results {
		out.Errors = append(out.Errors, r.Errors...)
		out.Warnings = append(out.Warnings, r.Warnings...)
		out.Suggestions = append(out.Suggestions, r.Suggestions...)
	}
	return out
}

// Collector accumulates results for one validation pass. Declare it as a local
// variable inside Validate; the zero value is ready to use.
type Collector struct {
	result Result
}

// AddError records an error and an optional suggestion.
func (c *Collector) AddError(message, suggestion string) {
	c.result = c.result.WithError(message, suggestion)
}

// AddWarning records a warning and an optional suggestion.
func (c *Collector) AddWarning(message, suggestion string) {
	c.result = c.result.WithWarning(message, suggestion)
}

// Merge folds r into the collector and reports whether r was valid, so callers
// can stop early after a failed prerequisite.
func (c *Collector) Merge(r Result) bool {
	c.result = Merge(c.result, r)
	return r.IsValid()
}

// Reset discards everything collected so far.
func (c *Collector) Reset() {
	c.result = Result{}
}

// Result returns a snapshot of what has been collected.
func (c *Collector) Result() Result {
	return Result{
		Errors:      slices.Clone(c.result.Errors),
		Warnings:    slices.Clone(c.result.Warnings),
		Suggestions: slices.Clone(c.result.Suggestions),
	}
}

// Validator validates values of type T.
type Validator[T any] interface {
	Validate(T) Result
}

// Func adapts a function to the Validator interface.
type Func[T any] func(T) Result

// Validate calls f(v).
func (f Func[T]) Validate(v T) Result {
	return f(v)
}
