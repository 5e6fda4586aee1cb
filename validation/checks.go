package validation

import (
	"cmp"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize/english"
)

// Required fails when value is nil, a nil pointer, or an empty string.
// Zero numbers and empty slices are present values.
func Required(value any, field string) Result {
	if !isMissing(value) {
		return Result{}
	}
	return Result{}.WithError(
		fmt.Sprintf("%s is required", field),
		fmt.Sprintf("Please provide a value for %s", field),
	)
}

func isMissing(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	return v.Kind() == reflect.String && v.Len() == 0
}

// Pattern fails when value does not match re. re must be anchored with ^ and $.
// The message names description rather than the raw expression.
func Pattern(value string, re *regexp.Regexp, field, description string) Result {
	if re.MatchString(value) {
		return Result{}
	}
	return Result{}.WithError(
		fmt.Sprintf("%s %q is invalid: must contain only %s", field, value, description),
		fmt.Sprintf("Please set %s to a value containing only %s", field, description),
	)
}

// Range fails when value lies outside [min, max].
func Range[N cmp.Ordered](value, min, max N, field string) Result {
	if value >= min && value <= max {
		return Result{}
	}
	return Result{}.WithError(
		fmt.Sprintf("%s must be between %v and %v, got %v", field, min, max, value),
		fmt.Sprintf("Please set %s to a value between %v and %v", field, min, max),
	)
}

// NonEmpty fails when values has no elements.
func NonEmpty[E any](values []E, field string) Result {
	if len(values) > 0 {
		return Result{}
	}
	return Result{}.WithError(
		fmt.Sprintf("%s must contain at least one item", field),
		fmt.Sprintf("Please add at least one entry to %s", field),
	)
}

// OneOf fails when value is not in allowed.
func OneOf[T comparable](value T, allowed []T, field string) Result {
	for _, a := range allowed {
		if value == a {
			return Result{}
		}
	}
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = fmt.Sprintf("%q", fmt.Sprint(a))
	}
	return Result{}.WithError(
		fmt.Sprintf("%s %q is not supported: must be %s", field, fmt.Sprint(value), english.OxfordWordSeries(quoted, "or")),
		fmt.Sprintf("Please set %s to one of: %s", field, strings.Join(quoted, ", ")),
	)
}

// Length fails when the character count of value lies outside [min, max].
func Length(value string, min, max int, field string) Result {
	return Merge(MinLength(value, min, field), MaxLength(value, max, field))
}

// MinLength fails when value has fewer than min characters.
func MinLength(value string, min int, field string) Result {
	n := utf8.RuneCountInString(value)
	if n >= min {
		return Result{}
	}
	return Result{}.WithError(
		fmt.Sprintf("%s must be at least %d characters long, got %d", field, min, n),
		fmt.Sprintf("Please set %s to at least %d characters", field, min),
	)
}

// MaxLength fails when value has more than max characters.
func MaxLength(value string, max int, field string) Result {
	n := utf8.RuneCountInString(value)
	if n <= max {
		return Result{}
	}
	return Result{}.WithError(
		fmt.Sprintf("%s must be at most %d characters long, got %d", field, max, n),
		fmt.Sprintf("Please shorten %s to at most %d characters", field, max),
	)
}
