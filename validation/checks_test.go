package validation

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRequired(t *testing.T) {
	var nilPtr *string
	empty := ""
	set := "x"

	testCases := map[string]struct {
		value any

		wantedValid bool
	}{
		"nil":                     {value: nil},
		"empty string":            {value: ""},
		"nil pointer":             {value: nilPtr},
		"pointer to empty string": {value: &empty},
		"pointer to value":        {value: &set, wantedValid: true},
		"zero int is present":     {value: 0, wantedValid: true},
		"false is present":        {value: false, wantedValid: true},
		"empty slice is present":  {value: []string{}, wantedValid: true},
		"non-empty string":        {value: "agent", wantedValid: true},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := Required(tc.value, "field")

			require.Equal(t, tc.wantedValid, got.IsValid())
			if !tc.wantedValid {
				require.Equal(t, []string{"field is required"}, got.Errors)
				require.Equal(t, []string{"Please provide a value for field"}, got.Suggestions)
			}
		})
	}
}

func TestRange(t *testing.T) {
	testCases := map[string]struct {
		value int

		wantedValid bool
	}{
		"below":       {value: 0},
		"lower bound": {value: 1, wantedValid: true},
		"inside":      {value: 30, wantedValid: true},
		"upper bound": {value: 60, wantedValid: true},
		"above":       {value: 61},
		"far above":   {value: 70},
		"negative":    {value: -5},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := Range(tc.value, 1, 60, "timeout")

			require.Equal(t, tc.wantedValid, got.IsValid())
			if !tc.wantedValid {
				require.Len(t, got.Errors, 1)
				require.Contains(t, got.Errors[0], "between 1 and 60")
			}
		})
	}
}

func TestPattern(t *testing.T) {
	re := regexp.MustCompile(`^[a-z]+$`)

	require.True(t, Pattern("abc", re, "name", "lowercase letters").IsValid())

	got := Pattern("ab1", re, "name", "lowercase letters")
	require.Equal(t, []string{`name "ab1" is invalid: must contain only lowercase letters`}, got.Errors)
}

func TestNonEmpty(t *testing.T) {
	require.True(t, NonEmpty([]int{1}, "items").IsValid())

	got := NonEmpty([]string(nil), "prefixes")
	require.Equal(t, []string{"prefixes must contain at least one item"}, got.Errors)
}

func TestOneOf(t *testing.T) {
	require.True(t, OneOf("VPC", []string{"PUBLIC", "VPC"}, "networkMode").IsValid())

	got := OneOf("PRIVATE", []string{"PUBLIC", "VPC"}, "networkMode")
	require.Len(t, got.Errors, 1)
	require.Contains(t, got.Errors[0], `"PUBLIC" or "VPC"`)

	got = OneOf("x", []string{"dev", "staging", "prod"}, "environment")
	require.Contains(t, got.Errors[0], `"dev", "staging", or "prod"`)
}

func TestLength(t *testing.T) {
	testCases := map[string]struct {
		value string

		wantedErrors []string
	}{
		"too short": {
			value:        "Short",
			wantedErrors: []string{"instruction must be at least 10 characters long, got 5"},
		},
		"exactly min": {value: "0123456789"},
		"exactly max": {value: "0123456789ab"},
		"too long": {
			value:        "0123456789abc",
			wantedErrors: []string{"instruction must be at most 12 characters long, got 13"},
		},
		"counts characters not bytes": {value: "ééééééééééé"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := Length(tc.value, 10, 12, "instruction")

			require.Equal(t, tc.wantedErrors, got.Errors)
		})
	}
}
