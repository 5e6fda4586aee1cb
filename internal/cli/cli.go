// Package cli holds helpers shared by the deploy and push-secrets commands.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/plexusone/bedrock-agentcore-cdk/validation"
)

// DefaultRegion is used when neither a flag nor the environment names a region.
const DefaultRegion = "us-east-1"

const colorEnvVar = "COLOR"

var lookupEnv = os.LookupEnv

var (
	errorColor   = color.New(color.FgHiRed, color.Bold)
	warningColor = color.New(color.FgHiYellow)
	successColor = color.New(color.FgHiGreen)
	headingColor = color.New(color.FgHiWhite, color.Bold)
	codeColor    = color.New(color.FgHiMagenta)
)

// DisableColorBasedOnEnvVar turns color off when COLOR=false and forces it on
// when COLOR=true. Otherwise the terminal decides.
func DisableColorBasedOnEnvVar() {
	value, ok := lookupEnv(colorEnvVar)
	if !ok {
		return
	}
	switch strings.ToLower(value) {
	case "false":
		color.NoColor = true
	case "true":
		color.NoColor = false
	}
}

// ResolveRegion returns flagValue, then AWS_REGION, then AWS_DEFAULT_REGION,
// then DefaultRegion.
func ResolveRegion(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	for _, key := range []string{"AWS_REGION", "AWS_DEFAULT_REGION"} {
		if v, ok := lookupEnv(key); ok && v != "" {
			return v
		}
	}
	return DefaultRegion
}

// Heading prints a section title.
func Heading(w io.Writer, title string) {
	headingColor.Fprintf(w, "=== %s ===\n", title)
}

// Success prints a completion line.
func Success(w io.Writer, format string, args ...any) {
	successColor.Fprintf(w, format+"\n", args...)
}

// Warn prints a warning line.
func Warn(w io.Writer, format string, args ...any) {
	warningColor.Fprintf(w, "Warning: "+format+"\n", args...)
}

// HighlightCode wraps s in backticks and colors it as a command.
func HighlightCode(s string) string {
	return codeColor.Sprintf("`%s`", s)
}

// PrintResult renders a validation result: errors, then warnings, then
// suggestions.
func PrintResult(w io.Writer, r validation.Result) {
	for _, e := range r.Errors {
		errorColor.Fprint(w, "✘ ")
		fmt.Fprintln(w, e)
	}
	for _, warning := range r.Warnings {
		warningColor.Fprint(w, "! ")
		fmt.Fprintln(w, warning)
	}
	if len(r.Suggestions) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Suggestions:")
		for _, s := range r.Suggestions {
			fmt.Fprintf(w, "  - %s\n", s)
		}
	}
	if r.IsValid() {
		successColor.Fprintf(w, "✔ configuration is valid (%d warnings)\n", len(r.Warnings))
	}
}
