package envfile

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Group is a named set of keys stored together in one secret.
type Group struct {
	Name        string
	Description string
	Keys        []string
}

// DefaultGroups returns the llm, search and config groups.
func DefaultGroups() []Group {
	return []Group{
		{
			Name:        "llm",
			Description: "LLM provider API keys",
			Keys: []string{
				"GOOGLE_API_KEY", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
				"CLAUDE_API_KEY", "OPENAI_API_KEY", "XAI_API_KEY", "LLM_API_KEY",
			},
		},
		{
			Name:        "search",
			Description: "Search provider API keys",
			Keys:        []string{"SERPER_API_KEY", "SERPAPI_API_KEY"},
		},
		{
			Name:        "config",
			Description: "Configuration and observability settings",
			Keys: []string{
				"LLM_PROVIDER", "LLM_MODEL", "LLM_BASE_URL", "SEARCH_PROVIDER",
				"OBSERVABILITY_ENABLED", "OBSERVABILITY_PROVIDER",
				"OPIK_API_KEY", "OPIK_WORKSPACE", "OPIK_PROJECT",
				"LANGFUSE_PUBLIC_KEY", "LANGFUSE_SECRET_KEY", "PHOENIX_API_KEY",
			},
		},
	}
}

// Secret is the content of one Secrets Manager secret.
type Secret struct {
	Name        string
	Description string
	Values      map[string]string
}

// Keys returns the secret's keys in sorted order.
func (s Secret) Keys() []string {
	return slices.Sorted(maps.Keys(s.Values))
}

// Empty reports whether no key of the group was found.
func (s Secret) Empty() bool {
	return len(s.Values) == 0
}

// String renders the values as a JSON object, the form stored in Secrets Manager.
func (s Secret) String() string {
	data, err := json.Marshal(s.Values)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Masked renders the values with everything after the first four characters
// of each value hidden.
func (s Secret) Masked() string {
	masked := make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		masked[k] = mask(v)
	}
	return Secret{Values: masked}.String()
}

func mask(v string) string {
	const visible = 4
	if len(v) <= visible {
		return strings.Repeat("*", len(v))
	}
	return v[:visible] + "***"
}

// Split assigns vars to groups and names each secret prefix/group.
// Keys that belong to no group are ignored.
func Split(vars map[string]string, prefix string, groups []Group) []Secret {
	secrets := make([]Secret, 0, len(groups))
	for _, g := range groups {
		s := Secret{
			Name:        fmt.Sprintf("%s/%s", prefix, g.Name),
			Description: g.Description,
			Values:      make(map[string]string),
		}
		for _, k := range g.Keys {
			if v, ok := vars[k]; ok {
				s.Values[k] = v
			}
		}
		secrets = append(secrets, s)
	}
	return secrets
}
