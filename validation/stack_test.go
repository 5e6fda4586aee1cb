package validation

import (
	"testing"

	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestStackValidator_Validate(t *testing.T) {
	testCases := map[string]struct {
		mutate func(cfg *config.StackConfig)

		wantedErrs     []string
		wantedWarnings []string
	}{
		"valid": {},
		"empty stack warns": {
			mutate: func(cfg *config.StackConfig) {
				cfg.Agents = nil
				cfg.KnowledgeBases = nil
			},
			wantedWarnings: []string{"stack declares no agents and no knowledge bases"},
		},
		"item errors are prefixed": {
			mutate: func(cfg *config.StackConfig) { cfg.Agents[0].Instruction = "Short" },
			wantedErrs: []string{
				"agents[0]: instruction must be at least 10 characters long, got 5",
			},
		},
		"duplicate agent names": {
			mutate: func(cfg *config.StackConfig) {
				cfg.Agents = append(cfg.Agents, cfg.Agents[0])
			},
			wantedErrs: []string{`agents[1]: agentName "research-agent" is already used by agents[0]`},
		},
		"duplicate knowledge base names": {
			mutate: func(cfg *config.StackConfig) {
				cfg.KnowledgeBases = append(cfg.KnowledgeBases, cfg.KnowledgeBases[0])
			},
			wantedErrs: []string{`knowledgeBases[1]: name "product-docs" is already used by knowledgeBases[0]`},
		},
		"unknown knowledge base reference": {
			mutate: func(cfg *config.StackConfig) {
				cfg.Agents[0].KnowledgeBases = []config.KnowledgeBaseAssociation{{Name: "legal-docs"}}
			},
			wantedErrs: []string{`agents[0]: knowledgeBases[0].name "legal-docs" does not match any knowledge base in this stack`},
		},
		"bad stack name": {
			mutate:     func(cfg *config.StackConfig) { cfg.StackName = "my_stack" },
			wantedErrs: []string{`stackName "my_stack" is invalid: must contain only letters, numbers and hyphens, starting with a letter`},
		},
		"bad account": {
			mutate:     func(cfg *config.StackConfig) { cfg.Account = "12345" },
			wantedErrs: []string{`account "12345" is invalid: must contain only 12 digits`},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			cfg := config.StackConfig{
				StackName: "AgentCoreStack",
				Region:    "us-east-1",
				KnowledgeBases: []config.KnowledgeBaseProps{
					validKnowledgeBaseProps(),
				},
				Agents: []config.AgentRuntimeProps{{
					AgentName:   "research-agent",
					Instruction: "You answer questions from product documentation",
					ProjectRoot: "./agent/",
					KnowledgeBases: []config.KnowledgeBaseAssociation{
						{Name: "product-docs"},
					},
				}},
			}
			if tc.mutate != nil {
				tc.mutate(&cfg)
			}

			got := NewStackValidator(afero.NewMemMapFs()).Validate(cfg)

			require.Equal(t, tc.wantedErrs, got.Errors)
			require.Equal(t, tc.wantedWarnings, got.Warnings)
		})
	}
}

func TestStackValidator_CustomItemValidator(t *testing.T) {
	v := NewStackValidator(afero.NewMemMapFs())
	v.Agents = Func[config.AgentRuntimeProps](func(p config.AgentRuntimeProps) Result {
		return Result{}.WithWarning("checked "+p.AgentName, "")
	})

	got := v.Validate(config.StackConfig{
		StackName: "AgentCoreStack",
		Agents:    []config.AgentRuntimeProps{{AgentName: "a"}},
	})

	require.True(t, got.IsValid())
	require.Equal(t, []string{"agents[0]: checked a"}, got.Warnings)
}
