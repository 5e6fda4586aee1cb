package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/stretchr/testify/require"
)

const testJSONConfig = `{
  "stackName": "research-agents",
  "environment": "staging",
  "region": "us-east-1",
  "tags": {"Team": "ai-platform"},
  "knowledgeBases": [
    {
      "name": "product-docs",
      "description": "Product documentation corpus",
      "instruction": "Use for questions about the product",
      "s3Bucket": "acme-docs",
      "prefixes": ["docs/"],
      "syncIntervalMinutes": 60,
      "chunkingStrategy": {"maxTokens": 512, "overlapPercentage": 10}
    }
  ],
  "agents": [
    {
      "agentName": "research",
      "instruction": "You are a research assistant.",
      "projectRoot": "./agent/",
      "s3Bucket": "acme-docs",
      "s3Prefix": "agents/research/",
      "customResourceTimeoutMinutes": 10,
      "environmentVariables": {"DEBUG": "true"},
      "knowledgeBases": [{"name": "product-docs"}]
    }
  ]
}`

const testYAMLConfig = `
stackName: research-agents
environment: prod
removalPolicy: destroy
agents:
  - agentName: research
    instruction: You are a research assistant.
    tarballImageFile: ./image.tar
    protocol: HTTPS
    networkMode: VPC
    vpc:
      subnetIds: [subnet-1, subnet-2]
`

func TestLoadStackConfigFromJSON(t *testing.T) {
	cfg, err := LoadStackConfigFromJSON([]byte(testJSONConfig))
	require.NoError(t, err)

	require.Equal(t, "research-agents", cfg.StackName)
	require.Equal(t, defaults.EnvironmentStaging, cfg.Environment)
	require.Equal(t, map[string]string{"Team": "ai-platform"}, cfg.Tags)

	require.Len(t, cfg.KnowledgeBases, 1)
	kb := cfg.KnowledgeBases[0]
	require.Equal(t, "product-docs", kb.Name)
	require.Equal(t, []string{"docs/"}, kb.Prefixes)
	require.Equal(t, 60, kb.SyncIntervalMinutes)
	require.Equal(t, &ChunkingStrategy{MaxTokens: 512, OverlapPercentage: 10}, kb.ChunkingStrategy)

	require.Len(t, cfg.Agents, 1)
	agent := cfg.Agents[0]
	require.Equal(t, "research", agent.AgentName)
	require.Equal(t, "./agent/", agent.ProjectRoot)
	require.Equal(t, 10, agent.CustomResourceTimeoutMinutes)
	require.Equal(t, map[string]string{"DEBUG": "true"}, agent.EnvironmentVariables)
	require.Equal(t, []KnowledgeBaseAssociation{{Name: "product-docs"}}, agent.KnowledgeBases)
}

func TestLoadStackConfigFromYAML(t *testing.T) {
	cfg, err := LoadStackConfigFromYAML([]byte(testYAMLConfig))
	require.NoError(t, err)

	require.Equal(t, defaults.EnvironmentProd, cfg.Environment)
	require.Equal(t, defaults.RemovalPolicyDestroy, cfg.RemovalPolicy)
	require.Len(t, cfg.Agents, 1)
	require.Equal(t, ProtocolHTTPS, cfg.Agents[0].Protocol)
	require.Equal(t, NetworkModeVPC, cfg.Agents[0].NetworkMode)
	require.Equal(t, []string{"subnet-1", "subnet-2"}, cfg.Agents[0].VPC.SubnetIDs)
}

func TestLoadStackConfig_SchemaErrors(t *testing.T) {
	testCases := map[string]struct {
		in string

		wantedErrContains string
	}{
		"missing stack name": {
			in:                `{"environment": "dev"}`,
			wantedErrContains: "StackName",
		},
		"unknown environment": {
			in:                `{"stackName": "s", "environment": "qa"}`,
			wantedErrContains: "Environment",
		},
		"unknown removal policy on an agent": {
			in:                `{"stackName": "s", "agents": [{"agentName": "a", "removalPolicy": "snapshot"}]}`,
			wantedErrContains: "RemovalPolicy",
		},
		"malformed account": {
			in:                `{"stackName": "s", "account": "12ab"}`,
			wantedErrContains: "Account",
		},
		"malformed document": {
			in:                `{"stackName": `,
			wantedErrContains: "parse config",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadStackConfigFromJSON([]byte(tc.in))

			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantedErrContains)
		})
	}
}

func TestLoadStackConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("AGENTCORE_ENVIRONMENT", "prod")
	t.Setenv("AGENTCORE_STACK_NAME", "overridden")

	cfg, err := LoadStackConfigFromJSON([]byte(testJSONConfig))
	require.NoError(t, err)

	require.Equal(t, defaults.EnvironmentProd, cfg.Environment)
	require.Equal(t, "overridden", cfg.StackName)
}

func TestLoadStackConfigFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "config.json")
		require.NoError(t, os.WriteFile(path, []byte(testJSONConfig), 0o600))

		cfg, err := LoadStackConfigFromFile(path)
		require.NoError(t, err)
		require.Equal(t, "research-agents", cfg.StackName)
	})
	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "config.yml")
		require.NoError(t, os.WriteFile(path, []byte(testYAMLConfig), 0o600))

		cfg, err := LoadStackConfigFromFile(path)
		require.NoError(t, err)
		require.Equal(t, defaults.EnvironmentProd, cfg.Environment)
	})
	t.Run("missing file", func(t *testing.T) {
		_, err := LoadStackConfigFromFile(filepath.Join(dir, "missing.json"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := LoadStackConfigFromFile(filepath.Join(dir, "config.toml"))
		require.ErrorContains(t, err, "unsupported config file extension")
	})
}

func TestEnvTransform(t *testing.T) {
	testCases := map[string]string{
		"AGENTCORE_ENVIRONMENT":    "environment",
		"AGENTCORE_STACK_NAME":     "stackName",
		"AGENTCORE_REMOVAL_POLICY": "removalPolicy",
	}
	for in, wanted := range testCases {
		t.Run(in, func(t *testing.T) {
			require.Equal(t, wanted, envTransform(in))
		})
	}
}

func TestStackConfig_ApplyDefaults(t *testing.T) {
	cfg := StackConfig{
		BaseProps: defaults.BaseProps{
			Environment: defaults.EnvironmentProd,
			Tags:        map[string]string{"Team": "ai", "Owner": "stack"},
			Naming:      &defaults.NamingConfig{Prefix: "acme"},
		},
		Region: "eu-west-1",
		Agents: []AgentRuntimeProps{
			{AgentName: "a"},
			{
				AgentName: "b",
				Region:    "us-east-1",
				BaseProps: defaults.BaseProps{
					Environment: defaults.EnvironmentDev,
					Tags:        map[string]string{"Owner": "agent-b"},
				},
			},
		},
		KnowledgeBases: []KnowledgeBaseProps{{Name: "kb"}},
	}

	cfg.ApplyDefaults()

	require.Equal(t, defaults.EnvironmentProd, cfg.Agents[0].Environment)
	require.Equal(t, "eu-west-1", cfg.Agents[0].Region)
	require.Equal(t, "acme", cfg.Agents[0].Naming.Prefix)
	require.Equal(t, defaults.EnvironmentDev, cfg.Agents[1].Environment)
	require.Equal(t, "us-east-1", cfg.Agents[1].Region)
	require.Equal(t, map[string]string{"Team": "ai", "Owner": "agent-b"}, cfg.Agents[1].Tags)
	require.Equal(t, defaults.EnvironmentProd, cfg.KnowledgeBases[0].Environment)
}

func TestStackConfig_ApplyDefaultsLeavesCopiesUntouched(t *testing.T) {
	original := StackConfig{
		BaseProps:      defaults.BaseProps{Environment: defaults.EnvironmentStaging},
		Agents:         []AgentRuntimeProps{{AgentName: "a"}},
		KnowledgeBases: []KnowledgeBaseProps{{Name: "kb"}},
	}

	resolved := original
	resolved.ApplyDefaults()

	require.Equal(t, defaults.EnvironmentStaging, resolved.Agents[0].Environment)
	require.Equal(t, defaults.EnvironmentStaging, resolved.KnowledgeBases[0].Environment)
	require.Empty(t, original.Agents[0].Environment)
	require.Empty(t, original.KnowledgeBases[0].Environment)
}
