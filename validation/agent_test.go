package validation

import (
	"strings"
	"testing"

	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func validAgentProps() config.AgentRuntimeProps {
	return config.AgentRuntimeProps{
		AgentName:   "test-agent",
		Instruction: "You are a helpful research assistant",
		ProjectRoot: "./agent/",
		Bucket:      "agent-data",
		Prefix:      "docs/",
		KnowledgeBases: []config.KnowledgeBaseAssociation{
			{KnowledgeBaseID: "KB12345678"},
		},
	}
}

func TestAgentValidator_Validate(t *testing.T) {
	testCases := map[string]struct {
		setupFs func(fs afero.Fs)
		mutate  func(p *config.AgentRuntimeProps)

		wantedErrs         []string
		wantedWarningCount int
	}{
		"valid": {},
		"short instruction": {
			mutate: func(p *config.AgentRuntimeProps) { p.Instruction = "Short" },
			wantedErrs: []string{
				"instruction must be at least 10 characters long, got 5",
			},
		},
		"missing instruction reports only required": {
			mutate:     func(p *config.AgentRuntimeProps) { p.Instruction = "" },
			wantedErrs: []string{"instruction is required"},
		},
		"timeout above range": {
			mutate:     func(p *config.AgentRuntimeProps) { p.CustomResourceTimeoutMinutes = 70 },
			wantedErrs: []string{"customResourceTimeoutMinutes must be between 1 and 60, got 70"},
		},
		"timeout at bound": {
			mutate: func(p *config.AgentRuntimeProps) { p.CustomResourceTimeoutMinutes = 60 },
		},
		"no image source": {
			mutate:     func(p *config.AgentRuntimeProps) { p.ProjectRoot = "" },
			wantedErrs: []string{"exactly one of projectRoot or tarballImageFile must be set, got neither"},
		},
		"both image sources": {
			mutate:     func(p *config.AgentRuntimeProps) { p.TarballImageFile = "image.tar" },
			wantedErrs: []string{"exactly one of projectRoot or tarballImageFile must be set, got both"},
		},
		"tarball exists": {
			setupFs: func(fs afero.Fs) {
				_ = afero.WriteFile(fs, "image.tar", []byte("layers"), 0o644)
			},
			mutate: func(p *config.AgentRuntimeProps) {
				p.ProjectRoot = ""
				p.TarballImageFile = "image.tar"
			},
		},
		"tarball missing": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.ProjectRoot = ""
				p.TarballImageFile = "image.tar"
			},
			wantedErrs: []string{`tarballImageFile "image.tar" does not exist`},
		},
		"prefix without bucket": {
			mutate:     func(p *config.AgentRuntimeProps) { p.Bucket = "" },
			wantedErrs: []string{"s3Prefix is set but s3Bucket is empty"},
		},
		"prefix without trailing slash warns": {
			mutate:             func(p *config.AgentRuntimeProps) { p.Prefix = "docs" },
			wantedWarningCount: 1,
		},
		"unknown protocol": {
			mutate:     func(p *config.AgentRuntimeProps) { p.Protocol = "GRPC" },
			wantedErrs: []string{`protocol "GRPC" is not supported: must be "HTTP" or "HTTPS"`},
		},
		"vpc mode without subnets": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.NetworkMode = config.NetworkModeVPC
				p.VPC = &config.VPCConfig{VPCID: "vpc-1"}
			},
			wantedErrs: []string{"vpc.subnetIds must contain at least one item"},
		},
		"vpc mode without vpc": {
			mutate:     func(p *config.AgentRuntimeProps) { p.NetworkMode = config.NetworkModeVPC },
			wantedErrs: []string{"vpc is required when networkMode is VPC"},
		},
		"vpc mode without vpc id or security groups": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.NetworkMode = config.NetworkModeVPC
				p.VPC = &config.VPCConfig{SubnetIDs: []string{"subnet-1"}}
			},
			wantedErrs: []string{"vpc.vpcId is required when vpc.securityGroupIds is empty"},
		},
		"vpc mode with existing security group": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.NetworkMode = config.NetworkModeVPC
				p.VPC = &config.VPCConfig{SubnetIDs: []string{"subnet-1"}, SecurityGroupIDs: []string{"sg-1"}}
			},
		},
		"vpc ignored in public mode warns": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.VPC = &config.VPCConfig{SubnetIDs: []string{"subnet-1"}}
			},
			wantedWarningCount: 1,
		},
		"empty env value warns": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.EnvironmentVariables = map[string]string{"MODEL": "", "LOG_LEVEL": "DEBUG"}
			},
			wantedWarningCount: 1,
		},
		"empty env key": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.EnvironmentVariables = map[string]string{"": "x"}
			},
			wantedErrs: []string{"environmentVariables contains an empty key"},
		},
		"bad knowledge base id": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.KnowledgeBases = []config.KnowledgeBaseAssociation{{KnowledgeBaseID: "kb-1"}}
			},
			wantedErrs: []string{`knowledgeBases[0].knowledgeBaseId "kb-1" is invalid: must contain only 10 letters or numbers`},
		},
		"knowledge base without id or name": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.KnowledgeBases = []config.KnowledgeBaseAssociation{{Description: "docs"}}
			},
			wantedErrs: []string{"knowledgeBases[0] must set knowledgeBaseId or name"},
		},
		"unknown environment": {
			mutate: func(p *config.AgentRuntimeProps) { p.Environment = "qa" },
			wantedErrs: []string{
				`environment "qa" is not supported: must be "dev", "staging", or "prod"`,
			},
		},
		"naming prefix pushes name over limit": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.AgentName = strings.Repeat("a", 60)
				p.Naming = &defaults.NamingConfig{Prefix: "team"}
			},
			wantedErrs: []string{
				"agentName (with naming prefix/suffix) must be at most 63 characters long, got 65",
			},
		},
		"bad secret arn": {
			mutate:     func(p *config.AgentRuntimeProps) { p.SecretsARNs = []string{"my-secret"} },
			wantedErrs: []string{`secretsArns[0] "my-secret" is invalid: must contain only a Secrets Manager secret ARN`},
		},
		"imported role ignores extra policies": {
			mutate: func(p *config.AgentRuntimeProps) {
				p.ExecutionRoleARN = "arn:aws:iam::123456789012:role/agent"
				p.AdditionalPolicyARNs = []string{"arn:aws:iam::aws:policy/ReadOnlyAccess"}
			},
			wantedWarningCount: 1,
		},
		"log retention out of range": {
			mutate: func(p *config.AgentRuntimeProps) {
				days := 0
				p.Monitoring = &defaults.MonitoringOverrides{LogRetentionDays: &days}
			},
			wantedErrs: []string{"monitoring.logRetentionDays must be between 1 and 3653, got 0"},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			if tc.setupFs != nil {
				tc.setupFs(fs)
			}
			props := validAgentProps()
			if tc.mutate != nil {
				tc.mutate(&props)
			}

			got := (&AgentValidator{Fs: fs}).Validate(props)

			require.Equal(t, tc.wantedErrs, got.Errors)
			require.Len(t, got.Warnings, tc.wantedWarningCount)
			require.Equal(t, len(tc.wantedErrs) == 0, got.IsValid())
		})
	}
}

func TestAgentValidator_SuggestionsFollowErrors(t *testing.T) {
	props := validAgentProps()
	props.Instruction = "Short"

	got := (&AgentValidator{Fs: afero.NewMemMapFs()}).Validate(props)

	require.Equal(t, []string{"Please set instruction to at least 10 characters"}, got.Suggestions)
}

func TestAgentValidator_NilFsUsesOS(t *testing.T) {
	props := validAgentProps()
	props.ProjectRoot = ""
	props.TarballImageFile = "/definitely/not/here/image.tar"

	got := (&AgentValidator{}).Validate(props)

	require.False(t, got.IsValid())
}
