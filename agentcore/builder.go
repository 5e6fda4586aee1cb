package agentcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/plexusone/bedrock-agentcore-cdk/validation"
	"github.com/spf13/afero"
)

// StackBuilder provides a fluent interface for building AgentCore stacks.
type StackBuilder struct {
	config config.StackConfig
	fs     afero.Fs
}

// NewStackBuilder creates a new stack builder.
func NewStackBuilder(stackName string) *StackBuilder {
	return &StackBuilder{
		config: config.StackConfig{
			StackName: stackName,
			BaseProps: defaults.BaseProps{Tags: make(map[string]string)},
		},
	}
}

// WithDescription sets the stack description.
func (b *StackBuilder) WithDescription(description string) *StackBuilder {
	b.config.Description = description
	return b
}

// WithAccount pins the stack to an AWS account.
func (b *StackBuilder) WithAccount(account string) *StackBuilder {
	b.config.Account = account
	return b
}

// WithRegion pins the stack to an AWS region.
func (b *StackBuilder) WithRegion(region string) *StackBuilder {
	b.config.Region = region
	return b
}

// WithEnvironment sets the default tier for every item in the stack.
func (b *StackBuilder) WithEnvironment(env defaults.Environment) *StackBuilder {
	b.config.Environment = env
	return b
}

// WithNaming sets a prefix and suffix for generated resource names.
func (b *StackBuilder) WithNaming(prefix, suffix string) *StackBuilder {
	b.config.Naming = &defaults.NamingConfig{Prefix: prefix, Suffix: suffix}
	return b
}

// WithAgent adds an agent to the stack.
func (b *StackBuilder) WithAgent(props config.AgentRuntimeProps) *StackBuilder {
	b.config.Agents = append(b.config.Agents, props)
	return b
}

// WithAgents adds multiple agents to the stack.
func (b *StackBuilder) WithAgents(props ...config.AgentRuntimeProps) *StackBuilder {
	b.config.Agents = append(b.config.Agents, props...)
	return b
}

// WithKnowledgeBase adds a knowledge base to the stack.
func (b *StackBuilder) WithKnowledgeBase(props config.KnowledgeBaseProps) *StackBuilder {
	b.config.KnowledgeBases = append(b.config.KnowledgeBases, props)
	return b
}

// WithTags adds tags to all resources.
func (b *StackBuilder) WithTags(tags map[string]string) *StackBuilder {
	for k, v := range tags {
		b.config.Tags[k] = v
	}
	return b
}

// WithTag adds a single tag.
func (b *StackBuilder) WithTag(key, value string) *StackBuilder {
	b.config.Tags[key] = value
	return b
}

// WithRemovalPolicy sets the removal policy.
func (b *StackBuilder) WithRemovalPolicy(policy defaults.RemovalPolicy) *StackBuilder {
	b.config.RemovalPolicy = policy
	return b
}

// RetainOnDelete sets the removal policy to retain.
func (b *StackBuilder) RetainOnDelete() *StackBuilder {
	return b.WithRemovalPolicy(defaults.RemovalPolicyRetain)
}

// DestroyOnDelete sets the removal policy to destroy.
func (b *StackBuilder) DestroyOnDelete() *StackBuilder {
	return b.WithRemovalPolicy(defaults.RemovalPolicyDestroy)
}

// WithFs sets the filesystem used to check tarball images.
func (b *StackBuilder) WithFs(fs afero.Fs) *StackBuilder {
	b.fs = fs
	return b
}

// Config returns the current configuration.
func (b *StackBuilder) Config() config.StackConfig {
	return b.config
}

// Validate validates the current configuration without creating any construct.
func (b *StackBuilder) Validate() validation.Result {
	cfg := b.config
	cfg.ApplyDefaults()
	return validation.NewStackValidator(b.fs).Validate(cfg)
}

// Build creates the AgentCore stack.
func (b *StackBuilder) Build(scope constructs.Construct) (*AgentCoreStack, error) {
	return NewAgentCoreStack(scope, b.config.StackName, b.config, WithFs(b.fs))
}

// AgentBuilder provides a fluent interface for building runtime props.
type AgentBuilder struct {
	props config.AgentRuntimeProps
}

// NewAgentBuilder creates a new agent builder.
func NewAgentBuilder(name, instruction string) *AgentBuilder {
	return &AgentBuilder{
		props: config.AgentRuntimeProps{
			AgentName:            name,
			Instruction:          instruction,
			EnvironmentVariables: make(map[string]string),
		},
	}
}

// WithDescription sets the agent description.
func (b *AgentBuilder) WithDescription(description string) *AgentBuilder {
	b.props.Description = description
	return b
}

// WithProjectRoot builds the image from a directory containing a Dockerfile.
func (b *AgentBuilder) WithProjectRoot(dir string) *AgentBuilder {
	b.props.ProjectRoot = dir
	return b
}

// WithDockerfile sets the Dockerfile name relative to the project root.
func (b *AgentBuilder) WithDockerfile(name string) *AgentBuilder {
	b.props.Dockerfile = name
	return b
}

// WithTarball loads a prebuilt image archive.
func (b *AgentBuilder) WithTarball(path string) *AgentBuilder {
	b.props.TarballImageFile = path
	return b
}

// WithBucket grants the agent read access to bucket, optionally limited to prefix.
func (b *AgentBuilder) WithBucket(bucket, prefix string) *AgentBuilder {
	b.props.Bucket = bucket
	b.props.Prefix = prefix
	return b
}

// WithModel sets the foundation model the agent may invoke.
func (b *AgentBuilder) WithModel(modelID string) *AgentBuilder {
	b.props.FoundationModelID = modelID
	return b
}

// WithKnowledgeBaseID associates an existing knowledge base.
func (b *AgentBuilder) WithKnowledgeBaseID(id string) *AgentBuilder {
	b.props.KnowledgeBases = append(b.props.KnowledgeBases, config.KnowledgeBaseAssociation{KnowledgeBaseID: id})
	return b
}

// WithKnowledgeBaseName associates a knowledge base declared in the same stack.
func (b *AgentBuilder) WithKnowledgeBaseName(name string) *AgentBuilder {
	b.props.KnowledgeBases = append(b.props.KnowledgeBases, config.KnowledgeBaseAssociation{Name: name})
	return b
}

// WithEnvironment sets environment variables.
func (b *AgentBuilder) WithEnvironment(env map[string]string) *AgentBuilder {
	for k, v := range env {
		b.props.EnvironmentVariables[k] = v
	}
	return b
}

// WithEnvVar adds a single environment variable.
func (b *AgentBuilder) WithEnvVar(key, value string) *AgentBuilder {
	b.props.EnvironmentVariables[key] = value
	return b
}

// WithSecrets adds secret ARNs.
func (b *AgentBuilder) WithSecrets(secretARNs ...string) *AgentBuilder {
	b.props.SecretsARNs = append(b.props.SecretsARNs, secretARNs...)
	return b
}

// WithExistingRole uses an existing IAM role.
func (b *AgentBuilder) WithExistingRole(roleARN string) *AgentBuilder {
	b.props.ExecutionRoleARN = roleARN
	return b
}

// WithTimeout sets the custom resource timeout in minutes.
func (b *AgentBuilder) WithTimeout(minutes int) *AgentBuilder {
	b.props.CustomResourceTimeoutMinutes = minutes
	return b
}

// WithProtocol sets the runtime protocol.
func (b *AgentBuilder) WithProtocol(protocol string) *AgentBuilder {
	b.props.Protocol = protocol
	return b
}

// InVPC places the runtime in existing subnets.
func (b *AgentBuilder) InVPC(vpcID string, subnetIDs []string, securityGroupIDs ...string) *AgentBuilder {
	b.props.NetworkMode = config.NetworkModeVPC
	b.props.VPC = &config.VPCConfig{
		VPCID:            vpcID,
		SubnetIDs:        subnetIDs,
		SecurityGroupIDs: securityGroupIDs,
	}
	return b
}

// WithEnvironmentTier sets the tier for this agent only.
func (b *AgentBuilder) WithEnvironmentTier(env defaults.Environment) *AgentBuilder {
	b.props.Environment = env
	return b
}

// Build returns the runtime props.
func (b *AgentBuilder) Build() config.AgentRuntimeProps {
	return b.props
}

// KnowledgeBaseBuilder provides a fluent interface for building knowledge base props.
type KnowledgeBaseBuilder struct {
	props config.KnowledgeBaseProps
}

// NewKnowledgeBaseBuilder creates a knowledge base builder reading from bucket.
func NewKnowledgeBaseBuilder(name, bucket string) *KnowledgeBaseBuilder {
	return &KnowledgeBaseBuilder{
		props: config.KnowledgeBaseProps{
			Name:   name,
			Bucket: bucket,
		},
	}
}

// WithDescription sets the knowledge base description.
func (b *KnowledgeBaseBuilder) WithDescription(description string) *KnowledgeBaseBuilder {
	b.props.Description = description
	return b
}

// WithInstruction tells agents when to consult the knowledge base.
func (b *KnowledgeBaseBuilder) WithInstruction(instruction string) *KnowledgeBaseBuilder {
	b.props.Instruction = instruction
	return b
}

// WithPrefixes adds inclusion prefixes.
func (b *KnowledgeBaseBuilder) WithPrefixes(prefixes ...string) *KnowledgeBaseBuilder {
	b.props.Prefixes = append(b.props.Prefixes, prefixes...)
	return b
}

// WithSyncInterval schedules ingestion every minutes.
func (b *KnowledgeBaseBuilder) WithSyncInterval(minutes int) *KnowledgeBaseBuilder {
	b.props.SyncIntervalMinutes = minutes
	return b
}

// WithChunking sets fixed-size chunking.
func (b *KnowledgeBaseBuilder) WithChunking(maxTokens, overlapPercentage int) *KnowledgeBaseBuilder {
	b.props.ChunkingStrategy = &config.ChunkingStrategy{
		MaxTokens:         maxTokens,
		OverlapPercentage: overlapPercentage,
	}
	return b
}

// WithEmbeddingModel sets the embedding model.
func (b *KnowledgeBaseBuilder) WithEmbeddingModel(modelID string) *KnowledgeBaseBuilder {
	b.props.EmbeddingModelID = modelID
	return b
}

// WithCollection uses an existing OpenSearch Serverless collection.
func (b *KnowledgeBaseBuilder) WithCollection(collectionARN string) *KnowledgeBaseBuilder {
	if b.props.VectorStore == nil {
		b.props.VectorStore = &config.VectorStoreConfig{}
	}
	b.props.VectorStore.CollectionARN = collectionARN
	return b
}

// Build returns the knowledge base props.
func (b *KnowledgeBaseBuilder) Build() config.KnowledgeBaseProps {
	return b.props
}

// NewApp creates a new CDK app with common settings.
func NewApp() awscdk.App {
	return awscdk.NewApp(&awscdk.AppProps{
		Context: &map[string]interface{}{
			"@aws-cdk/core:newStyleStackSynthesis": true,
		},
	})
}

// Synth synthesizes the CDK app to CloudFormation templates.
func Synth(app awscdk.App) {
	app.Synth(nil)
}
