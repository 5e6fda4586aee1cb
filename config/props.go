// Package config defines the user-facing configuration for AgentCore runtimes and
// Bedrock knowledge bases, and loads it from JSON or YAML files.
package config

import (
	"slices"

	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
)

// Supported transport protocols for a runtime.
const (
	ProtocolHTTP  = "HTTP"
	ProtocolHTTPS = "HTTPS"
)

// Supported network modes for a runtime.
const (
	NetworkModePublic = "PUBLIC"
	NetworkModeVPC    = "VPC"
)

// Field defaults applied when props leave them empty.
const (
	DefaultProtocol                     = ProtocolHTTP
	DefaultNetworkMode                  = NetworkModePublic
	DefaultDockerfile                   = "Dockerfile"
	DefaultCustomResourceTimeoutMinutes = 5
	DefaultEmbeddingModelID             = "amazon.titan-embed-text-v2:0"
	DefaultFoundationModelID            = "anthropic.claude-3-5-sonnet-20240620-v1:0"
	DefaultVectorIndexName              = "bedrock-knowledge-base-default-index"
	DefaultVectorField                  = "bedrock-knowledge-base-default-vector"
	DefaultTextField                    = "AMAZON_BEDROCK_TEXT_CHUNK"
	DefaultMetadataField                = "AMAZON_BEDROCK_METADATA"
	DefaultVectorDimensions             = 1024
	DefaultChunkMaxTokens               = 300
	DefaultChunkOverlapPercentage       = 20
)

// ValidProtocols lists accepted Protocol values.
var ValidProtocols = []string{ProtocolHTTP, ProtocolHTTPS}

// ValidNetworkModes lists accepted NetworkMode values.
var ValidNetworkModes = []string{NetworkModePublic, NetworkModeVPC}

// AgentRuntimeProps configures a single Bedrock AgentCore runtime.
type AgentRuntimeProps struct {
	defaults.BaseProps `koanf:",squash" yaml:",inline"`

	// AgentName is the runtime name. Letters, digits, "_" and "-", at most 63 characters.
	AgentName string `json:"agentName" yaml:"agentName" koanf:"agentName"`

	// Instruction is the system prompt handed to the agent (10-4000 characters).
	Instruction string `json:"instruction" yaml:"instruction" koanf:"instruction"`

	// Description is an optional runtime description (at most 500 characters).
	Description string `json:"description,omitempty" yaml:"description,omitempty" koanf:"description"`

	// ProjectRoot is a directory containing a Dockerfile to build the image from.
	// Exactly one of ProjectRoot and TarballImageFile must be set.
	ProjectRoot string `json:"projectRoot,omitempty" yaml:"projectRoot,omitempty" koanf:"projectRoot"`

	// Dockerfile is the Dockerfile name relative to ProjectRoot.
	Dockerfile string `json:"dockerfile,omitempty" yaml:"dockerfile,omitempty" koanf:"dockerfile"`

	// TarballImageFile is a prebuilt image archive produced by `docker save`.
	TarballImageFile string `json:"tarballImageFile,omitempty" yaml:"tarballImageFile,omitempty" koanf:"tarballImageFile"`

	// Bucket is an existing S3 bucket the agent reads data from.
	Bucket string `json:"s3Bucket,omitempty" yaml:"s3Bucket,omitempty" koanf:"s3Bucket"`

	// Prefix limits bucket access to a key prefix.
	Prefix string `json:"s3Prefix,omitempty" yaml:"s3Prefix,omitempty" koanf:"s3Prefix"`

	// Region is exported to the runtime as AWS_REGION when set.
	Region string `json:"region,omitempty" yaml:"region,omitempty" koanf:"region"`

	// FoundationModelID is the Bedrock model the agent may invoke.
	FoundationModelID string `json:"foundationModelId,omitempty" yaml:"foundationModelId,omitempty" koanf:"foundationModelId"`

	// KnowledgeBases are the knowledge bases the agent may retrieve from.
	KnowledgeBases []KnowledgeBaseAssociation `json:"knowledgeBases,omitempty" yaml:"knowledgeBases,omitempty" koanf:"knowledgeBases"`

	// Protocol is HTTP or HTTPS. Default: HTTP.
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty" koanf:"protocol"`

	// NetworkMode is PUBLIC or VPC. Default: PUBLIC.
	NetworkMode string `json:"networkMode,omitempty" yaml:"networkMode,omitempty" koanf:"networkMode"`

	// VPC is required when NetworkMode is VPC.
	VPC *VPCConfig `json:"vpc,omitempty" yaml:"vpc,omitempty" koanf:"vpc"`

	// CustomResourceTimeoutMinutes bounds each runtime lifecycle call (1-60). Default: 5.
	CustomResourceTimeoutMinutes int `json:"customResourceTimeoutMinutes,omitempty" yaml:"customResourceTimeoutMinutes,omitempty" koanf:"customResourceTimeoutMinutes"`

	// EnvironmentVariables are layered over the runtime defaults.
	EnvironmentVariables map[string]string `json:"environmentVariables,omitempty" yaml:"environmentVariables,omitempty" koanf:"environmentVariables"`

	// SecretsARNs are Secrets Manager secrets the runtime role may read.
	SecretsARNs []string `json:"secretsArns,omitempty" yaml:"secretsArns,omitempty" koanf:"secretsArns"`

	// ExecutionRoleARN imports an existing role instead of creating one.
	ExecutionRoleARN string `json:"executionRoleArn,omitempty" yaml:"executionRoleArn,omitempty" koanf:"executionRoleArn"`

	// AdditionalPolicyARNs are managed policies attached to the created role.
	AdditionalPolicyARNs []string `json:"additionalPolicyArns,omitempty" yaml:"additionalPolicyArns,omitempty" koanf:"additionalPolicyArns"`

	// PermissionsBoundaryARN is applied to the created role when set.
	PermissionsBoundaryARN string `json:"permissionsBoundaryArn,omitempty" yaml:"permissionsBoundaryArn,omitempty" koanf:"permissionsBoundaryArn"`

	Security   *defaults.SecurityOverrides   `json:"security,omitempty" yaml:"security,omitempty" koanf:"security"`
	Monitoring *defaults.MonitoringOverrides `json:"monitoring,omitempty" yaml:"monitoring,omitempty" koanf:"monitoring"`
}

// KnowledgeBaseAssociation links a runtime to a knowledge base. Either
// KnowledgeBaseID (an existing knowledge base) or Name (one declared in the same
// stack) identifies it.
type KnowledgeBaseAssociation struct {
	KnowledgeBaseID string `json:"knowledgeBaseId,omitempty" yaml:"knowledgeBaseId,omitempty" koanf:"knowledgeBaseId"`
	Name            string `json:"name,omitempty" yaml:"name,omitempty" koanf:"name"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty" koanf:"description"`
}

// VPCConfig places a runtime in existing subnets.
type VPCConfig struct {
	VPCID            string   `json:"vpcId,omitempty" yaml:"vpcId,omitempty" koanf:"vpcId"`
	SubnetIDs        []string `json:"subnetIds,omitempty" yaml:"subnetIds,omitempty" koanf:"subnetIds"`
	SecurityGroupIDs []string `json:"securityGroupIds,omitempty" yaml:"securityGroupIds,omitempty" koanf:"securityGroupIds"`
}

// KnowledgeBaseProps configures a Bedrock knowledge base backed by S3 and
// OpenSearch Serverless.
type KnowledgeBaseProps struct {
	defaults.BaseProps `koanf:",squash" yaml:",inline"`

	// Name of the knowledge base.
	Name string `json:"name" yaml:"name" koanf:"name"`

	// Description must be 10-1000 characters.
	Description string `json:"description" yaml:"description" koanf:"description"`

	// Instruction tells agents when to consult this knowledge base (at least 10 characters).
	Instruction string `json:"instruction" yaml:"instruction" koanf:"instruction"`

	// Bucket is the S3 bucket holding source documents.
	Bucket string `json:"s3Bucket" yaml:"s3Bucket" koanf:"s3Bucket"`

	// Prefixes are the inclusion prefixes to ingest. At least one is required.
	Prefixes []string `json:"prefixes" yaml:"prefixes" koanf:"prefixes"`

	// SyncIntervalMinutes schedules ingestion (1-1440). Zero disables scheduled sync.
	SyncIntervalMinutes int `json:"syncIntervalMinutes,omitempty" yaml:"syncIntervalMinutes,omitempty" koanf:"syncIntervalMinutes"`

	// ChunkingStrategy controls fixed-size chunking. Nil uses the defaults.
	ChunkingStrategy *ChunkingStrategy `json:"chunkingStrategy,omitempty" yaml:"chunkingStrategy,omitempty" koanf:"chunkingStrategy"`

	// EmbeddingModelID is the Bedrock embedding model.
	EmbeddingModelID string `json:"embeddingModelId,omitempty" yaml:"embeddingModelId,omitempty" koanf:"embeddingModelId"`

	// VectorStore configures the OpenSearch Serverless index.
	VectorStore *VectorStoreConfig `json:"vectorStore,omitempty" yaml:"vectorStore,omitempty" koanf:"vectorStore"`

	Security *defaults.SecurityOverrides `json:"security,omitempty" yaml:"security,omitempty" koanf:"security"`
}

// ChunkingStrategy is a fixed-size chunking configuration.
type ChunkingStrategy struct {
	MaxTokens         int `json:"maxTokens" yaml:"maxTokens" koanf:"maxTokens"`
	OverlapPercentage int `json:"overlapPercentage" yaml:"overlapPercentage" koanf:"overlapPercentage"`
}

// VectorStoreConfig selects the OpenSearch Serverless collection and index.
// When CollectionARN is empty a collection is created.
type VectorStoreConfig struct {
	CollectionARN string `json:"collectionArn,omitempty" yaml:"collectionArn,omitempty" koanf:"collectionArn"`
	IndexName     string `json:"indexName,omitempty" yaml:"indexName,omitempty" koanf:"indexName"`
	VectorField   string `json:"vectorField,omitempty" yaml:"vectorField,omitempty" koanf:"vectorField"`
	TextField     string `json:"textField,omitempty" yaml:"textField,omitempty" koanf:"textField"`
	MetadataField string `json:"metadataField,omitempty" yaml:"metadataField,omitempty" koanf:"metadataField"`

	// Dimensions must match the output size of the embedding model.
	Dimensions int `json:"dimensions,omitempty" yaml:"dimensions,omitempty" koanf:"dimensions"`
}

// ResolvedVectorStore returns the vector store config with empty fields defaulted.
func (p KnowledgeBaseProps) ResolvedVectorStore() VectorStoreConfig {
	var vs VectorStoreConfig
	if p.VectorStore != nil {
		vs = *p.VectorStore
	}
	if vs.IndexName == "" {
		vs.IndexName = DefaultVectorIndexName
	}
	if vs.VectorField == "" {
		vs.VectorField = DefaultVectorField
	}
	if vs.TextField == "" {
		vs.TextField = DefaultTextField
	}
	if vs.MetadataField == "" {
		vs.MetadataField = DefaultMetadataField
	}
	if vs.Dimensions == 0 {
		vs.Dimensions = DefaultVectorDimensions
	}
	return vs
}

// ResolvedChunking returns the chunking strategy, or the default when unset.
func (p KnowledgeBaseProps) ResolvedChunking() ChunkingStrategy {
	if p.ChunkingStrategy != nil {
		return *p.ChunkingStrategy
	}
	return ChunkingStrategy{
		MaxTokens:         DefaultChunkMaxTokens,
		OverlapPercentage: DefaultChunkOverlapPercentage,
	}
}

// StackConfig describes a stack of knowledge bases and runtimes.
type StackConfig struct {
	defaults.BaseProps `koanf:",squash" yaml:",inline"`

	StackName   string `json:"stackName" yaml:"stackName" koanf:"stackName" validate:"required"`
	Description string `json:"description,omitempty" yaml:"description,omitempty" koanf:"description"`
	Account     string `json:"account,omitempty" yaml:"account,omitempty" koanf:"account" validate:"omitempty,numeric,len=12"`
	Region      string `json:"region,omitempty" yaml:"region,omitempty" koanf:"region"`

	KnowledgeBases []KnowledgeBaseProps `json:"knowledgeBases,omitempty" yaml:"knowledgeBases,omitempty" koanf:"knowledgeBases" validate:"dive"`
	Agents         []AgentRuntimeProps  `json:"agents,omitempty" yaml:"agents,omitempty" koanf:"agents" validate:"dive"`
}

// ApplyDefaults pushes stack-level base props into each agent and knowledge base
// that leaves them unset. Per-item values always win. Item slices are cloned
// first and the items they shared with other copies of c are left untouched.
func (c *StackConfig) ApplyDefaults() {
	c.Agents = slices.Clone(c.Agents)
	c.KnowledgeBases = slices.Clone(c.KnowledgeBases)
	for i := range c.Agents {
		inheritBase(&c.Agents[i].BaseProps, c.BaseProps)
		if c.Agents[i].Region == "" {
			c.Agents[i].Region = c.Region
		}
	}
	for i := range c.KnowledgeBases {
		inheritBase(&c.KnowledgeBases[i].BaseProps, c.BaseProps)
	}
}

func inheritBase(dst *defaults.BaseProps, stack defaults.BaseProps) {
	if dst.Environment == "" {
		dst.Environment = stack.Environment
	}
	if dst.Naming == nil {
		dst.Naming = stack.Naming
	}
	if dst.RemovalPolicy == "" {
		dst.RemovalPolicy = stack.RemovalPolicy
	}
	if len(stack.Tags) == 0 {
		return
	}
	tags := make(map[string]string, len(stack.Tags)+len(dst.Tags))
	for k, v := range stack.Tags {
		tags[k] = v
	}
	for k, v := range dst.Tags {
		tags[k] = v
	}
	dst.Tags = tags
}
