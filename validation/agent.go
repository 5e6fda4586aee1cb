package validation

import (
	"fmt"
	"maps"
	"slices"

	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/spf13/afero"
)

const (
	minInstructionLength      = 10
	maxAgentInstructionLength = 4000
	maxAgentDescriptionLength = 500
	minCustomResourceTimeout  = 1
	maxCustomResourceTimeout  = 60
	minLogRetentionDays       = 1
	maxLogRetentionDays       = 3653
)

var removalPolicies = []defaults.RemovalPolicy{defaults.RemovalPolicyRetain, defaults.RemovalPolicyDestroy}

// AgentValidator validates AgentRuntimeProps.
type AgentValidator struct {
	// Fs is used to check that a tarball image exists. Nil means the OS filesystem.
	Fs afero.Fs
}

// NewAgentValidator returns an AgentValidator backed by the OS filesystem.
func NewAgentValidator() *AgentValidator {
	return &AgentValidator{Fs: afero.NewOsFs()}
}

// Validate checks every field of p and the relationships between them.
func (v *AgentValidator) Validate(p config.AgentRuntimeProps) Result {
	var c Collector

	c.Merge(ResourceName(p.AgentName, "agentName"))
	if p.AgentName != "" && p.Naming != nil {
		c.Merge(generatedName(p.AgentName, p.Naming, "agentName"))
	}

	if c.Merge(Required(p.Instruction, "instruction")) {
		c.Merge(Length(p.Instruction, minInstructionLength, maxAgentInstructionLength, "instruction"))
	}
	c.Merge(MaxLength(p.Description, maxAgentDescriptionLength, "description"))

	c.Merge(v.imageSource(p))

	if p.Bucket != "" {
		c.Merge(BucketName(p.Bucket, "s3Bucket"))
	} else if p.Prefix != "" {
		c.AddError("s3Prefix is set but s3Bucket is empty", "Please set s3Bucket or remove s3Prefix")
	}
	c.Merge(PathPrefix(p.Prefix, "s3Prefix"))

	if p.Region != "" {
		c.Merge(Region(p.Region, "region"))
	}
	if p.Protocol != "" {
		c.Merge(OneOf(p.Protocol, config.ValidProtocols, "protocol"))
	}
	if p.CustomResourceTimeoutMinutes != 0 {
		c.Merge(Range(p.CustomResourceTimeoutMinutes, minCustomResourceTimeout, maxCustomResourceTimeout, "customResourceTimeoutMinutes"))
	}
	if p.NetworkMode != "" {
		c.Merge(OneOf(p.NetworkMode, config.ValidNetworkModes, "networkMode"))
	}
	c.Merge(vpc(p))

	c.Merge(environmentVariables(p.EnvironmentVariables))
	c.Merge(knowledgeBaseAssociations(p.KnowledgeBases))
	c.Merge(iam(p))
	c.Merge(baseProps(p.BaseProps))

	if p.Monitoring != nil && p.Monitoring.LogRetentionDays != nil {
		c.Merge(Range(*p.Monitoring.LogRetentionDays, minLogRetentionDays, maxLogRetentionDays, "monitoring.logRetentionDays"))
	}

	return c.Result()
}

// imageSource requires exactly one of projectRoot and tarballImageFile.
func (v *AgentValidator) imageSource(p config.AgentRuntimeProps) Result {
	switch {
	case p.ProjectRoot == "" && p.TarballImageFile == "":
		return Result{}.WithError(
			"exactly one of projectRoot or tarballImageFile must be set, got neither",
			"Please set projectRoot to build the image from source, or tarballImageFile to load a prebuilt image",
		)
	case p.ProjectRoot != "" && p.TarballImageFile != "":
		return Result{}.WithError(
			"exactly one of projectRoot or tarballImageFile must be set, got both",
			"Please remove either projectRoot or tarballImageFile",
		)
	case p.ProjectRoot != "":
		return ProjectRoot(p.ProjectRoot, "projectRoot")
	default:
		return TarballPath(v.fs(), p.TarballImageFile, "tarballImageFile")
	}
}

func (v *AgentValidator) fs() afero.Fs {
	if v == nil || v.Fs == nil {
		return afero.NewOsFs()
	}
	return v.Fs
}

func vpc(p config.AgentRuntimeProps) Result {
	if p.NetworkMode != config.NetworkModeVPC {
		if p.VPC != nil {
			return Result{}.WithWarning(
				fmt.Sprintf("vpc is ignored because networkMode is %q", networkModeOrDefault(p.NetworkMode)),
				"Please set networkMode to VPC or remove vpc",
			)
		}
		return Result{}
	}
	if p.VPC == nil {
		return Result{}.WithError(
			"vpc is required when networkMode is VPC",
			"Please set vpc.subnetIds to the private subnets the runtime should use",
		)
	}
	r := NonEmpty(p.VPC.SubnetIDs, "vpc.subnetIds")
	if p.VPC.VPCID == "" && len(p.VPC.SecurityGroupIDs) == 0 {
		r = r.WithError(
			"vpc.vpcId is required when vpc.securityGroupIds is empty",
			"Please set vpc.vpcId so a security group can be created, or list existing vpc.securityGroupIds",
		)
	}
	return r
}

func networkModeOrDefault(mode string) string {
	if mode == "" {
		return config.DefaultNetworkMode
	}
	return mode
}

func environmentVariables(vars map[string]string) Result {
	var r Result
	for _, k := range slices.Sorted(maps.Keys(vars)) {
		if k == "" {
			r = r.WithError(
				"environmentVariables contains an empty key",
				"Please remove the entry with an empty name from environmentVariables",
			)
			continue
		}
		if vars[k] == "" {
			r = r.WithWarning(
				fmt.Sprintf("environmentVariables[%s] has an empty value", k),
				fmt.Sprintf("Please set a value for %s or remove it", k),
			)
		}
	}
	return r
}

func knowledgeBaseAssociations(kbs []config.KnowledgeBaseAssociation) Result {
	var r Result
	for i, kb := range kbs {
		field := fmt.Sprintf("knowledgeBases[%d]", i)
		switch {
		case kb.KnowledgeBaseID == "" && kb.Name == "":
			r = r.WithError(
				fmt.Sprintf("%s must set knowledgeBaseId or name", field),
				fmt.Sprintf("Please set %s.knowledgeBaseId to an existing knowledge base ID", field),
			)
		case kb.KnowledgeBaseID != "":
			r = Merge(r, Pattern(kb.KnowledgeBaseID, knowledgeBaseID, field+".knowledgeBaseId", "10 letters or numbers"))
		default:
			r = Merge(r, ResourceName(kb.Name, field+".name"))
		}
	}
	return r
}

func iam(p config.AgentRuntimeProps) Result {
	var r Result
	for i, arn := range p.SecretsARNs {
		r = Merge(r, Pattern(arn, secretARNPattern, fmt.Sprintf("secretsArns[%d]", i), "a Secrets Manager secret ARN"))
	}
	if p.ExecutionRoleARN != "" {
		r = Merge(r, Pattern(p.ExecutionRoleARN, iamARNPattern, "executionRoleArn", "an IAM role ARN"))
		if len(p.AdditionalPolicyARNs) > 0 || p.PermissionsBoundaryARN != "" {
			r = r.WithWarning(
				"additionalPolicyArns and permissionsBoundaryArn are ignored when executionRoleArn is set",
				"Please attach policies to the imported role directly",
			)
		}
	}
	for i, arn := range p.AdditionalPolicyARNs {
		r = Merge(r, Pattern(arn, iamARNPattern, fmt.Sprintf("additionalPolicyArns[%d]", i), "an IAM policy ARN"))
	}
	if p.PermissionsBoundaryARN != "" {
		r = Merge(r, Pattern(p.PermissionsBoundaryARN, iamARNPattern, "permissionsBoundaryArn", "an IAM policy ARN"))
	}
	return r
}

func baseProps(b defaults.BaseProps) Result {
	var r Result
	if b.Environment != "" {
		r = Merge(r, OneOf(b.Environment, defaults.Environments, "environment"))
	}
	if b.RemovalPolicy != "" {
		r = Merge(r, OneOf(b.RemovalPolicy, removalPolicies, "removalPolicy"))
	}
	for _, k := range slices.Sorted(maps.Keys(b.Tags)) {
		if k == "" {
			r = r.WithError("tags contains an empty key", "Please remove the tag with an empty name")
		}
	}
	return r
}

// generatedName checks the name after naming affixes are applied.
func generatedName(base string, naming *defaults.NamingConfig, field string) Result {
	name := defaults.GenerateResourceName(base, naming)
	if name == base {
		return Result{}
	}
	return ResourceName(name, field+" (with naming prefix/suffix)")
}

// ValidateAgentRuntime validates p against the OS filesystem.
func ValidateAgentRuntime(p config.AgentRuntimeProps) Result {
	return NewAgentValidator().Validate(p)
}
