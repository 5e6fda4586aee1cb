package defaults

import (
	"fmt"
	"strings"

	"github.com/imdario/mergo"
)

const (
	// TagManagedBy identifies resources created by these constructs.
	TagManagedBy = "ManagedBy"
	// TagComponent names the construct family.
	TagComponent = "Component"
	// TagEnvironment carries the resolved tier.
	TagEnvironment = "Environment"

	managedByValue = "bedrock-agentcore-cdk"
	componentValue = "BedrockAgentCore"
)

// NamingConfig holds optional affixes applied to generated resource names.
type NamingConfig struct {
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty" koanf:"prefix"`
	Suffix string `json:"suffix,omitempty" yaml:"suffix,omitempty" koanf:"suffix"`
}

// BaseProps are the properties shared by every construct.
type BaseProps struct {
	// Environment selects the default tier. Empty means dev.
	Environment Environment `json:"environment,omitempty" yaml:"environment,omitempty" koanf:"environment" validate:"omitempty,oneof=dev staging prod"`

	// Tags are merged over the standard tags; user values win.
	Tags map[string]string `json:"tags,omitempty" yaml:"tags,omitempty" koanf:"tags"`

	// Naming adds a prefix and/or suffix to generated names.
	Naming *NamingConfig `json:"naming,omitempty" yaml:"naming,omitempty" koanf:"naming"`

	// RemovalPolicy overrides the tier removal policy.
	RemovalPolicy RemovalPolicy `json:"removalPolicy,omitempty" yaml:"removalPolicy,omitempty" koanf:"removalPolicy" validate:"omitempty,oneof=retain destroy"`
}

// ResolvedBase is BaseProps with every field resolved.
type ResolvedBase struct {
	Environment   Environment
	Tags          map[string]string
	Naming        NamingConfig
	RemovalPolicy RemovalPolicy
}

// StandardTags returns the tags applied to every resource in env.
func StandardTags(env Environment) map[string]string {
	return map[string]string{
		TagManagedBy:   managedByValue,
		TagComponent:   componentValue,
		TagEnvironment: string(env),
	}
}

// ApplyBaseDefaults resolves environment, tags, naming and removal policy.
func ApplyBaseDefaults(props BaseProps) ResolvedBase {
	env := ResolveEnvironment(props.Environment)

	tags := StandardTags(env)
	mergeStrings(tags, props.Tags)

	var naming NamingConfig
	if props.Naming != nil {
		naming = *props.Naming
	}

	return ResolvedBase{
		Environment:   env,
		Tags:          tags,
		Naming:        naming,
		RemovalPolicy: GetRemovalPolicy(env, props.RemovalPolicy),
	}
}

// SecurityOverrides selectively replaces tier security settings.
// A nil field keeps the tier default.
type SecurityOverrides struct {
	EncryptionAtRest     *bool `json:"encryptionAtRest,omitempty" yaml:"encryptionAtRest,omitempty" koanf:"encryptionAtRest"`
	EncryptionInTransit  *bool `json:"encryptionInTransit,omitempty" yaml:"encryptionInTransit,omitempty" koanf:"encryptionInTransit"`
	AccessLogging        *bool `json:"accessLogging,omitempty" yaml:"accessLogging,omitempty" koanf:"accessLogging"`
	RestrictPublicAccess *bool `json:"restrictPublicAccess,omitempty" yaml:"restrictPublicAccess,omitempty" koanf:"restrictPublicAccess"`
	VPCEndpoints         *bool `json:"vpcEndpoints,omitempty" yaml:"vpcEndpoints,omitempty" koanf:"vpcEndpoints"`
}

// MonitoringOverrides selectively replaces tier monitoring settings.
type MonitoringOverrides struct {
	Logging          *bool `json:"logging,omitempty" yaml:"logging,omitempty" koanf:"logging"`
	LogRetentionDays *int  `json:"logRetentionDays,omitempty" yaml:"logRetentionDays,omitempty" koanf:"logRetentionDays"`
	Tracing          *bool `json:"tracing,omitempty" yaml:"tracing,omitempty" koanf:"tracing"`
	Metrics          *bool `json:"metrics,omitempty" yaml:"metrics,omitempty" koanf:"metrics"`
	Alarms           *bool `json:"alarms,omitempty" yaml:"alarms,omitempty" koanf:"alarms"`
}

// GetSecurityConfig returns the tier security config with overrides applied.
func GetSecurityConfig(env Environment, overrides *SecurityOverrides) SecurityConfig {
	cfg := GetEnvironmentDefaults(env).Security
	if overrides == nil {
		return cfg
	}
	setBool(&cfg.EncryptionAtRest, overrides.EncryptionAtRest)
	setBool(&cfg.EncryptionInTransit, overrides.EncryptionInTransit)
	setBool(&cfg.AccessLogging, overrides.AccessLogging)
	setBool(&cfg.RestrictPublicAccess, overrides.RestrictPublicAccess)
	setBool(&cfg.VPCEndpoints, overrides.VPCEndpoints)
	return cfg
}

// GetMonitoringConfig returns the tier monitoring config with overrides applied.
func GetMonitoringConfig(env Environment, overrides *MonitoringOverrides) MonitoringConfig {
	cfg := GetEnvironmentDefaults(env).Monitoring
	if overrides == nil {
		return cfg
	}
	setBool(&cfg.Logging, overrides.Logging)
	if overrides.LogRetentionDays != nil {
		cfg.LogRetentionDays = *overrides.LogRetentionDays
	}
	setBool(&cfg.Tracing, overrides.Tracing)
	setBool(&cfg.Metrics, overrides.Metrics)
	setBool(&cfg.Alarms, overrides.Alarms)
	return cfg
}

// GetLogRetention returns overrideDays when positive, else the tier retention.
func GetLogRetention(env Environment, overrideDays int) int {
	if overrideDays > 0 {
		return overrideDays
	}
	return GetEnvironmentDefaults(env).Monitoring.LogRetentionDays
}

// GetRemovalPolicy returns override when set, else the tier removal policy.
func GetRemovalPolicy(env Environment, override RemovalPolicy) RemovalPolicy {
	if override != "" {
		return override
	}
	return GetEnvironmentDefaults(env).RemovalPolicy
}

// GenerateResourceName joins prefix, base and suffix with "-".
// It never truncates; callers validate the length of the result.
func GenerateResourceName(base string, naming *NamingConfig) string {
	if naming == nil {
		return base
	}
	parts := make([]string, 0, 3)
	if naming.Prefix != "" {
		parts = append(parts, naming.Prefix)
	}
	parts = append(parts, base)
	if naming.Suffix != "" {
		parts = append(parts, naming.Suffix)
	}
	return strings.Join(parts, "-")
}

// Environment variable names injected into the agent runtime.
const (
	EnvS3Bucket  = "S3_BUCKET"
	EnvS3Prefix  = "S3_PREFIX"
	EnvS3Region  = "S3_REGION"
	EnvAWSRegion = "AWS_REGION"
)

// DefaultRuntimeEnvironment returns the variables every runtime starts with.
func DefaultRuntimeEnvironment() map[string]string {
	return map[string]string{
		"PYTHONUNBUFFERED":          "1",
		"PYTHONDONTWRITEBYTECODE":   "1",
		"LOG_LEVEL":                 "INFO",
		"BEDROCK_AGENTCORE_RUNTIME": "true",
	}
}

// GetBedrockAgentCoreEnvironmentVariables layers the runtime environment:
// fixed defaults, then bucket/prefix/region derived keys (only when non-empty),
// then customVars. A custom value always wins over a derived one.
func GetBedrockAgentCoreEnvironmentVariables(customVars map[string]string, bucket, prefix, region string) map[string]string {
	vars := DefaultRuntimeEnvironment()

	if bucket != "" {
		vars[EnvS3Bucket] = bucket
	}
	if prefix != "" {
		vars[EnvS3Prefix] = prefix
	}
	if region != "" {
		vars[EnvS3Region] = region
		vars[EnvAWSRegion] = region
	}

	mergeStrings(vars, customVars)
	return vars
}

// mergeStrings overlays src onto dst; keys in src win.
func mergeStrings(dst, src map[string]string) {
	if len(src) == 0 {
		return
	}
	if err := mergo.Merge(&dst, src, mergo.WithOverride); err != nil {
		// mergo only fails on mismatched kinds, which cannot happen for two string maps.
		panic(fmt.Sprintf("merging string maps: %v", err))
	}
}

func setBool(dst *bool, override *bool) {
	if override != nil {
		*dst = *override
	}
}
