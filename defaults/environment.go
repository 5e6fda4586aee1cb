// Package defaults resolves construct configuration from environment tiers.
//
// Every resolver follows the same rule: start from the tier default and let an
// explicit caller override win. Merges are shallow; a nested value supplied by the
// caller replaces the tier value wholesale.
package defaults

// Environment is a deployment tier.
type Environment string

const (
	EnvironmentDev     Environment = "dev"
	EnvironmentStaging Environment = "staging"
	EnvironmentProd    Environment = "prod"
)

// Environments lists the supported tiers in promotion order.
var Environments = []Environment{EnvironmentDev, EnvironmentStaging, EnvironmentProd}

// DefaultEnvironment is used when props do not name a tier.
const DefaultEnvironment = EnvironmentDev

// IsValid reports whether e is one of the supported tiers.
func (e Environment) IsValid() bool {
	switch e {
	case EnvironmentDev, EnvironmentStaging, EnvironmentProd:
		return true
	}
	return false
}

// RemovalPolicy controls what happens to a resource when it leaves the stack.
type RemovalPolicy string

const (
	RemovalPolicyRetain  RemovalPolicy = "retain"
	RemovalPolicyDestroy RemovalPolicy = "destroy"
)

// SecurityConfig holds the security posture applied to provisioned resources.
type SecurityConfig struct {
	EncryptionAtRest     bool `json:"encryptionAtRest" yaml:"encryptionAtRest"`
	EncryptionInTransit  bool `json:"encryptionInTransit" yaml:"encryptionInTransit"`
	AccessLogging        bool `json:"accessLogging" yaml:"accessLogging"`
	RestrictPublicAccess bool `json:"restrictPublicAccess" yaml:"restrictPublicAccess"`
	VPCEndpoints         bool `json:"vpcEndpoints" yaml:"vpcEndpoints"`
}

// MonitoringConfig holds logging and telemetry settings.
type MonitoringConfig struct {
	Logging          bool `json:"logging" yaml:"logging"`
	LogRetentionDays int  `json:"logRetentionDays" yaml:"logRetentionDays"`
	Tracing          bool `json:"tracing" yaml:"tracing"`
	Metrics          bool `json:"metrics" yaml:"metrics"`
	Alarms           bool `json:"alarms" yaml:"alarms"`
}

// EnvironmentDefaults is the policy bundle owned by a tier.
type EnvironmentDefaults struct {
	Security      SecurityConfig
	Monitoring    MonitoringConfig
	RemovalPolicy RemovalPolicy
}

var environmentDefaults = map[Environment]EnvironmentDefaults{
	EnvironmentDev: {
		Security: SecurityConfig{
			EncryptionAtRest:    true,
			EncryptionInTransit: true,
		},
		Monitoring: MonitoringConfig{
			Logging:          true,
			LogRetentionDays: 7,
			Metrics:          true,
		},
		RemovalPolicy: RemovalPolicyDestroy,
	},
	EnvironmentStaging: {
		Security: SecurityConfig{
			EncryptionAtRest:     true,
			EncryptionInTransit:  true,
			AccessLogging:        true,
			RestrictPublicAccess: true,
		},
		Monitoring: MonitoringConfig{
			Logging:          true,
			LogRetentionDays: 30,
			Tracing:          true,
			Metrics:          true,
		},
		RemovalPolicy: RemovalPolicyDestroy,
	},
	EnvironmentProd: {
		Security: SecurityConfig{
			EncryptionAtRest:     true,
			EncryptionInTransit:  true,
			AccessLogging:        true,
			RestrictPublicAccess: true,
			VPCEndpoints:         true,
		},
		Monitoring: MonitoringConfig{
			Logging:          true,
			LogRetentionDays: 365,
			Tracing:          true,
			Metrics:          true,
			Alarms:           true,
		},
		RemovalPolicy: RemovalPolicyRetain,
	},
}

// GetEnvironmentDefaults returns a copy of the tier's defaults.
// Unknown tiers resolve to dev; validators reject them before this is reached.
func GetEnvironmentDefaults(env Environment) EnvironmentDefaults {
	d, ok := environmentDefaults[env]
	if !ok {
		d = environmentDefaults[DefaultEnvironment]
	}
	return d
}

// ResolveEnvironment returns env, or the default tier when env is empty.
func ResolveEnvironment(env Environment) Environment {
	if env == "" {
		return DefaultEnvironment
	}
	return env
}
