package agentcore

import (
	"fmt"

	"github.com/aws/constructs-go/constructs/v10"
	"github.com/plexusone/bedrock-agentcore-cdk/config"
)

// Config loading re-exported for convenience.
var (
	// LoadStackConfigFromFile loads a StackConfig from a JSON or YAML file.
	LoadStackConfigFromFile = config.LoadStackConfigFromFile

	// LoadStackConfigFromJSON parses a StackConfig from JSON data.
	LoadStackConfigFromJSON = config.LoadStackConfigFromJSON

	// LoadStackConfigFromYAML parses a StackConfig from YAML data.
	LoadStackConfigFromYAML = config.LoadStackConfigFromYAML
)

// NewStackFromFile creates an AgentCoreStack from a JSON or YAML config file.
func NewStackFromFile(scope constructs.Construct, configPath string, opts ...Option) (*AgentCoreStack, error) {
	cfg, err := config.LoadStackConfigFromFile(configPath)
	if err != nil {
		return nil, err
	}
	return NewAgentCoreStack(scope, cfg.StackName, *cfg, opts...)
}

// MustNewStackFromFile is like NewStackFromFile but panics on error.
func MustNewStackFromFile(scope constructs.Construct, configPath string, opts ...Option) *AgentCoreStack {
	stack, err := NewStackFromFile(scope, configPath, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create stack from %s: %v", configPath, err))
	}
	return stack
}

// NewStackFromJSON creates an AgentCoreStack from JSON data.
func NewStackFromJSON(scope constructs.Construct, jsonData []byte, opts ...Option) (*AgentCoreStack, error) {
	cfg, err := config.LoadStackConfigFromJSON(jsonData)
	if err != nil {
		return nil, err
	}
	return NewAgentCoreStack(scope, cfg.StackName, *cfg, opts...)
}

// NewStackFromYAML creates an AgentCoreStack from YAML data.
func NewStackFromYAML(scope constructs.Construct, yamlData []byte, opts ...Option) (*AgentCoreStack, error) {
	cfg, err := config.LoadStackConfigFromYAML(yamlData)
	if err != nil {
		return nil, err
	}
	return NewAgentCoreStack(scope, cfg.StackName, *cfg, opts...)
}
