package validation

import (
	"fmt"
	"regexp"

	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/spf13/afero"
)

var accountPattern = regexp.MustCompile(`^\d{12}$`)

// CloudFormation limits template descriptions to 1024 bytes.
const maxStackDescriptionLength = 1024

// StackValidator validates a whole StackConfig: every item plus the references
// between them.
type StackValidator struct {
	Agents         Validator[config.AgentRuntimeProps]
	KnowledgeBases Validator[config.KnowledgeBaseProps]
}

// NewStackValidator returns a StackValidator that checks tarball images on fs.
// A nil fs means the OS filesystem.
func NewStackValidator(fs afero.Fs) *StackValidator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &StackValidator{
		Agents:         &AgentValidator{Fs: fs},
		KnowledgeBases: KnowledgeBaseValidator{},
	}
}

// Validate checks cfg. Item results are prefixed with their position, for
// example "agents[0]: instruction is required".
func (v *StackValidator) Validate(cfg config.StackConfig) Result {
	var c Collector

	c.Merge(StackName(cfg.StackName, "stackName"))
	c.Merge(MaxLength(cfg.Description, maxStackDescriptionLength, "description"))
	if cfg.Account != "" {
		c.Merge(Pattern(cfg.Account, accountPattern, "account", "12 digits"))
	}
	if cfg.Region != "" {
		c.Merge(Region(cfg.Region, "region"))
	}
	c.Merge(baseProps(cfg.BaseProps))

	if len(cfg.Agents) == 0 && len(cfg.KnowledgeBases) == 0 {
		c.AddWarning("stack declares no agents and no knowledge bases", "Please add at least one entry to agents or knowledgeBases")
	}

	kbNames := make(map[string]int, len(cfg.KnowledgeBases))
	for i, kb := range cfg.KnowledgeBases {
		prefix := fmt.Sprintf("knowledgeBases[%d]: ", i)
		c.Merge(v.KnowledgeBases.Validate(kb).Prefixed(prefix))
		if kb.Name == "" {
			continue
		}
		if first, dup := kbNames[kb.Name]; dup {
			c.AddError(
				fmt.Sprintf("%sname %q is already used by knowledgeBases[%d]", prefix, kb.Name, first),
				"Please give every knowledge base a unique name",
			)
			continue
		}
		kbNames[kb.Name] = i
	}

	agentNames := make(map[string]int, len(cfg.Agents))
	for i, agent := range cfg.Agents {
		prefix := fmt.Sprintf("agents[%d]: ", i)
		c.Merge(v.Agents.Validate(agent).Prefixed(prefix))
		for j, kb := range agent.KnowledgeBases {
			if kb.KnowledgeBaseID != "" || kb.Name == "" {
				continue
			}
			if _, ok := kbNames[kb.Name]; !ok {
				c.AddError(
					fmt.Sprintf("%sknowledgeBases[%d].name %q does not match any knowledge base in this stack", prefix, j, kb.Name),
					fmt.Sprintf("Please declare knowledge base %q in knowledgeBases or reference it by knowledgeBaseId", kb.Name),
				)
			}
		}
		if agent.AgentName == "" {
			continue
		}
		if first, dup := agentNames[agent.AgentName]; dup {
			c.AddError(
				fmt.Sprintf("%sagentName %q is already used by agents[%d]", prefix, agent.AgentName, first),
				"Please give every agent a unique agentName",
			)
			continue
		}
		agentNames[agent.AgentName] = i
	}

	return c.Result()
}

// ValidateStack validates cfg against the OS filesystem.
func ValidateStack(cfg config.StackConfig) Result {
	return NewStackValidator(nil).Validate(cfg)
}
