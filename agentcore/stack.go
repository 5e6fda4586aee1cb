// Package agentcore provides AWS CDK constructs that deploy agents to Bedrock
// AgentCore together with the Bedrock knowledge bases they query.
package agentcore

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/plexusone/bedrock-agentcore-cdk/validation"
)

// AgentCoreStack is a CDK stack that deploys knowledge bases and AgentCore
// runtimes from a single StackConfig.
type AgentCoreStack struct {
	awscdk.Stack

	// Config is the stack configuration after stack-level defaults were pushed
	// into each item.
	Config config.StackConfig

	// KnowledgeBases holds the created knowledge bases by name.
	KnowledgeBases map[string]*KnowledgeBase

	// Runtimes holds the created runtimes by agent name.
	Runtimes map[string]*AgentCoreRuntime
}

// NewAgentCoreStack validates cfg as a whole and creates its knowledge bases,
// then its runtimes. Runtime associations that name a knowledge base are linked
// to the one created here.
func NewAgentCoreStack(scope constructs.Construct, id string, cfg config.StackConfig, opts ...Option) (*AgentCoreStack, error) {
	o := newOptions(opts)

	cfg.ApplyDefaults()
	r := validation.NewStackValidator(o.fs).Validate(cfg)
	if err := validation.Enforce(cfg.StackName, r); err != nil {
		return nil, err
	}
	if err := checkDerivedNames(cfg); err != nil {
		return nil, err
	}

	base := defaults.ApplyBaseDefaults(cfg.BaseProps)
	stackProps := &awscdk.StackProps{
		StackName: jsii.String(cfg.StackName),
		Tags:      cfnTags(base.Tags),
	}
	if cfg.Description != "" {
		stackProps.Description = jsii.String(cfg.Description)
	}
	if cfg.Account != "" || cfg.Region != "" {
		stackProps.Env = &awscdk.Environment{}
		if cfg.Account != "" {
			stackProps.Env.Account = jsii.String(cfg.Account)
		}
		if cfg.Region != "" {
			stackProps.Env.Region = jsii.String(cfg.Region)
		}
	}

	s := &AgentCoreStack{
		Stack:          awscdk.NewStack(scope, jsii.String(id), stackProps),
		Config:         cfg,
		KnowledgeBases: make(map[string]*KnowledgeBase, len(cfg.KnowledgeBases)),
		Runtimes:       make(map[string]*AgentCoreRuntime, len(cfg.Agents)),
	}
	annotate(s.Stack, r.Warnings)

	itemOpts := []Option{WithFs(o.fs), withValidated()}

	kbs := make([]*KnowledgeBase, 0, len(cfg.KnowledgeBases))
	for _, kbProps := range cfg.KnowledgeBases {
		kb, err := NewKnowledgeBase(s.Stack, fmt.Sprintf("KnowledgeBase-%s", kbProps.Name), kbProps, itemOpts...)
		if err != nil {
			return nil, fmt.Errorf("create knowledge base %s: %w", kbProps.Name, err)
		}
		s.KnowledgeBases[kbProps.Name] = kb
		kbs = append(kbs, kb)
	}

	for _, agent := range cfg.Agents {
		rt, err := NewAgentCoreRuntime(s.Stack, fmt.Sprintf("Agent-%s", agent.AgentName), agent,
			append(itemOpts, WithKnowledgeBases(kbs...))...)
		if err != nil {
			return nil, fmt.Errorf("create agent %s: %w", agent.AgentName, err)
		}
		s.Runtimes[agent.AgentName] = rt
	}

	s.addOutputs()
	return s, nil
}

// checkDerivedNames rejects configs whose generated AWS names break service
// limits or collide, before any construct is created.
func checkDerivedNames(cfg config.StackConfig) error {
	runtimes := make(map[string]string, len(cfg.Agents))
	for _, agent := range cfg.Agents {
		name, err := assembledRuntimeName(agent)
		if err != nil {
			return err
		}
		if prev, ok := runtimes[name]; ok {
			return validation.NewConstructError(cfg.StackName, validation.ErrorTypeConfiguration,
				fmt.Sprintf("agents %q and %q both map to runtime name %q", prev, agent.AgentName, name),
				"Please rename one of the agents")
		}
		runtimes[name] = agent.AgentName
	}

	collections := make(map[string]string, len(cfg.KnowledgeBases))
	for _, kb := range cfg.KnowledgeBases {
		collection, ok := derivedCollectionName(kb)
		if !ok {
			continue
		}
		// Policy names are the most truncated, so they collide first.
		key := policyName(collection, "enc")
		if prev, ok := collections[key]; ok {
			return validation.NewConstructError(cfg.StackName, validation.ErrorTypeConfiguration,
				fmt.Sprintf("knowledge bases %q and %q both map to OpenSearch Serverless names %q", prev, kb.Name, key),
				fmt.Sprintf("Please give knowledge bases names that differ within their first %d characters", maxCollectionName-len("-enc")))
		}
		collections[key] = kb.Name
	}
	return nil
}

// MustNewAgentCoreStack is like NewAgentCoreStack but panics on error.
func MustNewAgentCoreStack(scope constructs.Construct, id string, cfg config.StackConfig, opts ...Option) *AgentCoreStack {
	s, err := NewAgentCoreStack(scope, id, cfg, opts...)
	if err != nil {
		panic(fmt.Sprintf("invalid stack configuration: %v", err))
	}
	return s
}

// addOutputs adds CloudFormation outputs.
func (s *AgentCoreStack) addOutputs() {
	awscdk.NewCfnOutput(s.Stack, jsii.String("AgentCount"), &awscdk.CfnOutputProps{
		Value:       jsii.String(fmt.Sprintf("%d", len(s.Runtimes))),
		Description: jsii.String("Number of deployed agents"),
	})
	awscdk.NewCfnOutput(s.Stack, jsii.String("KnowledgeBaseCount"), &awscdk.CfnOutputProps{
		Value:       jsii.String(fmt.Sprintf("%d", len(s.KnowledgeBases))),
		Description: jsii.String("Number of deployed knowledge bases"),
	})
}
