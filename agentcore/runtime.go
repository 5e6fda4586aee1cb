package agentcore

import (
	"fmt"
	"maps"
	"path/filepath"
	"regexp"
	"slices"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecr"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsecrassets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsiam"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssecretsmanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/customresources"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/plexusone/bedrock-agentcore-cdk/validation"
)

// Environment variables set on every runtime in addition to the defaults.
const (
	EnvAgentName          = "AGENT_NAME"
	EnvAgentInstruction   = "AGENT_INSTRUCTION"
	EnvModelID            = "BEDROCK_MODEL_ID"
	EnvKnowledgeBaseIDs   = "KNOWLEDGE_BASE_IDS"
	EnvObservabilityAgent = "AGENT_OBSERVABILITY_ENABLED"
)

const (
	agentCoreService          = "bedrock-agentcore-control"
	agentCorePrincipal        = "bedrock-agentcore.amazonaws.com"
	runtimeLogGroupPrefix     = "/aws/bedrock-agentcore/runtimes/"
	runtimeMetricsNamespace   = "bedrock-agentcore"
	runtimeErrorMetricName    = "RuntimeErrors"
	runtimeResourceType       = "Custom::BedrockAgentCoreRuntime"
	ignoredDeleteErrorPattern = "ResourceNotFoundException|ValidationException|ConflictException"
)

// vpcEndpointServices are the interface endpoints a VPC runtime needs to pull
// its image, write logs and reach Bedrock without a NAT gateway.
var vpcEndpointServices = []struct{ id, service string }{
	{"EcrApi", "ecr.api"},
	{"EcrDkr", "ecr.dkr"},
	{"Logs", "logs"},
	{"SecretsManager", "secretsmanager"},
	{"BedrockRuntime", "bedrock-runtime"},
	{"BedrockAgentRuntime", "bedrock-agent-runtime"},
	{"BedrockAgentCore", "bedrock-agentcore"},
}

// AgentCoreRuntime deploys a container image to Bedrock AgentCore.
//
// The runtime itself is managed through the AgentCore control plane API by a
// custom resource, so create, update and delete map directly onto
// CreateAgentRuntime, UpdateAgentRuntime and DeleteAgentRuntime.
type AgentCoreRuntime struct {
	constructs.Construct

	// Props are the caller props with field defaults applied.
	Props config.AgentRuntimeProps

	Base       defaults.ResolvedBase
	Security   defaults.SecurityConfig
	Monitoring defaults.MonitoringConfig

	// RuntimeName is the name registered with AgentCore.
	RuntimeName string

	// EnvironmentVariables is the fully layered runtime environment.
	EnvironmentVariables map[string]string

	ExecutionRole awsiam.IRole
	ImageURI      *string
	Repository    awsecr.IRepository
	LogGroup      awslogs.ILogGroup
	ErrorAlarm    awscloudwatch.Alarm
	SecurityGroup awsec2.ISecurityGroup

	// Resource is the custom resource driving the runtime lifecycle.
	Resource customresources.AwsCustomResource

	RuntimeArn *string
	RuntimeID  *string

	knowledgeBaseIDs  []*string
	knowledgeBaseArns []*string
	linked            []*KnowledgeBase
	securityGroupIDs  []*string
}

// NewAgentCoreRuntime validates props and declares the runtime and its
// supporting resources. Nothing is added to scope when validation fails.
func NewAgentCoreRuntime(scope constructs.Construct, id string, props config.AgentRuntimeProps, opts ...Option) (*AgentCoreRuntime, error) {
	o := newOptions(opts)
	if !o.validated {
		r := (&validation.AgentValidator{Fs: o.fs}).Validate(props)
		if err := enforce(scope, props.AgentName, r); err != nil {
			return nil, err
		}
	}

	props = withRuntimeDefaults(props)
	base := defaults.ApplyBaseDefaults(props.BaseProps)

	name, err := assembledRuntimeName(props)
	if err != nil {
		return nil, err
	}

	rt := &AgentCoreRuntime{
		Construct:   constructs.NewConstruct(scope, jsii.String(id)),
		Props:       props,
		Base:        base,
		Security:    defaults.GetSecurityConfig(base.Environment, props.Security),
		Monitoring:  defaults.GetMonitoringConfig(base.Environment, props.Monitoring),
		RuntimeName: name,
	}

	rt.resolveKnowledgeBases(o.knowledgeBases)
	rt.EnvironmentVariables = rt.environment()

	rt.createImage()
	rt.createLogGroup()
	rt.createExecutionRole()
	rt.createNetwork()
	rt.createRuntime()
	rt.createAlarms()
	rt.addOutputs()

	applyTags(rt.Construct, base.Tags)
	return rt, nil
}

// MustNewAgentCoreRuntime is like NewAgentCoreRuntime but panics on error.
func MustNewAgentCoreRuntime(scope constructs.Construct, id string, props config.AgentRuntimeProps, opts ...Option) *AgentCoreRuntime {
	rt, err := NewAgentCoreRuntime(scope, id, props, opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to create agent runtime %s: %v", id, err))
	}
	return rt
}

func withRuntimeDefaults(p config.AgentRuntimeProps) config.AgentRuntimeProps {
	if p.Protocol == "" {
		p.Protocol = config.DefaultProtocol
	}
	if p.NetworkMode == "" {
		p.NetworkMode = config.DefaultNetworkMode
	}
	if p.Dockerfile == "" {
		p.Dockerfile = config.DefaultDockerfile
	}
	if p.CustomResourceTimeoutMinutes == 0 {
		p.CustomResourceTimeoutMinutes = config.DefaultCustomResourceTimeoutMinutes
	}
	if p.FoundationModelID == "" {
		p.FoundationModelID = config.DefaultFoundationModelID
	}
	return p
}

const maxRuntimeNameLength = 48

var runtimeNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]{0,47}$`)

// runtimeName converts a resource name to the character set AgentCore accepts.
func runtimeName(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// assembledRuntimeName returns the AgentCore runtime name for p, after naming
// affixes, or a CONFIGURATION error when it breaks the service's name rules.
func assembledRuntimeName(p config.AgentRuntimeProps) (string, error) {
	base := defaults.ApplyBaseDefaults(p.BaseProps)
	name := runtimeName(defaults.GenerateResourceName(p.AgentName, &base.Naming))
	if !runtimeNamePattern.MatchString(name) {
		return "", validation.NewConstructError(
			p.AgentName,
			validation.ErrorTypeConfiguration,
			fmt.Sprintf("runtime name %q must start with a letter and have at most %d letters, digits or underscores", name, maxRuntimeNameLength),
			"Please shorten agentName or the naming affixes and start it with a letter",
		)
	}
	return name, nil
}

func (rt *AgentCoreRuntime) resolveKnowledgeBases(available []*KnowledgeBase) {
	stack := awscdk.Stack_Of(rt.Construct)
	for _, assoc := range rt.Props.KnowledgeBases {
		if assoc.KnowledgeBaseID != "" {
			rt.knowledgeBaseIDs = append(rt.knowledgeBaseIDs, jsii.String(assoc.KnowledgeBaseID))
			rt.knowledgeBaseArns = append(rt.knowledgeBaseArns, stack.FormatArn(&awscdk.ArnComponents{
				Service:      jsii.String("bedrock"),
				Resource:     jsii.String("knowledge-base"),
				ResourceName: jsii.String(assoc.KnowledgeBaseID),
			}))
			continue
		}
		idx := slices.IndexFunc(available, func(kb *KnowledgeBase) bool { return kb.Props.Name == assoc.Name })
		if idx < 0 {
			awscdk.Annotations_Of(rt.Construct).AddWarning(jsii.String(fmt.Sprintf(
				"knowledge base %q is not declared in this app and was not associated with %s", assoc.Name, rt.Props.AgentName)))
			continue
		}
		rt.linked = append(rt.linked, available[idx])
		rt.knowledgeBaseIDs = append(rt.knowledgeBaseIDs, available[idx].KnowledgeBaseID)
	}
}

// environment layers runtime identity and knowledge base IDs under the caller's
// variables, then hands them to the defaults resolver.
func (rt *AgentCoreRuntime) environment() map[string]string {
	p := rt.Props
	custom := map[string]string{
		EnvAgentName:        p.AgentName,
		EnvAgentInstruction: p.Instruction,
		EnvModelID:          p.FoundationModelID,
	}
	if len(rt.knowledgeBaseIDs) > 0 {
		ids := make([]string, len(rt.knowledgeBaseIDs))
		for i, id := range rt.knowledgeBaseIDs {
			ids[i] = *id
		}
		custom[EnvKnowledgeBaseIDs] = strings.Join(ids, ",")
	}
	if rt.Monitoring.Tracing {
		custom[EnvObservabilityAgent] = "true"
	}
	maps.Copy(custom, p.EnvironmentVariables)
	return defaults.GetBedrockAgentCoreEnvironmentVariables(custom, p.Bucket, p.Prefix, p.Region)
}

func (rt *AgentCoreRuntime) createImage() {
	p := rt.Props
	if p.TarballImageFile != "" {
		asset := awsecrassets.NewTarballImageAsset(rt.Construct, jsii.String("Image"), &awsecrassets.TarballImageAssetProps{
			TarballFile: jsii.String(p.TarballImageFile),
		})
		rt.ImageURI = asset.ImageUri()
		rt.Repository = asset.Repository()
		return
	}

	dir, file := buildContext(p.ProjectRoot, p.Dockerfile)
	asset := awsecrassets.NewDockerImageAsset(rt.Construct, jsii.String("Image"), &awsecrassets.DockerImageAssetProps{
		Directory: jsii.String(dir),
		File:      jsii.String(file),
		Platform:  awsecrassets.Platform_LINUX_ARM64(),
	})
	rt.ImageURI = asset.ImageUri()
	rt.Repository = asset.Repository()
}

// buildContext splits a project root that names a build file into its directory
// and, for a Dockerfile, the file to build.
func buildContext(projectRoot, dockerfile string) (dir, file string) {
	if !validation.IsBuildDescriptor(projectRoot) {
		return projectRoot, dockerfile
	}
	dir = filepath.Dir(filepath.FromSlash(projectRoot))
	if base := filepath.Base(filepath.FromSlash(projectRoot)); base == config.DefaultDockerfile {
		return dir, base
	}
	return dir, dockerfile
}

func (rt *AgentCoreRuntime) createLogGroup() {
	if !rt.Monitoring.Logging {
		return
	}
	rt.LogGroup = awslogs.NewLogGroup(rt.Construct, jsii.String("LogGroup"), &awslogs.LogGroupProps{
		LogGroupName:  jsii.String(runtimeLogGroupPrefix + rt.RuntimeName),
		Retention:     logRetention(rt.Monitoring.LogRetentionDays),
		RemovalPolicy: cdkRemovalPolicy(rt.Base.RemovalPolicy),
	})
}

// createExecutionRole creates the role the runtime assumes, or imports one.
func (rt *AgentCoreRuntime) createExecutionRole() {
	p := rt.Props

	if p.ExecutionRoleARN != "" {
		rt.ExecutionRole = awsiam.Role_FromRoleArn(rt.Construct, jsii.String("ExecutionRole"), jsii.String(p.ExecutionRoleARN), &awsiam.FromRoleArnOptions{
			Mutable: jsii.Bool(false),
		})
		awscdk.Annotations_Of(rt.Construct).AddInfo(jsii.String("using imported execution role; its policies are not modified"))
		return
	}

	stack := awscdk.Stack_Of(rt.Construct)
	role := awsiam.NewRole(rt.Construct, jsii.String("ExecutionRole"), &awsiam.RoleProps{
		Description: jsii.String(fmt.Sprintf("Execution role for AgentCore runtime %s", rt.RuntimeName)),
		AssumedBy: awsiam.NewServicePrincipal(jsii.String(agentCorePrincipal), &awsiam.ServicePrincipalOpts{
			Conditions: &map[string]interface{}{
				"StringEquals": map[string]interface{}{
					"aws:SourceAccount": stack.Account(),
				},
			},
		}),
	})

	// ECR access for pulling the image
	role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect:    awsiam.Effect_ALLOW,
		Actions:   jsii.Strings("ecr:GetAuthorizationToken"),
		Resources: jsii.Strings("*"),
	}))
	rt.Repository.GrantPull(role)

	// CloudWatch Logs access
	role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect: awsiam.Effect_ALLOW,
		Actions: jsii.Strings(
			"logs:CreateLogGroup",
			"logs:CreateLogStream",
			"logs:PutLogEvents",
			"logs:DescribeLogStreams",
		),
		Resources: &[]*string{stack.FormatArn(&awscdk.ArnComponents{
			Service:      jsii.String("logs"),
			Resource:     jsii.String("log-group"),
			ResourceName: jsii.String(runtimeLogGroupPrefix + "*"),
			ArnFormat:    awscdk.ArnFormat_COLON_RESOURCE_NAME,
		})},
	}))
	role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect:    awsiam.Effect_ALLOW,
		Actions:   jsii.Strings("logs:DescribeLogGroups"),
		Resources: jsii.Strings("*"),
	}))

	if rt.Monitoring.Tracing {
		role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Effect: awsiam.Effect_ALLOW,
			Actions: jsii.Strings(
				"xray:PutTraceSegments",
				"xray:PutTelemetryRecords",
				"xray:GetSamplingRules",
				"xray:GetSamplingTargets",
			),
			Resources: jsii.Strings("*"),
		}))
	}

	if rt.Monitoring.Metrics {
		role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Effect:    awsiam.Effect_ALLOW,
			Actions:   jsii.Strings("cloudwatch:PutMetricData"),
			Resources: jsii.Strings("*"),
			Conditions: &map[string]interface{}{
				"StringEquals": map[string]interface{}{
					"cloudwatch:namespace": runtimeMetricsNamespace,
				},
			},
		}))
	}

	// Bedrock model access, including cross-region inference profiles
	role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect:  awsiam.Effect_ALLOW,
		Actions: jsii.Strings("bedrock:InvokeModel", "bedrock:InvokeModelWithResponseStream"),
		Resources: &[]*string{
			jsii.String(fmt.Sprintf("arn:%s:bedrock:*::foundation-model/%s", *stack.Partition(), p.FoundationModelID)),
			stack.FormatArn(&awscdk.ArnComponents{
				Service:      jsii.String("bedrock"),
				Resource:     jsii.String("inference-profile"),
				ResourceName: jsii.String("*"),
			}),
		},
	}))

	if len(rt.knowledgeBaseArns) > 0 {
		role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
			Effect:    awsiam.Effect_ALLOW,
			Actions:   jsii.Strings("bedrock:Retrieve", "bedrock:RetrieveAndGenerate"),
			Resources: &rt.knowledgeBaseArns,
		}))
	}
	for _, kb := range rt.linked {
		kb.GrantRetrieve(role)
	}

	if p.Bucket != "" {
		bucket := awss3.Bucket_FromBucketName(rt.Construct, jsii.String("DataBucket"), jsii.String(p.Bucket))
		bucket.GrantRead(role, jsii.String(p.Prefix+"*"))
	}

	// Workload identity tokens for outbound auth
	role.AddToPolicy(awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
		Effect: awsiam.Effect_ALLOW,
		Actions: jsii.Strings(
			"bedrock-agentcore:GetWorkloadAccessToken",
			"bedrock-agentcore:GetWorkloadAccessTokenForJWT",
			"bedrock-agentcore:GetWorkloadAccessTokenForUserId",
		),
		Resources: &[]*string{
			stack.FormatArn(&awscdk.ArnComponents{
				Service:      jsii.String("bedrock-agentcore"),
				Resource:     jsii.String("workload-identity-directory"),
				ResourceName: jsii.String("default"),
			}),
			stack.FormatArn(&awscdk.ArnComponents{
				Service:      jsii.String("bedrock-agentcore"),
				Resource:     jsii.String("workload-identity-directory"),
				ResourceName: jsii.String("default/workload-identity/" + rt.RuntimeName + "-*"),
			}),
		},
	}))

	for i, arn := range p.SecretsARNs {
		secret := awssecretsmanager.Secret_FromSecretCompleteArn(rt.Construct, jsii.String(fmt.Sprintf("Secret%d", i)), jsii.String(arn))
		secret.GrantRead(role, nil)
	}

	for i, arn := range p.AdditionalPolicyARNs {
		role.AddManagedPolicy(awsiam.ManagedPolicy_FromManagedPolicyArn(rt.Construct, jsii.String(fmt.Sprintf("Policy%d", i)), jsii.String(arn)))
	}

	if p.PermissionsBoundaryARN != "" {
		awsiam.PermissionsBoundary_Of(role).Apply(
			awsiam.ManagedPolicy_FromManagedPolicyArn(rt.Construct, jsii.String("PermissionsBoundary"), jsii.String(p.PermissionsBoundaryARN)),
		)
	}

	rt.ExecutionRole = role
}

// createNetwork resolves security groups and VPC endpoints for VPC mode.
func (rt *AgentCoreRuntime) createNetwork() {
	if rt.Props.NetworkMode != config.NetworkModeVPC {
		return
	}
	vpc := rt.Props.VPC

	for _, id := range vpc.SecurityGroupIDs {
		rt.securityGroupIDs = append(rt.securityGroupIDs, jsii.String(id))
	}

	if len(vpc.SecurityGroupIDs) > 0 {
		rt.SecurityGroup = awsec2.SecurityGroup_FromSecurityGroupId(
			rt.Construct,
			jsii.String("SecurityGroup"),
			jsii.String(vpc.SecurityGroupIDs[0]),
			&awsec2.SecurityGroupImportOptions{},
		)
	} else {
		imported := awsec2.Vpc_FromVpcAttributes(rt.Construct, jsii.String("Vpc"), &awsec2.VpcAttributes{
			VpcId:             jsii.String(vpc.VPCID),
			AvailabilityZones: awscdk.Stack_Of(rt.Construct).AvailabilityZones(),
		})
		sg := awsec2.NewSecurityGroup(rt.Construct, jsii.String("SecurityGroup"), &awsec2.SecurityGroupProps{
			Vpc:              imported,
			Description:      jsii.String(fmt.Sprintf("Security group for AgentCore runtime %s", rt.RuntimeName)),
			AllowAllOutbound: jsii.Bool(true),
		})
		// Allow the runtime to reach interface endpoints in the same group
		sg.AddIngressRule(
			sg,
			awsec2.Port_Tcp(jsii.Number(443)),
			jsii.String("HTTPS between the runtime and VPC endpoints"),
			jsii.Bool(false),
		)
		rt.SecurityGroup = sg
		rt.securityGroupIDs = append(rt.securityGroupIDs, sg.SecurityGroupId())
	}

	if !rt.Security.VPCEndpoints {
		return
	}
	if vpc.VPCID == "" {
		awscdk.Annotations_Of(rt.Construct).AddWarning(jsii.String("VPC endpoints were not created because vpc.vpcId is not set"))
		return
	}
	rt.createVPCEndpoints()
}

// createVPCEndpoints creates interface endpoints in the runtime subnets.
func (rt *AgentCoreRuntime) createVPCEndpoints() {
	vpc := rt.Props.VPC
	region := *awscdk.Stack_Of(rt.Construct).Region()
	for _, ep := range vpcEndpointServices {
		awsec2.NewCfnVPCEndpoint(rt.Construct, jsii.String(ep.id+"Endpoint"), &awsec2.CfnVPCEndpointProps{
			VpcId:             jsii.String(vpc.VPCID),
			ServiceName:       jsii.String(fmt.Sprintf("com.amazonaws.%s.%s", region, ep.service)),
			VpcEndpointType:   jsii.String("Interface"),
			SubnetIds:         toInterfaces(jsii.Strings(vpc.SubnetIDs...)),
			SecurityGroupIds:  toInterfaces(&rt.securityGroupIDs),
			PrivateDnsEnabled: jsii.Bool(true),
		})
	}
}

// toInterfaces widens a string list for L1 props typed as []interface{}.
func toInterfaces(values *[]*string) *[]interface{} {
	out := make([]interface{}, 0, len(*values))
	for _, v := range *values {
		out = append(out, v)
	}
	return &out
}

func (rt *AgentCoreRuntime) networkConfiguration() map[string]interface{} {
	if rt.Props.NetworkMode != config.NetworkModeVPC {
		return map[string]interface{}{"networkMode": config.NetworkModePublic}
	}
	return map[string]interface{}{
		"networkMode": config.NetworkModeVPC,
		"networkModeConfig": map[string]interface{}{
			"subnets":        rt.Props.VPC.SubnetIDs,
			"securityGroups": rt.securityGroupIDs,
		},
	}
}

// createRuntime declares the lifecycle of the runtime against the AgentCore
// control plane.
func (rt *AgentCoreRuntime) createRuntime() {
	p := rt.Props

	params := map[string]interface{}{
		"agentRuntimeArtifact": map[string]interface{}{
			"containerConfiguration": map[string]interface{}{
				"containerUri": rt.ImageURI,
			},
		},
		"roleArn":               rt.ExecutionRole.RoleArn(),
		"networkConfiguration":  rt.networkConfiguration(),
		"protocolConfiguration": map[string]interface{}{"serverProtocol": p.Protocol},
		"environmentVariables":  rt.EnvironmentVariables,
	}
	if p.Description != "" {
		params["description"] = p.Description
	}

	createParams := maps.Clone(params)
	createParams["agentRuntimeName"] = rt.RuntimeName

	updateParams := maps.Clone(params)
	updateParams["agentRuntimeId"] = customresources.NewPhysicalResourceIdReference()

	outputs := jsii.Strings("agentRuntimeArn", "agentRuntimeId")

	rt.Resource = customresources.NewAwsCustomResource(rt.Construct, jsii.String("Runtime"), &customresources.AwsCustomResourceProps{
		ResourceType: jsii.String(runtimeResourceType),
		OnCreate: &customresources.AwsSdkCall{
			Service:            jsii.String(agentCoreService),
			Action:             jsii.String("CreateAgentRuntime"),
			Parameters:         createParams,
			PhysicalResourceId: customresources.PhysicalResourceId_FromResponse(jsii.String("agentRuntimeId")),
			OutputPaths:        outputs,
		},
		OnUpdate: &customresources.AwsSdkCall{
			Service:            jsii.String(agentCoreService),
			Action:             jsii.String("UpdateAgentRuntime"),
			Parameters:         updateParams,
			PhysicalResourceId: customresources.PhysicalResourceId_FromResponse(jsii.String("agentRuntimeId")),
			OutputPaths:        outputs,
		},
		OnDelete: &customresources.AwsSdkCall{
			Service: jsii.String(agentCoreService),
			Action:  jsii.String("DeleteAgentRuntime"),
			Parameters: map[string]interface{}{
				"agentRuntimeId": customresources.NewPhysicalResourceIdReference(),
			},
			// A failed create leaves nothing to delete; rollback must not stall on it.
			IgnoreErrorCodesMatching: jsii.String(ignoredDeleteErrorPattern),
		},
		Policy: customresources.AwsCustomResourcePolicy_FromStatements(&[]awsiam.PolicyStatement{
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Effect: awsiam.Effect_ALLOW,
				Actions: jsii.Strings(
					"bedrock-agentcore:CreateAgentRuntime",
					"bedrock-agentcore:UpdateAgentRuntime",
					"bedrock-agentcore:DeleteAgentRuntime",
					"bedrock-agentcore:GetAgentRuntime",
					"bedrock-agentcore:CreateWorkloadIdentity",
					"bedrock-agentcore:DeleteWorkloadIdentity",
					"bedrock-agentcore:GetWorkloadIdentity",
				),
				Resources: jsii.Strings("*"),
			}),
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Effect:    awsiam.Effect_ALLOW,
				Actions:   jsii.Strings("iam:PassRole"),
				Resources: &[]*string{rt.ExecutionRole.RoleArn()},
			}),
			awsiam.NewPolicyStatement(&awsiam.PolicyStatementProps{
				Effect:    awsiam.Effect_ALLOW,
				Actions:   jsii.Strings("iam:CreateServiceLinkedRole"),
				Resources: jsii.Strings("*"),
				Conditions: &map[string]interface{}{
					"StringEquals": map[string]interface{}{
						"iam:AWSServiceName": agentCorePrincipal,
					},
				},
			}),
		}),
		Timeout:             awscdk.Duration_Minutes(jsii.Number(float64(p.CustomResourceTimeoutMinutes))),
		InstallLatestAwsSdk: jsii.Bool(true),
		RemovalPolicy:       cdkRemovalPolicy(rt.Base.RemovalPolicy),
	})

	// The role and its policies must exist before AgentCore validates them.
	rt.Resource.Node().AddDependency(rt.ExecutionRole)
	if rt.SecurityGroup != nil {
		rt.Resource.Node().AddDependency(rt.SecurityGroup)
	}

	rt.RuntimeArn = rt.Resource.GetResponseField(jsii.String("agentRuntimeArn"))
	rt.RuntimeID = rt.Resource.GetResponseField(jsii.String("agentRuntimeId"))
}

// createAlarms alarms on error lines in the runtime log group.
func (rt *AgentCoreRuntime) createAlarms() {
	if !rt.Monitoring.Alarms || rt.LogGroup == nil {
		return
	}
	filter := awslogs.NewMetricFilter(rt.Construct, jsii.String("ErrorFilter"), &awslogs.MetricFilterProps{
		LogGroup:        rt.LogGroup,
		MetricNamespace: jsii.String(runtimeMetricsNamespace),
		MetricName:      jsii.String(runtimeErrorMetricName),
		FilterPattern:   awslogs.FilterPattern_AnyTerm(jsii.String("ERROR"), jsii.String("Exception")),
		MetricValue:     jsii.String("1"),
	})
	rt.ErrorAlarm = filter.Metric(&awscloudwatch.MetricOptions{
		Statistic: jsii.String("Sum"),
		Period:    awscdk.Duration_Minutes(jsii.Number(5)),
	}).CreateAlarm(rt.Construct, jsii.String("ErrorAlarm"), &awscloudwatch.CreateAlarmOptions{
		AlarmDescription:  jsii.String(fmt.Sprintf("Errors logged by AgentCore runtime %s", rt.RuntimeName)),
		Threshold:         jsii.Number(1),
		EvaluationPeriods: jsii.Number(1),
		TreatMissingData:  awscloudwatch.TreatMissingData_NOT_BREACHING,
	})
}

func (rt *AgentCoreRuntime) addOutputs() {
	awscdk.NewCfnOutput(rt.Construct, jsii.String("RuntimeArn"), &awscdk.CfnOutputProps{
		Value:       rt.RuntimeArn,
		Description: jsii.String(fmt.Sprintf("Runtime ARN for agent %s", rt.Props.AgentName)),
	})
	awscdk.NewCfnOutput(rt.Construct, jsii.String("RuntimeId"), &awscdk.CfnOutputProps{
		Value:       rt.RuntimeID,
		Description: jsii.String(fmt.Sprintf("Runtime ID for agent %s", rt.Props.AgentName)),
	})
	awscdk.NewCfnOutput(rt.Construct, jsii.String("ExecutionRoleArn"), &awscdk.CfnOutputProps{
		Value:       rt.ExecutionRole.RoleArn(),
		Description: jsii.String(fmt.Sprintf("Execution role ARN for agent %s", rt.Props.AgentName)),
	})
	awscdk.NewCfnOutput(rt.Construct, jsii.String("ImageUri"), &awscdk.CfnOutputProps{
		Value:       rt.ImageURI,
		Description: jsii.String(fmt.Sprintf("Container image for agent %s", rt.Props.AgentName)),
	})
}
