package agentcore

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/plexusone/bedrock-agentcore-cdk/defaults"
	"github.com/plexusone/bedrock-agentcore-cdk/validation"
	"github.com/spf13/afero"
)

// Option configures how a construct is created.
type Option func(*options)

type options struct {
	fs             afero.Fs
	knowledgeBases []*KnowledgeBase
	validated      bool
}

func newOptions(opts []Option) options {
	o := options{fs: afero.NewOsFs()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithFs sets the filesystem used to check that tarball images exist.
func WithFs(fs afero.Fs) Option {
	return func(o *options) {
		if fs != nil {
			o.fs = fs
		}
	}
}

// WithKnowledgeBases makes knowledge bases declared in the same app available
// to runtime associations that reference a knowledge base by name.
func WithKnowledgeBases(kbs ...*KnowledgeBase) Option {
	return func(o *options) {
		o.knowledgeBases = append(o.knowledgeBases, kbs...)
	}
}

// withValidated skips per-construct validation when a stack has already checked
// the whole configuration.
func withValidated() Option {
	return func(o *options) {
		o.validated = true
	}
}

// enforce turns a validation result into an error and surfaces its warnings on scope.
func enforce(scope constructs.Construct, constructName string, r validation.Result) error {
	if err := validation.Enforce(constructName, r); err != nil {
		return err
	}
	annotate(scope, r.Warnings)
	return nil
}

func annotate(scope constructs.Construct, warnings []string) {
	for _, w := range warnings {
		awscdk.Annotations_Of(scope).AddWarning(jsii.String(w))
	}
}

func cdkRemovalPolicy(policy defaults.RemovalPolicy) awscdk.RemovalPolicy {
	if policy == defaults.RemovalPolicyRetain {
		return awscdk.RemovalPolicy_RETAIN
	}
	return awscdk.RemovalPolicy_DESTROY
}

// logRetention rounds days up to the nearest retention CloudWatch supports.
func logRetention(days int) awslogs.RetentionDays {
	switch {
	case days <= 1:
		return awslogs.RetentionDays_ONE_DAY
	case days <= 3:
		return awslogs.RetentionDays_THREE_DAYS
	case days <= 5:
		return awslogs.RetentionDays_FIVE_DAYS
	case days <= 7:
		return awslogs.RetentionDays_ONE_WEEK
	case days <= 14:
		return awslogs.RetentionDays_TWO_WEEKS
	case days <= 30:
		return awslogs.RetentionDays_ONE_MONTH
	case days <= 60:
		return awslogs.RetentionDays_TWO_MONTHS
	case days <= 90:
		return awslogs.RetentionDays_THREE_MONTHS
	case days <= 120:
		return awslogs.RetentionDays_FOUR_MONTHS
	case days <= 150:
		return awslogs.RetentionDays_FIVE_MONTHS
	case days <= 180:
		return awslogs.RetentionDays_SIX_MONTHS
	case days <= 365:
		return awslogs.RetentionDays_ONE_YEAR
	case days <= 400:
		return awslogs.RetentionDays_THIRTEEN_MONTHS
	case days <= 545:
		return awslogs.RetentionDays_EIGHTEEN_MONTHS
	case days <= 731:
		return awslogs.RetentionDays_TWO_YEARS
	case days <= 1096:
		return awslogs.RetentionDays_THREE_YEARS
	case days <= 1827:
		return awslogs.RetentionDays_FIVE_YEARS
	case days <= 3653:
		return awslogs.RetentionDays_TEN_YEARS
	default:
		return awslogs.RetentionDays_INFINITE
	}
}

// applyTags tags every resource below c.
func applyTags(c constructs.IConstruct, tags map[string]string) {
	for k, v := range tags {
		awscdk.Tags_Of(c).Add(jsii.String(k), jsii.String(v), nil)
	}
}

func cfnTags(tags map[string]string) *map[string]*string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]*string, len(tags))
	for k, v := range tags {
		out[k] = jsii.String(v)
	}
	return &out
}
