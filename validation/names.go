package validation

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	resourceNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	bucketNamePattern   = regexp.MustCompile(`^[a-z0-9.-]+$`)
	stackNamePattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9-]*$`)
	regionPattern       = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)
	secretARNPattern    = regexp.MustCompile(`^arn:aws[a-z-]*:secretsmanager:[a-z0-9-]+:\d{12}:secret:.+$`)
	iamARNPattern       = regexp.MustCompile(`^arn:aws[a-z-]*:iam::(\d{12}|aws):(role|policy)/.+$`)
	knowledgeBaseID     = regexp.MustCompile(`^[0-9A-Za-z]{10}$`)
	collectionARN       = regexp.MustCompile(`^arn:aws[a-z-]*:aoss:[a-z0-9-]+:\d{12}:collection/[a-z0-9]+$`)
)

const (
	maxResourceNameLength = 63
	minBucketNameLength   = 3
	maxBucketNameLength   = 63
	maxStackNameLength    = 128
)

// ResourceName validates a construct or runtime name.
func ResourceName(name, field string) Result {
	if r := Required(name, field); !r.IsValid() {
		return r
	}
	return Merge(
		Pattern(name, resourceNamePattern, field, "letters, numbers, hyphens and underscores"),
		Length(name, 1, maxResourceNameLength, field),
	)
}

// BucketName validates an S3 bucket name.
func BucketName(name, field string) Result {
	if r := Required(name, field); !r.IsValid() {
		return r
	}
	r := Merge(
		Pattern(name, bucketNamePattern, field, "lowercase letters, numbers, periods and hyphens"),
		Length(name, minBucketNameLength, maxBucketNameLength, field),
	)
	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
		r = r.WithError(
			fmt.Sprintf("%s %q must not start or end with a period", field, name),
			fmt.Sprintf("Please remove the leading or trailing period from %s", field),
		)
	}
	if strings.Contains(name, "..") {
		r = r.WithError(
			fmt.Sprintf("%s %q must not contain consecutive periods", field, name),
			fmt.Sprintf("Please replace \"..\" in %s with a single period", field),
		)
	}
	return r
}

// StackName validates a CloudFormation stack name.
func StackName(name, field string) Result {
	if r := Required(name, field); !r.IsValid() {
		return r
	}
	return Merge(
		Pattern(name, stackNamePattern, field, "letters, numbers and hyphens, starting with a letter"),
		Length(name, 1, maxStackNameLength, field),
	)
}

// Region validates an AWS region code such as us-east-1.
func Region(region, field string) Result {
	return Pattern(region, regionPattern, field, "a region code such as us-east-1")
}
