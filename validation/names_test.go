package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceName(t *testing.T) {
	testCases := map[string]struct {
		name string

		wantedErrCount int
	}{
		"simple":              {name: "test-agent"},
		"underscores":         {name: "my_agent_2"},
		"max length":          {name: strings.Repeat("a", 63)},
		"empty":               {name: "", wantedErrCount: 1},
		"too long":            {name: strings.Repeat("a", 64), wantedErrCount: 1},
		"spaces":              {name: "my agent", wantedErrCount: 1},
		"dots":                {name: "my.agent", wantedErrCount: 1},
		"too long and spaces": {name: strings.Repeat("a b", 30), wantedErrCount: 2},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := ResourceName(tc.name, "agentName")

			require.Len(t, got.Errors, tc.wantedErrCount)
		})
	}
}

func TestBucketName(t *testing.T) {
	testCases := map[string]struct {
		name string

		wantedErr string
	}{
		"valid":              {name: "my-bucket.data"},
		"empty":              {name: "", wantedErr: "s3Bucket is required"},
		"uppercase":          {name: "MyBucket", wantedErr: "must contain only lowercase letters"},
		"too short":          {name: "ab", wantedErr: "at least 3 characters"},
		"leading period":     {name: ".bucket", wantedErr: "must not start or end with a period"},
		"trailing period":    {name: "bucket.", wantedErr: "must not start or end with a period"},
		"consecutive period": {name: "my..bucket", wantedErr: "consecutive periods"},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			got := BucketName(tc.name, "s3Bucket")

			if tc.wantedErr == "" {
				require.True(t, got.IsValid(), got.Errors)
				return
			}
			require.Len(t, got.Errors, 1)
			require.Contains(t, got.Errors[0], tc.wantedErr)
		})
	}
}

func TestStackName(t *testing.T) {
	require.True(t, StackName("AgentCoreStack-dev", "stackName").IsValid())
	require.False(t, StackName("1stack", "stackName").IsValid())
	require.False(t, StackName("my_stack", "stackName").IsValid())
	require.False(t, StackName(strings.Repeat("s", 129), "stackName").IsValid())
}

func TestRegion(t *testing.T) {
	for _, r := range []string{"us-east-1", "eu-west-2", "ap-southeast-1", "us-gov-west-1"} {
		require.True(t, Region(r, "region").IsValid(), r)
	}
	for _, r := range []string{"", "us-east", "US-EAST-1", "useast1"} {
		require.False(t, Region(r, "region").IsValid(), r)
	}
}
