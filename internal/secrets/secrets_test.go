package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/envfile"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	putErr    error
	createErr error

	puts    []*secretsmanager.PutSecretValueInput
	creates []*secretsmanager.CreateSecretInput
}

func (f *fakeClient) PutSecretValue(_ context.Context, in *secretsmanager.PutSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	f.puts = append(f.puts, in)
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &secretsmanager.PutSecretValueOutput{}, nil
}

func (f *fakeClient) CreateSecret(_ context.Context, in *secretsmanager.CreateSecretInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error) {
	f.creates = append(f.creates, in)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &secretsmanager.CreateSecretOutput{}, nil
}

func testSecret() envfile.Secret {
	return envfile.Secret{
		Name:        "research-agents/llm",
		Description: "LLM provider API keys",
		Values:      map[string]string{"OPENAI_API_KEY": "sk-123"},
	}
}

func TestPusher_Push(t *testing.T) {
	testCases := map[string]struct {
		client *fakeClient
		dryRun bool
		secret envfile.Secret

		wantedOutcome Outcome
		wantedErr     string
		wantedPuts    int
		wantedCreates int
	}{
		"empty secret is skipped": {
			client:        &fakeClient{},
			secret:        envfile.Secret{Name: "research-agents/search"},
			wantedOutcome: OutcomeSkipped,
		},
		"dry run makes no calls": {
			client:        &fakeClient{},
			dryRun:        true,
			secret:        testSecret(),
			wantedOutcome: OutcomeDryRun,
		},
		"existing secret is updated": {
			client:        &fakeClient{},
			secret:        testSecret(),
			wantedOutcome: OutcomeUpdated,
			wantedPuts:    1,
		},
		"missing secret is created": {
			client:        &fakeClient{putErr: &types.ResourceNotFoundException{Message: aws.String("not found")}},
			secret:        testSecret(),
			wantedOutcome: OutcomeCreated,
			wantedPuts:    1,
			wantedCreates: 1,
		},
		"update failure": {
			client:     &fakeClient{putErr: errors.New("access denied")},
			secret:     testSecret(),
			wantedErr:  "update secret research-agents/llm: access denied",
			wantedPuts: 1,
		},
		"create failure": {
			client: &fakeClient{
				putErr:    &types.ResourceNotFoundException{Message: aws.String("not found")},
				createErr: errors.New("limit exceeded"),
			},
			secret:        testSecret(),
			wantedErr:     "create secret research-agents/llm: limit exceeded",
			wantedPuts:    1,
			wantedCreates: 1,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			p := New(tc.client, tc.dryRun)

			got, err := p.Push(context.Background(), tc.secret)

			if tc.wantedErr != "" {
				require.EqualError(t, err, tc.wantedErr)
			} else {
				require.NoError(t, err)
				require.Equal(t, tc.wantedOutcome, got)
			}
			require.Len(t, tc.client.puts, tc.wantedPuts)
			require.Len(t, tc.client.creates, tc.wantedCreates)
		})
	}
}

func TestPusher_PushCreatesWithDescription(t *testing.T) {
	client := &fakeClient{putErr: &types.ResourceNotFoundException{}}

	_, err := New(client, false).Push(context.Background(), testSecret())

	require.NoError(t, err)
	require.Equal(t, "research-agents/llm", aws.ToString(client.creates[0].Name))
	require.Equal(t, "LLM provider API keys", aws.ToString(client.creates[0].Description))
	require.Equal(t, `{"OPENAI_API_KEY":"sk-123"}`, aws.ToString(client.creates[0].SecretString))
}

func TestPusher_PushAll(t *testing.T) {
	client := &fakeClient{}
	var seen []Outcome

	err := New(client, false).PushAll(context.Background(), []envfile.Secret{
		testSecret(),
		{Name: "research-agents/search"},
	}, func(_ envfile.Secret, o Outcome) { seen = append(seen, o) })

	require.NoError(t, err)
	require.Equal(t, []Outcome{OutcomeUpdated, OutcomeSkipped}, seen)
}

func TestPusher_NilClient(t *testing.T) {
	_, err := New(nil, false).Push(context.Background(), testSecret())

	require.EqualError(t, err, "push research-agents/llm: no Secrets Manager client")
}
