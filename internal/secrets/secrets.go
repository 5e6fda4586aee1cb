// Package secrets writes env file groups to AWS Secrets Manager.
package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/envfile"
)

// API is the subset of the Secrets Manager client used by Pusher.
type API interface {
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	CreateSecret(ctx context.Context, params *secretsmanager.CreateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.CreateSecretOutput, error)
}

// Outcome describes what Push did with a secret.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeDryRun  Outcome = "dry-run"
	OutcomeUpdated Outcome = "updated"
	OutcomeCreated Outcome = "created"
)

// Pusher creates or updates secrets.
type Pusher struct {
	Client API
	DryRun bool
}

// New returns a Pusher. client may be nil when dryRun is set.
func New(client API, dryRun bool) *Pusher {
	return &Pusher{Client: client, DryRun: dryRun}
}

// Push writes s. An empty secret is skipped. The secret value is updated in
// place when it exists and created otherwise.
func (p *Pusher) Push(ctx context.Context, s envfile.Secret) (Outcome, error) {
	if s.Empty() {
		return OutcomeSkipped, nil
	}
	if p.DryRun {
		return OutcomeDryRun, nil
	}
	if p.Client == nil {
		return "", fmt.Errorf("push %s: no Secrets Manager client", s.Name)
	}

	value := s.String()
	_, err := p.Client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:     aws.String(s.Name),
		SecretString: aws.String(value),
	})
	if err == nil {
		return OutcomeUpdated, nil
	}

	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return "", fmt.Errorf("update secret %s: %w", s.Name, err)
	}

	_, err = p.Client.CreateSecret(ctx, &secretsmanager.CreateSecretInput{
		Name:         aws.String(s.Name),
		Description:  aws.String(s.Description),
		SecretString: aws.String(value),
	})
	if err != nil {
		return "", fmt.Errorf("create secret %s: %w", s.Name, err)
	}
	return OutcomeCreated, nil
}

// PushAll pushes every secret in order and stops at the first error.
func (p *Pusher) PushAll(ctx context.Context, secrets []envfile.Secret, onPushed func(envfile.Secret, Outcome)) error {
	for _, s := range secrets {
		outcome, err := p.Push(ctx, s)
		if err != nil {
			return err
		}
		if onPushed != nil {
			onPushed(s, outcome)
		}
	}
	return nil
}
