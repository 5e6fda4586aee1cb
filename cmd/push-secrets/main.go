// push-secrets pushes environment variables from .env files to AWS Secrets Manager.
//
// It reads KEY=VALUE pairs from a file and creates or updates one secret per
// group (llm, search, config) named {prefix}/{group}.
//
// Usage:
//
//	push-secrets [flags] [env-file]
//
// Examples:
//
//	push-secrets .env                          # Push from .env to us-east-1
//	push-secrets --region us-west-2 .env       # Push to specific region
//	push-secrets --prefix myapp .env           # Use custom prefix (myapp/llm, myapp/search, etc.)
//	push-secrets --dry-run .env                # Preview without creating
//
// Install:
//
//	go install github.com/plexusone/bedrock-agentcore-cdk/cmd/push-secrets@latest
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/cli"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/envfile"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/secrets"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type pushOpts struct {
	region  string
	prefix  string
	project string
	dryRun  bool
	verbose bool
}

func main() {
	cli.DisableColorBasedOnEnvVar()
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	opts := &pushOpts{}
	cmd := &cobra.Command{
		Use:   "push-secrets [env-file]",
		Short: "Push environment variables to AWS Secrets Manager",
		Long: `Push environment variables to AWS Secrets Manager.

If env-file is not specified, searches in order:
  1. .env (current directory)
  2. ../.env (parent directory)
  3. ~/.plexusone/projects/{project}/.env (if --project specified)
  4. ~/.plexusone/.env (global fallback)

Project is auto-detected from the stackName in config.json or config.yaml.

Secret groups:
  {prefix}/llm     - LLM provider API keys (GOOGLE_API_KEY, OPENAI_API_KEY, etc.)
  {prefix}/search  - Search provider keys (SERPER_API_KEY, SERPAPI_API_KEY)
  {prefix}/config  - Configuration and observability settings`,
		Example: `  push-secrets                            # Auto-detect env file
  push-secrets --project research-agents  # Use project-specific env
  push-secrets --region us-west-2 .env    # Push to specific region
  push-secrets --dry-run .env             # Preview without creating`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var envPath string
			if len(args) == 1 {
				envPath = args[0]
			}
			return run(cmd.Context(), opts, envPath)
		},
	}
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region (default: AWS_REGION or us-east-1)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Secret name prefix (default: project name)")
	cmd.Flags().StringVar(&opts.project, "project", "", "Project name for ~/.plexusone/projects/{project}/.env lookup")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Preview changes without creating secrets")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Show verbose output")
	return cmd
}

func run(ctx context.Context, opts *pushOpts, envPath string) error {
	fs := afero.NewOsFs()
	out := os.Stdout

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}
	project := opts.project
	if project == "" {
		project = envfile.DetectProjectName(fs, wd)
	}
	prefix := opts.prefix
	if prefix == "" {
		prefix = project
	}

	if envPath == "" {
		home, _ := os.UserHomeDir()
		envPath, err = envfile.Find(fs, home, project)
		if err != nil {
			return fmt.Errorf("%w: create ~/%s/.env or ~/%s/projects/%s/.env", err, envfile.ConfigDir, envfile.ConfigDir, project)
		}
	}

	region := cli.ResolveRegion(opts.region)
	fmt.Fprintf(out, "Reading from: %s\n", envPath)
	fmt.Fprintf(out, "AWS Region: %s\n", region)
	fmt.Fprintf(out, "Secret prefix: %s\n", prefix)
	if opts.dryRun {
		fmt.Fprintln(out, "Mode: DRY RUN (no changes will be made)")
	}
	fmt.Fprintln(out)

	vars, err := envfile.ReadFile(fs, envPath)
	if err != nil {
		return fmt.Errorf("parse env file: %w", err)
	}
	groups := envfile.Split(vars, prefix, envfile.DefaultGroups())
	if opts.verbose {
		for _, g := range groups {
			for _, k := range g.Keys() {
				fmt.Fprintf(out, "  Found %s key: %s\n", g.Name, k)
			}
		}
	}

	var client secrets.API
	if !opts.dryRun {
		cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
		if err != nil {
			return fmt.Errorf("load AWS config: %w", err)
		}
		client = secretsmanager.NewFromConfig(cfg)
	}

	err = secrets.New(client, opts.dryRun).PushAll(ctx, groups, func(s envfile.Secret, outcome secrets.Outcome) {
		report(out, s, outcome)
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	cli.Success(out, "Done!")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "To verify:")
	fmt.Fprintf(out, "  %s\n", cli.HighlightCode(fmt.Sprintf(
		"aws secretsmanager list-secrets --region %s --filter Key=name,Values=%s/ --no-cli-pager", region, prefix)))
	return nil
}

func report(out io.Writer, s envfile.Secret, outcome secrets.Outcome) {
	if outcome == secrets.OutcomeSkipped {
		fmt.Fprintf(out, "Skipping %s (no keys found)\n", s.Name)
		return
	}
	fmt.Fprintf(out, "Creating/updating: %s\n", s.Name)
	fmt.Fprintf(out, "  Keys: %s\n", strings.Join(s.Keys(), ", "))
	switch outcome {
	case secrets.OutcomeDryRun:
		fmt.Fprintf(out, "  [DRY RUN] Would create with: %s\n", s.Masked())
	case secrets.OutcomeCreated:
		fmt.Fprintln(out, "  Created new secret")
	case secrets.OutcomeUpdated:
		fmt.Fprintln(out, "  Updated existing secret")
	}
}
