// deploy orchestrates the full AWS AgentCore deployment process.
//
// It handles:
//  1. Validating the stack configuration
//  2. Pushing secrets from .env to AWS Secrets Manager
//  3. Bootstrapping AWS CDK
//  4. Deploying the CDK stack
//
// Usage:
//
//	deploy [flags]
//	deploy validate [config-file]
//
// Examples:
//
//	deploy                              # Deploy from current directory
//	deploy --env ../.env                # Specify env file location
//	deploy --region us-west-2           # Deploy to specific region
//	deploy --dry-run                    # Preview without deploying
//	deploy --skip-secrets               # Skip secrets push (if already created)
//	deploy validate config.yaml         # Only check the configuration
//
// Install:
//
//	go install github.com/plexusone/bedrock-agentcore-cdk/cmd/deploy@latest
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/briandowns/spinner"
	"github.com/plexusone/bedrock-agentcore-cdk/config"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/cli"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/envfile"
	"github.com/plexusone/bedrock-agentcore-cdk/internal/secrets"
	"github.com/plexusone/bedrock-agentcore-cdk/validation"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// configCandidates are the stack config files looked up when --config is not set.
var configCandidates = []string{"config.json", "config.yaml", "config.yml"}

type deployOpts struct {
	region        string
	envFile       string
	configFile    string
	prefix        string
	project       string
	dryRun        bool
	skipValidate  bool
	skipSecrets   bool
	skipBootstrap bool
	verbose       bool
}

func main() {
	cli.DisableColorBasedOnEnvVar()
	if err := buildRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	opts := &deployOpts{}
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Deploy to AWS AgentCore",
		Long: `Deploy to AWS AgentCore.

Env file search order (if --env not specified):
  1. .env (current directory)
  2. ../.env (parent directory)
  3. ~/.plexusone/projects/{project}/.env (if --project specified)
  4. ~/.plexusone/.env (global fallback)

Project is auto-detected from the stackName in config.json or config.yaml.

Steps:
  1. Validate the stack configuration
  2. Push secrets from .env to AWS Secrets Manager
  3. Bootstrap AWS CDK (if needed)
  4. Deploy CDK stack`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.region, "region", "", "AWS region (default: AWS_REGION or us-east-1)")
	cmd.Flags().StringVar(&opts.envFile, "env", "", "Path to .env file (default: auto-detect)")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "Path to the stack config (default: config.json, config.yaml or config.yml)")
	cmd.Flags().StringVar(&opts.prefix, "prefix", "", "Secret name prefix (default: project name)")
	cmd.Flags().StringVar(&opts.project, "project", "", "Project name for ~/.plexusone/projects/{project}/.env lookup")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Preview changes without deploying")
	cmd.Flags().BoolVar(&opts.skipValidate, "skip-validate", false, "Skip validating the stack config")
	cmd.Flags().BoolVar(&opts.skipSecrets, "skip-secrets", false, "Skip pushing secrets")
	cmd.Flags().BoolVar(&opts.skipBootstrap, "skip-bootstrap", false, "Skip CDK bootstrap")
	cmd.Flags().BoolVar(&opts.verbose, "verbose", false, "Show verbose output")

	cmd.AddCommand(buildValidateCmd())
	return cmd
}

func buildValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a stack config without deploying",
		Long: `Load a JSON or YAML stack config, apply stack defaults and report every
error, warning and suggestion. Exits non-zero when the config is invalid.`,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			path, err := resolveConfigFile(afero.NewOsFs(), path)
			if err != nil {
				return err
			}
			_, err = validateConfig(cmd.OutOrStdout(), path)
			return err
		},
	}
}

func run(ctx context.Context, out io.Writer, opts *deployOpts) error {
	fs := afero.NewOsFs()
	region := cli.ResolveRegion(opts.region)
	wd := mustGetwd()

	project := opts.project
	if project == "" {
		project = envfile.DetectProjectName(fs, wd)
	}
	prefix := opts.prefix
	if prefix == "" {
		prefix = project
	}

	cli.Heading(out, "AWS AgentCore Deployment")
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Region: %s\n", region)
	if project != "" {
		fmt.Fprintf(out, "Project: %s\n", project)
	}
	fmt.Fprintf(out, "Working directory: %s\n", wd)
	if opts.dryRun {
		fmt.Fprintln(out, "Mode: DRY RUN (no changes will be made)")
	}
	fmt.Fprintln(out)

	stackName := project
	if opts.skipValidate {
		cli.Heading(out, "Step 1: Skipping validation (--skip-validate)")
	} else {
		cli.Heading(out, "Step 1: Validate Config")
		path, err := resolveConfigFile(fs, opts.configFile)
		switch {
		case errors.Is(err, errNoConfig) && opts.configFile == "":
			cli.Warn(out, "no stack config found, skipping validation")
		case err != nil:
			return err
		default:
			cfg, err := validateConfig(out, path)
			if err != nil {
				return fmt.Errorf("validate %s: %w", path, err)
			}
			stackName = cfg.StackName
		}
	}
	fmt.Fprintln(out)

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return fmt.Errorf("load AWS config: %w", err)
	}

	accountID, err := callerAccount(ctx, awsCfg)
	if err != nil {
		return fmt.Errorf("get AWS identity: %w", err)
	}
	fmt.Fprintf(out, "AWS Account: %s\n", accountID)
	fmt.Fprintln(out)

	if opts.skipSecrets {
		cli.Heading(out, "Step 2: Skipping secrets (--skip-secrets)")
	} else {
		cli.Heading(out, "Step 2: Push Secrets")
		if err := pushSecrets(ctx, out, fs, awsCfg, opts, project, prefix); err != nil {
			return fmt.Errorf("push secrets: %w", err)
		}
	}
	fmt.Fprintln(out)

	if opts.skipBootstrap {
		cli.Heading(out, "Step 3: Skipping bootstrap (--skip-bootstrap)")
	} else {
		cli.Heading(out, "Step 3: Bootstrap CDK")
		bootstrapCDK(ctx, out, accountID, region, opts.dryRun)
	}
	fmt.Fprintln(out)

	cli.Heading(out, "Step 4: Deploy")
	if err := deployCDK(ctx, out, opts.dryRun); err != nil {
		return fmt.Errorf("deploy: %w", err)
	}
	fmt.Fprintln(out)

	cli.Success(out, "=== Deployment Complete ===")
	if !opts.dryRun && stackName != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "To get outputs:")
		fmt.Fprintf(out, "  %s\n", cli.HighlightCode(fmt.Sprintf(
			"aws cloudformation describe-stacks --stack-name %s --region %s --query 'Stacks[0].Outputs' --no-cli-pager", stackName, region)))
	}
	return nil
}

var errNoConfig = errors.New("no stack config found")

// resolveConfigFile returns path when set, otherwise the first config candidate
// in the working directory.
func resolveConfigFile(fs afero.Fs, path string) (string, error) {
	if path != "" {
		if ok, _ := afero.Exists(fs, path); !ok {
			return "", fmt.Errorf("config file %s: %w", path, os.ErrNotExist)
		}
		return path, nil
	}
	for _, candidate := range configCandidates {
		if ok, _ := afero.Exists(fs, candidate); ok {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: looked for %s", errNoConfig, strings.Join(configCandidates, ", "))
}

// validateConfig loads the stack config at path and prints its validation result.
func validateConfig(out io.Writer, path string) (*config.StackConfig, error) {
	fmt.Fprintf(out, "Config: %s\n", path)
	cfg, err := config.LoadStackConfigFromFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()

	r := validation.ValidateStack(*cfg)
	cli.PrintResult(out, r)
	if err := validation.Enforce(cfg.StackName, r); err != nil {
		return nil, err
	}
	return cfg, nil
}

func callerAccount(ctx context.Context, cfg aws.Config) (string, error) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Resolving AWS account"
	s.Start()
	defer s.Stop()

	identity, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	return aws.ToString(identity.Account), nil
}

func mustGetwd() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}

// pushSecrets pushes environment variables to AWS Secrets Manager.
func pushSecrets(ctx context.Context, out io.Writer, fs afero.Fs, cfg aws.Config, opts *deployOpts, project, prefix string) error {
	var envPath string
	if opts.envFile != "" {
		path, ok := envfile.Resolve(fs, opts.envFile)
		if !ok {
			cli.Warn(out, "%s not found, skipping secrets push", opts.envFile)
			return nil
		}
		envPath = path
	} else {
		home, _ := os.UserHomeDir()
		path, err := envfile.Find(fs, home, project)
		if err != nil {
			fmt.Fprintln(out, "No .env file found, skipping secrets push")
			fmt.Fprintf(out, "  Searched: %s\n", strings.Join(envfile.Candidates(home, project), ", "))
			return nil
		}
		envPath = path
	}

	fmt.Fprintf(out, "Reading from: %s\n", envPath)
	vars, err := envfile.ReadFile(fs, envPath)
	if err != nil {
		return err
	}
	groups := envfile.Split(vars, prefix, envfile.DefaultGroups())
	if opts.verbose {
		fmt.Fprintf(out, "Parsed %d variables into %d secret groups\n", len(vars), len(groups))
	}

	var client secrets.API
	if !opts.dryRun {
		client = secretsmanager.NewFromConfig(cfg)
	}
	return secrets.New(client, opts.dryRun).PushAll(ctx, groups, func(s envfile.Secret, outcome secrets.Outcome) {
		switch outcome {
		case secrets.OutcomeSkipped:
			fmt.Fprintf(out, "  Skipping %s (no keys found)\n", s.Name)
		case secrets.OutcomeDryRun:
			fmt.Fprintf(out, "  %s: %s\n    [DRY RUN] Would create/update\n", s.Name, strings.Join(s.Keys(), ", "))
		case secrets.OutcomeCreated:
			fmt.Fprintf(out, "  %s: %s\n    Created\n", s.Name, strings.Join(s.Keys(), ", "))
		case secrets.OutcomeUpdated:
			fmt.Fprintf(out, "  %s: %s\n    Updated\n", s.Name, strings.Join(s.Keys(), ", "))
		}
	})
}

// bootstrapCDK runs cdk bootstrap.
func bootstrapCDK(ctx context.Context, out io.Writer, accountID, region string, dryRun bool) {
	target := fmt.Sprintf("aws://%s/%s", accountID, region)
	fmt.Fprintf(out, "Bootstrap target: %s\n", target)

	if dryRun {
		fmt.Fprintln(out, "[DRY RUN] Would run: cdk bootstrap "+target)
		return
	}

	//nolint:gosec // G702: target is built from AWS SDK values (accountID, region), not user input
	cmd := exec.CommandContext(ctx, "cdk", "bootstrap", target)
	cmd.Stdout = out
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// bootstrap exits non-zero when the environment is already bootstrapped
		fmt.Fprintln(out, "  Bootstrap completed (or already bootstrapped)")
	}
}

// deployCDK runs cdk deploy, or cdk diff in dry-run mode.
func deployCDK(ctx context.Context, out io.Writer, dryRun bool) error {
	fmt.Fprintln(out, "Running go mod tidy...")
	tidyCmd := exec.CommandContext(ctx, "go", "mod", "tidy")
	tidyCmd.Stdout = out
	tidyCmd.Stderr = os.Stderr
	if err := tidyCmd.Run(); err != nil {
		cli.Warn(out, "go mod tidy failed: %v", err)
	}

	if dryRun {
		fmt.Fprintln(out, "Running cdk diff...")
		cmd := exec.CommandContext(ctx, "cdk", "diff")
		cmd.Stdout = out
		cmd.Stderr = os.Stderr
		_ = cmd.Run() // diff exits non-zero when there are differences
		return nil
	}

	fmt.Fprintln(out, "Running cdk deploy...")
	cmd := exec.CommandContext(ctx, "cdk", "deploy", "--require-approval", "never")
	cmd.Stdout = out
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
