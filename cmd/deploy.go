// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/sageturner/sageturner/cmd/actions"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/config"
	"github.com/sageturner/sageturner/pkg/container"
	"github.com/sageturner/sageturner/pkg/containerregistry"
	"github.com/sageturner/sageturner/pkg/deploy"
	"github.com/sageturner/sageturner/pkg/exec"
	"github.com/sageturner/sageturner/pkg/input"
	"github.com/sageturner/sageturner/pkg/modelconfig"
	"github.com/sageturner/sageturner/pkg/output"
	"github.com/sageturner/sageturner/pkg/tools"
	"github.com/sageturner/sageturner/pkg/tools/docker"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ManifestFileName is the manifest deploy reads when -c is not passed.
const ManifestFileName = "sageturner.yaml"

type deployFlags struct {
	manifestPath  string
	mode          string
	endpoint      string
	naming        string
	keepOnFailure bool
	outputFormat  string
	global        *internal.GlobalCommandOptions
}

func (d *deployFlags) Bind(local *pflag.FlagSet, global *internal.GlobalCommandOptions) {
	local.StringVarP(&d.manifestPath, "config", "c", ManifestFileName, "Path of the deployment manifest")
	local.StringVar(
		&d.mode,
		"mode",
		"",
		fmt.Sprintf("How the serving container is obtained (%s)", strings.Join(modeNames(), ", ")),
	)
	local.StringVar(
		&d.endpoint,
		"endpoint",
		"",
		fmt.Sprintf("The endpoint type to create (%s)", strings.Join(endpointTypeNames(), ", ")),
	)
	local.StringVar(
		&d.naming,
		"naming",
		deploy.NamingTimestamp,
		fmt.Sprintf("How deployment names are suffixed (%s)", strings.Join(deploy.NamingStrategies, ", ")),
	)
	local.BoolVar(
		&d.keepOnFailure,
		"keep-on-failure",
		false,
		"Keep the artifact, model and endpoint configuration created by a failed deployment",
	)
	output.AddOutputFlag(local, &d.outputFormat, []output.Format{output.JsonFormat, output.NoneFormat}, output.NoneFormat)
	d.global = global
}

func deployCmdDesign(rootOptions *internal.GlobalCommandOptions) (*cobra.Command, *deployFlags) {
	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Build, push and serve a model on a SageMaker endpoint.",
		//nolint:lll
		Long: `Build, push and serve a model on a SageMaker endpoint.
The manifest (` + output.WithBackticks(ManifestFileName) + ` by default) names the model, its optional artifact and the compute of the endpoint.

Examples:

	$ sageturner deploy --mode generate --endpoint serverless
	$ sageturner deploy -c models/ranker.yaml --mode provide --endpoint server --naming hash

The command returns once endpoint creation has been accepted. The endpoint takes a few minutes to become InService.`,
		Args: cobra.NoArgs,
	}

	df := &deployFlags{}
	df.Bind(cmd.Flags(), rootOptions)
	_ = cmd.MarkFlagRequired("mode")
	_ = cmd.MarkFlagRequired("endpoint")

	return cmd, df
}

func modeNames() []string {
	names := make([]string, 0, len(modelconfig.ContainerModes))
	for _, mode := range modelconfig.ContainerModes {
		names = append(names, mode.String())
	}
	return names
}

func endpointTypeNames() []string {
	names := make([]string, 0, len(modelconfig.EndpointTypes))
	for _, endpointType := range modelconfig.EndpointTypes {
		names = append(names, endpointType.String())
	}
	return names
}

// deployTarget is what a deployment runs against.
type deployTarget struct {
	region       string
	capabilities deploy.Capabilities
}

// targetConnector binds capabilities for the configured account. observer receives container build and push output
// and may be nil.
type targetConnector func(ctx context.Context, userConfig config.Config, observer func(string)) (*deployTarget, error)

type deployAction struct {
	flags      *deployFlags
	console    input.Console
	formatter  output.Formatter
	userConfig config.UserConfigManager
	clock      clock.Clock
	connect    targetConnector
}

func newDeployAction(console input.Console, flags *deployFlags, _ []string) (actions.Action, error) {
	formatter, err := output.NewFormatter(flags.outputFormat)
	if err != nil {
		return nil, err
	}

	return &deployAction{
		flags:      flags,
		console:    console,
		formatter:  formatter,
		userConfig: newUserConfigManager(),
		clock:      clock.New(),
		connect:    awsTargetConnector(flags.global),
	}, nil
}

// awsTargetConnector wires the docker CLI, ECR, IAM, S3 and SageMaker into deployment capabilities.
func awsTargetConnector(global *internal.GlobalCommandOptions) targetConnector {
	return func(ctx context.Context, userConfig config.Config, observer func(string)) (*deployTarget, error) {
		dockerCli := docker.NewDocker(exec.NewCommandRunner(&exec.RunnerOptions{
			DebugLogging: global.EnableDebugLogging,
		}))
		if err := tools.EnsureInstalled(ctx, dockerCli); err != nil {
			return nil, err
		}

		services, err := newAWSServices(ctx, global, userConfig)
		if err != nil {
			return nil, err
		}

		provider := container.NewProvider(dockerCli, services.registry, containerregistry.ResolveDigest, observer)

		return &deployTarget{
			region: services.region,
			capabilities: deploy.Capabilities{
				Container: provider,
				Identity:  services.identity,
				Artifacts: services.storage,
				Models:    services.serving,
				Endpoints: services.serving,
			},
		}, nil
	}
}

// DeploymentResult is the json output of a deployment.
type DeploymentResult struct {
	*deploy.Result
	Region string `json:"region"`
}

func (d *deployAction) Run(ctx context.Context) (*actions.ActionResult, error) {
	mode, err := modelconfig.ParseContainerMode(d.flags.mode)
	if err != nil {
		return nil, err
	}

	endpointType, err := modelconfig.ParseEndpointType(d.flags.endpoint)
	if err != nil {
		return nil, err
	}

	naming, err := deploy.NewNamingStrategy(d.flags.naming, d.clock)
	if err != nil {
		return nil, err
	}

	manifest, err := modelconfig.Load(d.flags.manifestPath)
	if err != nil {
		return nil, &internal.ErrorWithSuggestion{
			Err:        err,
			Suggestion: fmt.Sprintf(
				"Pass the manifest path with -c, or create %s in the current directory.", ManifestFileName),
		}
	}

	request := deploy.Request{
		Config:        manifest,
		Mode:          mode,
		EndpointType:  endpointType,
		KeepOnFailure: d.flags.keepOnFailure,
	}
	if _, err := deploy.Validate(request); err != nil {
		return nil, d.manifestError(err)
	}

	userConfig, err := d.userConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("loading user config: %w", err)
	}
	request.Defaults = defaultResourceNames(userConfig)

	if endpointType == modelconfig.EndpointTypeServer && manifest.Compute.Server != nil {
		confirmed, err := d.console.Confirm(ctx, input.ConsoleOptions{
			Message: fmt.Sprintf(
				"A server endpoint bills %d %s instance(s) until it is deleted. Continue?",
				manifest.Compute.Server.EffectiveInitialInstanceCount(),
				manifest.Compute.Server.InstanceType,
			),
			DefaultValue: true,
		})
		if err != nil {
			return nil, err
		}
		if !confirmed {
			return nil, errors.New("deployment cancelled")
		}
	}

	var listener deploy.Listener
	var observer func(string)
	if d.formatter.Kind() == output.NoneFormat {
		spinners := newSpinnerListener(d.console)
		listener = spinners
		observer = spinners.progress
	}

	target, err := d.connect(ctx, userConfig, observer)
	if err != nil {
		return nil, err
	}

	orchestrator := deploy.NewOrchestrator(target.capabilities, naming, listener)
	result, err := orchestrator.Deploy(ctx, request)
	if err != nil {
		return nil, d.manifestError(err)
	}

	log.Printf("deployment %s finished in state %s", result.ModelVersionName, orchestrator.State())

	if d.formatter.Kind() == output.JsonFormat {
		deploymentResult := DeploymentResult{Result: result, Region: target.region}
		if err := d.formatter.Format(deploymentResult, d.console.Writer(), nil); err != nil {
			return nil, fmt.Errorf("formatting deployment result: %w", err)
		}

		return nil, nil
	}

	followUp := []string{
		fmt.Sprintf("  Model:    %s", result.ModelVersionName),
		fmt.Sprintf("  Image:    %s", result.Image),
		fmt.Sprintf("  Endpoint: %s", output.WithHighLightFormat(result.EndpointArn)),
	}
	if result.Artifact != "" {
		followUp = append(followUp, fmt.Sprintf("  Artifact: %s", result.Artifact))
	}
	followUp = append(followUp,
		"",
		fmt.Sprintf("Track its status with %s", output.WithBackticks(fmt.Sprintf(
			"aws sagemaker describe-endpoint --endpoint-name %s --region %s", result.EndpointName, target.region))),
	)

	return &actions.ActionResult{
		Message: &actions.ResultMessage{
			Header:   fmt.Sprintf("Endpoint %s is being created", result.EndpointName),
			FollowUp: strings.Join(followUp, "\n"),
		},
	}, nil
}

// manifestError suggests fixing the manifest when err is a validation failure.
func (d *deployAction) manifestError(err error) error {
	if !deploy.IsValidationError(err) {
		return err
	}

	return &internal.ErrorWithSuggestion{
		Err:        err,
		Suggestion: fmt.Sprintf("Fix %s and run the command again.", d.flags.manifestPath),
	}
}
