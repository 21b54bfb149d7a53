// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package deploy sequences a deployment: validation, image build and push, shared resource setup, model
// registration and endpoint creation.
package deploy

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strings"

	"github.com/sageturner/sageturner/internal/tracing"
	"github.com/sageturner/sageturner/pkg/container"
	"github.com/sageturner/sageturner/pkg/identity"
	"github.com/sageturner/sageturner/pkg/modelconfig"
	"github.com/sageturner/sageturner/pkg/serving"
	"github.com/sageturner/sageturner/pkg/storage"
	"go.uber.org/multierr"
)

// ContainerProvider yields a pushed image for a deployment.
type ContainerProvider interface {
	BuildProvided(ctx context.Context, buildContextDir string, imageName string) (string, error)
	BuildGenerated(
		ctx context.Context, spec *modelconfig.GenerateSpec, codeDir string, imageName string,
	) (string, error)
	Push(ctx context.Context, imageName string) (*container.PushedImage, error)
}

// ErrNameCollision is returned when a resource derived from the deployment token already exists.
var ErrNameCollision = errors.New("deployment name collision")

// IdentityProvisioner ensures the execution role exists.
type IdentityProvisioner interface {
	EnsureRole(ctx context.Context, roleName string) (string, error)
}

// ArtifactStore ensures the bucket exists and hosts model artifacts.
type ArtifactStore interface {
	EnsureBucket(ctx context.Context, bucketName string) error
	ArtifactExists(ctx context.Context, bucketName string, key string) (bool, error)
	UploadArtifact(ctx context.Context, localPath string, bucketName string, key string) (string, error)
	DeleteArtifact(ctx context.Context, bucketName string, key string) error
}

// ModelRegistrar registers model versions.
type ModelRegistrar interface {
	RegisterModel(
		ctx context.Context, versionName string, roleArn string, imageRef string, artifactPath string,
	) (string, error)
	DeleteModel(ctx context.Context, modelName string) error
}

// EndpointProvisioner creates endpoint configurations and endpoints.
type EndpointProvisioner interface {
	CreateEndpointConfig(ctx context.Context, request serving.EndpointConfigRequest) error
	DeleteEndpointConfig(ctx context.Context, configName string) error
	CreateEndpoint(ctx context.Context, endpointName string, configName string) (string, error)
}

// Capabilities are the remote collaborators of the orchestrator.
type Capabilities struct {
	Container ContainerProvider
	Identity  IdentityProvisioner
	Artifacts ArtifactStore
	Models    ModelRegistrar
	Endpoints EndpointProvisioner
}

// Listener observes stage transitions.
type Listener interface {
	StageStarted(stage Stage)
	StageCompleted(stage Stage, err error)
	Warning(message string)
}

type noopListener struct{}

func (noopListener) StageStarted(Stage) {}

func (noopListener) StageCompleted(Stage, error) {}

func (noopListener) Warning(string) {}

// Request is one deployment run.
type Request struct {
	Config       *modelconfig.Config
	Mode         modelconfig.ContainerMode
	EndpointType modelconfig.EndpointType
	// Defaults apply to the bucket and role when the manifest has no override.
	Defaults ResourceNames
	// KeepOnFailure leaves per-deployment resources in place when a later stage fails.
	KeepOnFailure bool
}

// ResourceNames are the long-lived resources shared by every deployment.
type ResourceNames struct {
	Bucket string `json:"bucket"`
	Role   string `json:"role"`
}

// ResolveResourceNames applies a non-empty override, then defaults, then the well-known names. A role ARN is kept as
// given.
func ResolveResourceNames(overrides *modelconfig.Overrides, defaults ResourceNames) ResourceNames {
	names := ResourceNames{Bucket: storage.DefaultBucketName, Role: identity.DefaultRoleName}

	if defaults.Bucket != "" {
		names.Bucket = defaults.Bucket
	}
	if defaults.Role != "" {
		names.Role = defaults.Role
	}

	if overrides != nil {
		if strings.TrimSpace(overrides.Bucket) != "" {
			names.Bucket = strings.TrimSpace(overrides.Bucket)
		}
		if strings.TrimSpace(overrides.Role) != "" {
			names.Role = strings.TrimSpace(overrides.Role)
		}
	}

	return names
}

// Validate checks request without calling any remote service and returns the warnings for defaulted settings.
func Validate(request Request) ([]string, error) {
	cfg := request.Config
	warnings, err := modelconfig.Validate(cfg, request.EndpointType, request.Mode, cfg.BaseDir)
	if err != nil {
		return nil, err
	}

	if err := checkArtefact(cfg); err != nil {
		return nil, err
	}

	return warnings, nil
}

func checkArtefact(cfg *modelconfig.Config) error {
	artefact := cfg.ArtefactPath()
	if artefact == "" {
		return nil
	}

	if err := storage.CheckArchive(artefact); err != nil {
		return invalidArtefact("%s", err.Error())
	}

	localPath := cfg.ResolvePath(artefact)
	info, err := os.Stat(localPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return invalidArtefact("file '%s' does not exist", localPath)
	case err != nil:
		return invalidArtefact("reading '%s': %v", localPath, err)
	case info.IsDir():
		return invalidArtefact("'%s' is a directory", localPath)
	}

	return nil
}

func invalidArtefact(format string, args ...any) error {
	return &modelconfig.ValidationError{Field: "artefact", Reason: fmt.Sprintf(format, args...)}
}

// Result describes a deployment whose endpoint creation was accepted.
type Result struct {
	Identity
	EndpointArn string   `json:"endpointArn"`
	Image       string   `json:"image"`
	Digest      string   `json:"digest,omitempty"`
	Artifact    string   `json:"artifact,omitempty"`
	RoleArn     string   `json:"roleArn"`
	Bucket      string   `json:"bucket"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Orchestrator runs the deployment state machine.
type Orchestrator struct {
	capabilities Capabilities
	naming       NamingStrategy
	listener     Listener
	state        Stage
}

func NewOrchestrator(capabilities Capabilities, naming NamingStrategy, listener Listener) *Orchestrator {
	if listener == nil {
		listener = noopListener{}
	}

	return &Orchestrator{
		capabilities: capabilities,
		naming:       naming,
		listener:     listener,
	}
}

// State returns the last stage entered, StageDone or StageFailed once Deploy returns.
func (o *Orchestrator) State() Stage {
	return o.state
}

// Deploy runs every stage in order. The first failure aborts the run and is returned as a *StageError. Per-deployment
// resources created before the failure are removed unless the request asks to keep them.
func (o *Orchestrator) Deploy(ctx context.Context, request Request) (*Result, error) {
	cfg := request.Config
	undo := &compensations{}
	result := &Result{}

	ctx, span := tracing.Start(ctx, "deploy",
		tracing.ModelNameKey.String(cfg.Name),
		tracing.ContainerModeKey.String(request.Mode.String()),
		tracing.EndpointTypeKey.String(request.EndpointType.String()),
	)

	err := o.run(ctx, request, result, undo)
	if err != nil {
		o.state = StageFailed
		o.compensate(ctx, request, undo)
		tracing.End(span, err)
		return nil, err
	}

	o.state = StageDone
	span.SetAttributes(tracing.EndpointKey.String(result.EndpointName))
	tracing.End(span, nil)
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, request Request, result *Result, undo *compensations) error {
	cfg := request.Config

	var names ResourceNames
	err := o.stage(ctx, StageValidating, func(ctx context.Context) error {
		warnings, err := Validate(request)
		if err != nil {
			return err
		}

		for _, warning := range warnings {
			o.listener.Warning(warning)
		}
		result.Warnings = warnings

		names = ResolveResourceNames(cfg.Overrides, request.Defaults)
		token, err := o.naming.Token(cfg)
		if err != nil {
			return err
		}

		result.Identity = NewIdentity(cfg.Name, token)
		result.Bucket = names.Bucket
		return nil
	})
	if err != nil {
		return err
	}

	imageName := container.ImageName(cfg.Name)
	err = o.stage(ctx, StageBuildingContainer, func(ctx context.Context) error {
		var err error
		switch request.Mode {
		case modelconfig.ContainerModeProvide:
			_, err = o.capabilities.Container.BuildProvided(
				ctx, cfg.ResolvePath(cfg.Container.Provide.BuildContextDir), imageName)
		case modelconfig.ContainerModeGenerate:
			_, err = o.capabilities.Container.BuildGenerated(
				ctx, cfg.Container.Generate, cfg.ResolvePath(cfg.Container.Generate.CodeDir), imageName)
		default:
			err = fmt.Errorf("unsupported container mode '%s'", request.Mode)
		}

		return err
	})
	if err != nil {
		return err
	}

	err = o.stage(ctx, StagePushingImage, func(ctx context.Context) error {
		pushed, err := o.capabilities.Container.Push(ctx, imageName)
		if err != nil {
			return err
		}

		result.Image = pushed.ImageRef
		result.Digest = pushed.Digest
		return nil
	})
	if err != nil {
		return err
	}

	err = o.stage(ctx, StageProvisioningResources, func(ctx context.Context) error {
		if identity.IsRoleArn(names.Role) {
			log.Printf("using role %s as given", names.Role)
			result.RoleArn = names.Role
		} else {
			roleArn, err := o.capabilities.Identity.EnsureRole(ctx, names.Role)
			if err != nil {
				return err
			}
			result.RoleArn = roleArn
		}

		if err := o.capabilities.Artifacts.EnsureBucket(ctx, names.Bucket); err != nil {
			return err
		}

		artefact := cfg.ArtefactPath()
		if artefact == "" {
			return nil
		}

		key := storage.ArtifactKey(cfg.Name, result.Token, artefact)
		exists, err := o.capabilities.Artifacts.ArtifactExists(ctx, names.Bucket, key)
		if err != nil {
			return err
		}
		if exists {
			// the object belongs to an earlier deployment with the same token and must outlive this run
			return fmt.Errorf("%w: %s already exists, deploy again later or with --naming random",
				ErrNameCollision, storage.ObjectURI(names.Bucket, key))
		}

		artifactUri, err := o.capabilities.Artifacts.UploadArtifact(ctx, cfg.ResolvePath(artefact), names.Bucket, key)
		if err != nil {
			return err
		}

		result.Artifact = artifactUri
		undo.push(artifactUri, func(ctx context.Context) error {
			return o.capabilities.Artifacts.DeleteArtifact(ctx, names.Bucket, key)
		})
		return nil
	})
	if err != nil {
		return err
	}

	err = o.stage(ctx, StageRegisteringModel, func(ctx context.Context) error {
		modelName, err := o.capabilities.Models.RegisterModel(
			ctx, result.ModelVersionName, result.RoleArn, result.Image, result.Artifact)
		if err != nil {
			return err
		}

		undo.push("model "+modelName, func(ctx context.Context) error {
			return o.capabilities.Models.DeleteModel(ctx, modelName)
		})
		return nil
	})
	if err != nil {
		return err
	}

	return o.stage(ctx, StageProvisioningEndpoint, func(ctx context.Context) error {
		err := o.capabilities.Endpoints.CreateEndpointConfig(ctx, serving.EndpointConfigRequest{
			ConfigName:   result.EndpointConfigName,
			ModelName:    result.ModelVersionName,
			RoleArn:      result.RoleArn,
			EndpointType: request.EndpointType,
			Compute:      cfg.Compute,
		})
		if err != nil {
			return err
		}

		undo.push("endpoint configuration "+result.EndpointConfigName, func(ctx context.Context) error {
			return o.capabilities.Endpoints.DeleteEndpointConfig(ctx, result.EndpointConfigName)
		})

		endpointArn, err := o.capabilities.Endpoints.CreateEndpoint(ctx, result.EndpointName, result.EndpointConfigName)
		if err != nil {
			return err
		}

		result.EndpointArn = endpointArn
		return nil
	})
}

// stage runs one state of the pipeline, wrapping any failure in a StageError.
func (o *Orchestrator) stage(ctx context.Context, stage Stage, run func(ctx context.Context) error) error {
	o.state = stage
	o.listener.StageStarted(stage)
	log.Printf("deploy: entering %s", stage)

	ctx, span := tracing.Start(ctx, "deploy."+string(stage), tracing.StageKey.String(string(stage)))
	err := run(ctx)
	tracing.End(span, err)

	if err != nil {
		err = &StageError{Stage: stage, Err: err}
	}

	o.listener.StageCompleted(stage, err)
	return err
}

func (o *Orchestrator) compensate(ctx context.Context, request Request, undo *compensations) {
	if request.KeepOnFailure {
		for _, description := range undo.pending() {
			o.listener.Warning(fmt.Sprintf("kept %s", description))
		}
		return
	}

	// the run may have failed because ctx was cancelled
	ctx = context.WithoutCancel(ctx)
	undone, err := undo.run(ctx)
	for _, description := range undone {
		log.Printf("removed %s", description)
	}
	for _, undoErr := range multierr.Errors(err) {
		o.listener.Warning(fmt.Sprintf("%s, remove it manually", undoErr.Error()))
	}
}

// IsValidationError reports whether err stopped the deployment before any remote call.
func IsValidationError(err error) bool {
	var validationErr *modelconfig.ValidationError
	return errors.As(err, &validationErr)
}
