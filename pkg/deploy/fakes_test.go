// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deploy

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sageturner/sageturner/pkg/container"
	"github.com/sageturner/sageturner/pkg/modelconfig"
	"github.com/sageturner/sageturner/pkg/serving"
	"github.com/sageturner/sageturner/pkg/storage"
)

const (
	fakeRoleArn  = "arn:aws:iam::123456789012:role/sageturner-role"
	fakeImageRef = "123456789012.dkr.ecr.eu-west-1.amazonaws.com/demo:latest"
)

// fakeCloud is an in-memory stand-in for every capability. It records calls in order and fails the operation named
// in failOn.
type fakeCloud struct {
	mu     sync.Mutex
	calls  []string
	failOn map[string]error

	roles           map[string]string
	buckets         map[string]bool
	objects         map[string]bool
	models          map[string]string
	endpointConfigs map[string]serving.EndpointConfigRequest
	endpoints       map[string]string
}

func newFakeCloud() *fakeCloud {
	return &fakeCloud{
		failOn:          map[string]error{},
		roles:           map[string]string{},
		buckets:         map[string]bool{},
		objects:         map[string]bool{},
		models:          map[string]string{},
		endpointConfigs: map[string]serving.EndpointConfigRequest{},
		endpoints:       map[string]string{},
	}
}

func (f *fakeCloud) capabilities() Capabilities {
	return Capabilities{Container: f, Identity: f, Artifacts: f, Models: f, Endpoints: f}
}

func (f *fakeCloud) record(call string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, strings.TrimSpace(call+" "+strings.Join(args, " ")))
	return f.failOn[call]
}

func (f *fakeCloud) callNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	names := make([]string, 0, len(f.calls))
	for _, call := range f.calls {
		names = append(names, strings.Fields(call)[0])
	}
	return names
}

func (f *fakeCloud) BuildProvided(ctx context.Context, buildContextDir string, imageName string) (string, error) {
	return "sha256:built", f.record("BuildProvided", buildContextDir, imageName)
}

func (f *fakeCloud) BuildGenerated(
	ctx context.Context, spec *modelconfig.GenerateSpec, codeDir string, imageName string,
) (string, error) {
	return "sha256:built", f.record("BuildGenerated", codeDir, imageName)
}

func (f *fakeCloud) Push(ctx context.Context, imageName string) (*container.PushedImage, error) {
	if err := f.record("Push", imageName); err != nil {
		return nil, err
	}

	return &container.PushedImage{
		RepositoryUri: strings.TrimSuffix(fakeImageRef, ":latest"),
		ImageRef:      fakeImageRef,
		Digest:        "sha256:pushed",
	}, nil
}

func (f *fakeCloud) EnsureRole(ctx context.Context, roleName string) (string, error) {
	if err := f.record("EnsureRole", roleName); err != nil {
		return "", err
	}

	if arn, has := f.roles[roleName]; has {
		return arn, nil
	}

	arn := "arn:aws:iam::123456789012:role/" + roleName
	f.roles[roleName] = arn
	return arn, nil
}

func (f *fakeCloud) EnsureBucket(ctx context.Context, bucketName string) error {
	if err := f.record("EnsureBucket", bucketName); err != nil {
		return err
	}

	f.buckets[bucketName] = true
	return nil
}

func (f *fakeCloud) ArtifactExists(ctx context.Context, bucketName string, key string) (bool, error) {
	if err := f.record("ArtifactExists", bucketName, key); err != nil {
		return false, err
	}

	return f.objects[storage.ObjectURI(bucketName, key)], nil
}

func (f *fakeCloud) UploadArtifact(ctx context.Context, localPath string, bucketName string, key string) (string, error) {
	if err := f.record("UploadArtifact", localPath, bucketName, key); err != nil {
		return "", err
	}

	if err := storage.CheckArchive(localPath); err != nil {
		return "", err
	}

	uri := storage.ObjectURI(bucketName, key)
	f.objects[uri] = true
	return uri, nil
}

func (f *fakeCloud) DeleteArtifact(ctx context.Context, bucketName string, key string) error {
	if err := f.record("DeleteArtifact", bucketName, key); err != nil {
		return err
	}

	delete(f.objects, storage.ObjectURI(bucketName, key))
	return nil
}

func (f *fakeCloud) RegisterModel(
	ctx context.Context, versionName string, roleArn string, imageRef string, artifactPath string,
) (string, error) {
	if err := f.record("RegisterModel", versionName, roleArn, imageRef, artifactPath); err != nil {
		return "", err
	}

	f.models[versionName] = artifactPath
	return versionName, nil
}

func (f *fakeCloud) DeleteModel(ctx context.Context, modelName string) error {
	if err := f.record("DeleteModel", modelName); err != nil {
		return err
	}

	delete(f.models, modelName)
	return nil
}

func (f *fakeCloud) CreateEndpointConfig(ctx context.Context, request serving.EndpointConfigRequest) error {
	if err := f.record("CreateEndpointConfig", request.ConfigName); err != nil {
		return err
	}

	f.endpointConfigs[request.ConfigName] = request
	return nil
}

func (f *fakeCloud) DeleteEndpointConfig(ctx context.Context, configName string) error {
	if err := f.record("DeleteEndpointConfig", configName); err != nil {
		return err
	}

	delete(f.endpointConfigs, configName)
	return nil
}

func (f *fakeCloud) CreateEndpoint(ctx context.Context, endpointName string, configName string) (string, error) {
	if err := f.record("CreateEndpoint", endpointName, configName); err != nil {
		return "", err
	}

	arn := fmt.Sprintf("arn:aws:sagemaker:eu-west-1:123456789012:endpoint/%s", endpointName)
	f.endpoints[endpointName] = configName
	return arn, nil
}

type recordingListener struct {
	started   []Stage
	completed map[Stage]error
	warnings  []string
}

func newRecordingListener() *recordingListener {
	return &recordingListener{completed: map[Stage]error{}}
}

func (l *recordingListener) StageStarted(stage Stage) {
	l.started = append(l.started, stage)
}

func (l *recordingListener) StageCompleted(stage Stage, err error) {
	l.completed[stage] = err
}

func (l *recordingListener) Warning(message string) {
	l.warnings = append(l.warnings, message)
}
