// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package docker drives the local docker CLI for building and publishing serving images.
package docker

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/blang/semver/v4"
	"github.com/sageturner/sageturner/pkg/exec"
	"github.com/sageturner/sageturner/pkg/tools"
)

// DefaultPlatform is the only platform SageMaker hosting runs.
const DefaultPlatform string = "linux/amd64"

// minimumVersion is the first docker release with --iidfile and --password-stdin.
var minimumVersion = semver.Version{Major: 17, Minor: 9}

// BuildOptions describes a single image build.
type BuildOptions struct {
	// Dockerfile is the path of the Dockerfile, relative to the working directory of the build.
	Dockerfile string
	// Context is the build context directory.
	Context string
	// Platform defaults to DefaultPlatform.
	Platform string
	// Tag is applied to the image when not empty.
	Tag string
	// BuildArgs are KEY=VALUE pairs passed as --build-arg.
	BuildArgs []string
	// Progress receives the build log when not nil.
	Progress io.Writer
}

type Docker interface {
	tools.ExternalTool
	Login(ctx context.Context, loginServer string, username string, password string) error
	// Build runs docker build from cwd and returns the id of the built image.
	Build(ctx context.Context, cwd string, options BuildOptions) (string, error)
	Tag(ctx context.Context, cwd string, source string, target string) error
	Push(ctx context.Context, cwd string, target string, progress io.Writer) error
}

func NewDocker(commandRunner exec.CommandRunner) Docker {
	return &dockerCli{runner: commandRunner}
}

type dockerCli struct {
	runner exec.CommandRunner
}

func (d *dockerCli) Login(ctx context.Context, loginServer string, username string, password string) error {
	args := exec.NewRunArgs("docker", "login", "--username", username, "--password-stdin", loginServer).
		WithStdIn(strings.NewReader(password)).
		WithSensitiveData(password)

	if _, err := d.runner.Run(ctx, args); err != nil {
		return fmt.Errorf("logging in to %s: %w", loginServer, err)
	}

	return nil
}

func (d *dockerCli) Build(ctx context.Context, cwd string, options BuildOptions) (string, error) {
	platform := strings.TrimSpace(options.Platform)
	if platform == "" {
		platform = DefaultPlatform
	}

	scratch, err := os.MkdirTemp("", "sageturner-build")
	if err != nil {
		return "", fmt.Errorf("building image: %w", err)
	}
	defer os.RemoveAll(scratch)

	idFile := filepath.Join(scratch, "image-id")

	buildArgs := []string{"build", "-f", options.Dockerfile, "--platform", platform}
	if options.Tag != "" {
		buildArgs = append(buildArgs, "-t", options.Tag)
	}
	for _, arg := range options.BuildArgs {
		buildArgs = append(buildArgs, "--build-arg", arg)
	}
	buildArgs = append(buildArgs, options.Context, "--iidfile", idFile)

	runArgs := withProgress(exec.NewRunArgs("docker", buildArgs...).WithCwd(cwd), options.Progress)
	if _, err := d.runner.Run(ctx, runArgs); err != nil {
		return "", fmt.Errorf("building image: %w", err)
	}

	id, err := os.ReadFile(idFile)
	if err != nil {
		return "", fmt.Errorf("reading built image id: %w", err)
	}

	return strings.TrimSpace(string(id)), nil
}

func (d *dockerCli) Tag(ctx context.Context, cwd string, source string, target string) error {
	if _, err := d.runner.Run(ctx, exec.NewRunArgs("docker", "tag", source, target).WithCwd(cwd)); err != nil {
		return fmt.Errorf("tagging image: %w", err)
	}

	return nil
}

func (d *dockerCli) Push(ctx context.Context, cwd string, target string, progress io.Writer) error {
	runArgs := withProgress(exec.NewRunArgs("docker", "push", target).WithCwd(cwd), progress)
	if _, err := d.runner.Run(ctx, runArgs); err != nil {
		return fmt.Errorf("pushing image: %w", err)
	}

	return nil
}

// withProgress routes both output streams to w. Docker writes build logs to stderr on some platforms.
func withProgress(args exec.RunArgs, w io.Writer) exec.RunArgs {
	if w == nil {
		return args
	}

	return args.WithStdOut(w).WithStdErr(w)
}

var versionLine = regexp.MustCompile(`^Docker version ([^,]+)`)

// isSupportedDockerVersion reports whether the output of docker --version names a release of at least
// minimumVersion. Release strings such as 17.09.0-ce are not valid semver, so only the numeric
// components are compared.
func isSupportedDockerVersion(cliOutput string) (bool, error) {
	match := versionLine.FindStringSubmatch(strings.TrimSpace(cliOutput))
	if match == nil {
		return false, fmt.Errorf("unrecognized docker version output: %q", cliOutput)
	}

	version, err := tools.ExtractVersion(match[1])
	if err != nil {
		return false, err
	}
	log.Printf("docker version %s parsed as %s", match[1], version)

	return version.GE(minimumVersion), nil
}

func (d *dockerCli) CheckInstalled(ctx context.Context) error {
	if err := tools.ToolInPath("docker"); err != nil {
		return err
	}

	out, err := tools.ExecuteCommand(ctx, d.runner, "docker", "--version")
	if err != nil {
		return fmt.Errorf("checking %s version: %w", d.Name(), err)
	}

	supported, err := isSupportedDockerVersion(out)
	if err != nil {
		return err
	}
	if !supported {
		return &tools.ErrSemver{
			ToolName: d.Name(),
			VersionInfo: tools.VersionInfo{
				MinimumVersion: minimumVersion,
				UpdateCommand:  "See https://docs.docker.com/engine/release-notes/ to upgrade",
			},
		}
	}

	return nil
}

func (d *dockerCli) InstallUrl() string {
	return "https://docs.docker.com/get-docker/"
}

func (d *dockerCli) Name() string {
	return "Docker"
}
