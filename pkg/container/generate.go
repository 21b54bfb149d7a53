// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package container

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/moby/patternmatcher"
	"github.com/moby/patternmatcher/ignorefile"
	"github.com/otiai10/copy"
	"github.com/sageturner/sageturner/pkg/modelconfig"
)

//go:embed templates
var templates embed.FS

const (
	cpuTemplate   = "templates/Dockerfile.cpu"
	gpuTemplate   = "templates/Dockerfile.gpu"
	serveTemplate = "templates/serve.py"

	serveFileName = "serve.py"
)

// BuildGenerated synthesizes a build context from codeDir, the generated server and a Dockerfile template, then
// builds it as imageName:latest. The synthesized context is removed when the build finishes.
func (p *Provider) BuildGenerated(
	ctx context.Context, spec *modelconfig.GenerateSpec, codeDir string, imageName string,
) (string, error) {
	buildContextDir, err := os.MkdirTemp("", "sageturner-build-context")
	if err != nil {
		return "", fmt.Errorf("creating build context: %w", err)
	}
	defer func() {
		_ = os.RemoveAll(buildContextDir)
	}()

	if err := writeBuildContext(spec, codeDir, buildContextDir); err != nil {
		return "", err
	}

	return p.build(ctx, buildContextDir, BuildArgs(spec), imageName)
}

// BuildArgs returns the --build-arg values for a generated build. Package order is preserved.
func BuildArgs(spec *modelconfig.GenerateSpec) []string {
	return []string{
		fmt.Sprintf("PYTHON_VERSION=%s", spec.EffectivePythonVersion()),
		fmt.Sprintf("EXTRA_PYTHON_PACKAGES=%s", strings.Join(spec.PythonPackages, " ")),
		fmt.Sprintf("EXTRA_SYSTEM_PACKAGES=%s", strings.Join(spec.SystemPackages, " ")),
		fmt.Sprintf("ENTRYPOINT_MODULE=%s", modelconfig.EntryPointModule),
	}
}

func writeBuildContext(spec *modelconfig.GenerateSpec, codeDir string, buildContextDir string) error {
	ignores, err := readIgnoreFile(codeDir)
	if err != nil {
		return err
	}

	err = copy.Copy(codeDir, buildContextDir, copy.Options{
		Skip: func(srcInfo os.FileInfo, src, dest string) (bool, error) {
			if srcInfo.IsDir() && srcInfo.Name() == ".git" {
				return true, nil
			}

			rel, err := filepath.Rel(codeDir, src)
			if err != nil || rel == "." {
				return false, err
			}

			// already applied while copying
			if rel == ".dockerignore" {
				return true, nil
			}

			return patternmatcher.MatchesOrParentMatches(filepath.ToSlash(rel), ignores)
		},
	})
	if err != nil {
		return fmt.Errorf("copying %s into build context: %w", codeDir, err)
	}

	dockerfileTemplate := cpuTemplate
	if spec.CudaEnabled() {
		dockerfileTemplate = gpuTemplate
	}

	generated := map[string]string{
		dockerfileName: dockerfileTemplate,
		serveFileName:  serveTemplate,
	}

	for target, source := range generated {
		contents, err := templates.ReadFile(source)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", source, err)
		}

		targetPath := filepath.Join(buildContextDir, target)
		if _, err := os.Stat(targetPath); err == nil {
			log.Printf("replacing %s from %s with the generated file", target, codeDir)
		}

		if err := os.WriteFile(targetPath, contents, 0600); err != nil {
			return fmt.Errorf("writing %s: %w", target, err)
		}
	}

	return nil
}

func readIgnoreFile(codeDir string) ([]string, error) {
	f, err := os.Open(filepath.Join(codeDir, ".dockerignore"))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	return ignorefile.ReadAll(f)
}
