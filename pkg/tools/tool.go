// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package tools checks for the command line programs sageturner shells out to.
package tools

import (
	"context"
	"errors"
	"fmt"
	osexec "os/exec"
	"regexp"
	"strconv"

	"github.com/blang/semver/v4"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/exec"
)

// ExternalTool is a program that must be present on the PATH.
type ExternalTool interface {
	CheckInstalled(ctx context.Context) error
	InstallUrl() string
	Name() string
}

var ErrToolNotInstalled = errors.New("tool is not installed")

// VersionInfo is the oldest supported release of a tool and how to move past it.
type VersionInfo struct {
	MinimumVersion semver.Version
	UpdateCommand  string
}

// ErrSemver reports an installed tool that is older than VersionInfo.MinimumVersion.
type ErrSemver struct {
	ToolName    string
	VersionInfo VersionInfo
}

func (err *ErrSemver) Error() string {
	return fmt.Sprintf("%s %s or later is required. %s",
		err.ToolName, err.VersionInfo.MinimumVersion, err.VersionInfo.UpdateCommand)
}

// ToolInPath wraps ErrToolNotInstalled when name cannot be found on the PATH.
func ToolInPath(name string) error {
	_, err := osexec.LookPath(name)
	if errors.Is(err, osexec.ErrNotFound) {
		return fmt.Errorf("%s: %w", name, ErrToolNotInstalled)
	} else if err != nil {
		return fmt.Errorf("looking up %s: %w", name, err)
	}

	return nil
}

// ExecuteCommand runs cmd and returns its standard output.
func ExecuteCommand(ctx context.Context, commandRunner exec.CommandRunner, cmd string, args ...string) (string, error) {
	result, err := commandRunner.Run(ctx, exec.NewRunArgs(cmd, args...))
	return result.Stdout, err
}

// EnsureInstalled checks each distinct tool in turn. The first failure is returned with a suggestion pointing at
// the tool's install page.
func EnsureInstalled(ctx context.Context, tools ...ExternalTool) error {
	for _, tool := range Unique(tools) {
		err := tool.CheckInstalled(ctx)
		if err == nil {
			continue
		}

		return &internal.ErrorWithSuggestion{
			Err:        fmt.Errorf("checking %s: %w", tool.Name(), err),
			Suggestion: fmt.Sprintf("Install or upgrade %s: %s", tool.Name(), tool.InstallUrl()),
		}
	}

	return nil
}

// Unique drops repeated tools, keeping the first of each.
func Unique(tools []ExternalTool) []ExternalTool {
	unique := make([]ExternalTool, 0, len(tools))
	seen := make(map[ExternalTool]bool, len(tools))

	for _, tool := range tools {
		if !seen[tool] {
			seen[tool] = true
			unique = append(unique, tool)
		}
	}

	return unique
}

var (
	fullVersion  = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)`)
	shortVersion = regexp.MustCompile(`(\d+)(?:\.(\d+))?`)
)

// ExtractVersion finds the first version number in the output of a --version flag. Missing minor and patch
// components count as zero, and leading zeros such as the 09 in 17.09.0 are accepted.
func ExtractVersion(cliOutput string) (semver.Version, error) {
	if parts := fullVersion.FindStringSubmatch(cliOutput); parts != nil {
		return semver.Version{Major: number(parts[1]), Minor: number(parts[2]), Patch: number(parts[3])}, nil
	}

	if parts := shortVersion.FindStringSubmatch(cliOutput); parts != nil {
		return semver.Version{Major: number(parts[1]), Minor: number(parts[2])}, nil
	}

	return semver.Version{}, fmt.Errorf("no version number in %q", cliOutput)
}

// number parses a run of digits matched by the version expressions. An empty optional group is zero.
func number(digits string) uint64 {
	value, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0
	}

	return value
}
