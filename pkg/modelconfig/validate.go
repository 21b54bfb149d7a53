// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package modelconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// MaxNameLength keeps derived resource names within the 63 character platform limit once a
// deployment suffix (at most 16 characters) and the "-config" suffix are appended.
const MaxNameLength = 40

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9](-*[a-zA-Z0-9])*$`)

// Serverless limits enforced by the serving platform.
const (
	minServerlessMemory    = 1024
	maxServerlessMemory    = 6144
	serverlessMemoryStep   = 1024
	maxServerlessInstances = 200
)

// ValidationError reports a manifest that cannot be deployed with the requested mode and endpoint type.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field string, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Validate checks cfg against the requested endpoint type and container mode. The first violation
// is returned. Relative paths resolve against baseDir. The returned warnings describe defaulted
// settings and are not fatal. Validate never calls a remote service.
func Validate(cfg *Config, endpointType EndpointType, mode ContainerMode, baseDir string) ([]string, error) {
	var warnings []string

	if err := validateIdentity(cfg); err != nil {
		return nil, err
	}

	switch mode {
	case ContainerModeProvide:
		if err := validateProvide(cfg, baseDir); err != nil {
			return nil, err
		}
	case ContainerModeGenerate:
		generateWarnings, err := validateGenerate(cfg, baseDir)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, generateWarnings...)
	default:
		return nil, invalid("mode", "unsupported container mode '%s'", mode)
	}

	switch endpointType {
	case EndpointTypeServerless:
		if err := validateServerless(cfg.Compute.Serverless); err != nil {
			return nil, err
		}
	case EndpointTypeServer:
		serverWarnings, err := validateServer(cfg.Compute.Server)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, serverWarnings...)
	default:
		return nil, invalid("endpoint", "unsupported endpoint type '%s'", endpointType)
	}

	if mode == ContainerModeGenerate && endpointType == EndpointTypeServerless && cfg.Container.Generate.CudaEnabled() {
		return nil, invalid(
			"container.generate.install_cuda",
			"serverless endpoints cannot use GPUs; deploy to a server endpoint or provide your own container",
		)
	}

	return warnings, nil
}

func validateIdentity(cfg *Config) error {
	if strings.TrimSpace(cfg.Name) == "" {
		return invalid("name", "must not be empty")
	}

	if !namePattern.MatchString(cfg.Name) {
		return invalid("name", "'%s' may only contain alphanumeric characters and hyphens, and must start and end "+
			"with an alphanumeric character", cfg.Name)
	}

	if len(cfg.Name) > MaxNameLength {
		return invalid("name", "'%s' is longer than %d characters", cfg.Name, MaxNameLength)
	}

	if cfg.Artefact != nil && strings.TrimSpace(*cfg.Artefact) == "" {
		return invalid("artefact", "must not be empty when set")
	}

	return nil
}

func validateProvide(cfg *Config, baseDir string) error {
	if hasGenerateFields(cfg.Container.Generate) {
		return invalid("container", "container.generate is mutually exclusive with provide mode; when providing a "+
			"build context you are responsible for the server code, packages and CUDA")
	}

	provide := cfg.Container.Provide
	if provide == nil || strings.TrimSpace(provide.BuildContextDir) == "" {
		return invalid("container.provide.build_context_dir", "must be set in provide mode (mutually exclusive with "+
			"container.generate)")
	}

	return requireDir("container.provide.build_context_dir", resolve(baseDir, provide.BuildContextDir))
}

func validateGenerate(cfg *Config, baseDir string) ([]string, error) {
	if cfg.Container.Provide != nil {
		return nil, invalid("container", "container.provide is mutually exclusive with generate mode")
	}

	generate := cfg.Container.Generate
	if generate == nil || strings.TrimSpace(generate.CodeDir) == "" {
		return nil, invalid("container.generate.code_dir", "must be set in generate mode (mutually exclusive with "+
			"container.provide)")
	}

	codeDir := resolve(baseDir, generate.CodeDir)
	if err := requireDir("container.generate.code_dir", codeDir); err != nil {
		return nil, err
	}

	entryPoint := filepath.Join(codeDir, EntryPointFile)
	info, err := os.Stat(entryPoint)
	if err != nil || info.IsDir() {
		return nil, invalid("container.generate.code_dir", "'%s' must contain %s defining load() and predict()",
			generate.CodeDir, EntryPointFile)
	}

	var warnings []string
	if generate.InstallCuda == nil {
		warnings = append(warnings, "install_cuda is not set, the generated container will not include CUDA")
	}
	if generate.PythonPackages == nil {
		warnings = append(warnings,
			"python_packages is not set, the generated container will only include the serving dependencies")
	}
	if generate.SystemPackages == nil {
		warnings = append(warnings,
			"system_packages is not set, the generated container will not install additional system packages")
	}
	if generate.PythonVersion == "" {
		warnings = append(warnings,
			fmt.Sprintf("python_version is not set, defaulting to %s", DefaultPythonVersion))
	}

	return warnings, nil
}

func validateServerless(serverless *ServerlessSpec) error {
	if serverless == nil {
		return invalid("compute.serverless", "must be set for a serverless endpoint")
	}

	if serverless.Memory < minServerlessMemory || serverless.Memory > maxServerlessMemory ||
		serverless.Memory%serverlessMemoryStep != 0 {
		return invalid("compute.serverless.memory", "%d must be between %d and %d in steps of %d",
			serverless.Memory, minServerlessMemory, maxServerlessMemory, serverlessMemoryStep)
	}

	if serverless.MaxConcurrency < 1 || serverless.MaxConcurrency > maxServerlessInstances {
		return invalid("compute.serverless.max_concurrency", "%d must be between 1 and %d",
			serverless.MaxConcurrency, maxServerlessInstances)
	}

	if serverless.ProvisionedConcurrency < 0 || serverless.ProvisionedConcurrency > serverless.MaxConcurrency {
		return invalid("compute.serverless.provisioned_concurrency", "%d must be between 0 and max_concurrency (%d)",
			serverless.ProvisionedConcurrency, serverless.MaxConcurrency)
	}

	return nil
}

func validateServer(server *ServerSpec) ([]string, error) {
	if server == nil {
		return nil, invalid("compute.server", "must be set for a server endpoint")
	}

	if strings.TrimSpace(server.InstanceType) == "" {
		return nil, invalid("compute.server.instance_type", "must not be empty")
	}

	if server.InitialInstanceCount < 0 {
		return nil, invalid("compute.server.initial_instance_count", "%d must not be negative",
			server.InitialInstanceCount)
	}

	if server.InitialInstanceCount == 0 {
		return []string{
			fmt.Sprintf("initial_instance_count is not set, defaulting to %d", DefaultInitialInstanceCount),
		}, nil
	}

	return nil, nil
}

func hasGenerateFields(generate *GenerateSpec) bool {
	if generate == nil {
		return false
	}

	return generate.CodeDir != "" ||
		generate.PythonPackages != nil ||
		generate.SystemPackages != nil ||
		generate.InstallCuda != nil ||
		generate.PythonVersion != ""
}

func requireDir(field string, path string) error {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return invalid(field, "directory '%s' does not exist", path)
	} else if err != nil {
		return invalid(field, "reading '%s': %v", path, err)
	}

	if !info.IsDir() {
		return invalid(field, "'%s' is not a directory", path)
	}

	return nil
}

func resolve(baseDir string, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(baseDir, path)
}
