// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package modelconfig contains the deployment manifest model and its validation rules.
package modelconfig

const (
	// DefaultPythonVersion is used for generated containers when python_version is not set.
	DefaultPythonVersion = "3.12"

	// EntryPointModule is the python module the generated server imports. It must expose load() and predict().
	EntryPointModule = "sageturner"

	// EntryPointFile is the file that must exist at the root of a generate-mode code directory.
	EntryPointFile = EntryPointModule + ".py"

	// DefaultInitialInstanceCount is used for server endpoints when initial_instance_count is not set.
	DefaultInitialInstanceCount = 1
)

// Config is the deployment manifest (sageturner.yaml).
type Config struct {
	Name      string        `yaml:"name"`
	Artefact  *string       `yaml:"artefact,omitempty"`
	Container ContainerSpec `yaml:"container"`
	Compute   ComputeSpec   `yaml:"compute"`
	Overrides *Overrides    `yaml:"sagemaker_overrides,omitempty"`

	// BaseDir is the directory containing the manifest. Relative paths resolve against it.
	BaseDir string `yaml:"-"`
}

type ContainerSpec struct {
	Generate *GenerateSpec `yaml:"generate,omitempty"`
	Provide  *ProvideSpec  `yaml:"provide,omitempty"`
}

// GenerateSpec describes a container synthesized from a code directory.
type GenerateSpec struct {
	CodeDir        string   `yaml:"code_dir"`
	PythonPackages []string `yaml:"python_packages,omitempty"`
	SystemPackages []string `yaml:"system_packages,omitempty"`
	InstallCuda    *bool    `yaml:"install_cuda,omitempty"`
	PythonVersion  string   `yaml:"python_version,omitempty"`
}

// CudaEnabled reports whether the accelerator-enabled build definition was requested.
func (g *GenerateSpec) CudaEnabled() bool {
	return g.InstallCuda != nil && *g.InstallCuda
}

// EffectivePythonVersion returns the configured python version or the default.
func (g *GenerateSpec) EffectivePythonVersion() string {
	if g.PythonVersion == "" {
		return DefaultPythonVersion
	}

	return g.PythonVersion
}

// ProvideSpec describes a caller-owned build context containing a Dockerfile.
type ProvideSpec struct {
	BuildContextDir string `yaml:"build_context_dir"`
}

type ComputeSpec struct {
	Serverless *ServerlessSpec `yaml:"serverless,omitempty"`
	Server     *ServerSpec     `yaml:"server,omitempty"`
}

type ServerlessSpec struct {
	Memory                 int32 `yaml:"memory"`
	MaxConcurrency         int32 `yaml:"max_concurrency"`
	ProvisionedConcurrency int32 `yaml:"provisioned_concurrency"`
}

type ServerSpec struct {
	InstanceType         string `yaml:"instance_type"`
	InitialInstanceCount int32  `yaml:"initial_instance_count,omitempty"`
}

// EffectiveInitialInstanceCount returns the configured instance count or the default.
func (s *ServerSpec) EffectiveInitialInstanceCount() int32 {
	if s.InitialInstanceCount == 0 {
		return DefaultInitialInstanceCount
	}

	return s.InitialInstanceCount
}

// Overrides replaces the well-known bucket and role names. Role may be a role name or a role ARN.
type Overrides struct {
	Bucket string `yaml:"bucket,omitempty"`
	Role   string `yaml:"role,omitempty"`
}

// ArtefactPath returns the artefact path, or "" when no artefact is configured.
func (c *Config) ArtefactPath() string {
	if c.Artefact == nil {
		return ""
	}

	return *c.Artefact
}

// ResolvePath resolves a manifest-relative path against the manifest directory.
func (c *Config) ResolvePath(path string) string {
	if path == "" {
		return path
	}

	return resolve(c.BaseDir, path)
}
