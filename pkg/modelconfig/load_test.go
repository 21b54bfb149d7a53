// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package modelconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/stretchr/testify/require"
)

func Test_Load(t *testing.T) {
	dir := t.TempDir()
	manifest := heredoc.Doc(`
		name: ${MODEL_NAME}
		artefact: ./model.tar.gz
		container:
		  generate:
		    code_dir: ./src
		    python_packages: [torch, transformers]
		    system_packages: [libgl1]
		    install_cuda: true
		compute:
		  server:
		    instance_type: ${INSTANCE_TYPE}
		    initial_instance_count: 2
		sagemaker_overrides:
		  bucket: team-bucket
	`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sageturner.yaml"), []byte(manifest), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, DotEnvFileName), []byte("MODEL_NAME=demo\n"), 0600))
	t.Setenv("INSTANCE_TYPE", "ml.g5.xlarge")
	t.Setenv("MODEL_NAME", "ignored-because-dotenv-wins")

	cfg, err := Load(filepath.Join(dir, "sageturner.yaml"))
	require.NoError(t, err)

	require.Equal(t, "demo", cfg.Name)
	require.Equal(t, "./model.tar.gz", cfg.ArtefactPath())
	require.Equal(t, filepath.Join(dir, "model.tar.gz"), cfg.ResolvePath(cfg.ArtefactPath()))
	require.Equal(t, dir, cfg.BaseDir)

	require.NotNil(t, cfg.Container.Generate)
	require.Nil(t, cfg.Container.Provide)
	require.Equal(t, []string{"torch", "transformers"}, cfg.Container.Generate.PythonPackages)
	require.Equal(t, []string{"libgl1"}, cfg.Container.Generate.SystemPackages)
	require.True(t, cfg.Container.Generate.CudaEnabled())
	require.Equal(t, DefaultPythonVersion, cfg.Container.Generate.EffectivePythonVersion())

	require.Nil(t, cfg.Compute.Serverless)
	require.Equal(t, "ml.g5.xlarge", cfg.Compute.Server.InstanceType)
	require.Equal(t, int32(2), cfg.Compute.Server.EffectiveInitialInstanceCount())

	require.Equal(t, "team-bucket", cfg.Overrides.Bucket)
	require.Empty(t, cfg.Overrides.Role)
}

func Test_Load_NoDotEnv(t *testing.T) {
	dir := t.TempDir()
	manifest := heredoc.Doc(`
		name: demo
		container:
		  provide:
		    build_context_dir: ctx
		compute:
		  serverless: {memory: 1024, max_concurrency: 5, provisioned_concurrency: 0}
	`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sageturner.yaml"), []byte(manifest), 0600))

	cfg, err := Load(filepath.Join(dir, "sageturner.yaml"))
	require.NoError(t, err)
	require.Nil(t, cfg.Artefact)
	require.Empty(t, cfg.ArtefactPath())
	require.Equal(t, "ctx", cfg.Container.Provide.BuildContextDir)
	require.Equal(t, ServerlessSpec{Memory: 1024, MaxConcurrency: 5}, *cfg.Compute.Serverless)
}

func Test_Parse_Errors(t *testing.T) {
	noEnv := func(string) string { return "" }

	t.Run("UnknownField", func(t *testing.T) {
		_, err := Parse([]byte("name: demo\ndocker_dir: ./ctx\n"), noEnv)
		require.Error(t, err)
	})

	t.Run("NotAMapping", func(t *testing.T) {
		_, err := Parse([]byte("- demo\n"), noEnv)
		require.Error(t, err)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})
}
