// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sageturner/sageturner/pkg/config"
	"github.com/stretchr/testify/require"
)

func Test_RootCommandTree(t *testing.T) {
	root := NewRootCmd()

	for _, name := range []string{"deploy", "setup", "config", "version"} {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
	}

	deployCmd, _, err := root.Find([]string{"deploy"})
	require.NoError(t, err)
	for _, flag := range []string{"config", "mode", "endpoint", "naming", "keep-on-failure", "output"} {
		require.NotNil(t, deployCmd.Flags().Lookup(flag), flag)
	}

	traceFlag := root.PersistentFlags().Lookup("trace-log-file")
	require.NotNil(t, traceFlag)
	require.True(t, traceFlag.Hidden)
}

func Test_Execute_ConfigSetWithTraceLog(t *testing.T) {
	configDir := t.TempDir()
	t.Setenv("SAGETURNER_CONFIG_DIR", configDir)
	traceFile := filepath.Join(t.TempDir(), "trace.json")

	err := Execute([]string{"config", "set", "defaults.role", "deployer", "--trace-log-file", traceFile})
	require.NoError(t, err)

	userConfig, err := config.NewUserConfigManager(config.NewFileConfigManager(config.NewManager())).Load()
	require.NoError(t, err)
	role, has := userConfig.GetString(config.DefaultRolePath)
	require.True(t, has)
	require.Equal(t, "deployer", role)

	_, err = os.Stat(traceFile)
	require.NoError(t, err)
}

func Test_Execute_DeployRequiresMode(t *testing.T) {
	err := Execute([]string{"deploy", "--endpoint", "serverless"})
	require.ErrorContains(t, err, "mode")
}
