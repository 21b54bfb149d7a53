// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_SetGetUnsetWithValue(t *testing.T) {
	cfg := NewEmptyConfig()
	require.True(t, cfg.IsEmpty())

	require.NoError(t, cfg.Set(DefaultBucketPath, "team-models"))
	require.NoError(t, cfg.Set(DefaultRegionPath, "eu-west-1"))

	value, ok := cfg.GetString(DefaultBucketPath)
	require.True(t, ok)
	require.Equal(t, "team-models", value)

	section, ok := cfg.Get("defaults")
	require.True(t, ok)
	require.Len(t, section, 2)

	require.NoError(t, cfg.Unset(DefaultBucketPath))
	_, ok = cfg.GetString(DefaultBucketPath)
	require.False(t, ok)

	region, ok := cfg.GetString(DefaultRegionPath)
	require.True(t, ok)
	require.Equal(t, "eu-west-1", region)
}

func Test_GetMissingAndWrongType(t *testing.T) {
	cfg := NewConfig(map[string]any{
		"defaults": map[string]any{"role": 42},
	})

	_, ok := cfg.GetString(DefaultRolePath)
	require.False(t, ok)

	_, ok = cfg.Get("defaults.role.name")
	require.False(t, ok)

	_, ok = cfg.Get("missing.path")
	require.False(t, ok)

	require.NoError(t, cfg.Unset("missing.path"))
}

func Test_SetThroughScalarFails(t *testing.T) {
	cfg := NewConfig(map[string]any{"defaults": "scalar"})
	require.Error(t, cfg.Set(DefaultRolePath, "r"))
}

func Test_ManagerRoundTrip(t *testing.T) {
	manager := NewManager()
	cfg := NewEmptyConfig()
	require.NoError(t, cfg.Set(DefaultRolePath, "ml-role"))

	var buf bytes.Buffer
	require.NoError(t, manager.Save(cfg, &buf))

	loaded, err := manager.Load(&buf)
	require.NoError(t, err)
	role, ok := loaded.GetString(DefaultRolePath)
	require.True(t, ok)
	require.Equal(t, "ml-role", role)

	_, err = Parse([]byte("{not json"))
	require.Error(t, err)
}

func Test_UserConfigManager(t *testing.T) {
	t.Setenv(configDirEnvVar, t.TempDir())

	userConfig := NewUserConfigManager(NewFileConfigManager(NewManager()))

	cfg, err := userConfig.Load()
	require.NoError(t, err)
	require.True(t, cfg.IsEmpty())

	require.NoError(t, cfg.Set(DefaultBucketPath, "a-much-longer-bucket-name"))
	require.NoError(t, userConfig.Save(cfg))

	// shorter value must not leave trailing bytes from the previous file
	require.NoError(t, cfg.Set(DefaultBucketPath, "short"))
	require.NoError(t, userConfig.Save(cfg))

	reloaded, err := userConfig.Load()
	require.NoError(t, err)
	bucket, ok := reloaded.GetString(DefaultBucketPath)
	require.True(t, ok)
	require.Equal(t, "short", bucket)
}

func Test_FileConfigManagerCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	files := NewFileConfigManager(NewManager())

	cfg := NewEmptyConfig()
	require.NoError(t, cfg.Set(DefaultRegionPath, "us-west-2"))
	require.NoError(t, files.Save(cfg, path))

	require.FileExists(t, path)
	require.FileExists(t, path+".lock")

	loaded, err := files.Load(path)
	require.NoError(t, err)
	region, ok := loaded.GetString(DefaultRegionPath)
	require.True(t, ok)
	require.Equal(t, "us-west-2", region)
}
