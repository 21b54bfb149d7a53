// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	userConfigDirName = ".sageturner"
	userConfigFile    = "config.json"
)

// configDirEnvVar overrides the location of the user configuration directory.
const configDirEnvVar = "SAGETURNER_CONFIG_DIR"

// Manager encodes a Config as indented JSON.
type Manager interface {
	Save(config Config, writer io.Writer) error
	Load(io.Reader) (Config, error)
}

func NewManager() Manager {
	return jsonManager{}
}

type jsonManager struct{}

func (jsonManager) Save(config Config, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(config.Raw()); err != nil {
		return fmt.Errorf("writing configuration: %w", err)
	}

	return nil
}

func (jsonManager) Load(reader io.Reader) (Config, error) {
	contents, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	return Parse(contents)
}

// Parse decodes a JSON object into a Config.
func Parse(contents []byte) (Config, error) {
	var root map[string]any
	if err := json.Unmarshal(contents, &root); err != nil {
		return nil, fmt.Errorf("configuration is not a JSON object: %w", err)
	}

	return NewConfig(root), nil
}

// GetUserConfigDir returns the directory holding user-wide settings, creating it when missing.
// SAGETURNER_CONFIG_DIR takes precedence over ~/.sageturner.
func GetUserConfigDir() (string, error) {
	dir := os.Getenv(configDirEnvVar)
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("locating home directory: %w", err)
		}
		dir = filepath.Join(home, userConfigDirName)
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	return dir, nil
}
