// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// FileConfigManager reads and writes a Config at an arbitrary path.
type FileConfigManager interface {
	// Save replaces the file at filePath, creating its directory when needed.
	Save(config Config, filePath string) error
	Load(filePath string) (Config, error)
}

func NewFileConfigManager(configManager Manager) FileConfigManager {
	return &fileConfigManager{codec: configManager}
}

type fileConfigManager struct {
	codec Manager
}

func (m *fileConfigManager) Load(filePath string) (Config, error) {
	unlock, err := lockFile(filePath)
	if err != nil {
		return nil, err
	}
	defer unlock()

	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer file.Close()

	return m.codec.Load(file)
}

func (m *fileConfigManager) Save(c Config, filePath string) error {
	unlock, err := lockFile(filePath)
	if err != nil {
		return err
	}
	defer unlock()

	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filePath, err)
	}
	defer file.Close()

	if err := file.Chmod(0600); err != nil {
		return fmt.Errorf("restricting %s: %w", filePath, err)
	}

	return m.codec.Save(c, file)
}

// lockFile serializes access to filePath between sageturner processes through a sibling .lock file.
func lockFile(filePath string) (func(), error) {
	lockPath := filePath + ".lock"
	if err := os.MkdirAll(filepath.Dir(lockPath), 0700); err != nil {
		return nil, fmt.Errorf("creating directory for %s: %w", lockPath, err)
	}

	fileLock := flock.New(lockPath)
	if err := fileLock.Lock(); err != nil {
		return nil, fmt.Errorf("locking %s: %w", lockPath, err)
	}

	return func() {
		if err := fileLock.Unlock(); err != nil {
			log.Printf("releasing %s: %v", lockPath, err)
		}
	}, nil
}

// UserConfigManager reads and writes config.json in the user configuration directory.
type UserConfigManager interface {
	// Load returns an empty Config when the file has not been written yet.
	Load() (Config, error)
	Save(Config) error
}

func NewUserConfigManager(fileConfigManager FileConfigManager) UserConfigManager {
	return &userConfigManager{files: fileConfigManager}
}

type userConfigManager struct {
	files FileConfigManager
}

func (m *userConfigManager) Load() (Config, error) {
	path, err := userConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := m.files.Load(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewEmptyConfig(), nil
	case err != nil:
		return nil, err
	default:
		return cfg, nil
	}
}

func (m *userConfigManager) Save(c Config) error {
	path, err := userConfigPath()
	if err != nil {
		return err
	}

	return m.files.Save(c, path)
}

func userConfigPath() (string, error) {
	dir, err := GetUserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, userConfigFile), nil
}
