// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package modelconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/braydonk/yaml"
	"github.com/drone/envsubst"
	"github.com/joho/godotenv"
)

// DotEnvFileName is read from the manifest directory, when present, to resolve ${VAR} references.
const DotEnvFileName = ".env"

// Load reads the manifest at path, expands ${VAR} references and decodes it.
func Load(path string) (*Config, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving manifest path: %w", err)
	}

	contents, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}

	baseDir := filepath.Dir(absPath)
	dotenv, err := godotenv.Read(filepath.Join(baseDir, DotEnvFileName))
	if errors.Is(err, fs.ErrNotExist) {
		dotenv = map[string]string{}
	} else if err != nil {
		return nil, fmt.Errorf("reading %s: %w", DotEnvFileName, err)
	}

	cfg, err := Parse(contents, func(name string) string {
		if val, has := dotenv[name]; has {
			return val
		}
		return os.Getenv(name)
	})
	if err != nil {
		return nil, err
	}

	cfg.BaseDir = baseDir
	return cfg, nil
}

// Parse expands ${VAR} references in the manifest using mapping and decodes the result.
// Unknown keys are rejected.
func Parse(contents []byte, mapping func(string) string) (*Config, error) {
	log.Printf("parsing manifest contents, %s\n", contents)
	rawFile, err := envsubst.Parse(string(contents))
	if err != nil {
		return nil, fmt.Errorf("parsing environment references in manifest: %w", err)
	}

	expanded, err := rawFile.Execute(mapping)
	if err != nil {
		return nil, fmt.Errorf("replacing environment references: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewBufferString(expanded))
	decoder.KnownFields(true)

	var cfg Config
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("unable to parse manifest, please check the format of the file: %w", err)
	}

	return &cfg, nil
}
