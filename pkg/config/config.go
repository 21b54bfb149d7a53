// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config stores user-wide sageturner settings, such as the default region and the shared bucket and
// role, in ~/.sageturner/config.json. Nothing in it is specific to one manifest.
package config

import (
	"fmt"
	"strings"
)

// Paths read by the deploy and setup commands.
const (
	DefaultRegionPath = "defaults.region"
	DefaultBucketPath = "defaults.bucket"
	DefaultRolePath   = "defaults.role"
)

// Config is a tree of JSON values addressed by dot separated paths, for example "defaults.bucket".
type Config interface {
	Raw() map[string]any
	Get(path string) (any, bool)
	GetString(path string) (string, bool)
	Set(path string, value any) error
	Unset(path string) error
	IsEmpty() bool
}

func NewEmptyConfig() Config {
	return NewConfig(nil)
}

// NewConfig wraps data, which is modified in place by Set and Unset.
func NewConfig(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}

	return &config{root: data}
}

type config struct {
	root map[string]any
}

func (c *config) IsEmpty() bool {
	return len(c.root) == 0
}

func (c *config) Raw() map[string]any {
	return c.root
}

// Set stores value at path, creating intermediate sections as needed. It fails when an intermediate segment
// already holds a scalar.
func (c *config) Set(path string, value any) error {
	parent, key, err := c.section(path, true)
	if err != nil {
		return err
	}

	parent[key] = value
	return nil
}

// Unset removes the value or section at path. Removing a path that does not exist is not an error.
func (c *config) Unset(path string) error {
	parent, key, err := c.section(path, false)
	if err != nil || parent == nil {
		return err
	}

	delete(parent, key)
	return nil
}

func (c *config) Get(path string) (any, bool) {
	parent, key, err := c.section(path, false)
	if err != nil || parent == nil {
		return nil, false
	}

	value, has := parent[key]
	return value, has
}

func (c *config) GetString(path string) (string, bool) {
	value, has := c.Get(path)
	if !has {
		return "", false
	}

	text, isString := value.(string)
	return text, isString
}

// section walks to the map holding the last segment of path and returns it with that segment. With create
// unset, a missing section yields a nil map and no error.
func (c *config) section(path string, create bool) (map[string]any, string, error) {
	segments := strings.Split(path, ".")
	current := c.root

	for _, segment := range segments[:len(segments)-1] {
		child, has := current[segment]
		if !has || child == nil {
			if !create {
				return nil, "", nil
			}

			next := map[string]any{}
			current[segment] = next
			current = next
			continue
		}

		next, isSection := child.(map[string]any)
		if !isSection {
			if !create {
				return nil, "", nil
			}

			return nil, "", fmt.Errorf("'%s' in path '%s' holds a value, not a section", segment, path)
		}
		current = next
	}

	return current, segments[len(segments)-1], nil
}
