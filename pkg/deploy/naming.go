// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deploy

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sageturner/sageturner/pkg/modelconfig"
)

// NamingStrategy produces the version token appended to the deployment name. Tokens are at most 15 characters so
// the derived names stay within platform limits.
type NamingStrategy interface {
	Token(cfg *modelconfig.Config) (string, error)
}

// Supported naming strategy names.
const (
	NamingTimestamp = "timestamp"
	NamingRandom    = "random"
	NamingHash      = "hash"
)

var NamingStrategies = []string{NamingTimestamp, NamingRandom, NamingHash}

// NewNamingStrategy returns the strategy registered under name.
func NewNamingStrategy(name string, clock clock.Clock) (NamingStrategy, error) {
	switch strings.ToLower(name) {
	case NamingTimestamp:
		return &TimestampNaming{clock: clock}, nil
	case NamingRandom:
		return &RandomNaming{}, nil
	case NamingHash:
		return &HashNaming{}, nil
	default:
		return nil, fmt.Errorf("unsupported naming strategy '%s', expected one of %v", name, NamingStrategies)
	}
}

// timestampLayout has minute resolution. Two deployments of the same name within a minute collide.
const timestampLayout = "20060102-1504"

// TimestampNaming uses the UTC deployment start time.
type TimestampNaming struct {
	clock clock.Clock
}

func NewTimestampNaming(clock clock.Clock) *TimestampNaming {
	return &TimestampNaming{clock: clock}
}

func (n *TimestampNaming) Token(*modelconfig.Config) (string, error) {
	return n.clock.Now().UTC().Format(timestampLayout), nil
}

// RandomNaming uses a random 8 character hex token.
type RandomNaming struct{}

func (n *RandomNaming) Token(*modelconfig.Config) (string, error) {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8], nil
}

// HashNaming hashes the resolved manifest. Redeploying an unchanged manifest yields the same names.
type HashNaming struct{}

func (n *HashNaming) Token(cfg *modelconfig.Config) (string, error) {
	content, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("hashing manifest: %w", err)
	}

	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])[:12], nil
}

// Identity is the set of names derived from one deployment token.
type Identity struct {
	Token              string `json:"token"`
	ModelVersionName   string `json:"model"`
	EndpointName       string `json:"endpoint"`
	EndpointConfigName string `json:"endpointConfig"`
}

func NewIdentity(name string, token string) Identity {
	versionName := fmt.Sprintf("%s-%s", name, token)
	return Identity{
		Token:              token,
		ModelVersionName:   versionName,
		EndpointName:       versionName,
		EndpointConfigName: versionName + "-config",
	}
}
