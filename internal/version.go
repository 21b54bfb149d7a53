// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"github.com/blang/semver/v4"
)

// Version is the version string of the CLI. It is set at build time with
//
//	-ldflags "-X github.com/sageturner/sageturner/internal.Version=1.2.3"
var Version = "0.0.0-dev.0"

// VersionSpec is the structured form of the version, used for `sageturner version --output json`.
type VersionSpec struct {
	Version string `json:"version"`
}

// GetVersionNumber returns the semver of the CLI, or "unknown" when Version is not a valid semver.
func GetVersionNumber() string {
	ver, err := semver.Parse(Version)
	if err != nil {
		return "unknown"
	}

	return ver.String()
}

func GetVersionSpec() VersionSpec {
	return VersionSpec{
		Version: GetVersionNumber(),
	}
}

// UserAgent is attached to every AWS request as an application id.
func UserAgent() string {
	return "sageturner/" + GetVersionNumber()
}
