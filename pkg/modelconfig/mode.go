// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package modelconfig

import (
	"fmt"
	"strings"
)

// ContainerMode selects how the serving image is produced.
type ContainerMode string

const (
	// ContainerModeGenerate synthesizes a build context from a code directory and package lists.
	ContainerModeGenerate ContainerMode = "generate"
	// ContainerModeProvide builds a caller-owned context containing a Dockerfile.
	ContainerModeProvide ContainerMode = "provide"
)

// ContainerModes lists every supported container mode.
var ContainerModes = []ContainerMode{ContainerModeGenerate, ContainerModeProvide}

func (m ContainerMode) String() string {
	return string(m)
}

// ParseContainerMode converts user input into a ContainerMode.
func ParseContainerMode(value string) (ContainerMode, error) {
	for _, mode := range ContainerModes {
		if strings.EqualFold(value, string(mode)) {
			return mode, nil
		}
	}

	return "", fmt.Errorf("unsupported container mode '%s', expected one of %v", value, ContainerModes)
}

// EndpointType selects the capacity topology of the serving endpoint.
type EndpointType string

const (
	// EndpointTypeServerless is the elastic, on-demand topology.
	EndpointTypeServerless EndpointType = "serverless"
	// EndpointTypeServer is the fixed-instance topology.
	EndpointTypeServer EndpointType = "server"
)

// EndpointTypes lists every supported endpoint type.
var EndpointTypes = []EndpointType{EndpointTypeServerless, EndpointTypeServer}

func (e EndpointType) String() string {
	return string(e)
}

// ParseEndpointType converts user input into an EndpointType.
func ParseEndpointType(value string) (EndpointType, error) {
	for _, endpointType := range EndpointTypes {
		if strings.EqualFold(value, string(endpointType)) {
			return endpointType, nil
		}
	}

	return "", fmt.Errorf("unsupported endpoint type '%s', expected one of %v", value, EndpointTypes)
}
