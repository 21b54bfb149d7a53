// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deploy

import "fmt"

// Stage is a state of the deployment pipeline. Stages are visited in order and never revisited.
type Stage string

const (
	StageValidating            Stage = "Validating"
	StageBuildingContainer     Stage = "BuildingContainer"
	StagePushingImage          Stage = "PushingImage"
	StageProvisioningResources Stage = "ProvisioningResources"
	StageRegisteringModel      Stage = "RegisteringModel"
	StageProvisioningEndpoint  Stage = "ProvisioningEndpoint"
	StageDone                  Stage = "Done"
	StageFailed                Stage = "Failed"
)

// Title is the user facing description of the stage.
func (s Stage) Title() string {
	switch s {
	case StageValidating:
		return "Validating configuration"
	case StageBuildingContainer:
		return "Building container image"
	case StagePushingImage:
		return "Pushing container image"
	case StageProvisioningResources:
		return "Provisioning role and bucket"
	case StageRegisteringModel:
		return "Registering model"
	case StageProvisioningEndpoint:
		return "Creating endpoint"
	default:
		return string(s)
	}
}

// StageError reports the stage a deployment failed in.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s failed: %s", e.Stage.Title(), e.Err.Error())
}

func (e *StageError) Unwrap() error {
	return e.Err
}
