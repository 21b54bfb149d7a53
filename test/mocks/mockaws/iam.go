// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockaws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/stretchr/testify/mock"
)

// MockIAM is a testify mock of the IAM client operations used by sageturner.
type MockIAM struct {
	mock.Mock
}

func (m *MockIAM) CreateRole(
	ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options),
) (*iam.CreateRoleOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*iam.CreateRoleOutput)
	return output, args.Error(1)
}

func (m *MockIAM) GetRole(
	ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options),
) (*iam.GetRoleOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*iam.GetRoleOutput)
	return output, args.Error(1)
}

func (m *MockIAM) AttachRolePolicy(
	ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options),
) (*iam.AttachRolePolicyOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*iam.AttachRolePolicyOutput)
	return output, args.Error(1)
}
