// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockaws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/stretchr/testify/mock"
)

// MockECR is a testify mock of the ECR client operations used by sageturner.
type MockECR struct {
	mock.Mock
}

func (m *MockECR) DescribeRepositories(
	ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options),
) (*ecr.DescribeRepositoriesOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*ecr.DescribeRepositoriesOutput)
	return output, args.Error(1)
}

func (m *MockECR) CreateRepository(
	ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options),
) (*ecr.CreateRepositoryOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*ecr.CreateRepositoryOutput)
	return output, args.Error(1)
}

func (m *MockECR) GetAuthorizationToken(
	ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options),
) (*ecr.GetAuthorizationTokenOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*ecr.GetAuthorizationTokenOutput)
	return output, args.Error(1)
}
