// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockaws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/stretchr/testify/mock"
)

// MockSageMaker is a testify mock of the SageMaker client operations used by sageturner.
type MockSageMaker struct {
	mock.Mock
}

func (m *MockSageMaker) CreateModel(
	ctx context.Context, params *sagemaker.CreateModelInput, optFns ...func(*sagemaker.Options),
) (*sagemaker.CreateModelOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*sagemaker.CreateModelOutput)
	return output, args.Error(1)
}

func (m *MockSageMaker) DeleteModel(
	ctx context.Context, params *sagemaker.DeleteModelInput, optFns ...func(*sagemaker.Options),
) (*sagemaker.DeleteModelOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*sagemaker.DeleteModelOutput)
	return output, args.Error(1)
}

func (m *MockSageMaker) CreateEndpointConfig(
	ctx context.Context, params *sagemaker.CreateEndpointConfigInput, optFns ...func(*sagemaker.Options),
) (*sagemaker.CreateEndpointConfigOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*sagemaker.CreateEndpointConfigOutput)
	return output, args.Error(1)
}

func (m *MockSageMaker) DeleteEndpointConfig(
	ctx context.Context, params *sagemaker.DeleteEndpointConfigInput, optFns ...func(*sagemaker.Options),
) (*sagemaker.DeleteEndpointConfigOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*sagemaker.DeleteEndpointConfigOutput)
	return output, args.Error(1)
}

func (m *MockSageMaker) CreateEndpoint(
	ctx context.Context, params *sagemaker.CreateEndpointInput, optFns ...func(*sagemaker.Options),
) (*sagemaker.CreateEndpointOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*sagemaker.CreateEndpointOutput)
	return output, args.Error(1)
}
