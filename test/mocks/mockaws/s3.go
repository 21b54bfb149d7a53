// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockaws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

// MockS3 is a testify mock of the S3 client operations used by sageturner.
type MockS3 struct {
	mock.Mock
}

func (m *MockS3) HeadBucket(
	ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options),
) (*s3.HeadBucketOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*s3.HeadBucketOutput)
	return output, args.Error(1)
}

func (m *MockS3) CreateBucket(
	ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options),
) (*s3.CreateBucketOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*s3.CreateBucketOutput)
	return output, args.Error(1)
}

func (m *MockS3) HeadObject(
	ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*s3.HeadObjectOutput)
	return output, args.Error(1)
}

func (m *MockS3) DeleteObject(
	ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options),
) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	output, _ := args.Get(0).(*s3.DeleteObjectOutput)
	return output, args.Error(1)
}
