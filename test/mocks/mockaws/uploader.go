// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockaws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/mock"
)

// MockUploader is a testify mock of the S3 upload manager.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(
	ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader),
) (*manager.UploadOutput, error) {
	args := m.Called(ctx, input)
	output, _ := args.Get(0).(*manager.UploadOutput)
	return output, args.Error(1)
}
