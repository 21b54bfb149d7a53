// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sageturner/sageturner/pkg/awssdk"
	"github.com/sageturner/sageturner/test/mocks/mockaws"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestStore(client *mockaws.MockS3, uploader *mockaws.MockUploader, region string) *Store {
	store := NewStore(client, uploader, region)
	store.pollInterval = time.Millisecond
	return store
}

func Test_EnsureBucket_Idempotent(t *testing.T) {
	client := &mockaws.MockS3{}
	client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()
	client.On("CreateBucket", mock.Anything, mock.MatchedBy(func(input *s3.CreateBucketInput) bool {
		return aws.ToString(input.Bucket) == DefaultBucketName &&
			input.CreateBucketConfiguration.LocationConstraint == types.BucketLocationConstraintEuWest1
	})).Return(&s3.CreateBucketOutput{}, nil).Once()
	client.On("HeadBucket", mock.Anything, mock.Anything).Return(&s3.HeadBucketOutput{}, nil).Once()

	store := newTestStore(client, &mockaws.MockUploader{}, "eu-west-1")
	require.NoError(t, store.EnsureBucket(context.Background(), DefaultBucketName))
	require.NoError(t, store.EnsureBucket(context.Background(), DefaultBucketName))

	client.AssertNumberOfCalls(t, "CreateBucket", 1)
	client.AssertExpectations(t)
}

func Test_EnsureBucket_NoLocationConstraintInUsEast1(t *testing.T) {
	client := &mockaws.MockS3{}
	client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})
	client.On("CreateBucket", mock.Anything, mock.MatchedBy(func(input *s3.CreateBucketInput) bool {
		return input.CreateBucketConfiguration == nil
	})).Return(&s3.CreateBucketOutput{}, nil)

	require.NoError(t, newTestStore(client, nil, "us-east-1").EnsureBucket(context.Background(), "b"))
	client.AssertExpectations(t)
}

func Test_EnsureBucket_CreateConflicts(t *testing.T) {
	for _, conflict := range []error{&types.BucketAlreadyOwnedByYou{}, &types.BucketAlreadyExists{}} {
		client := &mockaws.MockS3{}
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})
		client.On("CreateBucket", mock.Anything, mock.Anything).Return(nil, conflict)

		require.NoError(t, newTestStore(client, nil, "eu-west-1").EnsureBucket(context.Background(), "b"))
	}
}

func Test_EnsureBucket_Errors(t *testing.T) {
	t.Run("HeadForbidden", func(t *testing.T) {
		client := &mockaws.MockS3{}
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, errors.New("forbidden"))

		err := newTestStore(client, nil, "eu-west-1").EnsureBucket(context.Background(), "b")
		require.ErrorContains(t, err, "forbidden")
		client.AssertNotCalled(t, "CreateBucket", mock.Anything, mock.Anything)
	})

	t.Run("CreateFails", func(t *testing.T) {
		client := &mockaws.MockS3{}
		client.On("HeadBucket", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})
		client.On("CreateBucket", mock.Anything, mock.Anything).Return(nil, errors.New("invalid bucket name"))

		err := newTestStore(client, nil, "eu-west-1").EnsureBucket(context.Background(), "b")
		require.ErrorContains(t, err, "invalid bucket name")
	})
}

func writeArtifact(t *testing.T, name string) string {
	artifactPath := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(artifactPath, []byte("weights"), 0600))
	return artifactPath
}

func Test_UploadArtifact(t *testing.T) {
	artifactPath := writeArtifact(t, "model.tar.gz")
	key := ArtifactKey("demo", "20261017-1504", artifactPath)
	require.Equal(t, "demo/20261017-1504/model.tar.gz", key)

	client := &mockaws.MockS3{}
	uploader := &mockaws.MockUploader{}
	uploader.On("Upload", mock.Anything, mock.MatchedBy(func(input *s3.PutObjectInput) bool {
		return aws.ToString(input.Bucket) == "b" && aws.ToString(input.Key) == key && input.Body != nil
	})).Return(&manager.UploadOutput{}, nil).Once()
	client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{}).Once()
	client.On("HeadObject", mock.Anything, mock.Anything).Return(&s3.HeadObjectOutput{}, nil).Once()

	uri, err := newTestStore(client, uploader, "eu-west-1").UploadArtifact(context.Background(), artifactPath, "b", key)
	require.NoError(t, err)
	require.Equal(t, "s3://b/demo/20261017-1504/model.tar.gz", uri)
	client.AssertExpectations(t)
	uploader.AssertExpectations(t)
}

func Test_UploadArtifact_RejectsBeforeNetwork(t *testing.T) {
	for _, name := range []string{"model.zip", "model.tar", "model.gz", "model.tgz", "tar.gz.bin"} {
		client := &mockaws.MockS3{}
		uploader := &mockaws.MockUploader{}

		_, err := newTestStore(client, uploader, "eu-west-1").
			UploadArtifact(context.Background(), writeArtifact(t, name), "b", "k")
		require.ErrorIs(t, err, ErrUnsupportedArchive)

		require.Empty(t, client.Calls)
		require.Empty(t, uploader.Calls)
	}
}

func Test_UploadArtifact_Errors(t *testing.T) {
	t.Run("MissingFile", func(t *testing.T) {
		uploader := &mockaws.MockUploader{}
		_, err := newTestStore(&mockaws.MockS3{}, uploader, "eu-west-1").
			UploadArtifact(context.Background(), filepath.Join(t.TempDir(), "model.tar.gz"), "b", "k")
		require.ErrorIs(t, err, os.ErrNotExist)
		require.Empty(t, uploader.Calls)
	})

	t.Run("NeverVisible", func(t *testing.T) {
		client := &mockaws.MockS3{}
		uploader := &mockaws.MockUploader{}
		uploader.On("Upload", mock.Anything, mock.Anything).Return(&manager.UploadOutput{}, nil)
		client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, &types.NotFound{})

		store := newTestStore(client, uploader, "eu-west-1")
		store.waitTimeout = 20 * time.Millisecond

		_, err := store.UploadArtifact(context.Background(), writeArtifact(t, "model.tar.gz"), "b", "k")
		require.ErrorIs(t, err, awssdk.ErrWaitTimeout)
	})
}

func Test_DeleteArtifact(t *testing.T) {
	client := &mockaws.MockS3{}
	client.On("DeleteObject", mock.Anything, mock.MatchedBy(func(input *s3.DeleteObjectInput) bool {
		return aws.ToString(input.Key) == "demo/v/model.tar.gz"
	})).Return(&s3.DeleteObjectOutput{}, nil)

	require.NoError(t, newTestStore(client, nil, "eu-west-1").DeleteArtifact(context.Background(), "b", "demo/v/model.tar.gz"))
}

func Test_ArtifactExists(t *testing.T) {
	tests := []struct {
		name     string
		headErr  error
		expected bool
	}{
		{name: "Exists", expected: true},
		{name: "NotFound", headErr: &types.NotFound{}},
		{name: "NoSuchKey", headErr: &types.NoSuchKey{}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := &mockaws.MockS3{}
			if test.headErr != nil {
				client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, test.headErr)
			} else {
				client.On("HeadObject", mock.Anything, mock.MatchedBy(func(input *s3.HeadObjectInput) bool {
					return aws.ToString(input.Bucket) == "b" && aws.ToString(input.Key) == "demo/v/model.tar.gz"
				})).Return(&s3.HeadObjectOutput{}, nil)
			}

			exists, err := newTestStore(client, nil, "eu-west-1").
				ArtifactExists(context.Background(), "b", "demo/v/model.tar.gz")
			require.NoError(t, err)
			require.Equal(t, test.expected, exists)
		})
	}

	t.Run("Forbidden", func(t *testing.T) {
		client := &mockaws.MockS3{}
		client.On("HeadObject", mock.Anything, mock.Anything).Return(nil, errors.New("forbidden"))

		_, err := newTestStore(client, nil, "eu-west-1").ArtifactExists(context.Background(), "b", "k")
		require.ErrorContains(t, err, "forbidden")
	})
}
