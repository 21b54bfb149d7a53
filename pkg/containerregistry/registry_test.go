// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package containerregistry

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/registry"
	"github.com/google/go-containerregistry/pkg/v1/random"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/sageturner/sageturner/test/mocks/mockaws"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testRepositoryUri = "123456789012.dkr.ecr.eu-west-1.amazonaws.com/demo"

func Test_EnsureRepository(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := &mockaws.MockECR{}
		client.On("DescribeRepositories", mock.Anything, mock.Anything).Return(&ecr.DescribeRepositoriesOutput{
			Repositories: []types.Repository{{RepositoryUri: aws.String(testRepositoryUri)}},
		}, nil)

		uri, err := NewRegistry(client).EnsureRepository(context.Background(), "demo")
		require.NoError(t, err)
		require.Equal(t, testRepositoryUri, uri)
		client.AssertNotCalled(t, "CreateRepository", mock.Anything, mock.Anything)
	})

	t.Run("NotFoundCreates", func(t *testing.T) {
		client := &mockaws.MockECR{}
		client.On("DescribeRepositories", mock.Anything, mock.Anything).
			Return(nil, &types.RepositoryNotFoundException{Message: aws.String("missing")})
		client.On("CreateRepository", mock.Anything, mock.MatchedBy(func(input *ecr.CreateRepositoryInput) bool {
			return aws.ToString(input.RepositoryName) == "demo"
		})).Return(&ecr.CreateRepositoryOutput{
			Repository: &types.Repository{RepositoryUri: aws.String(testRepositoryUri)},
		}, nil)

		uri, err := NewRegistry(client).EnsureRepository(context.Background(), "demo")
		require.NoError(t, err)
		require.Equal(t, testRepositoryUri, uri)
	})

	t.Run("OtherErrorIsFatal", func(t *testing.T) {
		client := &mockaws.MockECR{}
		client.On("DescribeRepositories", mock.Anything, mock.Anything).Return(nil, errors.New("access denied"))

		_, err := NewRegistry(client).EnsureRepository(context.Background(), "demo")
		require.ErrorContains(t, err, "access denied")
		client.AssertNotCalled(t, "CreateRepository", mock.Anything, mock.Anything)
	})
}

func Test_Credentials(t *testing.T) {
	token := base64.StdEncoding.EncodeToString([]byte("AWS:secret-password"))

	client := &mockaws.MockECR{}
	client.On("GetAuthorizationToken", mock.Anything, mock.Anything).Return(&ecr.GetAuthorizationTokenOutput{
		AuthorizationData: []types.AuthorizationData{{
			AuthorizationToken: aws.String(token),
			ProxyEndpoint:      aws.String("https://123456789012.dkr.ecr.eu-west-1.amazonaws.com"),
		}},
	}, nil)

	credentials, err := NewRegistry(client).Credentials(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AWS", credentials.Username)
	require.Equal(t, "secret-password", credentials.Password)
	require.Equal(t, "123456789012.dkr.ecr.eu-west-1.amazonaws.com", credentials.LoginServer)
}

func Test_Credentials_Invalid(t *testing.T) {
	tests := map[string]*ecr.GetAuthorizationTokenOutput{
		"NoData":    {},
		"NotBase64": {AuthorizationData: []types.AuthorizationData{{AuthorizationToken: aws.String("%%%")}}},
		"NoColon": {AuthorizationData: []types.AuthorizationData{{
			AuthorizationToken: aws.String(base64.StdEncoding.EncodeToString([]byte("nocolon"))),
		}}},
	}

	for testName, output := range tests {
		t.Run(testName, func(t *testing.T) {
			client := &mockaws.MockECR{}
			client.On("GetAuthorizationToken", mock.Anything, mock.Anything).Return(output, nil)

			_, err := NewRegistry(client).Credentials(context.Background())
			require.Error(t, err)
		})
	}
}

func Test_ResolveDigest(t *testing.T) {
	server := httptest.NewServer(registry.New())
	defer server.Close()

	host := strings.TrimPrefix(server.URL, "http://")
	imageRef := host + "/demo:latest"

	image, err := random.Image(256, 1)
	require.NoError(t, err)

	ref, err := name.ParseReference(imageRef)
	require.NoError(t, err)
	require.NoError(t, remote.Write(ref, image))

	expected, err := image.Digest()
	require.NoError(t, err)

	digest, err := ResolveDigest(context.Background(), imageRef, nil)
	require.NoError(t, err)
	require.Equal(t, expected.String(), digest)

	_, err = ResolveDigest(context.Background(), host+"/missing:latest", nil)
	require.Error(t, err)

	_, err = ResolveDigest(context.Background(), "UPPER/Case:bad tag", nil)
	require.Error(t, err)
}
