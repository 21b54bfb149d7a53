// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package containerregistry manages the ECR repositories images are pushed to.
package containerregistry

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/ecr/types"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/sageturner/sageturner/pkg/awssdk"
)

// ECRAPI is the subset of the ECR client used to resolve repositories and push credentials.
type ECRAPI interface {
	DescribeRepositories(
		ctx context.Context, params *ecr.DescribeRepositoriesInput, optFns ...func(*ecr.Options),
	) (*ecr.DescribeRepositoriesOutput, error)
	CreateRepository(
		ctx context.Context, params *ecr.CreateRepositoryInput, optFns ...func(*ecr.Options),
	) (*ecr.CreateRepositoryOutput, error)
	GetAuthorizationToken(
		ctx context.Context, params *ecr.GetAuthorizationTokenInput, optFns ...func(*ecr.Options),
	) (*ecr.GetAuthorizationTokenOutput, error)
}

// Credentials are short-lived docker login credentials for a registry.
type Credentials struct {
	// LoginServer is the registry host, without scheme.
	LoginServer string
	Username    string
	Password    string
}

type Registry struct {
	client ECRAPI
}

func NewRegistry(client ECRAPI) *Registry {
	return &Registry{client: client}
}

// EnsureRepository returns the URI of the repository named repositoryName, creating it when it does not exist.
func (r *Registry) EnsureRepository(ctx context.Context, repositoryName string) (string, error) {
	describeOutput, err := r.client.DescribeRepositories(ctx, &ecr.DescribeRepositoriesInput{
		RepositoryNames: []string{repositoryName},
	})

	var notFound *types.RepositoryNotFoundException
	if err == nil && len(describeOutput.Repositories) > 0 {
		return aws.ToString(describeOutput.Repositories[0].RepositoryUri), nil
	} else if err != nil && !errors.As(err, &notFound) && !awssdk.IsErrorCode(err, "RepositoryNotFoundException") {
		return "", fmt.Errorf("describing repository %s: %w", repositoryName, err)
	}

	log.Printf("repository %s not found, creating it", repositoryName)
	createOutput, err := r.client.CreateRepository(ctx, &ecr.CreateRepositoryInput{
		RepositoryName: aws.String(repositoryName),
	})
	if err != nil {
		return "", fmt.Errorf("creating repository %s: %w", repositoryName, err)
	}

	return aws.ToString(createOutput.Repository.RepositoryUri), nil
}

// Credentials exchanges the caller identity for a registry authorization token.
func (r *Registry) Credentials(ctx context.Context) (*Credentials, error) {
	output, err := r.client.GetAuthorizationToken(ctx, &ecr.GetAuthorizationTokenInput{})
	if err != nil {
		return nil, fmt.Errorf("getting registry authorization token: %w", err)
	}

	if len(output.AuthorizationData) == 0 {
		return nil, errors.New("registry returned no authorization data")
	}

	data := output.AuthorizationData[0]
	decoded, err := base64.StdEncoding.DecodeString(aws.ToString(data.AuthorizationToken))
	if err != nil {
		return nil, fmt.Errorf("decoding registry authorization token: %w", err)
	}

	username, password, ok := strings.Cut(string(decoded), ":")
	if !ok {
		return nil, errors.New("registry authorization token is not in the form user:password")
	}

	loginServer := aws.ToString(data.ProxyEndpoint)
	loginServer = strings.TrimPrefix(loginServer, "https://")
	loginServer = strings.TrimPrefix(loginServer, "http://")

	return &Credentials{
		LoginServer: loginServer,
		Username:    username,
		Password:    password,
	}, nil
}

// ResolveDigest returns the manifest digest the registry serves for imageRef.
func ResolveDigest(ctx context.Context, imageRef string, credentials *Credentials) (string, error) {
	ref, err := name.ParseReference(imageRef)
	if err != nil {
		return "", fmt.Errorf("parsing image reference %s: %w", imageRef, err)
	}

	auth := authn.Anonymous
	if credentials != nil && credentials.Username != "" {
		auth = &authn.Basic{Username: credentials.Username, Password: credentials.Password}
	}

	desc, err := remote.Head(ref, remote.WithAuth(auth), remote.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("resolving digest of %s: %w", imageRef, err)
	}

	return desc.Digest.String(), nil
}
