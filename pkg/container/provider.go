// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package container turns a build context into an image pushed to the model registry.
package container

import (
	"context"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"github.com/sageturner/sageturner/pkg/async"
	"github.com/sageturner/sageturner/pkg/containerregistry"
	"github.com/sageturner/sageturner/pkg/tools/docker"
)

const (
	// ImageTag is the only tag sageturner pushes. Each push overwrites it.
	ImageTag = "latest"

	dockerfileName = "Dockerfile"
)

// Registry resolves push destinations and credentials.
type Registry interface {
	EnsureRepository(ctx context.Context, repositoryName string) (string, error)
	Credentials(ctx context.Context) (*containerregistry.Credentials, error)
}

// DigestResolver looks up the digest the registry serves for a pushed image.
type DigestResolver func(ctx context.Context, imageRef string, credentials *containerregistry.Credentials) (string, error)

// PushedImage is an image available in the registry.
type PushedImage struct {
	RepositoryUri string
	// ImageRef is RepositoryUri combined with ImageTag.
	ImageRef string
	// Digest is empty when it could not be resolved.
	Digest string
}

// Provider builds images with the docker CLI and pushes them to the registry.
type Provider struct {
	docker        docker.Docker
	registry      Registry
	resolveDigest DigestResolver
	observer      func(string)
}

// NewProvider creates a Provider. observer receives each line of build and push output and may be nil.
func NewProvider(docker docker.Docker, registry Registry, resolveDigest DigestResolver, observer func(string)) *Provider {
	if observer == nil {
		observer = func(line string) {
			log.Println(line)
		}
	}

	return &Provider{
		docker:        docker,
		registry:      registry,
		resolveDigest: resolveDigest,
		observer:      observer,
	}
}

// ImageName derives the local image and repository name from a deployment name.
func ImageName(name string) string {
	return strings.ToLower(name)
}

// BuildProvided builds the caller-owned Dockerfile at the root of buildContextDir and tags it imageName:latest.
func (p *Provider) BuildProvided(ctx context.Context, buildContextDir string, imageName string) (string, error) {
	return p.build(ctx, buildContextDir, nil, imageName)
}

func (p *Provider) build(ctx context.Context, buildContextDir string, buildArgs []string, imageName string) (string, error) {
	log.Printf("building %s from %s", localTag(imageName), buildContextDir)

	var imageId string
	err := p.runWithProgress(func(w io.Writer) error {
		id, err := p.docker.Build(ctx, buildContextDir, docker.BuildOptions{
			Dockerfile: filepath.Join(buildContextDir, dockerfileName),
			Context:    buildContextDir,
			Platform:   docker.DefaultPlatform,
			Tag:        localTag(imageName),
			BuildArgs:  buildArgs,
			Progress:   w,
		})
		imageId = id
		return err
	})
	if err != nil {
		return "", err
	}

	return imageId, nil
}

// Push resolves or creates the repository for imageName, logs in with short-lived credentials and pushes
// imageName:latest.
func (p *Provider) Push(ctx context.Context, imageName string) (*PushedImage, error) {
	repositoryUri, err := p.registry.EnsureRepository(ctx, imageName)
	if err != nil {
		return nil, err
	}

	credentials, err := p.registry.Credentials(ctx)
	if err != nil {
		return nil, err
	}

	if err := p.docker.Login(ctx, credentials.LoginServer, credentials.Username, credentials.Password); err != nil {
		return nil, err
	}

	remoteTag := fmt.Sprintf("%s:%s", repositoryUri, ImageTag)
	if err := p.docker.Tag(ctx, "", localTag(imageName), remoteTag); err != nil {
		return nil, err
	}

	log.Printf("pushing %s", remoteTag)
	err = p.runWithProgress(func(w io.Writer) error {
		return p.docker.Push(ctx, "", remoteTag, w)
	})
	if err != nil {
		return nil, err
	}

	pushed := &PushedImage{
		RepositoryUri: repositoryUri,
		ImageRef:      remoteTag,
	}

	if p.resolveDigest != nil {
		digest, err := p.resolveDigest(ctx, remoteTag, credentials)
		if err != nil {
			log.Printf("could not resolve digest of %s: %v", remoteTag, err)
		} else {
			pushed.Digest = digest
		}
	}

	return pushed, nil
}

// runWithProgress drains tool output line by line on a background goroutine.
func (p *Provider) runWithProgress(run func(w io.Writer) error) error {
	_, err := async.RunWithProgress(p.observer, func(progress *async.Progress[string]) (struct{}, error) {
		writer := async.NewLineWriter(progress)
		err := run(writer)
		writer.Flush()
		return struct{}{}, err
	})

	return err
}

func localTag(imageName string) string {
	return fmt.Sprintf("%s:%s", imageName, ImageTag)
}
