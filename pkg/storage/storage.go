// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package storage hosts model artifacts in S3.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sageturner/sageturner/pkg/awssdk"
)

const (
	// DefaultBucketName is used when no bucket override or user default is configured.
	DefaultBucketName = "sageturner-sagemaker"

	// ArchiveExtension is the only artifact format accepted for upload.
	ArchiveExtension = ".tar.gz"

	// ObjectWaitTimeout bounds the wait for an uploaded object to become visible.
	ObjectWaitTimeout = 30 * time.Second

	// us-east-1 rejects an explicit location constraint.
	defaultRegion = "us-east-1"
)

// ErrUnsupportedArchive is returned for artifacts not named with the .tar.gz extension.
var ErrUnsupportedArchive = errors.New("unsupported artifact archive")

// S3API is the subset of the S3 client used to manage the bucket and artifacts.
type S3API interface {
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(
		ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options),
	) (*s3.CreateBucketOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(
		ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options),
	) (*s3.DeleteObjectOutput, error)
}

// Uploader streams a local file to S3, satisfied by *manager.Uploader.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// Store is the artifact store backed by a single S3 bucket per call.
type Store struct {
	client       S3API
	uploader     Uploader
	region       string
	waitTimeout  time.Duration
	pollInterval time.Duration
}

// NewStore creates a Store. region is used as the location constraint of new buckets.
func NewStore(client S3API, uploader Uploader, region string) *Store {
	return &Store{
		client:       client,
		uploader:     uploader,
		region:       region,
		waitTimeout:  ObjectWaitTimeout,
		pollInterval: time.Second,
	}
}

// NewS3Store creates a Store using the multipart upload manager of client.
func NewS3Store(client *s3.Client, region string) *Store {
	return NewStore(client, manager.NewUploader(client), region)
}

// EnsureBucket creates bucketName in the store region when it does not already exist.
func (s *Store) EnsureBucket(ctx context.Context, bucketName string) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucketName)})
	if err == nil {
		log.Printf("bucket %s already exists, reusing it", bucketName)
		return nil
	}

	if !isNotFound(err) {
		return fmt.Errorf("checking bucket %s: %w", bucketName, err)
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucketName)}
	if s.region != "" && s.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}

	_, err = s.client.CreateBucket(ctx, input)

	var ownedErr *types.BucketAlreadyOwnedByYou
	var existsErr *types.BucketAlreadyExists
	switch {
	case err == nil:
		log.Printf("created bucket %s in %s", bucketName, s.region)
		return nil
	case errors.As(err, &ownedErr):
		return nil
	case errors.As(err, &existsErr):
		log.Printf("bucket %s already exists", bucketName)
		return nil
	default:
		return fmt.Errorf("creating bucket %s: %w", bucketName, err)
	}
}

// UploadArtifact uploads localPath to bucketName under key and returns its s3:// path once the object is visible.
func (s *Store) UploadArtifact(ctx context.Context, localPath string, bucketName string, key string) (string, error) {
	if err := CheckArchive(localPath); err != nil {
		return "", err
	}

	file, err := os.Open(localPath)
	if err != nil {
		return "", fmt.Errorf("opening artifact: %w", err)
	}
	defer file.Close()

	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(key),
		Body:   file,
	})
	if err != nil {
		return "", fmt.Errorf("uploading artifact to %s: %w", bucketName, err)
	}

	description := fmt.Sprintf("object s3://%s/%s", bucketName, key)
	err = awssdk.WaitUntil(ctx, description, s.waitTimeout, s.pollInterval, func(ctx context.Context) (bool, error) {
		_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucketName), Key: aws.String(key)})
		if isNotFound(err) {
			return false, nil
		} else if err != nil {
			return false, err
		}

		return true, nil
	})
	if err != nil {
		return "", err
	}

	return ObjectURI(bucketName, key), nil
}

// ArtifactExists reports whether bucketName already holds an object under key.
func (s *Store) ArtifactExists(ctx context.Context, bucketName string, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucketName), Key: aws.String(key)})
	if isNotFound(err) {
		return false, nil
	} else if err != nil {
		return false, fmt.Errorf("checking s3://%s/%s: %w", bucketName, key, err)
	}

	return true, nil
}

// DeleteArtifact removes an uploaded artifact.
func (s *Store) DeleteArtifact(ctx context.Context, bucketName string, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucketName), Key: aws.String(key)})
	if err != nil {
		return fmt.Errorf("deleting s3://%s/%s: %w", bucketName, key, err)
	}

	return nil
}

// CheckArchive rejects artifacts whose file name does not end in .tar.gz. The content is not inspected.
func CheckArchive(localPath string) error {
	if !strings.HasSuffix(strings.ToLower(filepath.Base(localPath)), ArchiveExtension) {
		return fmt.Errorf("%w: '%s' must be a %s file", ErrUnsupportedArchive, filepath.Base(localPath), ArchiveExtension)
	}

	return nil
}

// ArtifactKey returns the object key for an artifact: <name>/<version>/<filename>.
func ArtifactKey(name string, version string, localPath string) string {
	return path.Join(name, version, filepath.Base(localPath))
}

// ObjectURI formats an s3:// path.
func ObjectURI(bucketName string, key string) string {
	return fmt.Sprintf("s3://%s/%s", bucketName, key)
}

func isNotFound(err error) bool {
	if err == nil {
		return false
	}

	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	return errors.As(err, &notFound) ||
		errors.As(err, &noSuchKey) ||
		errors.As(err, &noSuchBucket) ||
		awssdk.IsErrorCode(err, "NotFound", "NoSuchKey", "NoSuchBucket")
}
