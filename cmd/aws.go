// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ecr"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/awssdk"
	"github.com/sageturner/sageturner/pkg/config"
	"github.com/sageturner/sageturner/pkg/containerregistry"
	"github.com/sageturner/sageturner/pkg/deploy"
	"github.com/sageturner/sageturner/pkg/identity"
	"github.com/sageturner/sageturner/pkg/serving"
	"github.com/sageturner/sageturner/pkg/storage"
)

// awsServices are the SDK backed capabilities bound to one account and region.
type awsServices struct {
	region   string
	identity *identity.Provisioner
	storage  *storage.Store
	registry *containerregistry.Registry
	serving  *serving.Service
}

// newAWSServices resolves the region from --region, then the user config, then the AWS default chain, and creates
// one client per service. No remote call is made.
func newAWSServices(
	ctx context.Context, global *internal.GlobalCommandOptions, userConfig config.Config,
) (*awsServices, error) {
	region := global.Region
	if region == "" {
		if value, has := userConfig.GetString(config.DefaultRegionPath); has {
			region = value
		}
	}

	cfg, err := awssdk.NewConfig(ctx, awssdk.ConfigOptions{
		Region: region,
		Debug:  global.EnableDebugLogging,
		AppID:  internal.UserAgent(),
	})
	if err != nil {
		return nil, err
	}

	return &awsServices{
		region:   cfg.Region,
		identity: identity.NewProvisioner(iam.NewFromConfig(cfg)),
		storage:  storage.NewS3Store(s3.NewFromConfig(cfg), cfg.Region),
		registry: containerregistry.NewRegistry(ecr.NewFromConfig(cfg)),
		serving:  serving.NewService(sagemaker.NewFromConfig(cfg)),
	}, nil
}

// defaultResourceNames reads the user wide bucket and role defaults.
func defaultResourceNames(userConfig config.Config) deploy.ResourceNames {
	var names deploy.ResourceNames
	if bucket, has := userConfig.GetString(config.DefaultBucketPath); has {
		names.Bucket = bucket
	}
	if role, has := userConfig.GetString(config.DefaultRolePath); has {
		names.Role = role
	}

	return names
}
