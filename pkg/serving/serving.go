// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package serving registers models and provisions SageMaker endpoints.
package serving

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker"
	"github.com/aws/aws-sdk-go-v2/service/sagemaker/types"
	"github.com/sageturner/sageturner/pkg/modelconfig"
)

// VariantName names the single production variant of every endpoint configuration.
const VariantName = "variant-1"

// SageMakerAPI is the subset of the SageMaker client used to register models and endpoints.
type SageMakerAPI interface {
	CreateModel(
		ctx context.Context, params *sagemaker.CreateModelInput, optFns ...func(*sagemaker.Options),
	) (*sagemaker.CreateModelOutput, error)
	DeleteModel(
		ctx context.Context, params *sagemaker.DeleteModelInput, optFns ...func(*sagemaker.Options),
	) (*sagemaker.DeleteModelOutput, error)
	CreateEndpointConfig(
		ctx context.Context, params *sagemaker.CreateEndpointConfigInput, optFns ...func(*sagemaker.Options),
	) (*sagemaker.CreateEndpointConfigOutput, error)
	DeleteEndpointConfig(
		ctx context.Context, params *sagemaker.DeleteEndpointConfigInput, optFns ...func(*sagemaker.Options),
	) (*sagemaker.DeleteEndpointConfigOutput, error)
	CreateEndpoint(
		ctx context.Context, params *sagemaker.CreateEndpointInput, optFns ...func(*sagemaker.Options),
	) (*sagemaker.CreateEndpointOutput, error)
}

// Service talks to SageMaker hosting.
type Service struct {
	client SageMakerAPI
}

func NewService(client SageMakerAPI) *Service {
	return &Service{client: client}
}

// RegisterModel registers imageRef as the model versionName, executed as roleArn. When artifactPath is not empty it
// becomes the model data location mounted into the container.
func (s *Service) RegisterModel(
	ctx context.Context, versionName string, roleArn string, imageRef string, artifactPath string,
) (string, error) {
	container := &types.ContainerDefinition{
		Image: aws.String(imageRef),
	}
	if artifactPath != "" {
		container.ModelDataUrl = aws.String(artifactPath)
	}

	_, err := s.client.CreateModel(ctx, &sagemaker.CreateModelInput{
		ModelName:        aws.String(versionName),
		ExecutionRoleArn: aws.String(roleArn),
		PrimaryContainer: container,
	})
	if err != nil {
		return "", fmt.Errorf("creating model %s: %w", versionName, err)
	}

	log.Printf("registered model %s with image %s", versionName, imageRef)
	return versionName, nil
}

// DeleteModel removes a registered model.
func (s *Service) DeleteModel(ctx context.Context, modelName string) error {
	_, err := s.client.DeleteModel(ctx, &sagemaker.DeleteModelInput{ModelName: aws.String(modelName)})
	if err != nil {
		return fmt.Errorf("deleting model %s: %w", modelName, err)
	}

	return nil
}

// EndpointConfigRequest describes the endpoint configuration to create for a registered model.
type EndpointConfigRequest struct {
	ConfigName   string
	ModelName    string
	RoleArn      string
	EndpointType modelconfig.EndpointType
	Compute      modelconfig.ComputeSpec
}

// CreateEndpointConfig creates a single-variant endpoint configuration. Serverless configurations carry memory and
// concurrency settings. Server configurations carry the instance shape and the execution role.
func (s *Service) CreateEndpointConfig(ctx context.Context, request EndpointConfigRequest) error {
	variant := types.ProductionVariant{
		VariantName: aws.String(VariantName),
		ModelName:   aws.String(request.ModelName),
	}

	input := &sagemaker.CreateEndpointConfigInput{
		EndpointConfigName: aws.String(request.ConfigName),
	}

	switch request.EndpointType {
	case modelconfig.EndpointTypeServerless:
		serverless := request.Compute.Serverless
		if serverless == nil {
			return errors.New("serverless endpoint requested without serverless compute")
		}

		variant.ServerlessConfig = &types.ProductionVariantServerlessConfig{
			MemorySizeInMB: aws.Int32(serverless.Memory),
			MaxConcurrency: aws.Int32(serverless.MaxConcurrency),
		}
		if serverless.ProvisionedConcurrency > 0 {
			variant.ServerlessConfig.ProvisionedConcurrency = aws.Int32(serverless.ProvisionedConcurrency)
		}
	case modelconfig.EndpointTypeServer:
		server := request.Compute.Server
		if server == nil {
			return errors.New("server endpoint requested without server compute")
		}

		variant.InstanceType = types.ProductionVariantInstanceType(server.InstanceType)
		variant.InitialInstanceCount = aws.Int32(server.EffectiveInitialInstanceCount())
		input.ExecutionRoleArn = aws.String(request.RoleArn)
	default:
		return fmt.Errorf("unsupported endpoint type '%s'", request.EndpointType)
	}

	input.ProductionVariants = []types.ProductionVariant{variant}

	if _, err := s.client.CreateEndpointConfig(ctx, input); err != nil {
		return fmt.Errorf("creating endpoint configuration %s: %w", request.ConfigName, err)
	}

	log.Printf("created %s endpoint configuration %s", request.EndpointType, request.ConfigName)
	return nil
}

// DeleteEndpointConfig removes an endpoint configuration.
func (s *Service) DeleteEndpointConfig(ctx context.Context, configName string) error {
	_, err := s.client.DeleteEndpointConfig(ctx, &sagemaker.DeleteEndpointConfigInput{
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return fmt.Errorf("deleting endpoint configuration %s: %w", configName, err)
	}

	return nil
}

// CreateEndpoint starts creating endpointName from configName and returns its ARN. The endpoint is not InService
// when this returns.
func (s *Service) CreateEndpoint(ctx context.Context, endpointName string, configName string) (string, error) {
	output, err := s.client.CreateEndpoint(ctx, &sagemaker.CreateEndpointInput{
		EndpointName:       aws.String(endpointName),
		EndpointConfigName: aws.String(configName),
	})
	if err != nil {
		return "", fmt.Errorf("creating endpoint %s: %w", endpointName, err)
	}

	return aws.ToString(output.EndpointArn), nil
}
