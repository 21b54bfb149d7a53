// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package identity ensures the execution role assumed by SageMaker exists.
package identity

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/sageturner/sageturner/pkg/awssdk"
)

const (
	// DefaultRoleName is used when no role override or user default is configured.
	DefaultRoleName = "sageturner-role"

	// SageMakerPolicyArn is the managed policy attached to newly created roles.
	SageMakerPolicyArn = "arn:aws:iam::aws:policy/AmazonSageMakerFullAccess"

	// RoleWaitTimeout bounds the wait for a new role to become readable.
	RoleWaitTimeout = 10 * time.Second
)

// AssumeRolePolicy scopes sts:AssumeRole to the SageMaker service principal.
const AssumeRolePolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"Service": "sagemaker.amazonaws.com"},
      "Action": "sts:AssumeRole"
    }
  ]
}`

// IAMAPI is the subset of the IAM client used to provision the execution role.
type IAMAPI interface {
	CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error)
	GetRole(ctx context.Context, params *iam.GetRoleInput, optFns ...func(*iam.Options)) (*iam.GetRoleOutput, error)
	AttachRolePolicy(
		ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options),
	) (*iam.AttachRolePolicyOutput, error)
}

// Provisioner creates or reuses the execution role.
type Provisioner struct {
	client       IAMAPI
	waitTimeout  time.Duration
	pollInterval time.Duration
}

func NewProvisioner(client IAMAPI) *Provisioner {
	return &Provisioner{
		client:       client,
		waitTimeout:  RoleWaitTimeout,
		pollInterval: time.Second,
	}
}

// EnsureRole returns the ARN of roleName, creating it with the SageMaker trust policy and managed policy when it
// does not exist. A new role is only returned once it is readable.
func (p *Provisioner) EnsureRole(ctx context.Context, roleName string) (string, error) {
	createOutput, err := p.client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(roleName),
		AssumeRolePolicyDocument: aws.String(AssumeRolePolicy),
		Description:              aws.String("Execution role for models deployed by sageturner"),
	})

	var existsErr *types.EntityAlreadyExistsException
	if errors.As(err, &existsErr) || awssdk.IsErrorCode(err, "EntityAlreadyExists") {
		log.Printf("role %s already exists, reusing it", roleName)
		getOutput, err := p.client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
		if err != nil {
			return "", fmt.Errorf("getting existing role %s: %w", roleName, err)
		}

		return aws.ToString(getOutput.Role.Arn), nil
	} else if err != nil {
		return "", fmt.Errorf("creating role %s: %w", roleName, err)
	}

	_, err = p.client.AttachRolePolicy(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(roleName),
		PolicyArn: aws.String(SageMakerPolicyArn),
	})
	if err != nil {
		return "", fmt.Errorf("attaching %s to role %s: %w", SageMakerPolicyArn, roleName, err)
	}

	err = awssdk.WaitUntil(ctx, "role "+roleName, p.waitTimeout, p.pollInterval, func(ctx context.Context) (bool, error) {
		_, err := p.client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(roleName)})
		var notFound *types.NoSuchEntityException
		if errors.As(err, &notFound) || awssdk.IsErrorCode(err, "NoSuchEntity") {
			return false, nil
		} else if err != nil {
			return false, err
		}

		return true, nil
	})
	if err != nil {
		return "", err
	}

	return aws.ToString(createOutput.Role.Arn), nil
}

// IsRoleArn reports whether nameOrArn is a role ARN rather than a role name.
func IsRoleArn(nameOrArn string) bool {
	// arn:aws:iam::123456789012:role/path/name
	return strings.HasPrefix(nameOrArn, "arn:") && strings.Contains(nameOrArn, ":role/")
}
