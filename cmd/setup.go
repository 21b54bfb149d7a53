// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"

	"github.com/sageturner/sageturner/cmd/actions"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/config"
	"github.com/sageturner/sageturner/pkg/deploy"
	"github.com/sageturner/sageturner/pkg/identity"
	"github.com/sageturner/sageturner/pkg/input"
	"github.com/sageturner/sageturner/pkg/modelconfig"
	"github.com/sageturner/sageturner/pkg/spin"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type setupFlags struct {
	bucket string
	role   string
	global *internal.GlobalCommandOptions
}

func (s *setupFlags) Bind(local *pflag.FlagSet, global *internal.GlobalCommandOptions) {
	local.StringVar(&s.bucket, "bucket", "", "The bucket to create (defaults to the configured or built-in bucket)")
	local.StringVar(&s.role, "role", "", "The execution role to create (defaults to the configured or built-in role)")
	s.global = global
}

func setupCmdDesign(rootOptions *internal.GlobalCommandOptions) (*cobra.Command, *setupFlags) {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Create the shared execution role and bucket used by every deployment.",
		Long: `Create the shared execution role and bucket used by every deployment.
Both are created only when missing and incur no cost. deploy creates them as well, so running setup is optional.`,
		Args: cobra.NoArgs,
	}

	flags := &setupFlags{}
	flags.Bind(cmd.Flags(), rootOptions)

	return cmd, flags
}

type bucketProvisioner interface {
	EnsureBucket(ctx context.Context, bucketName string) error
}

// setupTarget holds the capabilities setup needs.
type setupTarget struct {
	region  string
	roles   deploy.IdentityProvisioner
	buckets bucketProvisioner
}

type setupAction struct {
	flags      *setupFlags
	console    input.Console
	userConfig config.UserConfigManager
	connect    func(ctx context.Context, userConfig config.Config) (*setupTarget, error)
}

func newSetupAction(console input.Console, flags *setupFlags, _ []string) (actions.Action, error) {
	return &setupAction{
		flags:      flags,
		console:    console,
		userConfig: newUserConfigManager(),
		connect: func(ctx context.Context, userConfig config.Config) (*setupTarget, error) {
			services, err := newAWSServices(ctx, flags.global, userConfig)
			if err != nil {
				return nil, err
			}

			return &setupTarget{region: services.region, roles: services.identity, buckets: services.storage}, nil
		},
	}, nil
}

func (s *setupAction) Run(ctx context.Context) (*actions.ActionResult, error) {
	userConfig, err := s.userConfig.Load()
	if err != nil {
		return nil, fmt.Errorf("loading user config: %w", err)
	}

	names := deploy.ResolveResourceNames(
		&modelconfig.Overrides{Bucket: s.flags.bucket, Role: s.flags.role},
		defaultResourceNames(userConfig),
	)

	target, err := s.connect(ctx, userConfig)
	if err != nil {
		return nil, err
	}

	roleArn := names.Role
	if !identity.IsRoleArn(names.Role) {
		err = spin.Run(fmt.Sprintf("Ensuring role %s", names.Role), func() error {
			arn, err := target.roles.EnsureRole(ctx, names.Role)
			roleArn = arn
			return err
		})
		if err != nil {
			return nil, err
		}
	}

	err = spin.Run(fmt.Sprintf("Ensuring bucket %s", names.Bucket), func() error {
		return target.buckets.EnsureBucket(ctx, names.Bucket)
	})
	if err != nil {
		return nil, err
	}

	return &actions.ActionResult{
		Message: &actions.ResultMessage{
			Header:   fmt.Sprintf("Shared resources are ready in %s", target.region),
			FollowUp: fmt.Sprintf("  Role:   %s\n  Bucket: %s", roleArn, names.Bucket),
		},
	}, nil
}
