// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sageturner/sageturner/cmd/actions"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/config"
	"github.com/sageturner/sageturner/pkg/input"
	"github.com/sageturner/sageturner/pkg/output"
	"github.com/spf13/cobra"
)

func newUserConfigManager() config.UserConfigManager {
	return config.NewUserConfigManager(config.NewFileConfigManager(config.NewManager()))
}

// Setup config command category
func configCmd(rootOptions *internal.GlobalCommandOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "config",
		Short: "Manage sageturner configuration",
		Long: heredoc.Docf(`
			Manage user wide sageturner defaults, stored in ~/.sageturner/config.json. Set
			SAGETURNER_CONFIG_DIR to use another directory.

			Well known paths:
				%s	AWS region used when --region is not passed
				%s	bucket used when the manifest has no sagemaker_overrides.bucket
				%s	role used when the manifest has no sagemaker_overrides.role`,
			config.DefaultRegionPath, config.DefaultBucketPath, config.DefaultRolePath),
	}

	root.AddCommand(BuildCmd(rootOptions, configShowCmdDesign, newConfigShowAction))
	root.AddCommand(BuildCmd(rootOptions, configGetCmdDesign, newConfigGetAction))
	root.AddCommand(BuildCmd(rootOptions, configSetCmdDesign, newConfigSetAction))
	root.AddCommand(BuildCmd(rootOptions, configUnsetCmdDesign, newConfigUnsetAction))

	root.Flags().BoolP("help", "h", false, fmt.Sprintf("Gets help for %s.", root.Name()))

	return root
}

// sageturner config show

func configShowCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Shows all configuration values",
		Args:  cobra.NoArgs,
	}

	return cmd, &struct{}{}
}

type configShowAction struct {
	configManager config.UserConfigManager
	formatter     output.Formatter
	console       input.Console
}

func newConfigShowAction(console input.Console, _ *struct{}, _ []string) (actions.Action, error) {
	return &configShowAction{
		configManager: newUserConfigManager(),
		formatter:     &output.JsonFormatter{},
		console:       console,
	}, nil
}

// Executes the `sageturner config show` action
func (a *configShowAction) Run(ctx context.Context) (*actions.ActionResult, error) {
	userConfig, err := a.configManager.Load()
	if err != nil {
		return nil, err
	}

	if err := a.formatter.Format(userConfig.Raw(), a.console.Writer(), nil); err != nil {
		return nil, fmt.Errorf("failing formatting config values: %w", err)
	}

	return nil, nil
}

// sageturner config get <path>

func configGetCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "get <path>",
		Short: "Gets a configuration",
		Args:  cobra.ExactArgs(1),
	}

	return cmd, &struct{}{}
}

type configGetAction struct {
	configManager config.UserConfigManager
	formatter     output.Formatter
	console       input.Console
	args          []string
}

func newConfigGetAction(console input.Console, _ *struct{}, args []string) (actions.Action, error) {
	return &configGetAction{
		configManager: newUserConfigManager(),
		formatter:     &output.JsonFormatter{},
		console:       console,
		args:          args,
	}, nil
}

// Executes the `sageturner config get <path>` action
func (a *configGetAction) Run(ctx context.Context) (*actions.ActionResult, error) {
	userConfig, err := a.configManager.Load()
	if err != nil {
		return nil, err
	}

	key := a.args[0]
	value, ok := userConfig.Get(key)
	if !ok {
		return nil, fmt.Errorf("no value stored at path '%s'", key)
	}

	if err := a.formatter.Format(value, a.console.Writer(), nil); err != nil {
		return nil, fmt.Errorf("failing formatting config values: %w", err)
	}

	return nil, nil
}

// sageturner config set <path> <value>

func configSetCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "set <path> <value>",
		Short: "Sets a configuration",
		Args:  cobra.ExactArgs(2),
	}

	return cmd, &struct{}{}
}

type configSetAction struct {
	configManager config.UserConfigManager
	args          []string
}

func newConfigSetAction(_ input.Console, _ *struct{}, args []string) (actions.Action, error) {
	return &configSetAction{
		configManager: newUserConfigManager(),
		args:          args,
	}, nil
}

// Executes the `sageturner config set <path> <value>` action
func (a *configSetAction) Run(ctx context.Context) (*actions.ActionResult, error) {
	userConfig, err := a.configManager.Load()
	if err != nil {
		return nil, err
	}

	path := a.args[0]
	value := a.args[1]

	if err := userConfig.Set(path, value); err != nil {
		return nil, fmt.Errorf("failed setting configuration value '%s' to '%s'. %w", path, value, err)
	}

	if err := a.configManager.Save(userConfig); err != nil {
		return nil, fmt.Errorf("failed saving configuration. %w", err)
	}

	return nil, nil
}

// sageturner config unset <path>

func configUnsetCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *struct{}) {
	cmd := &cobra.Command{
		Use:   "unset <path>",
		Short: "Unsets a configuration",
		Args:  cobra.ExactArgs(1),
	}

	return cmd, &struct{}{}
}

type configUnsetAction struct {
	configManager config.UserConfigManager
	args          []string
}

func newConfigUnsetAction(_ input.Console, _ *struct{}, args []string) (actions.Action, error) {
	return &configUnsetAction{
		configManager: newUserConfigManager(),
		args:          args,
	}, nil
}

// Executes the `sageturner config unset <path>` action
func (a *configUnsetAction) Run(ctx context.Context) (*actions.ActionResult, error) {
	userConfig, err := a.configManager.Load()
	if err != nil {
		return nil, err
	}

	path := a.args[0]
	if err := userConfig.Unset(path); err != nil {
		return nil, fmt.Errorf("failed removing configuration with path '%s'. %w", path, err)
	}

	if err := a.configManager.Save(userConfig); err != nil {
		return nil, fmt.Errorf("failed saving configuration. %w", err)
	}

	return nil, nil
}
