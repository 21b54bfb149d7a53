// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"log"

	"github.com/sageturner/sageturner/cmd/actions"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/input"
	"github.com/spf13/cobra"
)

// commandDesigner declares a command and the flags it binds.
type commandDesigner[F any] func(global *internal.GlobalCommandOptions) (*cobra.Command, F)

// actionInitializer creates the action for one invocation of a command, after flags have been parsed.
type actionInitializer[F any] func(console input.Console, flags F, args []string) (actions.Action, error)

// BuildCmd wires a command design to its action. The action result, or error, is printed to the console.
func BuildCmd[F any](
	global *internal.GlobalCommandOptions,
	design commandDesigner[F],
	initialize actionInitializer[F],
) *cobra.Command {
	cmd, flags := design(global)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		console := input.NewConsole(global.NoPrompt)

		action, err := initialize(console, flags, args)
		if err != nil {
			actions.ShowActionResults(ctx, console, nil, err)
			return err
		}

		log.Printf("running %s", cmd.CommandPath())
		result, err := action.Run(ctx)
		actions.ShowActionResults(ctx, console, result, err)
		return err
	}

	return cmd
}
