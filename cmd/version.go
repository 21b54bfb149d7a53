// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"runtime"

	"github.com/sageturner/sageturner/cmd/actions"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/input"
	"github.com/sageturner/sageturner/pkg/output"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

type versionFlags struct {
	outputFormat string
}

func (v *versionFlags) Bind(local *pflag.FlagSet, _ *internal.GlobalCommandOptions) {
	formats := []output.Format{output.JsonFormat, output.NoneFormat}
	output.AddOutputFlag(local, &v.outputFormat, formats, output.NoneFormat)
}

func versionCmdDesign(global *internal.GlobalCommandOptions) (*cobra.Command, *versionFlags) {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the sageturner version.",
		Args:  cobra.NoArgs,
	}

	flags := &versionFlags{}
	flags.Bind(cmd.Flags(), global)

	return cmd, flags
}

type versionAction struct {
	console   input.Console
	formatter output.Formatter
}

func newVersionAction(console input.Console, flags *versionFlags, _ []string) (actions.Action, error) {
	formatter, err := output.NewFormatter(flags.outputFormat)
	if err != nil {
		return nil, err
	}

	return &versionAction{console: console, formatter: formatter}, nil
}

func (v *versionAction) Run(ctx context.Context) (*actions.ActionResult, error) {
	if v.formatter.Kind() == output.JsonFormat {
		return nil, v.formatter.Format(internal.GetVersionSpec(), v.console.Writer(), nil)
	}

	fmt.Fprintf(v.console.Writer(), "sageturner version %s (%s %s/%s)\n",
		internal.Version, runtime.Version(), runtime.GOOS, runtime.GOARCH)
	return nil, nil
}
