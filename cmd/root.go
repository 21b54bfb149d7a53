// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/internal/tracing"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the sageturner command tree.
func NewRootCmd() *cobra.Command {
	prevDir := ""
	opts := &internal.GlobalCommandOptions{}
	var traceProvider *tracing.FileProvider

	cmd := &cobra.Command{
		Use:   "sageturner",
		Short: "Deploy a model to a SageMaker endpoint with one command",
		Long: heredoc.Doc(`
			sageturner builds a serving container for your model, pushes it to ECR, registers it with
			SageMaker and creates an endpoint, described by a single sageturner.yaml manifest.

			To deploy your own inference code in a generated container:

				$ sageturner deploy -c sageturner.yaml --mode generate --endpoint serverless

			To deploy a container you build yourself:

				$ sageturner deploy -c sageturner.yaml --mode provide --endpoint server

			Run "sageturner setup" once per account and region to create the shared role and bucket.`),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.Cwd != "" {
				wd, err := os.Getwd()
				if err != nil {
					return err
				}
				if err := os.Chdir(opts.Cwd); err != nil {
					return fmt.Errorf("changing directory to %s: %w", opts.Cwd, err)
				}
				prevDir = wd
			}

			log.SetFlags(log.LstdFlags | log.Lshortfile)
			if !opts.EnableDebugLogging {
				log.SetOutput(io.Discard)
			}

			if opts.TraceLogFile == "" {
				return nil
			}

			provider, err := tracing.NewFileProvider(opts.TraceLogFile)
			if err != nil {
				return err
			}
			traceProvider = provider
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if traceProvider != nil {
				if err := traceProvider.Shutdown(cmd.Context()); err != nil {
					log.Printf("flushing trace log: %v", err)
				}
			}

			// tests run many commands in one process, so --cwd must not leak
			if prevDir != "" {
				return os.Chdir(prevDir)
			}

			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.Flags().BoolP("help", "h", false, "Help for "+cmd.Name())

	global := cmd.PersistentFlags()
	global.StringVarP(&opts.Cwd, "cwd", "C", "", "Run as if sageturner was started in this directory")
	global.BoolVar(&opts.EnableDebugLogging, "debug", false, "Log every AWS call and external command")
	global.StringVar(&opts.Region, "region", "", "AWS region, overriding defaults.region and the AWS profile")
	global.BoolVar(&opts.NoPrompt, "no-prompt", false, "Answer every question with its default")
	global.StringVar(&opts.TraceLogFile, "trace-log-file", "", "Write a span for every deployment stage to this file")
	_ = global.MarkHidden("trace-log-file")

	cmd.AddCommand(BuildCmd(opts, deployCmdDesign, newDeployAction))
	cmd.AddCommand(BuildCmd(opts, setupCmdDesign, newSetupAction))
	cmd.AddCommand(configCmd(opts))
	cmd.AddCommand(BuildCmd(opts, versionCmdDesign, newVersionAction))

	return cmd
}

// Execute runs a fresh command tree with args in place of os.Args.
func Execute(args []string) error {
	root := NewRootCmd()
	root.SetArgs(args)
	return root.Execute()
}
