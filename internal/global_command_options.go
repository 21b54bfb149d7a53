// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

// GlobalCommandOptions holds the persistent flags of the root command.
type GlobalCommandOptions struct {
	// Cwd is entered before the command runs and left afterwards.
	Cwd string

	// EnableDebugLogging sends the standard logger, including AWS request logs, to stderr.
	EnableDebugLogging bool

	// Region is the AWS region to deploy to. When empty the user config default and then the AWS default chain
	// apply.
	Region string

	// NoPrompt accepts default answers instead of prompting.
	NoPrompt bool

	// TraceLogFile is the path of a file where pipeline spans are written as JSON. Hidden flag.
	TraceLogFile string
}
