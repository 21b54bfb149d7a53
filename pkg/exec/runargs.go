// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exec

import (
	"io"
)

// RunArgs describes one process invocation. The With* helpers return a modified copy, so a base RunArgs can be
// shared between calls.
type RunArgs struct {
	Cmd  string
	Args []string
	Cwd  string
	// Env is appended to the environment of the current process.
	Env []string

	// Stdout and Stderr receive a live copy of the process output. The captured text is still returned in
	// RunResult.
	Stdout io.Writer
	Stderr io.Writer

	StdIn io.Reader

	// SensitiveData is replaced with a redaction marker before the command line is logged.
	SensitiveData []string
}

func NewRunArgs(cmd string, args ...string) RunArgs {
	return RunArgs{Cmd: cmd, Args: args}
}

func (r RunArgs) AppendParams(params ...string) RunArgs {
	r.Args = append(append([]string{}, r.Args...), params...)
	return r
}

func (r RunArgs) WithCwd(cwd string) RunArgs {
	r.Cwd = cwd
	return r
}

func (r RunArgs) WithEnv(env []string) RunArgs {
	r.Env = env
	return r
}

func (r RunArgs) WithStdIn(stdIn io.Reader) RunArgs {
	r.StdIn = stdIn
	return r
}

func (r RunArgs) WithStdOut(w io.Writer) RunArgs {
	r.Stdout = w
	return r
}

func (r RunArgs) WithStdErr(w io.Writer) RunArgs {
	r.Stderr = w
	return r
}

func (r RunArgs) WithSensitiveData(data ...string) RunArgs {
	r.SensitiveData = append(append([]string{}, r.SensitiveData...), data...)
	return r
}
