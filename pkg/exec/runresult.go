// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package exec

import (
	"fmt"
	"strings"
)

// RunResult holds what a finished process left behind.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func NewRunResult(code int, stdout, stderr string) RunResult {
	return RunResult{ExitCode: code, Stdout: stdout, Stderr: stderr}
}

// ExitError reports a process that ran to completion with a non-zero exit code.
type ExitError struct {
	Cmd      string
	ExitCode int

	stdout string
	stderr string
}

func NewExitError(cmd string, exitCode int, stdout string, stderr string) error {
	return &ExitError{Cmd: cmd, ExitCode: exitCode, stdout: stdout, stderr: stderr}
}

// Error names the command and carries the last thing it printed. Docker and most CLIs explain failures on
// stderr, so stdout is only used when stderr is empty.
func (e *ExitError) Error() string {
	detail := strings.TrimSpace(e.stderr)
	if detail == "" {
		detail = strings.TrimSpace(e.stdout)
	}

	if detail == "" {
		return fmt.Sprintf("%s exited with code %d", e.Cmd, e.ExitCode)
	}

	return fmt.Sprintf("%s exited with code %d: %s", e.Cmd, e.ExitCode, detail)
}

func (e *ExitError) StderrOutput() string {
	return e.stderr
}
