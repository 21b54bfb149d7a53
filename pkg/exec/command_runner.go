// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package exec runs external processes such as the docker CLI.
package exec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	osexec "os/exec"
	"regexp"
	"strings"
)

type CommandRunner interface {
	Run(ctx context.Context, args RunArgs) (RunResult, error)
}

type RunnerOptions struct {
	// DebugLogging adds the captured output of every process to the debug log.
	DebugLogging bool
}

// NewCommandRunner returns a CommandRunner backed by os/exec. A nil opt uses the zero RunnerOptions.
func NewCommandRunner(opt *RunnerOptions) CommandRunner {
	runner := &processRunner{}
	if opt != nil {
		runner.logOutput = opt.DebugLogging
	}

	return runner
}

type processRunner struct {
	logOutput bool
}

// Run starts the process and waits for it. A non-zero exit is returned as *ExitError alongside the captured
// output. Cancelling ctx kills the process.
func (r *processRunner) Run(ctx context.Context, args RunArgs) (RunResult, error) {
	var stdout, stderr bytes.Buffer

	cmd := osexec.CommandContext(ctx, args.Cmd, args.Args...)
	cmd.Dir = args.Cwd
	cmd.Stdin = args.StdIn
	cmd.Stdout = tee(&stdout, args.Stdout)
	cmd.Stderr = tee(&stderr, args.Stderr)
	if len(args.Env) > 0 {
		cmd.Env = append(os.Environ(), args.Env...)
	}

	runErr := cmd.Run()

	result := NewRunResult(-1, stdout.String(), stderr.String())
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	r.logRun(args, result)

	var exitErr *osexec.ExitError
	if errors.As(runErr, &exitErr) {
		return result, NewExitError(args.Cmd, exitErr.ExitCode(), result.Stdout, result.Stderr)
	}

	return result, runErr
}

func (r *processRunner) logRun(args RunArgs, result RunResult) {
	redactor := newRedactor(args.SensitiveData)

	var entry strings.Builder
	fmt.Fprintf(&entry, "exec: %s %s (exit code %d)",
		args.Cmd, redactor.redact(strings.Join(args.Args, " ")), result.ExitCode)

	if r.logOutput {
		for _, stream := range []struct{ name, text string }{
			{"stdout", result.Stdout},
			{"stderr", result.Stderr},
		} {
			if text := strings.TrimRight(redactor.redact(stream.text), "\n"); text != "" {
				fmt.Fprintf(&entry, "\n--- %s ---\n%s", stream.name, text)
			}
		}
	}

	log.Print(entry.String())
}

func tee(capture *bytes.Buffer, w io.Writer) io.Writer {
	if w == nil {
		return capture
	}

	return io.MultiWriter(w, capture)
}

const redactedMarker = "<redacted>"

// credentialFlags masks the value following flags that carry credentials.
var credentialFlags = regexp.MustCompile(`(--(?:username|password|secret-key)[ =])\S+`)

// redactor hides caller-declared secrets and credential flag values from log output.
type redactor struct {
	secrets []string
}

func newRedactor(secrets []string) redactor {
	var nonEmpty []string
	for _, secret := range secrets {
		if secret != "" {
			nonEmpty = append(nonEmpty, secret)
		}
	}

	return redactor{secrets: nonEmpty}
}

func (r redactor) redact(text string) string {
	for _, secret := range r.secrets {
		text = strings.ReplaceAll(text, secret, redactedMarker)
	}

	return credentialFlags.ReplaceAllString(text, "${1}"+redactedMarker)
}
