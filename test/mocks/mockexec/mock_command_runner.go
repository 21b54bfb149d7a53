// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package mockexec

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/sageturner/sageturner/pkg/exec"
)

// MockCommandRunner is a CommandRunner whose responses are registered with When.
type MockCommandRunner struct {
	mu          sync.Mutex
	expressions []*CommandExpression
	invocations []exec.RunArgs
}

// CommandExpression pairs a predicate with the response returned for commands it matches.
type CommandExpression struct {
	runner    *MockCommandRunner
	predicate func(args exec.RunArgs, command string) bool
	respondFn func(args exec.RunArgs) (exec.RunResult, error)
}

func NewMockCommandRunner() *MockCommandRunner {
	return &MockCommandRunner{}
}

// When registers a new expression. Later registrations take precedence over earlier ones.
func (m *MockCommandRunner) When(predicate func(args exec.RunArgs, command string) bool) *CommandExpression {
	m.mu.Lock()
	defer m.mu.Unlock()

	expr := &CommandExpression{
		runner:    m,
		predicate: predicate,
	}
	m.expressions = append(m.expressions, expr)
	return expr
}

// Respond returns the given result for matching commands.
func (e *CommandExpression) Respond(result exec.RunResult) *MockCommandRunner {
	e.respondFn = func(exec.RunArgs) (exec.RunResult, error) {
		return result, nil
	}
	return e.runner
}

// RespondFn computes the response from the run arguments.
func (e *CommandExpression) RespondFn(fn func(args exec.RunArgs) (exec.RunResult, error)) *MockCommandRunner {
	e.respondFn = fn
	return e.runner
}

// SetError fails matching commands with err.
func (e *CommandExpression) SetError(err error) *MockCommandRunner {
	e.respondFn = func(exec.RunArgs) (exec.RunResult, error) {
		return exec.NewRunResult(1, "", err.Error()), err
	}
	return e.runner
}

// Run implements exec.CommandRunner
func (m *MockCommandRunner) Run(ctx context.Context, args exec.RunArgs) (exec.RunResult, error) {
	m.mu.Lock()
	m.invocations = append(m.invocations, args)
	expressions := m.expressions
	m.mu.Unlock()

	command := strings.TrimSpace(args.Cmd + " " + strings.Join(args.Args, " "))
	for i := len(expressions) - 1; i >= 0; i-- {
		expr := expressions[i]
		if expr.predicate(args, command) {
			if expr.respondFn == nil {
				return exec.RunResult{}, nil
			}
			return expr.respondFn(args)
		}
	}

	return exec.RunResult{}, fmt.Errorf("no mock found for command: '%s'", command)
}

// Invocations returns every RunArgs seen so far, in call order.
func (m *MockCommandRunner) Invocations() []exec.RunArgs {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]exec.RunArgs(nil), m.invocations...)
}
