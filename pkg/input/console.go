// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package input

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sageturner/sageturner/pkg/output"
)

type Console interface {
	// Message prints a line to the console.
	Message(ctx context.Context, message string)
	// WarningMessage prints a highlighted warning line to the console.
	WarningMessage(ctx context.Context, message string)
	// Confirm asks a yes/no question. With prompting disabled the default value is returned.
	Confirm(ctx context.Context, options ConsoleOptions) (bool, error)
	// Writer is where command results are written.
	Writer() io.Writer
}

type ConsoleOptions struct {
	Message      string
	DefaultValue bool
}

type AskerConsole struct {
	asker  Asker
	writer io.Writer
}

func (c *AskerConsole) Message(ctx context.Context, message string) {
	fmt.Fprintln(c.writer, message)
}

func (c *AskerConsole) WarningMessage(ctx context.Context, message string) {
	fmt.Fprintln(c.writer, output.WithWarningFormat("WARNING: %s", message))
}

func (c *AskerConsole) Confirm(ctx context.Context, options ConsoleOptions) (bool, error) {
	prompt := &survey.Confirm{
		Message: options.Message,
		Default: options.DefaultValue,
	}

	var response bool
	if err := c.asker(prompt, &response); err != nil {
		return false, err
	}

	return response, nil
}

func (c *AskerConsole) Writer() io.Writer {
	return c.writer
}

// NewConsole creates a console bound to the process stdin and stdout.
// Prompting is disabled when noPrompt is set or stdin is not a terminal.
func NewConsole(noPrompt bool) Console {
	isTerminal := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	writer := colorable.NewColorableStdout()

	return NewConsoleWithIO(noPrompt || !isTerminal, isTerminal, writer, os.Stdin)
}

func NewConsoleWithIO(noPrompt bool, isTerminal bool, w io.Writer, r io.Reader) Console {
	return &AskerConsole{
		asker:  NewAsker(noPrompt, isTerminal, w, r),
		writer: w,
	}
}
