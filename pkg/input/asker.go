// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package input

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
)

// Asker answers a survey prompt, writing the answer through response.
type Asker func(p survey.Prompt, response interface{}) error

// NewAsker picks how prompts are answered: with their defaults when noPrompt is set, with survey on a
// terminal, and by reading a line from r otherwise.
func NewAsker(noPrompt bool, isTerminal bool, w io.Writer, r io.Reader) Asker {
	switch {
	case noPrompt:
		return answerWithDefault
	case isTerminal:
		return askInteractive
	default:
		return func(p survey.Prompt, response interface{}) error {
			return askLine(p, response, w, r)
		}
	}
}

func answerWithDefault(p survey.Prompt, response interface{}) error {
	confirm, ok := p.(*survey.Confirm)
	if !ok {
		return fmt.Errorf("no default answer for %T", p)
	}

	*(response.(*bool)) = confirm.Default
	return nil
}

func askInteractive(p survey.Prompt, response interface{}) error {
	return survey.AskOne(p, response, survey.WithIcons(func(icons *survey.IconSet) {
		icons.Question.Format = "blue+b"
		icons.Help.Format = "black+h"
		icons.Help.Text = "Hint:"
		icons.MarkedOption.Text = "[" + color.GreenString("✓") + "]"
		icons.MarkedOption.Format = ""
	}))
}

// askLine handles confirmations when stdin is a pipe.
func askLine(p survey.Prompt, response interface{}, w io.Writer, r io.Reader) error {
	confirm, ok := p.(*survey.Confirm)
	if !ok {
		return fmt.Errorf("cannot prompt for %T without a terminal", p)
	}

	choices := "y/N"
	if confirm.Default {
		choices = "Y/n"
	}
	fmt.Fprintf(w, "%s (%s) ", confirm.Message, choices)

	line, err := readLine(r)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("reading answer: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	switch answer {
	case "":
		*(response.(*bool)) = confirm.Default
	case "y", "yes":
		*(response.(*bool)) = true
	case "n", "no":
		*(response.(*bool)) = false
	default:
		return fmt.Errorf("'%s' is not a valid answer, expected y or n", answer)
	}

	return nil
}

// readLine reads one byte at a time so that nothing after the newline is consumed from r.
func readLine(r io.Reader) (string, error) {
	var line strings.Builder
	next := make([]byte, 1)

	for {
		n, err := r.Read(next)
		if n == 1 {
			if next[0] == '\n' {
				return line.String(), nil
			}
			line.WriteByte(next[0])
		}

		if err != nil {
			return line.String(), err
		}
	}
}
