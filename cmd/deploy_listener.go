// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"log"
	"strings"
	"sync"

	"github.com/sageturner/sageturner/pkg/deploy"
	"github.com/sageturner/sageturner/pkg/input"
	"github.com/sageturner/sageturner/pkg/output"
	"github.com/sageturner/sageturner/pkg/spin"
)

// maxProgressWidth bounds the tool output shown next to a spinner.
const maxProgressWidth = 60

// spinnerListener renders one spinner per deployment stage.
type spinnerListener struct {
	console input.Console

	mu      sync.Mutex
	spinner *spin.Spinner
}

func newSpinnerListener(console input.Console) *spinnerListener {
	return &spinnerListener{console: console}
}

func (l *spinnerListener) StageStarted(stage deploy.Stage) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.spinner = spin.New(stage.Title())
	_ = l.spinner.Start()
}

func (l *spinnerListener) StageCompleted(stage deploy.Stage, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.spinner == nil {
		return
	}

	if err != nil {
		_ = l.spinner.StopFail()
	} else {
		_ = l.spinner.Stop()
	}
	l.spinner = nil
}

func (l *spinnerListener) Warning(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.spinner != nil {
		l.spinner.Println(output.WithWarningFormat("WARNING: %s", message))
		return
	}

	l.console.WarningMessage(context.Background(), message)
}

// progress shows the latest line of docker output next to the running spinner.
func (l *spinnerListener) progress(line string) {
	log.Println(line)

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}
	line = truncate(line, maxProgressWidth)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.spinner != nil {
		l.spinner.Message(output.WithGrayFormat(line))
	}
}

// truncate shortens line to at most width runes, marking the cut with an ellipsis.
func truncate(line string, width int) string {
	runes := []rune(line)
	if len(runes) <= width {
		return line
	}

	return string(runes[:width-3]) + "..."
}
