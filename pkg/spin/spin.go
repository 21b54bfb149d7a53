// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package spin shows a terminal spinner while a deployment stage runs.
package spin

import (
	"fmt"
	"io"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/theckman/yacspin"
)

// writer is where spinners render. Tests replace it with a buffer.
var writer io.Writer = colorable.NewColorableStdout()

type Spinner struct {
	spinner *yacspin.Spinner
	out     io.Writer
}

func config(title string, out io.Writer) yacspin.Config {
	return yacspin.Config{
		Writer:            out,
		Frequency:         200 * time.Millisecond,
		CharSet:           yacspin.CharSets[33],
		Suffix:            " " + title,
		SuffixAutoColon:   true,
		StopCharacter:     "(✓) Done",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "(x) Failed",
		StopFailColors:    []string{"fgRed"},
	}
}

// New creates a stopped spinner titled title.
func New(title string) *Spinner {
	spinner, err := yacspin.New(config(title, writer))
	if err != nil {
		// only reachable with an invalid config, which config() never produces
		panic(fmt.Errorf("creating spinner: %w", err))
	}

	return &Spinner{
		spinner: spinner,
		out:     writer,
	}
}

func (s *Spinner) Start() error {
	return s.spinner.Start()
}

func (s *Spinner) Stop() error {
	return s.spinner.Stop()
}

func (s *Spinner) StopFail() error {
	return s.spinner.StopFail()
}

// Message updates the text rendered after the spinner title.
func (s *Spinner) Message(message string) {
	s.spinner.Message(message)
}

// Println writes a full line above the spinner without corrupting its frame.
func (s *Spinner) Println(message string) {
	paused := s.spinner.Pause() == nil
	fmt.Fprintln(s.out, message)
	if paused {
		_ = s.spinner.Unpause()
	}
}

// Run starts the spinner, calls work and stops the spinner with a success or failure mark.
func (s *Spinner) Run(work func() error) error {
	_ = s.Start()

	if err := work(); err != nil {
		_ = s.StopFail()
		return err
	}

	_ = s.Stop()
	return nil
}

// Run runs work under a new spinner titled title.
func Run(title string, work func() error) error {
	return New(title).Run(work)
}
