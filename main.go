// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"

	"github.com/mattn/go-colorable"
	"github.com/sageturner/sageturner/cmd"
	"github.com/spf13/pflag"
)

func main() {
	// Ctrl+C cancels the running stage; compensation still runs on a detached context.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	restoreColors := colorable.EnableColorsStdout(nil)

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if !debugRequested(os.Args[1:]) {
		log.SetOutput(io.Discard)
	}

	err := cmd.NewRootCmd().ExecuteContext(ctx)

	stop()
	restoreColors()
	if err != nil {
		os.Exit(1)
	}
}

// debugRequested reports whether --debug is on the command line. It runs before cobra so that logging is set up
// while the command tree is built.
func debugRequested(args []string) bool {
	var debug, help bool

	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.BoolVar(&debug, "debug", false, "")
	// without its own help flag pflag fails with ErrHelp on --help
	flags.BoolVarP(&help, "help", "h", false, "")

	if err := flags.Parse(args); err != nil {
		log.Printf("pre-parsing flags: %v", err)
	}

	return debug
}
