// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package actions holds the result types shared by sageturner commands and prints them.
package actions

import (
	"context"
	"errors"

	"github.com/sageturner/sageturner/internal"
	"github.com/sageturner/sageturner/pkg/input"
	"github.com/sageturner/sageturner/pkg/output"
)

// Action runs one invocation of a command once its flags are parsed.
type Action interface {
	Run(ctx context.Context) (*ActionResult, error)
}

// ActionResult is what a command reports on success. Commands that write structured output return nil.
type ActionResult struct {
	Message *ResultMessage
}

// ResultMessage is printed as a SUCCESS line followed by optional detail.
type ResultMessage struct {
	Header   string
	FollowUp string
}

// ShowActionResults prints err, with its suggestion when it carries one, or the success message of result.
func ShowActionResults(ctx context.Context, console input.Console, result *ActionResult, err error) {
	if err != nil {
		console.Message(ctx, output.WithErrorFormat("ERROR: %s", err.Error()))

		var withSuggestion *internal.ErrorWithSuggestion
		if errors.As(err, &withSuggestion) {
			console.Message(ctx, withSuggestion.Suggestion)
		}
		return
	}

	if result == nil || result.Message == nil {
		return
	}

	console.Message(ctx, output.WithSuccessFormat("SUCCESS: %s", result.Message.Header))
	if result.Message.FollowUp != "" {
		console.Message(ctx, result.Message.FollowUp)
	}
}
