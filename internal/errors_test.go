// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package internal

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ErrorWithSuggestion(t *testing.T) {
	missing := fmt.Errorf("loading sageturner.yaml: %w", os.ErrNotExist)

	wrapped := fmt.Errorf("deploying: %w", &ErrorWithSuggestion{
		Err:        missing,
		Suggestion: "Run the command from the directory holding sageturner.yaml",
	})

	require.EqualError(t, wrapped, "deploying: loading sageturner.yaml: file does not exist")
	require.ErrorIs(t, wrapped, os.ErrNotExist)

	var suggestion *ErrorWithSuggestion
	require.True(t, errors.As(wrapped, &suggestion))
	require.Equal(t, "Run the command from the directory holding sageturner.yaml", suggestion.Suggestion)
}
