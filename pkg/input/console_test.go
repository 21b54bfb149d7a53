// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package input

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_ConfirmNoPromptUsesDefault(t *testing.T) {
	var out bytes.Buffer
	console := NewConsoleWithIO(true, false, &out, strings.NewReader("n\n"))

	ok, err := console.Confirm(context.Background(), ConsoleOptions{Message: "Continue?", DefaultValue: true})
	require.NoError(t, err)
	require.True(t, ok)
	require.Empty(t, out.String())
}

func Test_ConfirmFromReader(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		def      bool
		expected bool
		wantErr  bool
	}{
		{name: "Yes", input: "y\n", expected: true},
		{name: "YesWord", input: "YES\n", expected: true},
		{name: "No", input: "no\n", def: true, expected: false},
		{name: "EmptyUsesDefault", input: "\n", def: true, expected: true},
		{name: "EOFUsesDefault", input: "", expected: false},
		{name: "Invalid", input: "maybe\n", wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var out bytes.Buffer
			console := NewConsoleWithIO(false, false, &out, strings.NewReader(test.input))

			ok, err := console.Confirm(context.Background(), ConsoleOptions{Message: "Continue?", DefaultValue: test.def})
			if test.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, test.expected, ok)
			require.Contains(t, out.String(), "Continue?")
		})
	}
}

func Test_Messages(t *testing.T) {
	var out bytes.Buffer
	console := NewConsoleWithIO(true, false, &out, strings.NewReader(""))

	console.Message(context.Background(), "hello")
	console.WarningMessage(context.Background(), "careful")

	require.Contains(t, out.String(), "hello\n")
	require.Contains(t, out.String(), "WARNING: careful")
	require.Same(t, &out, console.Writer())
}
