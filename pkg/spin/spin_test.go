// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package spin

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	previous := writer
	buf := &bytes.Buffer{}
	writer = buf
	t.Cleanup(func() { writer = previous })

	return buf
}

func Test_Run(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		captureOutput(t)
		ran := false

		err := Run("Ensuring role sageturner-role", func() error {
			ran = true
			return nil
		})

		require.NoError(t, err)
		require.True(t, ran)
	})

	t.Run("Failure", func(t *testing.T) {
		captureOutput(t)

		err := Run("Ensuring bucket sageturner-sagemaker", func() error {
			return errors.New("access denied")
		})

		require.EqualError(t, err, "access denied")
	})
}

func Test_PrintlnWhileSpinning(t *testing.T) {
	out := captureOutput(t)

	spinner := New("Pushing container image")
	require.NoError(t, spinner.Start())

	spinner.Println("WARNING: digest could not be resolved")
	spinner.Message("latest: digest: sha256:abc")

	require.NoError(t, spinner.Stop())
	require.Contains(t, out.String(), "WARNING: digest could not be resolved")
}
