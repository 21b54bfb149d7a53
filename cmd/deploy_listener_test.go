// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
)

func Test_Truncate(t *testing.T) {
	require.Equal(t, "#5 exporting layers", truncate("#5 exporting layers", maxProgressWidth))

	ascii := strings.Repeat("a", maxProgressWidth+10)
	require.Equal(t, strings.Repeat("a", maxProgressWidth-3)+"...", truncate(ascii, maxProgressWidth))

	// multi-byte characters are never split
	wide := strings.Repeat("─", maxProgressWidth+1)
	truncated := truncate(wide, maxProgressWidth)
	require.True(t, utf8.ValidString(truncated))
	require.Equal(t, maxProgressWidth, utf8.RuneCountInString(truncated))

	exact := strings.Repeat("é", maxProgressWidth)
	require.Equal(t, exact, truncate(exact, maxProgressWidth))
}
