// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import "github.com/fatih/color"

// Console text styles. Each takes a format string and its arguments, like fmt.Sprintf.
var (
	// WithHighLightFormat marks resource names and ARNs.
	WithHighLightFormat = color.CyanString
	WithErrorFormat     = color.RedString
	WithWarningFormat   = color.YellowString
	WithSuccessFormat   = color.GreenString
	// WithGrayFormat is used for streamed tool output.
	WithGrayFormat = color.HiBlackString
)

// WithBackticks quotes a command or file name the way markdown does.
func WithBackticks(text string) string {
	return "`" + text + "`"
}
