// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const outputFlagName = "output"

// AddOutputFlag binds --output/-o to target, documenting the supported formats.
func AddOutputFlag(f *pflag.FlagSet, target *string, supportedFormats []Format, defaultFormat Format) {
	formatNames := make([]string, len(supportedFormats))
	for i, format := range supportedFormats {
		formatNames[i] = string(format)
	}

	description := fmt.Sprintf("The output format (the supported formats are %s).", strings.Join(formatNames, ", "))
	f.StringVarP(target, outputFlagName, "o", string(defaultFormat), description)
}
