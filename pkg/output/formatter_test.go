// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package output

import (
	"bytes"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)
	require.Equal(t, JsonFormat, f.Kind())

	f, err = NewFormatter("none")
	require.NoError(t, err)
	require.Equal(t, NoneFormat, f.Kind())
	require.Error(t, f.Format(struct{}{}, &bytes.Buffer{}, nil))

	_, err = NewFormatter("table")
	require.Error(t, err)
}

func TestJsonFormatter(t *testing.T) {
	obj := struct {
		Model    string `json:"model"`
		Endpoint string `json:"endpoint"`
	}{"demo-20261017-1504", "demo-20261017-1504"}

	var buf bytes.Buffer
	require.NoError(t, (&JsonFormatter{}).Format(obj, &buf, nil))
	require.Equal(t, "{\n  \"model\": \"demo-20261017-1504\",\n  \"endpoint\": \"demo-20261017-1504\"\n}\n", buf.String())
}

func TestAddOutputFlag(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	var target string
	AddOutputFlag(flags, &target, []Format{JsonFormat, NoneFormat}, NoneFormat)

	require.Equal(t, "none", target)
	require.NoError(t, flags.Parse([]string{"-o", "json"}))
	require.Equal(t, "json", target)
	require.Contains(t, flags.Lookup("output").Usage, "json, none")
}
