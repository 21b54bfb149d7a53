// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deploy

import (
	"regexp"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sageturner/sageturner/pkg/modelconfig"
	"github.com/stretchr/testify/require"
)

func Test_TimestampNaming(t *testing.T) {
	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2026, time.March, 4, 23, 59, 1, 0, time.FixedZone("UTC-2", -2*60*60)))

	token, err := NewTimestampNaming(mockClock).Token(&modelconfig.Config{Name: "demo"})
	require.NoError(t, err)
	require.Equal(t, "20260305-0159", token)

	mockClock.Add(time.Minute)
	next, err := NewTimestampNaming(mockClock).Token(&modelconfig.Config{Name: "demo"})
	require.NoError(t, err)
	require.NotEqual(t, token, next)
}

func Test_RandomNaming(t *testing.T) {
	naming := &RandomNaming{}

	first, err := naming.Token(&modelconfig.Config{Name: "demo"})
	require.NoError(t, err)
	second, err := naming.Token(&modelconfig.Config{Name: "demo"})
	require.NoError(t, err)

	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{8}$`), first)
	require.NotEqual(t, first, second)
}

func Test_HashNaming(t *testing.T) {
	naming := &HashNaming{}
	cfg := &modelconfig.Config{
		Name: "demo",
		Compute: modelconfig.ComputeSpec{
			Serverless: &modelconfig.ServerlessSpec{Memory: 2048, MaxConcurrency: 5},
		},
	}

	first, err := naming.Token(cfg)
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), first)

	again, err := naming.Token(cfg)
	require.NoError(t, err)
	require.Equal(t, first, again)

	cfg.Compute.Serverless.Memory = 4096
	changed, err := naming.Token(cfg)
	require.NoError(t, err)
	require.NotEqual(t, first, changed)
}

func Test_NewNamingStrategy(t *testing.T) {
	for _, name := range NamingStrategies {
		t.Run(name, func(t *testing.T) {
			strategy, err := NewNamingStrategy(name, clock.NewMock())
			require.NoError(t, err)
			require.NotNil(t, strategy)
		})
	}

	strategy, err := NewNamingStrategy("HASH", clock.NewMock())
	require.NoError(t, err)
	require.IsType(t, &HashNaming{}, strategy)

	_, err = NewNamingStrategy("sequential", clock.NewMock())
	require.Error(t, err)
	require.Contains(t, err.Error(), "sequential")
}

func Test_NewIdentity(t *testing.T) {
	identity := NewIdentity("my-model", "20261017-1504")

	require.Equal(t, "20261017-1504", identity.Token)
	require.Equal(t, "my-model-20261017-1504", identity.ModelVersionName)
	require.Equal(t, identity.ModelVersionName, identity.EndpointName)
	require.Equal(t, "my-model-20261017-1504-config", identity.EndpointConfigName)
}

func Test_IdentityFitsNameLimit(t *testing.T) {
	name := "m"
	for len(name) < modelconfig.MaxNameLength {
		name += "x"
	}

	for _, token := range []string{"20261017-1504", "0123abcd", "0123456789ab"} {
		identity := NewIdentity(name, token)
		require.LessOrEqual(t, len(identity.EndpointConfigName), 63)
	}
}
