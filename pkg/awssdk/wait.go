// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package awssdk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrWaitTimeout is returned when a resource does not become visible within the allotted time.
var ErrWaitTimeout = errors.New("timed out waiting for resource")

var errNotReady = errors.New("resource not ready")

// Probe reports whether the awaited resource is visible. A non-nil error aborts the wait.
type Probe func(ctx context.Context) (bool, error)

// WaitUntil polls probe every interval until it reports ready, fails, or timeout elapses.
func WaitUntil(ctx context.Context, description string, timeout time.Duration, interval time.Duration, probe Probe) error {
	attempt := 0
	err := retry.Do(ctx, retry.WithMaxDuration(timeout, retry.NewConstant(interval)), func(ctx context.Context) error {
		attempt++
		ready, err := probe(ctx)
		if err != nil {
			return err
		}

		if !ready {
			log.Printf("%s not visible yet (attempt %d)", description, attempt)
			return retry.RetryableError(errNotReady)
		}

		return nil
	})

	if errors.Is(err, errNotReady) {
		return fmt.Errorf("%w: %s not visible after %s", ErrWaitTimeout, description, timeout)
	}

	return err
}
