// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package deploy

import (
	"context"
	"fmt"
	"log"

	"go.uber.org/multierr"
)

// compensation undoes one per-deployment resource.
type compensation struct {
	description string
	undo        func(ctx context.Context) error
}

// compensations is a stack of undo actions.
type compensations struct {
	actions []compensation
}

func (c *compensations) push(description string, undo func(ctx context.Context) error) {
	c.actions = append(c.actions, compensation{description: description, undo: undo})
}

// run executes every action, most recent first. Failures do not stop the remaining actions and are returned
// combined, one error per action.
func (c *compensations) run(ctx context.Context) (undone []string, err error) {
	for i := len(c.actions) - 1; i >= 0; i-- {
		action := c.actions[i]
		if undoErr := action.undo(ctx); undoErr != nil {
			log.Printf("failed to remove %s: %v", action.description, undoErr)
			err = multierr.Append(err, fmt.Errorf("removing %s: %w", action.description, undoErr))
			continue
		}

		undone = append(undone, action.description)
	}

	c.actions = nil
	return undone, err
}

func (c *compensations) pending() []string {
	descriptions := make([]string, 0, len(c.actions))
	for i := len(c.actions) - 1; i >= 0; i-- {
		descriptions = append(descriptions, c.actions[i].description)
	}

	return descriptions
}
