// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package async streams progress from long running work to an observer on another goroutine.
package async

import "sync"

// Progress carries updates from a producer to a single consumer. Create it with NewProgress.
type Progress[T comparable] struct {
	updates chan T
	once    sync.Once
}

func NewProgress[T comparable]() *Progress[T] {
	return &Progress[T]{updates: make(chan T)}
}

// Progress is closed by Done, so consumers can range over it.
func (p *Progress[T]) Progress() <-chan T {
	return p.updates
}

// Done ends the stream. Calling it again has no effect, but SetProgress must not follow it.
func (p *Progress[T]) Done() {
	p.once.Do(func() { close(p.updates) })
}

// SetProgress blocks until the consumer has taken the update.
func (p *Progress[T]) SetProgress(update T) {
	p.updates <- update
}

// RunWithProgress calls work and hands every update it reports to observer, in order, on a separate goroutine.
// It returns once work has finished and observer has seen the last update.
func RunWithProgress[T comparable, R any](observer func(T), work func(*Progress[T]) (R, error)) (R, error) {
	progress := NewProgress[T]()

	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for update := range progress.Progress() {
			observer(update)
		}
	}()

	result, err := work(progress)
	progress.Done()
	<-drained

	return result, err
}
