// Package worker provides bounded concurrency for catalog fan-out queries.
package worker

import (
	"context"
	"sync"
)

// Group runs functions with at most Limit in flight. It is run-scoped: create
// one per fan-out, call Go for each item and Wait once. Callers keep result
// ordering deterministic by writing into index-addressed slots, so output
// never depends on the arrival order of concurrent catalog responses.
type Group struct {
	sem chan struct{}
	wg  sync.WaitGroup

	mu       sync.Mutex
	firstErr error
}

// NewGroup creates a group with the given concurrency limit.
func NewGroup(limit int) *Group {
	if limit < 1 {
		limit = 1
	}
	return &Group{sem: make(chan struct{}, limit)}
}

// Go schedules fn, blocking while the group is at its limit. A canceled
// context skips the function and records the cancellation error.
func (g *Group) Go(ctx context.Context, fn func() error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		select {
		case g.sem <- struct{}{}:
		case <-ctx.Done():
			g.record(ctx.Err())
			return
		}
		defer func() { <-g.sem }()

		if err := ctx.Err(); err != nil {
			g.record(err)
			return
		}
		if err := fn(); err != nil {
			g.record(err)
		}
	}()
}

// Wait blocks until all scheduled functions finished and returns the first
// recorded error.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.firstErr
}

func (g *Group) record(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.firstErr == nil {
		g.firstErr = err
	}
}
