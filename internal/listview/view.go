// Package listview implements the generic live-collection pattern shared
// by every management screen: fetch rows, hold {items, state, error},
// refetch after successful mutations, and accept invalidations from the
// realtime feed. One View instance backs one long-lived listing.
package listview

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// State is the lifecycle of a view. No state is terminal; the view lives
// for the whole session.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrClosed is returned when operating on a closed view.
var ErrClosed = errors.New("listview: view is closed")

// Fetcher loads the current rows for the view. The closure carries the
// active filter; swapping the fetcher is how a filter change happens.
type Fetcher[T any] func(ctx context.Context) ([]T, error)

// View holds the rows and lifecycle state of one listing.
//
// Concurrency contract: any number of goroutines may call Refresh (the
// realtime invalidator does), but a fetch response is applied only if no
// newer refresh started meanwhile — a slow early response can never
// overwrite a faster later one.
type View[T any] struct {
	mu     sync.Mutex
	fetch  Fetcher[T]
	items  []T
	state  State
	err    error
	gen    uint64
	closed bool
	logger *zap.Logger
}

// New creates an idle view. Call Refresh to load it.
func New[T any](fetch Fetcher[T], logger *zap.Logger) *View[T] {
	return &View[T]{fetch: fetch, state: StateIdle, logger: logger}
}

// Snapshot returns the current rows, state and error. The returned slice
// is shared; callers must treat it as read-only.
func (v *View[T]) Snapshot() ([]T, State, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.items, v.state, v.err
}

// Refresh fetches the rows and applies them unless a newer refresh
// superseded this one or the view was closed meanwhile. On fetch failure
// the view goes errored but keeps its previous rows, consistently.
func (v *View[T]) Refresh(ctx context.Context) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.gen++
	gen := v.gen
	v.state = StateLoading
	fetch := v.fetch
	v.mu.Unlock()

	rows, err := fetch(ctx)

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed || gen != v.gen {
		// Stale response: a newer refresh owns the state now.
		return nil
	}
	if err != nil {
		v.state = StateErrored
		v.err = err
		if v.logger != nil {
			v.logger.Warn("listview: fetch failed", zap.Error(err))
		}
		return err
	}
	v.items = rows
	v.err = nil
	v.state = StateReady
	return nil
}

// SetFetcher swaps the fetcher (a filter change) and refetches.
func (v *View[T]) SetFetcher(ctx context.Context, fetch Fetcher[T]) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.fetch = fetch
	v.mu.Unlock()
	return v.Refresh(ctx)
}

// Mutate runs a write (create, update or delete) and refetches on
// success. A failed write sets errored and deliberately does NOT
// refetch: the listing keeps showing the state from before the failed
// write instead of a half-applied one.
func (v *View[T]) Mutate(ctx context.Context, write func(ctx context.Context) error) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.mu.Unlock()

	if err := write(ctx); err != nil {
		v.mu.Lock()
		if !v.closed {
			v.state = StateErrored
			v.err = err
		}
		v.mu.Unlock()
		return err
	}
	return v.Refresh(ctx)
}

// Close marks the view disposed. Late fetch responses are dropped and
// every further operation returns ErrClosed.
func (v *View[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.closed = true
	v.gen++ // orphan any in-flight fetch
}
