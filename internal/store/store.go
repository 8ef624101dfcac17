// Package store holds per-view in-memory snapshots of records fetched
// from the upstream backend. Each view session owns its own copy; there
// is no shared cache across views, so two live views may diverge until
// each refreshes.
//
// Loads carry a generation token. A load that completes under a
// superseded generation is discarded, so a stale list response can
// never overwrite a newer one. Closing a view cancels any in-flight
// load.
package store

import (
	"context"
	"sync"
)

// View is one screen's working copy of a single entity collection,
// keyed by id. All methods are safe for concurrent use.
type View[K comparable, T any] struct {
	mu         sync.Mutex
	ctx        context.Context
	cancel     context.CancelFunc
	generation uint64
	pending    int
	order      []K
	items      map[K]T
	key        func(T) K
	err        error
}

// NewView creates an empty view session. Loads started from it are
// cancelled when the view is closed or the parent context ends.
func NewView[K comparable, T any](parent context.Context, key func(T) K) *View[K, T] {
	ctx, cancel := context.WithCancel(parent)
	return &View[K, T]{
		ctx:    ctx,
		cancel: cancel,
		items:  make(map[K]T),
		key:    key,
	}
}

// Begin starts a load and supersedes any load still in flight. The
// returned context must be passed to the fetch; the token must be
// handed back to Complete or Fail.
func (v *View[K, T]) Begin() (context.Context, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.generation++
	v.pending++
	return v.ctx, v.generation
}

// Complete installs the fetched collection if the token is still
// current. A stale completion is discarded and reported as false.
func (v *View[K, T]) Complete(token uint64, items []T) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending--
	if token != v.generation {
		return false
	}
	v.order = v.order[:0]
	v.items = make(map[K]T, len(items))
	for _, item := range items {
		k := v.key(item)
		if _, dup := v.items[k]; !dup {
			v.order = append(v.order, k)
		}
		v.items[k] = item
	}
	v.err = nil
	return true
}

// Fail records a load failure if the token is still current.
func (v *View[K, T]) Fail(token uint64, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.pending--
	if token != v.generation {
		return false
	}
	v.err = err
	return true
}

// Load runs fetch under a fresh generation and installs the result.
// Callers racing each other are serialized by the token check: whichever
// Begin ran last wins, regardless of completion order.
func (v *View[K, T]) Load(fetch func(context.Context) ([]T, error)) error {
	ctx, token := v.Begin()
	items, err := fetch(ctx)
	if err != nil {
		v.Fail(token, err)
		return err
	}
	v.Complete(token, items)
	return nil
}

// Snapshot returns the records in their fetched order.
func (v *View[K, T]) Snapshot() []T {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]T, 0, len(v.order))
	for _, k := range v.order {
		out = append(out, v.items[k])
	}
	return out
}

// Get looks up a single record by id.
func (v *View[K, T]) Get(k K) (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	item, ok := v.items[k]
	return item, ok
}

// Put upserts a record, appending new ids at the end. Used after a
// successful create/update round-trip.
func (v *View[K, T]) Put(item T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	k := v.key(item)
	if _, exists := v.items[k]; !exists {
		v.order = append(v.order, k)
	}
	v.items[k] = item
}

// Delete removes a record by id.
func (v *View[K, T]) Delete(k K) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, exists := v.items[k]; !exists {
		return
	}
	delete(v.items, k)
	for i, existing := range v.order {
		if existing == k {
			v.order = append(v.order[:i], v.order[i+1:]...)
			break
		}
	}
}

// Loading reports whether any load is still in flight.
func (v *View[K, T]) Loading() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.pending > 0
}

// Err returns the error of the most recent current-generation load.
func (v *View[K, T]) Err() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.err
}

// Close tears the view down and cancels in-flight loads, so nothing
// mutates the view after its owner is gone.
func (v *View[K, T]) Close() {
	v.cancel()
}
