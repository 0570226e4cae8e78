package console

import (
	"context"
	"sync"
)

// State is the load state of a page or modal.
type State string

const (
	StateLoading State = "loading"
	StateError   State = "error"
	StateReady   State = "ready"
)

// Snapshot is the renderable state of a Loader. Exactly one of Error and Data
// is meaningful, selected by State.
type Snapshot[T any] struct {
	State State    `json:"state"`
	Data  T        `json:"data"`
	Error *Failure `json:"error,omitempty"`

	err error
}

// Err returns the error behind Error, or nil.
func (s Snapshot[T]) Err() error { return s.err }

// Loader tracks one fetch-and-render cycle. Each Run takes a new generation;
// a result whose generation is no longer current is dropped, so an unmounted
// view is never written to by a late response.
type Loader[T any] struct {
	mu        sync.Mutex
	gen       uint64
	state     State
	data      T
	err       error
	retryable bool
}

// NewLoader returns a loader in the loading state. retryable marks errors as
// worth a retry button.
func NewLoader[T any](retryable bool) *Loader[T] {
	return &Loader[T]{state: StateLoading, retryable: retryable}
}

// Run fetches and records the result if no newer Run or Unmount happened
// in the meantime.
func (l *Loader[T]) Run(ctx context.Context, fetch func(context.Context) (T, error)) Snapshot[T] {
	gen := l.begin()
	data, err := fetch(ctx)
	l.finish(gen, data, err)
	return l.Snapshot()
}

func (l *Loader[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.reset()
	return l.gen
}

// finish reports whether the result was applied.
func (l *Loader[T]) finish(gen uint64, data T, err error) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return false
	}
	if err != nil {
		var zero T
		l.state, l.data, l.err = StateError, zero, err
		return true
	}
	l.state, l.data, l.err = StateReady, data, nil
	return true
}

// Unmount discards the current state and any load still in flight.
func (l *Loader[T]) Unmount() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gen++
	l.reset()
}

func (l *Loader[T]) reset() {
	var zero T
	l.state, l.data, l.err = StateLoading, zero, nil
}

// Snapshot returns the current state.
func (l *Loader[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot[T]{State: l.state, Data: l.data, Error: NewFailure(l.err, l.retryable), err: l.err}
}
