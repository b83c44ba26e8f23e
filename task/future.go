// Package task provides a small future type for pipelines that fan work out
// onto a Pool and join it back.
//
// A Future completes exactly once with one of three outcomes:
//
//   - a value (the error is nil),
//   - an error,
//   - stopped: the pipeline was torn down before the value was needed.
//     Stopped futures carry an error matching [ErrStopped].
//
// Futures compose with [Then] (sequencing) and [WhenAll] (parallel join).
// Continuations run on whichever goroutine completes the future they wait on,
// so a continuation of a pooled task runs on that task's worker.
package task

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// ErrStopped marks the stopped outcome.
var ErrStopped = errors.New("task: stopped")

// IsStopped reports whether err is the stopped outcome.
func IsStopped(err error) bool { return errors.Is(err, ErrStopped) }

// Outcome classifies how a future completed.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// OutcomeOf classifies the error returned by a future.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return Succeeded
	case IsStopped(err):
		return Cancelled
	}
	return Failed
}

// PanicError is the error of a task whose function panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("task panicked: %v", e.Value) }

func stopped(cause error) error {
	if cause == nil {
		return ErrStopped
	}
	return fmt.Errorf("%w: %w", ErrStopped, cause)
}

// Future is the eventual result of a computation.
type Future[T any] struct {
	mu        sync.Mutex
	done      chan struct{}
	resolved  bool
	val       T
	err       error
	callbacks []func()
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// resolve completes f. Only the first call has an effect.
func (f *Future[T]) resolve(v T, err error) {
	f.mu.Lock()
	if f.resolved {
		f.mu.Unlock()
		return
	}
	f.resolved = true
	f.val, f.err = v, err
	cbs := f.callbacks
	f.callbacks = nil
	close(f.done)
	f.mu.Unlock()

	for _, cb := range cbs {
		cb()
	}
}

// onDone runs cb once f is complete, immediately if it already is.
func (f *Future[T]) onDone(cb func()) {
	f.mu.Lock()
	if !f.resolved {
		f.callbacks = append(f.callbacks, cb)
		f.mu.Unlock()
		return
	}
	f.mu.Unlock()
	cb()
}

// Done is closed once f is complete.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Result blocks until f completes.
func (f *Future[T]) Result() (T, error) {
	<-f.done
	return f.val, f.err
}

// Await blocks until f completes or ctx is done. In the latter case the
// stopped outcome is returned and f keeps running unobserved.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, stopped(context.Cause(ctx))
	}
}

// Just returns a future that already holds v.
func Just[T any](v T) *Future[T] {
	f := newFuture[T]()
	f.resolve(v, nil)
	return f
}

// Fail returns a future that already failed with err.
func Fail[T any](err error) *Future[T] {
	f := newFuture[T]()
	var zero T
	f.resolve(zero, err)
	return f
}

// Stopped returns a future that is already stopped.
func Stopped[T any]() *Future[T] {
	f := newFuture[T]()
	var zero T
	f.resolve(zero, ErrStopped)
	return f
}

// protect runs fn, turning a panic into a *PanicError.
func protect[T any](fn func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v, err = zero, &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}

// Spawn schedules fn on p. If ctx is done before a worker picks the job up,
// fn never runs and the future is stopped.
func Spawn[T any](ctx context.Context, p *Pool, fn func(context.Context) (T, error)) *Future[T] {
	f := newFuture[T]()
	var zero T
	if err := ctx.Err(); err != nil {
		f.resolve(zero, stopped(context.Cause(ctx)))
		return f
	}

	err := p.Submit(ctx, func() {
		if ctx.Err() != nil {
			f.resolve(zero, stopped(context.Cause(ctx)))
			return
		}
		v, err := protect(func() (T, error) { return fn(ctx) })
		if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
			err = stopped(err)
		}
		f.resolve(v, err)
	})
	if err != nil {
		f.resolve(zero, stopped(err))
	}
	return f
}

// Then runs fn on the value of f. Errors and the stopped outcome pass through
// without calling fn.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	g := newFuture[U]()
	f.onDone(func() {
		if f.err != nil {
			var zero U
			g.resolve(zero, f.err)
			return
		}
		g.resolve(protect(func() (U, error) { return fn(f.val) }))
	})
	return g
}

// WhenAll joins fs. It succeeds with every value in argument order once all
// succeed, fails with the first error as soon as one fails, and is stopped
// if ctx is done first. Futures still running after a failure or stop are
// not waited for and their values are dropped.
func WhenAll[T any](ctx context.Context, fs ...*Future[T]) *Future[[]T] {
	g := newFuture[[]T]()
	if len(fs) == 0 {
		g.resolve([]T{}, nil)
		return g
	}

	values := make([]T, len(fs))
	var remaining atomic.Int64
	remaining.Store(int64(len(fs)))

	for i, f := range fs {
		f.onDone(func() {
			if f.err != nil {
				g.resolve(nil, f.err)
				return
			}
			values[i] = f.val
			if remaining.Add(-1) == 0 {
				g.resolve(values, nil)
			}
		})
	}

	if ctx.Done() != nil {
		go func() {
			select {
			case <-ctx.Done():
				g.resolve(nil, stopped(context.Cause(ctx)))
			case <-g.done:
			}
		}()
	}
	return g
}
