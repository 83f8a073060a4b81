package remote

import (
	"context"
	"sync"
)

// Result is the outcome of a one-shot task: a value or a failure reason.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the task succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Task is a one-shot asynchronous call. It runs exactly once, is never
// retried, and cannot be aborted once started other than through the
// context it was started with.
type Task[T any] struct {
	done   chan struct{}
	once   sync.Once
	result Result[T]
}

// Go starts fn on its own goroutine. onDone, when non-nil, runs with the
// result before Done is closed, so a waiter always observes its effects.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error), onDone func(Result[T])) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	go func() {
		v, err := fn(ctx)
		t.finish(Result[T]{Value: v, Err: err}, onDone)
	}()
	return t
}

// Completed returns a task that has already finished with r.
func Completed[T any](r Result[T]) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}
	t.finish(r, nil)
	return t
}

func (t *Task[T]) finish(r Result[T], onDone func(Result[T])) {
	t.once.Do(func() {
		t.result = r
		if onDone != nil {
			onDone(r)
		}
		close(t.done)
	})
}

// Done is closed once the task has finished and its callback has run.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Result returns the outcome and whether the task has finished.
func (t *Task[T]) Result() (Result[T], bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return Result[T]{}, false
	}
}

// Wait blocks until the task finishes or ctx is done. Giving up on the wait
// does not stop the task.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.result.Value, t.result.Err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
