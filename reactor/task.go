package reactor

import (
	"context"
	"iter"
)

// Task is the coroutine return object of spec §4.3: it drives a coroutine
// function, intercepting every [Awaitable] the coroutine awaits and
// resuming the coroutine once that Awaitable settles. It begins executing
// on the next loop tick after SpawnTask returns (no initial suspension,
// but deferred so an immediate Cancel can still prevent it from ever
// running). A dropped Task whose coroutine is still running simply keeps
// running to completion and is then reclaimed by the garbage collector
// once nothing references it — Go has no destructor hook to make that
// observable the way the spec's detached frame state is, so this module
// does not track it (see DESIGN.md).
type Task[RetType any] struct {
	loop    *EventLoop
	yielder func(Futurer) bool

	next       func() (Futurer, bool)
	stop       func()
	ctx        context.Context
	cancel     context.CancelCauseFunc
	pendingFut Futurer
	resultFut  *Promise[RetType]
}

// SpawnTask starts coro as a background task on the [EventLoop] found in
// ctx.
func SpawnTask[RetType any](ctx context.Context, coro Coroutine2[RetType]) *Task[RetType] {
	ctx, cancel := context.WithCancelCause(ctx)
	task := &Task[RetType]{
		loop:      RunningLoop(ctx),
		resultFut: NewPromise[RetType](),
		ctx:       ctx,
		cancel:    cancel,
	}

	// the entirety of the coroutine illusion is predicated on this
	// iter.Pull call: the generator body runs coro synchronously,
	// and every Awaitable it awaits flows out through yield.
	next, stop := iter.Pull(func(yield func(Futurer) bool) {
		task.yielder = yield
		task.resultFut.Resolve(coro(ctx))
	})
	task.resultFut.AddDoneCallback(func(err error) {
		if task.pendingFut != nil {
			task.pendingFut.Cancel(nil)
		}
		task.cancel(err)
	})
	task.next = next
	task.stop = stop

	// defer the first step() until control returns to the loop, so an
	// immediate Cancel keeps the coroutine from running at all.
	task.loop.RunCallback(func() {
		if task.resultFut.HasResult() {
			return
		} else if err := context.Cause(ctx); err != nil {
			task.resultFut.Cancel(err)
		} else {
			task.step()
		}
	})
	return task
}

// step advances the coroutine until its next Await/Yield.
func (t *Task[_]) step() (ok bool) {
	t.loop.withTask(t, func() {
		t.pendingFut, ok = t.next()
	})
	if ok {
		if t.pendingFut != nil {
			t.pendingFut.AddDoneCallback(func(err error) {
				t.step()
			})
		} else {
			t.loop.RunCallback(func() {
				t.step()
			})
		}
		return true
	}
	t.pendingFut = nil
	t.stop()
	return false
}

// Stop aborts the coroutine, preventing any further awaits. Prefer
// [Futurer.Cancel].
func (t *Task[_]) Stop() {
	t.stop()
}

func (t *Task[_]) yield(childCtx context.Context, fut Futurer) error {
	// the most delicate part of this package; changes here affect the
	// cancellation semantics of every task.

	if err := context.Cause(t.ctx); err != nil {
		t.resultFut.Cancel(err)
		if fut != nil {
			fut.Cancel(err)
		}
		return t.Err()
	}

	if err := childCtx.Err(); err != nil {
		if fut != nil {
			fut.Cancel(err)
		}
		return t.Err()
	}

	if !t.yielder(fut) {
		t.resultFut.Cancel(nil)
		return t.Err()
	}

	if err := context.Cause(t.ctx); err != nil {
		t.resultFut.Cancel(err)
		return t.Err()
	}
	if err := childCtx.Err(); err != nil {
		t.resultFut.Cancel(err)
		return t.Err()
	}
	return nil
}

// HasResult implements [Futurer].
func (t *Task[_]) HasResult() bool {
	return t.resultFut.HasResult()
}

// Result implements [Awaitable].
func (t *Task[RetType]) Result() (RetType, error) {
	return t.resultFut.Result()
}

// Err implements [Futurer].
func (t *Task[_]) Err() error {
	return t.resultFut.Err()
}

// Future implements [Awaitable].
func (t *Task[RetType]) Future() *Promise[RetType] {
	return t.resultFut
}

// Await implements [Awaitable].
func (t *Task[RetType]) Await(ctx context.Context) (RetType, error) {
	return t.resultFut.Await(ctx)
}

// MustAwait implements [Awaitable].
func (t *Task[RetType]) MustAwait(ctx context.Context) RetType {
	return t.resultFut.MustAwait(ctx)
}

// Shield implements [Awaitable].
func (t *Task[RetType]) Shield() *Promise[RetType] {
	return t.resultFut.Shield()
}

// WriteResultTo implements [Awaitable].
func (t *Task[RetType]) WriteResultTo(dst *RetType) Awaitable[RetType] {
	t.resultFut.WriteResultTo(dst)
	return t
}

// Cancel implements [Futurer].
func (t *Task[_]) Cancel(err error) {
	t.resultFut.Cancel(err)
}

// AddResultCallback implements [Awaitable].
func (t *Task[RetType]) AddResultCallback(callback func(result RetType, err error)) Awaitable[RetType] {
	t.resultFut.AddResultCallback(callback)
	return t
}

// AddDoneCallback implements [Futurer].
func (t *Task[_]) AddDoneCallback(callback func(error)) Futurer {
	t.resultFut.AddDoneCallback(callback)
	return t
}
