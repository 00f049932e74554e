package reactor

import (
	"context"
	"errors"
)

// ErrNotReady is returned from Result when a Promise has not yet resolved.
var ErrNotReady = errors.New("reactor: promise is still pending")

// Coroutine1 is a coroutine that can return only an error.
type Coroutine1 func(ctx context.Context) error

// SpawnTask starts this coroutine as a background [Task].
func (c Coroutine1) SpawnTask(ctx context.Context) *Task[any] {
	return SpawnTask[any](ctx, func(ctx context.Context) (any, error) {
		return nil, c(ctx)
	})
}

// Coroutine2 is a coroutine that returns a value or an error.
type Coroutine2[R any] func(ctx context.Context) (R, error)

// SpawnTask starts this coroutine as a background [Task].
func (c Coroutine2[R]) SpawnTask(ctx context.Context) *Task[R] {
	return SpawnTask(ctx, c)
}

// Futurer is an untyped view of an [Awaitable], used to store heterogeneous
// awaitables (e.g. in the reactor's own bookkeeping) without a type
// parameter.
type Futurer interface {
	// HasResult reports whether this Futurer has settled, successfully or
	// not.
	HasResult() bool
	// Err returns a non-nil error if this Futurer was cancelled or failed.
	Err() error
	// AddDoneCallback registers callback to run once this Futurer settles,
	// or immediately if it already has.
	AddDoneCallback(callback func(error)) Futurer
	// Cancel settles this Futurer with err (or [context.Canceled] if err is
	// nil). A no-op if already settled.
	Cancel(err error)
}

// tasker is an untyped view of a [Task], used by [EventLoop.Yield].
type tasker interface {
	Futurer
	yield(ctx context.Context, fut Futurer) error
}

// Awaitable is anything that can be awaited from within a running [Task]:
// [Promise] and [Task] both implement it.
type Awaitable[T any] interface {
	Futurer
	// Await suspends the calling task until this Awaitable settles,
	// returning its value or error. If the calling task or ctx is
	// cancelled first, this Awaitable is cancelled too — see [Shield] to
	// avoid that.
	Await(ctx context.Context) (T, error)
	// MustAwait is [Awaitable.Await] but panics on error.
	MustAwait(ctx context.Context) T
	// Shield returns a [Promise] that settles with this Awaitable's result
	// but is not cancelled if this Awaitable's owner cancels it.
	Shield() *Promise[T]
	// AddResultCallback registers a type-aware callback for when this
	// Awaitable settles, or immediately if it already has.
	AddResultCallback(callback func(result T, err error)) Awaitable[T]
	// WriteResultTo arranges for a successful result to be written to dst.
	WriteResultTo(dst *T) Awaitable[T]
	// Future returns the underlying [Promise] backing this Awaitable.
	Future() *Promise[T]
	// Result returns the settled value, or [ErrNotReady] if still pending.
	Result() (T, error)
}

// Promise is the tri-state synchronization slot of spec §3/§4.2: empty,
// waiting (a continuation is registered), or ready (a value is stored).
// Resolving while waiting synchronously invokes the registered
// continuations exactly once; consuming before ready, or resolving twice,
// is a programmer error (ErrNotReady / a silently ignored second Resolve,
// since Go has no assert statement to trap it at the call site).
type Promise[T any] struct {
	done      bool
	result    T
	err       error
	callbacks []func(T, error)
}

// NewPromise returns a new, empty [Promise].
func NewPromise[T any]() *Promise[T] {
	return &Promise[T]{}
}

// HasResult implements [Futurer]; true once Ready.
func (p *Promise[T]) HasResult() bool {
	return p.done
}

// Ready reports whether this Promise has settled (spec's ready()).
func (p *Promise[T]) Ready() bool {
	return p.done
}

// Err implements [Futurer].
func (p *Promise[T]) Err() error {
	return p.err
}

// Result implements [Awaitable]; this is spec's consume(), generalized to
// be safely callable before Ready (returning ErrNotReady) rather than
// asserting, since a caller may legitimately poll it.
func (p *Promise[T]) Result() (T, error) {
	if p.done {
		return p.result, p.err
	}
	var zero T
	return zero, ErrNotReady
}

// Future implements [Awaitable]; a Promise is its own backing future.
func (p *Promise[T]) Future() *Promise[T] {
	return p
}

// AddDoneCallback implements [Futurer].
func (p *Promise[T]) AddDoneCallback(callback func(error)) Futurer {
	p.AddResultCallback(func(_ T, err error) {
		callback(err)
	})
	return p
}

// AddResultCallback implements [Awaitable]; this is spec's wait(continuation)
// when the Promise is empty, or an immediate synchronous call when it is
// already ready.
func (p *Promise[T]) AddResultCallback(callback func(T, error)) Awaitable[T] {
	if p.HasResult() {
		callback(p.result, p.err)
	} else {
		p.callbacks = append(p.callbacks, callback)
	}
	return p
}

// WriteResultTo implements [Awaitable].
func (p *Promise[T]) WriteResultTo(dest *T) Awaitable[T] {
	return p.AddResultCallback(func(result T, err error) {
		if err == nil {
			*dest = result
		}
	})
}

// Await implements [Awaitable].
func (p *Promise[T]) Await(ctx context.Context) (T, error) {
	if err := RunningLoop(ctx).Yield(ctx, p); err != nil {
		var zero T
		return zero, err
	}
	return p.Result()
}

// MustAwait implements [Awaitable].
func (p *Promise[T]) MustAwait(ctx context.Context) T {
	res, err := p.Await(ctx)
	if err != nil {
		panic(err)
	}
	return res
}

// Cancel implements [Futurer].
func (p *Promise[T]) Cancel(err error) {
	if err == nil {
		err = context.Canceled
	}
	var zero T
	p.Resolve(zero, err)
}

// Shield implements [Awaitable].
func (p *Promise[T]) Shield() *Promise[T] {
	if p.HasResult() {
		return p
	}
	shielded := NewPromise[T]()
	p.AddResultCallback(func(result T, err error) {
		shielded.Resolve(result, err)
	})
	shielded.AddResultCallback(func(result T, err error) {
		if !errors.Is(err, context.Canceled) {
			p.Resolve(result, err)
		}
	})
	return shielded
}

// Resolve settles this Promise with a value or error, firing every
// registered continuation synchronously exactly once (spec §4.2). A second
// call to Resolve is a no-op — spec calls this a programmer error detectable
// via assertion; Go has no assert, so it is simply ignored here rather than
// corrupting state.
func (p *Promise[T]) Resolve(result T, err error) {
	if p.HasResult() {
		return
	}
	p.result, p.err = result, err
	p.done = true
	for _, callback := range p.callbacks {
		callback(result, err)
	}
}
