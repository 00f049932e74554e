package reactor

import (
	"context"
	"errors"
	"time"
)

// Sleep suspends the calling task for the given duration using
// schedule_in, returning early with ctx's error if ctx is cancelled first.
func Sleep(ctx context.Context, d time.Duration) error {
	p := NewPromise[any]()
	loop := RunningLoop(ctx)
	cb := loop.ScheduleCallback(d, func() { p.Resolve(nil, nil) })
	_, err := p.Await(ctx)
	cb.Cancel()
	return err
}

// ErrTimeout is returned by [WithTimeout] when the timer fires before coro
// settles.
var ErrTimeout = errors.New("reactor: operation timed out")

// WithTimeout is the timeout primitive spec §4.4/§5 describes: coro races a
// timer of duration d, whichever settles first through a shared Promise
// wins, and the loser is cancelled.
func WithTimeout[T any](ctx context.Context, d time.Duration, coro Coroutine2[T]) (T, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := NewPromise[T]()
	task := SpawnTask(ctx, coro)
	task.AddResultCallback(func(value T, err error) {
		if !result.HasResult() {
			result.Resolve(value, err)
		}
	})

	timer := RunningLoop(ctx).ScheduleCallback(d, func() {
		task.Cancel(ErrTimeout)
		if !result.HasResult() {
			var zero T
			result.Resolve(zero, ErrTimeout)
		}
	})
	defer timer.Cancel()

	return result.Await(ctx)
}
