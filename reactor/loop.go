// Package reactor implements the single-threaded event loop at the heart of
// this module: a min-heap of deferred timers, a readiness-notification
// poller, and the Promise/Task coroutine primitives that let handler code
// await I/O and timers without blocking the thread.
package reactor

import (
	"container/heap"
	"context"
	"time"
)

type runningLoop struct{}

// RunningLoop returns the [EventLoop] running in the current context. It
// panics if no EventLoop is running; callers should only invoke this from
// code driven by the loop itself (task coroutines, their callbacks).
func RunningLoop(ctx context.Context) *EventLoop {
	return ctx.Value(runningLoop{}).(*EventLoop)
}

// EventLoop is the reactor: it owns the timer heap, the readiness poller,
// and the stack of currently-running task coroutines. It is single-threaded
// (spec §5: "no cross-thread shared mutable state") — every method must be
// called from the goroutine running [EventLoop.Run].
type EventLoop struct {
	pendingCallbacks callbackQueue

	poller       Poller
	currentTasks []tasker
}

// NewEventLoop constructs a new, unstarted [EventLoop].
func NewEventLoop() *EventLoop {
	return &EventLoop{}
}

// Run starts the reactor loop with the given coroutine as the main task.
// Run returns once the main task has completed and there is no more pending
// work, or a poll-wait failure occurs (spec §7: reactor-fatal errors
// propagate out of run()).
func (e *EventLoop) Run(ctx context.Context, main Coroutine1) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var err error
	if e.poller, err = NewPoller(); err != nil {
		return err
	}
	defer e.poller.Close()

	ctx = context.WithValue(ctx, runningLoop{}, e)
	mainTask := main.SpawnTask(ctx).Future().AddDoneCallback(func(err error) {
		if err != nil {
			cancel(err)
		}
	})

	for ctx.Err() == nil {
		e.runReadyCallbacks(ctx)

		if ctx.Err() != nil || (mainTask.HasResult() && e.pendingCallbacks.Empty()) {
			break
		}

		timeout := 30 * time.Second
		if !e.pendingCallbacks.Empty() {
			timeout = e.pendingCallbacks.TimeUntilNext()
		}
		if deadline, ok := ctx.Deadline(); ok {
			if untilDeadline := time.Until(deadline); untilDeadline < timeout {
				timeout = untilDeadline
			}
		}

		if err := e.poller.Wait(timeout); err != nil {
			return err
		}
	}

	return context.Cause(ctx)
}

func (e *EventLoop) runReadyCallbacks(ctx context.Context) {
	for ctx.Err() == nil && e.pendingCallbacks.RunNext() {
	}
}

// withTask pushes the currently executing task onto the task stack so that
// [EventLoop.Yield] knows which coroutine's yielder to drive.
func (e *EventLoop) withTask(t tasker, step func()) {
	oldTasks := e.currentTasks
	e.currentTasks = append(e.currentTasks, t)

	step()

	if e.currentTask() != t {
		panic("reactor: context switched from unexpected task")
	}
	e.currentTasks = oldTasks
}

func (e *EventLoop) currentTask() tasker {
	return e.currentTasks[len(e.currentTasks)-1]
}

// Yield suspends the currently running task until fut completes.
func (e *EventLoop) Yield(ctx context.Context, fut Futurer) error {
	return e.currentTask().yield(ctx, fut)
}

// ScheduleCallback schedules a callback to run after the given delay. This
// is the `schedule_in`/`schedule_at` primitive of spec §4.4; a zero delay is
// `schedule`.
func (e *EventLoop) ScheduleCallback(delay time.Duration, callback func()) *Callback {
	handle := NewCallback(delay, callback)
	e.pendingCallbacks.Add(handle)
	return handle
}

// RunCallback schedules a callback for immediate execution on the next
// drain.
func (e *EventLoop) RunCallback(callback func()) {
	e.ScheduleCallback(0, callback)
}

// Callback is a handle to work scheduled on an [EventLoop]'s timer heap.
type Callback struct {
	callback func()
	when     time.Time

	// queue == nil && index < 0 if the callback has not been scheduled
	// or has already run.
	queue *callbackQueue
	index int
}

// NewCallback creates a handle for a callback due to run after duration.
// This does not schedule it; use [EventLoop.ScheduleCallback].
func NewCallback(duration time.Duration, callback func()) *Callback {
	return &Callback{
		callback: callback,
		when:     time.Now().Add(duration),
		index:    -2,
	}
}

// Cancel removes this callback from its queue. Returns false if it was not
// scheduled (already run, or never scheduled).
func (c *Callback) Cancel() bool {
	if c.queue != nil {
		return c.queue.Remove(c)
	}
	return false
}

// callbackQueue is the reactor's timer min-heap (spec §3's `work`), ordered
// so the topmost callback is the one due soonest.
type callbackQueue []*Callback

func (r *callbackQueue) Len() int { return len(*r) }

func (r *callbackQueue) Less(i, j int) bool {
	return (*r)[i].when.Before((*r)[j].when)
}

func (r *callbackQueue) Swap(i, j int) {
	(*r)[i].index = j
	(*r)[j].index = i
	(*r)[i], (*r)[j] = (*r)[j], (*r)[i]
}

func (r *callbackQueue) Push(x any) {
	callback := x.(*Callback)
	callback.index = r.Len()
	callback.queue = r
	*r = append(*r, callback)
}

func (r *callbackQueue) Pop() (v any) {
	n := len(*r)
	callback := (*r)[n-1]
	*r = (*r)[:n-1]
	callback.index = -1
	callback.queue = nil
	return v
}

// Remove cancels callback, returning false if it was not in this queue.
func (r *callbackQueue) Remove(callback *Callback) bool {
	if callback.queue == nil || callback.queue != r || callback.index < 0 {
		return false
	}
	heap.Remove(r, callback.index)
	return true
}

// Peek returns the next due callback without removing it. Panics if empty.
func (r *callbackQueue) Peek() *Callback {
	return (*r)[0]
}

// Add pushes a new callback onto the queue.
func (r *callbackQueue) Add(c *Callback) {
	heap.Push(r, c)
}

// RunNext runs the topmost callback if it is due. Returns false if the
// queue is empty or the topmost callback is not yet due — this is how the
// loop "drains every work item whose due_time <= now" (spec §4.4 step 1).
func (r *callbackQueue) RunNext() bool {
	if r.Empty() || r.TimeUntilNext() > 0 {
		return false
	}
	head := r.Peek()
	heap.Pop(r)
	head.callback()
	return true
}

// TimeUntilNext returns the time until the topmost callback is due.
func (r *callbackQueue) TimeUntilNext() time.Duration {
	return time.Until(r.Peek().when)
}

// Empty reports whether the queue has no callbacks.
func (r *callbackQueue) Empty() bool {
	return r.Len() == 0
}
