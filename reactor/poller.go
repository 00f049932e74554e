package reactor

import (
	"context"
	"time"
)

// Poller is the kernel-readiness backend an [EventLoop] drives. Exactly one
// implementation is linked in per platform (epoll on Linux).
type Poller interface {
	// Wait blocks for up to timeout waiting for readiness events,
	// dispatching ready [*IOState] continuations before returning. An
	// interrupted wait is not an error; any other failure is fatal to the
	// reactor (spec §7: reactor-fatal errors).
	Wait(timeout time.Duration) error
	// Register adds state's file descriptor with no initial interest (spec
	// §4.4 register()).
	Register(state *IOState) error
	// Unregister removes state's file descriptor.
	Unregister(state *IOState) error
	// Rearm re-registers one-shot, level-triggered interest for exactly the
	// directions state currently has a pending waiter for. Called after
	// AwaitReadable/AwaitWritable store a new waiter, and after dispatch
	// when a waiter remains for the other direction (spec §4.4 step 4).
	Rearm(state *IOState) error
	// Close releases the poller's own resources (the epoll fd).
	Close() error
}

// IOState is the per-handle registration record of spec §3: at most one
// readable-waiter and one writable-waiter at any instant. Its address is
// stable for as long as it is registered — callers must heap-allocate it
// (e.g. embed it in a *netio.Socket) and never move it while registered.
type IOState struct {
	fd int32

	loop *EventLoop

	onReadable func(error)
	onWritable func(error)

	// everArmed records whether this state has ever had an EPOLL_CTL_ADD
	// performed for it, so later Rearm calls know to use EPOLL_CTL_MOD.
	everArmed bool
}

// NewIOState constructs an unregistered IOState for fd.
func NewIOState(fd int32) *IOState {
	return &IOState{fd: fd}
}

// Fd returns the underlying OS file descriptor.
func (s *IOState) Fd() int32 {
	return s.fd
}

// Register attaches state to the loop's poller with no initial interest.
func (e *EventLoop) Register(state *IOState) error {
	state.loop = e
	return e.poller.Register(state)
}

// Unregister detaches state from the loop's poller.
func (e *EventLoop) Unregister(state *IOState) error {
	return e.poller.Unregister(state)
}

// AwaitReadable suspends the calling task until state's file descriptor is
// readable (or errored/hung up, which this treats as ready so the caller's
// subsequent read reports the real error). It is a caller error to call
// this again before a prior AwaitReadable on the same state has resolved
// (spec §3: "it is a caller error to register a second concurrent waiter
// for the same direction"); doing so overwrites the earlier waiter.
func (s *IOState) AwaitReadable(ctx context.Context) error {
	p := NewPromise[any]()
	s.onReadable = func(err error) { p.Resolve(nil, err) }
	if err := s.loop.poller.Rearm(s); err != nil {
		return err
	}
	_, err := p.Await(ctx)
	return err
}

// AwaitWritable is the write-direction counterpart of AwaitReadable.
func (s *IOState) AwaitWritable(ctx context.Context) error {
	p := NewPromise[any]()
	s.onWritable = func(err error) { p.Resolve(nil, err) }
	if err := s.loop.poller.Rearm(s); err != nil {
		return err
	}
	_, err := p.Await(ctx)
	return err
}

// dispatch is called by a Poller implementation when it observes readiness
// for state. readable/writable/errored follow the raw kernel event; an
// error or hangup is treated as readiness in both directions (spec §4.4
// step 4), so that whichever waiter exists gets to observe the real error
// on its next non-blocking syscall.
func (s *IOState) dispatch(readable, writable, errored bool) {
	if errored {
		readable, writable = true, true
	}
	if readable && s.onReadable != nil {
		cb := s.onReadable
		s.onReadable = nil
		s.loop.RunCallback(func() { cb(nil) })
	}
	if writable && s.onWritable != nil {
		cb := s.onWritable
		s.onWritable = nil
		s.loop.RunCallback(func() { cb(nil) })
	}
	if s.onReadable != nil || s.onWritable != nil {
		_ = s.loop.poller.Rearm(s)
	}
}
