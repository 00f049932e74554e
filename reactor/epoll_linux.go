//go:build linux

package reactor

import (
	"errors"
	"time"

	"golang.org/x/sys/unix"
)

// epollPoller implements [Poller] over Linux epoll.
//
// REDESIGN (see SPEC_FULL.md REDESIGN FLAGS): the teacher's own epoll
// poller subscribes EPOLLIN|EPOLLOUT|EPOLLPRI|EPOLLET permanently, for
// both directions, on every fd. Spec §4.4 instead requires one-shot,
// level-triggered interest that is re-armed only for the directions that
// currently have a pending waiter, so that a socket with only a read
// waiter is not woken by spurious write-readiness. This poller uses
// EPOLLONESHOT (not EPOLLET) and recomputes the event mask from the
// IOState's own onReadable/onWritable fields on every (re)registration.
type epollPoller struct {
	epfd int

	subscribed map[int32]*IOState
	events     []unix.EpollEvent
}

// NewPoller constructs the platform readiness backend.
func NewPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}

	return &epollPoller{
		epfd:       epfd,
		subscribed: make(map[int32]*IOState),
		events:     make([]unix.EpollEvent, 64),
	}, nil
}

func (e *epollPoller) Wait(timeout time.Duration) error {
	n, err := unix.EpollWait(e.epfd, e.events, max(0, int(timeout.Milliseconds())))
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return err
	}

	for i := 0; i < n; i++ {
		ev := e.events[i]
		state, ok := e.subscribed[ev.Fd]
		if !ok {
			continue
		}
		errored := ev.Events&(unix.EPOLLERR|unix.EPOLLHUP) != 0
		readable := ev.Events&unix.EPOLLIN != 0
		writable := ev.Events&unix.EPOLLOUT != 0
		state.dispatch(readable, writable, errored)
	}
	return nil
}

func (e *epollPoller) Register(state *IOState) error {
	if err := unix.SetNonblock(int(state.fd), true); err != nil {
		return err
	}
	e.subscribed[state.fd] = state
	// Register with no initial interest: an empty event mask plus
	// EPOLLONESHOT still requires a valid add, so track the fd but defer
	// the real EPOLL_CTL_ADD until the first AwaitReadable/AwaitWritable
	// actually wants a direction (Rearm performs ADD-or-MOD as needed).
	return nil
}

func (e *epollPoller) Unregister(state *IOState) error {
	delete(e.subscribed, state.fd)
	return unix.EpollCtl(e.epfd, unix.EPOLL_CTL_DEL, int(state.fd), nil)
}

// Rearm recomputes the event mask from state's pending waiters and
// (re)registers one-shot, level-triggered interest for exactly those
// directions, per spec §4.4 step 4's "re-arm one-shot subscription for just
// those directions".
func (e *epollPoller) Rearm(state *IOState) error {
	var mask uint32
	if state.onReadable != nil {
		mask |= unix.EPOLLIN
	}
	if state.onWritable != nil {
		mask |= unix.EPOLLOUT
	}
	if mask == 0 {
		// Nothing pending; nothing to arm. A prior ADD (if any) will simply
		// not fire until the next Rearm with a nonzero mask.
		return nil
	}
	mask |= unix.EPOLLONESHOT

	event := unix.EpollEvent{Events: mask, Fd: state.fd}
	if !state.everArmed {
		state.everArmed = true
		return unix.EpollCtl(e.epfd, unix.EPOLL_CTL_ADD, int(state.fd), &event)
	}
	return unix.EpollCtl(e.epfd, unix.EPOLL_CTL_MOD, int(state.fd), &event)
}

func (e *epollPoller) Close() error {
	return unix.Close(e.epfd)
}
