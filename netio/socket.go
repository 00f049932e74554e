package netio

import (
	"context"
	"errors"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/agata-borkowska-clark/reactorhttp/reactor"
	"github.com/agata-borkowska-clark/reactorhttp/status"
)

// Socket wraps a [Handle] plus a heap-allocated [reactor.IOState] (spec
// §4.5: "stable address, so registration is safe across moves"). Go's GC
// makes the address of the Socket itself stable once heap-allocated, so
// callers need only avoid copying a *Socket by value after Register.
type Socket struct {
	handle Handle
	io     *reactor.IOState
	loop   *reactor.EventLoop
}

// NewSocket takes ownership of fd and registers it with loop's poller.
// Construction registers; Close unregisters and shuts down, per spec §4.5.
func NewSocket(loop *reactor.EventLoop, fd int) (*Socket, error) {
	s := &Socket{
		handle: NewHandle(fd),
		io:     reactor.NewIOState(int32(fd)),
		loop:   loop,
	}
	if err := loop.Register(s.io); err != nil {
		_ = s.handle.Close()
		return nil, err
	}
	return s, nil
}

// Fd returns the underlying descriptor.
func (s *Socket) Fd() int {
	return s.handle.Fd()
}

// ReadSome performs a single non-blocking read attempt, suspending on
// await_readable until the descriptor is ready. n==0 with a nil error
// means the peer closed cleanly (spec §4.5).
func (s *Socket) ReadSome(ctx context.Context, buf []byte) (int, error) {
	for {
		n, err := unix.Read(s.Fd(), buf)
		if err == nil {
			return n, nil
		}
		if errors.Is(err, unix.EAGAIN) {
			if err := s.io.AwaitReadable(ctx); err != nil {
				return 0, err
			}
			continue
		}
		return 0, status.PosixErrorf(err.(syscall.Errno), "read")
	}
}

// Read loops ReadSome until buf is completely filled, resolving exhausted
// on clean EOF before fill (spec §4.5 read()).
func (s *Socket) Read(ctx context.Context, buf []byte) (status.Status, error) {
	filled := 0
	for filled < len(buf) {
		n, err := s.ReadSome(ctx, buf[filled:])
		if err != nil {
			return status.Status{}, err
		}
		if n == 0 {
			return status.ExhaustedStatus, nil
		}
		filled += n
	}
	return status.Ok(), nil
}

// WriteSome performs a single non-blocking write attempt, suspending on
// await_writable until the descriptor is ready, and returns the unwritten
// remainder of buf.
func (s *Socket) WriteSome(ctx context.Context, buf []byte) ([]byte, error) {
	for {
		n, err := unix.Write(s.Fd(), buf)
		if n > 0 {
			// A non-empty successful write always makes forward progress
			// (spec §4.5), so return immediately rather than retrying.
			return buf[n:], nil
		}
		if err == nil {
			return buf, nil
		}
		if errors.Is(err, unix.EAGAIN) {
			if err := s.io.AwaitWritable(ctx); err != nil {
				return buf, err
			}
			continue
		}
		return buf, status.PosixErrorf(err.(syscall.Errno), "write")
	}
}

// Write loops WriteSome until buf is completely written.
func (s *Socket) Write(ctx context.Context, buf []byte) error {
	for len(buf) > 0 {
		rest, err := s.WriteSome(ctx, buf)
		if err != nil {
			return err
		}
		buf = rest
	}
	return nil
}

// Shutdown half-closes the write side and reports the raw system result,
// per spec §4.5's caller-visible shutdown().
func (s *Socket) Shutdown() status.Status {
	if err := unix.Shutdown(s.Fd(), unix.SHUT_WR); err != nil {
		return status.PosixStatus(err.(syscall.Errno))
	}
	return status.Ok()
}

// Close unregisters the socket from the reactor, shuts it down in both
// directions, and releases its descriptor. Safe to call more than once.
func (s *Socket) Close() error {
	if s.handle.Valid() {
		_ = s.loop.Unregister(s.io)
		_ = unix.Shutdown(s.Fd(), unix.SHUT_RDWR)
	}
	return s.handle.Close()
}
