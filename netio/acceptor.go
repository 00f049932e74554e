package netio

import (
	"context"
	"errors"

	"golang.org/x/sys/unix"

	"github.com/agata-borkowska-clark/reactorhttp/reactor"
)

// minBacklog is the listen() backlog floor spec §4.5 requires ("begins
// listening with a small (≥8) backlog").
const minBacklog = 8

// Acceptor listens for incoming connections on a bound socket.
type Acceptor struct {
	loop   *reactor.EventLoop
	socket *Socket
}

// Bind creates a socket in addr's address family, enables address reuse,
// switches to non-blocking, binds, and begins listening (spec §4.5 Bind).
func Bind(loop *reactor.EventLoop, addr Address) (*Acceptor, error) {
	fd, err := unix.Socket(addr.domain, unix.SOCK_STREAM, 0)
	if err != nil {
		return nil, err
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if err := unix.Bind(fd, addr.sock); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if err := unix.Listen(fd, minBacklog); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	socket, err := NewSocket(loop, fd)
	if err != nil {
		return nil, err
	}
	return &Acceptor{loop: loop, socket: socket}, nil
}

// Accept suspends until a connection is ready, then accepts it in
// non-blocking mode and returns a [*Stream] registered with the same
// reactor (spec §4.5 Acceptor.accept()).
func (a *Acceptor) Accept(ctx context.Context) (*Stream, error) {
	for {
		fd, _, err := unix.Accept4(a.socket.Fd(), unix.SOCK_NONBLOCK)
		if err == nil {
			socket, err := NewSocket(a.loop, fd)
			if err != nil {
				_ = unix.Close(fd)
				return nil, err
			}
			return NewStream(socket), nil
		}
		if errors.Is(err, unix.EAGAIN) {
			if err := a.socket.io.AwaitReadable(ctx); err != nil {
				return nil, err
			}
			continue
		}
		return nil, err
	}
}

// Fd returns the listening descriptor (used by tests to discover the
// ephemeral port bound when the caller requested port 0).
func (a *Acceptor) Fd() int {
	return a.socket.Fd()
}

// Close stops listening.
func (a *Acceptor) Close() error {
	return a.socket.Close()
}
