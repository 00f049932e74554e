// Package netio implements the unique handle, socket, stream, and acceptor
// abstractions of spec §4.5 on top of the reactor package's readiness
// primitives. Grounded on the teacher's EpollSocket/EpollAsyncFile
// (poller_epoll.go) for raw descriptor ownership and AsyncStream
// (streams.go) for buffered line/chunk helpers.
package netio

import (
	"golang.org/x/sys/unix"
)

// invalidFd is the sentinel a moved-from or closed Handle carries.
const invalidFd = -1

// Handle is unique ownership of a raw file descriptor. Construction takes
// ownership; Close releases it. A Handle carrying invalidFd is the
// moved-from/closed sentinel state spec §4.5 describes; closing it again
// is a no-op.
type Handle struct {
	fd int
}

// NewHandle takes ownership of fd.
func NewHandle(fd int) Handle {
	return Handle{fd: fd}
}

// Fd returns the raw descriptor, or invalidFd if closed.
func (h Handle) Fd() int {
	return h.fd
}

// Valid reports whether the handle still owns an open descriptor.
func (h Handle) Valid() bool {
	return h.fd != invalidFd
}

// Take transfers ownership out of h, leaving it in the closed sentinel
// state. This is the Go stand-in for the move constructor spec §4.5
// describes ("move transfers; a closed handle carries the sentinel").
func (h *Handle) Take() Handle {
	taken := *h
	h.fd = invalidFd
	return taken
}

// Close releases the descriptor. Close failures are non-fatal per spec
// §4.5 ("close failures are non-fatal; logged in debug, swallowed in
// release") — callers that care about the error can inspect the return
// value, but nothing in this package treats it as fatal.
func (h *Handle) Close() error {
	if h.fd == invalidFd {
		return nil
	}
	fd := h.fd
	h.fd = invalidFd
	return unix.Close(fd)
}
