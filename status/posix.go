package status

import "syscall"

// posixDomainType interprets payload codes as POSIX errno values, mirroring
// posix_manager_base in the original implementation.
type posixDomainType struct{}

const posixDomainID uint64 = 0x588f91e863069fe5

func (posixDomainType) DomainID() uint64   { return posixDomainID }
func (posixDomainType) DomainName() string { return "posix" }

func (posixDomainType) Name(p Payload) string {
	if p.Code == 0 {
		return "ok"
	}
	if name, ok := errnoNames[syscall.Errno(p.Code)]; ok {
		return name
	}
	return "<unknown>"
}

func (posixDomainType) Failure(p Payload) bool {
	return p.Code != 0
}

func (posixDomainType) Canonical(p Payload) Category {
	if p.Code == 0 {
		return OK
	}
	switch syscall.Errno(p.Code) {
	case syscall.EAGAIN, syscall.EINTR, syscall.ETIMEDOUT:
		return TransientError
	case syscall.EINVAL, syscall.EBADF, syscall.EACCES, syscall.EPERM:
		return ClientError
	default:
		return UnknownError
	}
}

func (posixDomainType) Code(p Payload) int {
	return p.Code
}

func (posixDomainType) Output(p Payload) string {
	if msg, ok := p.Pointer.(string); ok {
		return msg
	}
	return ""
}

var posixDomain posixDomainType

// PosixStatus builds a Status from a raw errno value.
func PosixStatus(errno syscall.Errno) Status {
	return Status{domain: posixDomain, payload: Payload{Code: int(errno)}}
}

// PosixErrorf builds a Status from a raw errno value plus a message,
// returning a Status (callers wrap in Error when the errno is nonzero).
func PosixErrorf(errno syscall.Errno, message string) Status {
	return Status{domain: posixDomain, payload: Payload{Code: int(errno), Pointer: message}}
}

// errnoNames covers the errno values most likely to surface from socket
// and file operations; unmapped values fall back to "<unknown>" the same
// way the original's switch statement does for an errc it does not list.
var errnoNames = map[syscall.Errno]string{
	syscall.EADDRINUSE:    "address_in_use",
	syscall.EADDRNOTAVAIL: "address_not_available",
	syscall.EAFNOSUPPORT:  "address_family_not_supported",
	syscall.EALREADY:      "connection_already_in_progress",
	syscall.EBADF:         "bad_file_descriptor",
	syscall.ECONNABORTED:  "connection_aborted",
	syscall.ECONNREFUSED:  "connection_refused",
	syscall.ECONNRESET:    "connection_reset",
	syscall.EINPROGRESS:   "operation_in_progress",
	syscall.EINTR:         "interrupted",
	syscall.EINVAL:        "invalid_argument",
	syscall.EMFILE:        "too_many_files_open",
	syscall.ENETDOWN:      "network_down",
	syscall.ENETRESET:     "network_reset",
	syscall.ENETUNREACH:   "network_unreachable",
	syscall.ENOBUFS:       "no_buffer_space",
	syscall.ENOTCONN:      "not_connected",
	syscall.ENOTSOCK:      "not_a_socket",
	syscall.EPERM:         "operation_not_permitted",
	syscall.EPIPE:         "broken_pipe",
	syscall.ETIMEDOUT:     "timed_out",
	syscall.EWOULDBLOCK:   "resource_unavailable_try_again",
}
