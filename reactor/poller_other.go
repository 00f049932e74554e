//go:build !linux

package reactor

import (
	"errors"
	"time"
)

// ErrNotImplemented is returned by NewPoller on platforms with no readiness
// backend wired up (this module ships only the Linux epoll backend, per
// spec §1's single-threaded-reactor scope).
var ErrNotImplemented = errors.New("reactor: no poller implementation for this platform")

type unsupportedPoller struct{}

// NewPoller constructs the platform readiness backend.
func NewPoller() (Poller, error) {
	return nil, ErrNotImplemented
}

func (unsupportedPoller) Wait(time.Duration) error  { return ErrNotImplemented }
func (unsupportedPoller) Register(*IOState) error   { return ErrNotImplemented }
func (unsupportedPoller) Unregister(*IOState) error { return ErrNotImplemented }
func (unsupportedPoller) Rearm(*IOState) error      { return ErrNotImplemented }
func (unsupportedPoller) Close() error              { return ErrNotImplemented }
