//go:build !linux

// File: selector/selector_other.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without an epoll backend.

package selector

import (
	"time"

	"github.com/momentics/netio/errs"
	"github.com/momentics/netio/rawsocket"
)

type Event struct{}

type Selector struct{}

func New() (*Selector, errs.Condition) {
	return nil, errs.NotSupported
}

func (s *Selector) Register(sock *rawsocket.Socket, mask EventMask) (*Registration, errs.Condition) {
	return nil, errs.NotSupported
}

func (s *Selector) ChangeMask(reg *Registration, mask EventMask) errs.Condition {
	return errs.NotSupported
}

func (s *Selector) Unregister(reg *Registration) errs.Condition {
	return errs.NotSupported
}

func (s *Selector) Poll(events []Event, timeout time.Duration) (int, errs.Condition) {
	return 0, errs.NotSupported
}

func (s *Selector) EventCodes(ev Event) EventMask {
	return 0
}

func (s *Selector) UserData(ev Event) *Registration {
	return nil
}

func (s *Selector) Close() errs.Condition {
	return errs.Success
}
