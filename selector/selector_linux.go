//go:build linux

// File: selector/selector_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7) backend. Grounded on
// original_source/src/epoll/selector.cpp (pointer embedded in
// epoll_event.data via unsafe.Pointer over the event's Fd and Pad
// fields, which together hold the kernel's 8-byte data payload, avoiding a registry lookup on every readiness notification).

package selector

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/netio/errs"
	"github.com/momentics/netio/rawsocket"
)

// Event is one readiness notification returned by Poll.
type Event struct {
	raw unix.EpollEvent
}

// Selector owns one epoll instance and the registrations created
// against it.
type Selector struct {
	epfd int
}

// New creates a new epoll-backed Selector.
func New() (*Selector, errs.Condition) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errs.FromErrno(err.(unix.Errno))
	}
	return &Selector{epfd: epfd}, errs.Success
}

func toEpollEvents(mask EventMask) uint32 {
	var e uint32
	if mask&Readable != 0 {
		e |= unix.EPOLLIN
	}
	if mask&Writable != 0 {
		e |= unix.EPOLLOUT
	}
	if mask&ErrorCond != 0 {
		e |= unix.EPOLLERR
	}
	if mask&EOFCond != 0 {
		e |= unix.EPOLLHUP
	}
	return e
}

// Register adds sock to the interest set with the given mask and
// returns its Registration, embedded directly in the kernel event so
// later lookups avoid a map access.
func (s *Selector) Register(sock *rawsocket.Socket, mask EventMask) (*Registration, errs.Condition) {
	reg := newRegistration(sock, mask)
	var ev unix.EpollEvent
	ev.Events = toEpollEvents(mask)
	*(*unsafe.Pointer)(unsafe.Pointer(&ev.Fd)) = unsafe.Pointer(reg)
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_ADD, sock.FD(), &ev); err != nil {
		return nil, errs.FromErrno(err.(unix.Errno))
	}
	return reg, errs.Success
}

// ChangeMask updates the interest set for an already-registered socket.
// Skips the epoll_ctl call entirely when mask equals the mask already in
// effect, since EPOLL_CTL_MOD would be a no-op syscall in that case.
func (s *Selector) ChangeMask(reg *Registration, mask EventMask) errs.Condition {
	if mask == reg.LastMask {
		return errs.Success
	}
	var ev unix.EpollEvent
	ev.Events = toEpollEvents(mask)
	*(*unsafe.Pointer)(unsafe.Pointer(&ev.Fd)) = unsafe.Pointer(reg)
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_MOD, reg.Socket.FD(), &ev); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	reg.LastMask = mask
	return errs.Success
}

// Unregister removes a socket from the interest set. The caller must
// not use reg again afterward.
func (s *Selector) Unregister(reg *Registration) errs.Condition {
	if err := unix.EpollCtl(s.epfd, unix.EPOLL_CTL_DEL, reg.Socket.FD(), nil); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// Poll blocks up to timeout (negative means forever) and fills events
// with ready notifications, returning the count filled.
func (s *Selector) Poll(events []Event, timeout time.Duration) (int, errs.Condition) {
	raw := make([]unix.EpollEvent, len(events))
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(s.epfd, raw, ms)
	if err != nil {
		if err == unix.EINTR {
			return 0, errs.Success
		}
		return 0, errs.FromErrno(err.(unix.Errno))
	}
	for i := 0; i < n; i++ {
		events[i] = Event{raw: raw[i]}
	}
	return n, errs.Success
}

// EventCodes reports which conditions fired for ev.
func (s *Selector) EventCodes(ev Event) EventMask {
	var mask EventMask
	if ev.raw.Events&unix.EPOLLIN != 0 {
		mask |= Readable
	}
	if ev.raw.Events&unix.EPOLLOUT != 0 {
		mask |= Writable
	}
	if ev.raw.Events&unix.EPOLLERR != 0 {
		mask |= ErrorCond
	}
	if ev.raw.Events&unix.EPOLLHUP != 0 {
		mask |= EOFCond
	}
	return mask
}

// UserData recovers the Registration embedded in ev at Register time.
func (s *Selector) UserData(ev Event) *Registration {
	return (*Registration)(*(*unsafe.Pointer)(unsafe.Pointer(&ev.raw.Fd)))
}

// Close closes the underlying epoll file descriptor.
func (s *Selector) Close() errs.Condition {
	if err := unix.Close(s.epfd); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}
