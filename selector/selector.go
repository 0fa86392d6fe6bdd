// Package selector multiplexes readiness notifications over a set of
// registered sockets, grounded on original_source/src/epoll/selector.cpp
// for semantics: register/change-mask/remove by raw handle, level-triggered
// poll, a registration pointer embedded directly in the kernel event
// payload so the reactor never needs a hash-map lookup on the hot path.
//
// Author: momentics <momentics@gmail.com>
package selector

import (
	"github.com/eapache/queue"

	"github.com/momentics/netio/rawsocket"
)

// EventMask is a bitmask of readiness conditions.
type EventMask uint8

const (
	Readable EventMask = 1 << iota
	Writable
	ErrorCond
	EOFCond
)

// Registration is the per-socket state a Selector tracks: the socket
// itself, the event mask last requested for it, and the FIFO of pending
// reactor operations that the selector layer carries but never
// interprets. The eapache/queue.Queue backing Ops gives O(1) amortized
// push/pop without the slice-growth churn of a plain slice-as-queue.
type Registration struct {
	Socket   *rawsocket.Socket
	LastMask EventMask
	Ops      *queue.Queue
}

func newRegistration(sock *rawsocket.Socket, mask EventMask) *Registration {
	return &Registration{Socket: sock, LastMask: mask, Ops: queue.New()}
}
