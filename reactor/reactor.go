// File: reactor/reactor.go
// Author: momentics <momentics@gmail.com>
//
// Grounded line-for-line on original_source/src/reactor.cpp: add_socket
// / remove_socket / enqueue / run_once / process_reads / process_writes,
// including the operations_queue_cache optimization that skips a
// registry lookup when the same socket is touched twice in a row. Go
// has no thread-local storage matching the original's use (a goroutine
// is not pinned to an OS thread), but the invariant that makes the
// original safe, exactly one thread ever touches a given reactor's
// data, has a direct Go analogue: exactly one goroutine ever calls
// RunOnce/Enqueue/AddSocket/RemoveSocket on a given Reactor. Given that
// invariant the cache degenerates to an ordinary struct field, which is
// what lastTouched below is.
//
// The epoll technique of embedding a pointer in the kernel event payload
// to skip a registry lookup lives in package selector, which this
// package builds on rather than duplicating.

package reactor

import (
	"runtime"
	"time"

	"github.com/eapache/queue"

	"github.com/momentics/netio/affinity"
	"github.com/momentics/netio/control"
	"github.com/momentics/netio/errs"
	"github.com/momentics/netio/rawsocket"
	"github.com/momentics/netio/selector"
)

// Opcode identifies which half-duplex direction a queued operation
// drives.
type Opcode int

const (
	OpRead Opcode = iota
	OpWrite
)

// CompletionFunc is invoked at most once per operation, with the number
// of bytes actually transferred and the terminal condition; operations
// dropped by CancelOldestOperation, CancelAllOperations or RemoveSocket
// never reach their handler. errs.Success
// with n < len(buf) never happens: a short transfer is always paired
// with a non-Success condition (typically errs.EndOfFile).
type CompletionFunc func(n int, cond errs.Condition)

// operation is the Go realization of libwire's internal_::operation. A
// plain struct rather than a tagged union: Go has no native sum types.
type operation struct {
	opcode           Opcode
	buf              []byte
	alreadyProcessed int
	handler          CompletionFunc
}

// defaultPollTimeout is the long timeout run_once's poll step blocks for
// when nothing else bounds it; readiness wakes it long before this
// elapses in practice, it only bounds the worst case.
const defaultPollTimeout = time.Hour

// defaultEventBufferSize is the fixed-size event buffer run_once polls
// into. Fewer events may be returned in one call; more remain queued at
// the kernel until the next call.
const defaultEventBufferSize = 16

// Reactor drives readiness-based I/O for every socket registered to it.
// A Reactor must be used from exactly one goroutine: AddSocket,
// RemoveSocket, Enqueue, RunOnce, CancelOldestOperation and
// CancelAllOperations are not safe to call concurrently.
type Reactor struct {
	sel *selector.Selector

	// regs is the full socket registry, keyed by file descriptor.
	regs map[int]*selector.Registration

	// lastTouched caches the Registration of whichever socket was most
	// recently registered or enqueued against, so a second touch of the
	// same socket in a row skips the regs map lookup. This is the Go
	// analogue of the original's thread_local queue_ptr_cache; see the
	// package doc for why a plain field suffices here.
	lastTouched *selector.Registration
	lastHandle  int

	metrics    *control.MetricsRegistry
	config     *control.ConfigStore
	debug      *control.DebugProbes
	runOnceSeq int64
}

// NewReactor creates a Reactor backed by a fresh platform selector.
func NewReactor() (*Reactor, errs.Condition) {
	sel, cond := selector.New()
	if !cond.Ok() {
		return nil, cond
	}
	return &Reactor{
		sel:        sel,
		regs:       make(map[int]*selector.Registration),
		lastHandle: -1,
	}, errs.Success
}

// SetMetrics attaches a MetricsRegistry that RunOnce reports
// "reactor.run_once_count" and "reactor.events_per_poll" into, and that
// Enqueue reports "reactor.queue_depth" into. Passing nil disables
// reporting.
func (r *Reactor) SetMetrics(m *control.MetricsRegistry) {
	r.metrics = m
}

// SetConfig attaches a ConfigStore RunOnce reads two optional keys from:
// "reactor.poll_timeout" (time.Duration, default one hour) and
// "reactor.event_buffer_size" (int, default 16). Passing nil reverts to
// the defaults. Since poll timeout and buffer size are read fresh on
// every RunOnce call, attaching or replacing the store also fires the
// global hot-reload hooks so other components sharing it observe the
// change at the same time.
func (r *Reactor) SetConfig(c *control.ConfigStore) {
	r.config = c
	control.TriggerHotReloadSync()
}

// SetDebugProbes registers reactor introspection probes into dp:
// "reactor.registered_sockets" (current registry size) alongside the
// platform probes every component in this module exposes the same way.
func (r *Reactor) SetDebugProbes(dp *control.DebugProbes) {
	r.debug = dp
	control.RegisterPlatformProbes(dp)
	dp.RegisterProbe("reactor.registered_sockets", func() any {
		return len(r.regs)
	})
}

func (r *Reactor) pollTimeout() time.Duration {
	if r.config != nil {
		if v, ok := r.config.GetSnapshot()["reactor.poll_timeout"]; ok {
			if d, ok := v.(time.Duration); ok {
				return d
			}
		}
	}
	return defaultPollTimeout
}

func (r *Reactor) eventBufferSize() int {
	if r.config != nil {
		if v, ok := r.config.GetSnapshot()["reactor.event_buffer_size"]; ok {
			if n, ok := v.(int); ok && n > 0 {
				return n
			}
		}
	}
	return defaultEventBufferSize
}

// AddSocket registers sock for readiness notifications, initially
// interested in Readable events only. Enqueue does not change that
// interest; RunOnce re-arms it after dispatching an event for sock, to
// match the opcode of the operation then at the head of its FIFO.
func (r *Reactor) AddSocket(sock *rawsocket.Socket) errs.Condition {
	reg, cond := r.sel.Register(sock, selector.Readable)
	if !cond.Ok() {
		return cond
	}
	r.regs[sock.FD()] = reg
	r.lastTouched = reg
	r.lastHandle = sock.FD()
	return errs.Success
}

// RemoveSocket unregisters sock. Any operations still queued against it
// are discarded without their completion handlers firing.
func (r *Reactor) RemoveSocket(sock *rawsocket.Socket) errs.Condition {
	reg, cond := r.lookup(sock)
	if !cond.Ok() {
		return cond
	}
	delete(r.regs, sock.FD())
	if r.lastHandle == sock.FD() {
		r.lastTouched = nil
		r.lastHandle = -1
	}
	return r.sel.Unregister(reg)
}

// lookup resolves sock's Registration, checking the single-slot cache
// before falling back to the full registry. A registry miss indicates a
// library invariant was violated (operating on a socket never added to
// this reactor).
func (r *Reactor) lookup(sock *rawsocket.Socket) (*selector.Registration, errs.Condition) {
	if r.lastTouched != nil && r.lastHandle == sock.FD() {
		return r.lastTouched, errs.Success
	}
	if reg, ok := r.regs[sock.FD()]; ok {
		return reg, errs.Success
	}
	errs.PanicOnUnexpected(errs.Unexpected)
	return nil, errs.Unexpected
}

// hasPendingOperations reports whether any registered socket has a
// non-empty operation FIFO.
func (r *Reactor) hasPendingOperations() bool {
	for _, reg := range r.regs {
		if reg.Ops.Length() > 0 {
			return true
		}
	}
	return false
}

// Enqueue appends an I/O operation to sock's FIFO. The operation begins
// making progress on the next RunOnce call where sock is ready for the
// direction implied by opcode.
func (r *Reactor) Enqueue(sock *rawsocket.Socket, opcode Opcode, buf []byte, handler CompletionFunc) errs.Condition {
	reg, cond := r.lookup(sock)
	if !cond.Ok() {
		return cond
	}
	reg.Ops.Add(&operation{opcode: opcode, buf: buf, handler: handler})
	r.lastTouched = reg
	r.lastHandle = sock.FD()
	if r.metrics != nil {
		r.metrics.Set("reactor.queue_depth", reg.Ops.Length())
	}
	return errs.Success
}

// CancelOldestOperation drops the head-of-line operation for sock
// without invoking its completion handler.
func (r *Reactor) CancelOldestOperation(sock *rawsocket.Socket) errs.Condition {
	reg, cond := r.lookup(sock)
	if !cond.Ok() {
		return cond
	}
	if reg.Ops.Length() > 0 {
		reg.Ops.Remove()
	}
	return errs.Success
}

// CancelAllOperations drops every queued operation for sock without
// invoking their completion handlers.
func (r *Reactor) CancelAllOperations(sock *rawsocket.Socket) errs.Condition {
	reg, cond := r.lookup(sock)
	if !cond.Ok() {
		return cond
	}
	for reg.Ops.Length() > 0 {
		reg.Ops.Remove()
	}
	return errs.Success
}

// RunOnce runs one dispatch iteration: it polls once for readiness and
// advances as many queued operations as possible without blocking
// further. If no registered socket currently has a pending operation,
// RunOnce returns immediately without polling at all.
func (r *Reactor) RunOnce() errs.Condition {
	if !r.hasPendingOperations() {
		return errs.Success
	}

	events := make([]selector.Event, r.eventBufferSize())
	n, cond := r.sel.Poll(events, r.pollTimeout())
	if !cond.Ok() {
		return cond
	}

	if r.metrics != nil {
		r.runOnceSeq++
		r.metrics.Set("reactor.run_once_count", r.runOnceSeq)
		r.metrics.Set("reactor.events_per_poll", n)
	}

	for i := 0; i < n; i++ {
		ev := events[i]
		codes := r.sel.EventCodes(ev)
		reg := r.sel.UserData(ev)

		r.lastTouched = reg
		r.lastHandle = reg.Socket.FD()

		if codes&selector.ErrorCond != 0 {
			cond := reg.Socket.PendingError()
			for reg.Ops.Length() > 0 {
				op := reg.Ops.Remove().(*operation)
				op.handler(0, cond)
			}
			return errs.Success
		}

		if reg.Ops.Length() == 0 {
			continue
		}

		if codes&selector.Readable != 0 {
			processReads(reg.Socket, reg.Ops)
		} else if codes&selector.Writable != 0 {
			processWrites(reg.Socket, reg.Ops)
		}

		if reg.Ops.Length() > 0 {
			next := reg.Ops.Peek().(*operation)
			switch next.opcode {
			case OpWrite:
				r.sel.ChangeMask(reg, selector.Writable)
			case OpRead:
				r.sel.ChangeMask(reg, selector.Readable)
			}
		}
	}
	return errs.Success
}

// processReads drains as much of the read FIFO as the socket's current
// readiness allows, stopping at the first partial or blocking result so
// later operations never start out of order.
func processReads(sock *rawsocket.Socket, ops *queue.Queue) {
	for ops.Length() > 0 {
		op := ops.Peek().(*operation)
		if op.opcode != OpRead {
			break
		}
		wanted := len(op.buf) - op.alreadyProcessed
		got, cond := sock.Read(op.buf[op.alreadyProcessed:])
		op.alreadyProcessed += got

		if cond == errs.TryAgain || (got < wanted && cond.Ok()) {
			break
		}
		if op.alreadyProcessed == len(op.buf) || !cond.Ok() {
			op.handler(op.alreadyProcessed, cond)
			ops.Remove()
		}
	}
}

// processWrites mirrors processReads for the write direction.
func processWrites(sock *rawsocket.Socket, ops *queue.Queue) {
	for ops.Length() > 0 {
		op := ops.Peek().(*operation)
		if op.opcode != OpWrite {
			break
		}
		wanted := len(op.buf) - op.alreadyProcessed
		sent, cond := sock.Write(op.buf[op.alreadyProcessed:])
		op.alreadyProcessed += sent

		if cond == errs.TryAgain || (sent < wanted && cond.Ok()) {
			break
		}
		if op.alreadyProcessed == len(op.buf) || !cond.Ok() {
			op.handler(op.alreadyProcessed, cond)
			ops.Remove()
		}
	}
}

// Close releases the reactor's underlying selector.
func (r *Reactor) Close() errs.Condition {
	return r.sel.Close()
}

// PinToCPU locks the calling goroutine to its current OS thread and
// pins that thread to cpuID. Call it from the same goroutine that will
// go on to drive RunOnce in a loop; the lock is intentionally never
// released by PinToCPU itself, since the reactor loop needs to stay on
// the pinned thread for its entire lifetime.
func (r *Reactor) PinToCPU(cpuID int) errs.Condition {
	runtime.LockOSThread()
	if err := affinity.SetAffinity(cpuID); err != nil {
		return errs.Unexpected
	}
	return errs.Success
}
