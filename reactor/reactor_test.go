//go:build linux

package reactor

import (
	"testing"
	"time"

	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/control"
	"github.com/momentics/netio/errs"
	"github.com/momentics/netio/rawsocket"
	"github.com/momentics/netio/sockopt"
)

func mustLoopbackPair(t *testing.T) (*rawsocket.Socket, *rawsocket.Socket, func()) {
	t.Helper()
	listener, cond := rawsocket.Create(addr.V4, rawsocket.TransportStream)
	if !cond.Ok() {
		t.Fatalf("create listener: %v", cond)
	}
	if cond := listener.Bind(addr.Endpoint{Addr: addr.Loopback4, Port: 0}); !cond.Ok() {
		t.Fatalf("bind: %v", cond)
	}
	if cond := listener.Listen(8); !cond.Ok() {
		t.Fatalf("listen: %v", cond)
	}
	local := listener.LocalEndpoint()

	client, cond := rawsocket.Create(addr.V4, rawsocket.TransportStream)
	if !cond.Ok() {
		t.Fatalf("create client: %v", cond)
	}
	if cond := client.Connect(local); !cond.Ok() {
		t.Fatalf("connect: %v", cond)
	}
	server, cond := listener.Accept()
	if !cond.Ok() {
		t.Fatalf("accept: %v", cond)
	}
	listener.Close()

	if cond := client.SetNonBlocking(true); !cond.Ok() {
		t.Fatalf("client nonblocking: %v", cond)
	}
	if cond := server.SetNonBlocking(true); !cond.Ok() {
		t.Fatalf("server nonblocking: %v", cond)
	}

	return client, server, func() {
		client.Close()
		server.Close()
	}
}

// newBoundedReactor returns a reactor whose poll timeout is short enough
// that a test loop calling RunOnce in a tight bound never risks the
// default one-hour block.
func newBoundedReactor(t *testing.T) *Reactor {
	t.Helper()
	r, cond := NewReactor()
	if !cond.Ok() {
		t.Fatalf("new reactor: %v", cond)
	}
	cfg := control.NewConfigStore()
	cfg.SetConfig(map[string]any{"reactor.poll_timeout": 200 * time.Millisecond})
	r.SetConfig(cfg)
	return r
}

func TestReactorReadCompletesAfterWrite(t *testing.T) {
	client, server, cleanup := mustLoopbackPair(t)
	defer cleanup()

	r := newBoundedReactor(t)
	defer r.Close()

	if cond := r.AddSocket(server); !cond.Ok() {
		t.Fatalf("add socket: %v", cond)
	}

	buf := make([]byte, 5)
	done := make(chan struct{})
	var gotN int
	var gotCond errs.Condition

	if cond := r.Enqueue(server, OpRead, buf, func(n int, c errs.Condition) {
		gotN = n
		gotCond = c
		close(done)
	}); !cond.Ok() {
		t.Fatalf("enqueue: %v", cond)
	}

	if _, cond := client.Write([]byte("hello")); !cond.Ok() {
		t.Fatalf("write: %v", cond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-done:
			if gotN != 5 || !gotCond.Ok() {
				t.Fatalf("read n=%d cond=%v, want n=5 Success", gotN, gotCond)
			}
			if string(buf) != "hello" {
				t.Fatalf("read %q, want %q", buf, "hello")
			}
			return
		default:
			if cond := r.RunOnce(); !cond.Ok() {
				t.Fatalf("run once: %v", cond)
			}
		}
	}
	t.Fatalf("read operation never completed")
}

func TestReactorHandlesTwoSocketsIndependently(t *testing.T) {
	clientA, serverA, cleanupA := mustLoopbackPair(t)
	defer cleanupA()
	clientB, serverB, cleanupB := mustLoopbackPair(t)
	defer cleanupB()

	r := newBoundedReactor(t)
	defer r.Close()

	if cond := r.AddSocket(serverA); !cond.Ok() {
		t.Fatalf("add socket A: %v", cond)
	}
	if cond := r.AddSocket(serverB); !cond.Ok() {
		t.Fatalf("add socket B: %v", cond)
	}

	bufA := make([]byte, 3)
	bufB := make([]byte, 3)
	doneA := make(chan struct{})
	doneB := make(chan struct{})

	if cond := r.Enqueue(serverA, OpRead, bufA, func(n int, c errs.Condition) { close(doneA) }); !cond.Ok() {
		t.Fatalf("enqueue A: %v", cond)
	}
	// Touching serverB right after serverA exercises the registry lookup
	// path rather than the single-slot cache, since serverA is now the
	// cached entry.
	if cond := r.Enqueue(serverB, OpRead, bufB, func(n int, c errs.Condition) { close(doneB) }); !cond.Ok() {
		t.Fatalf("enqueue B: %v", cond)
	}
	// CancelAllOperations on A must still resolve correctly
	// even though B was the last socket touched above.
	if cond := r.CancelAllOperations(serverA); !cond.Ok() {
		t.Fatalf("cancel A: %v", cond)
	}
	if cond := r.Enqueue(serverA, OpRead, bufA, func(n int, c errs.Condition) { close(doneA) }); !cond.Ok() {
		t.Fatalf("re-enqueue A: %v", cond)
	}

	if _, cond := clientA.Write([]byte("abc")); !cond.Ok() {
		t.Fatalf("write A: %v", cond)
	}
	if _, cond := clientB.Write([]byte("xyz")); !cond.Ok() {
		t.Fatalf("write B: %v", cond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-doneA:
			select {
			case <-doneB:
				return
			default:
			}
		default:
		}
		if cond := r.RunOnce(); !cond.Ok() {
			t.Fatalf("run once: %v", cond)
		}
	}
	t.Fatalf("both reads never completed")
}

func TestCancelAllOperationsDropsQueue(t *testing.T) {
	client, server, cleanup := mustLoopbackPair(t)
	defer cleanup()

	r := newBoundedReactor(t)
	defer r.Close()

	if cond := r.AddSocket(server); !cond.Ok() {
		t.Fatalf("add socket: %v", cond)
	}

	called := false
	buf := make([]byte, 5)
	if cond := r.Enqueue(server, OpRead, buf, func(n int, c errs.Condition) {
		called = true
	}); !cond.Ok() {
		t.Fatalf("enqueue: %v", cond)
	}

	if cond := r.CancelAllOperations(server); !cond.Ok() {
		t.Fatalf("cancel all: %v", cond)
	}

	if _, cond := client.Write([]byte("hello")); !cond.Ok() {
		t.Fatalf("write: %v", cond)
	}
	if cond := r.RunOnce(); !cond.Ok() {
		t.Fatalf("run once: %v", cond)
	}
	if called {
		t.Fatalf("handler must not fire for a cancelled operation")
	}
}

func TestRunOnceReturnsImmediatelyWithNoPendingOperations(t *testing.T) {
	_, server, cleanup := mustLoopbackPair(t)
	defer cleanup()

	// Deliberately no config override: if RunOnce polled here it would
	// block for the one-hour default, since nothing is enqueued and
	// nothing was written.
	r, cond := NewReactor()
	if !cond.Ok() {
		t.Fatalf("new reactor: %v", cond)
	}
	defer r.Close()

	if cond := r.AddSocket(server); !cond.Ok() {
		t.Fatalf("add socket: %v", cond)
	}

	done := make(chan errs.Condition, 1)
	go func() { done <- r.RunOnce() }()

	select {
	case cond := <-done:
		if !cond.Ok() {
			t.Fatalf("run once: %v", cond)
		}
	case <-time.After(time.Second):
		t.Fatalf("run once blocked despite no pending operations")
	}
}

func TestRunOnceReportsMetrics(t *testing.T) {
	client, server, cleanup := mustLoopbackPair(t)
	defer cleanup()

	r := newBoundedReactor(t)
	defer r.Close()

	metrics := control.NewMetricsRegistry()
	r.SetMetrics(metrics)

	if cond := r.AddSocket(server); !cond.Ok() {
		t.Fatalf("add socket: %v", cond)
	}
	buf := make([]byte, 5)
	if cond := r.Enqueue(server, OpRead, buf, func(n int, c errs.Condition) {}); !cond.Ok() {
		t.Fatalf("enqueue: %v", cond)
	}
	if _, cond := client.Write([]byte("hello")); !cond.Ok() {
		t.Fatalf("write: %v", cond)
	}
	if cond := r.RunOnce(); !cond.Ok() {
		t.Fatalf("run once: %v", cond)
	}

	snap := metrics.GetSnapshot()
	if snap["reactor.run_once_count"] != int64(1) {
		t.Fatalf("run_once_count = %v, want 1", snap["reactor.run_once_count"])
	}
	if _, ok := snap["reactor.queue_depth"]; !ok {
		t.Fatalf("expected reactor.queue_depth to be reported")
	}
}

func TestSetDebugProbesReportsRegisteredSockets(t *testing.T) {
	_, server, cleanup := mustLoopbackPair(t)
	defer cleanup()

	r := newBoundedReactor(t)
	defer r.Close()

	probes := control.NewDebugProbes()
	r.SetDebugProbes(probes)

	if cond := r.AddSocket(server); !cond.Ok() {
		t.Fatalf("add socket: %v", cond)
	}

	state := probes.DumpState()
	if state["reactor.registered_sockets"] != 1 {
		t.Fatalf("registered_sockets = %v, want 1", state["reactor.registered_sockets"])
	}
	if _, ok := state["platform.cpus"]; !ok {
		t.Fatalf("expected platform.cpus probe to be registered")
	}
}

// TestReactorErrorEventDeliversPendingSocketError forces a RST by closing
// the client with SO_LINGER(0), so the server's queued read is drained
// through the EPOLLERR branch of RunOnce with a real errs.Condition
// fetched via SO_ERROR, rather than errs.Unexpected.
func TestReactorErrorEventDeliversPendingSocketError(t *testing.T) {
	client, server, cleanup := mustLoopbackPair(t)
	defer cleanup()

	r := newBoundedReactor(t)
	defer r.Close()

	if cond := r.AddSocket(server); !cond.Ok() {
		t.Fatalf("add socket: %v", cond)
	}

	buf := make([]byte, 5)
	done := make(chan struct{})
	var gotCond errs.Condition

	if cond := r.Enqueue(server, OpRead, buf, func(n int, c errs.Condition) {
		gotCond = c
		close(done)
	}); !cond.Ok() {
		t.Fatalf("enqueue: %v", cond)
	}

	if cond := sockopt.SetLinger(client, sockopt.Linger{Enabled: true}); !cond.Ok() {
		t.Fatalf("set linger: %v", cond)
	}
	if cond := client.Close(); !cond.Ok() {
		t.Fatalf("close client: %v", cond)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case <-done:
			if gotCond == errs.Unexpected {
				t.Fatalf("error event delivered errs.Unexpected, want the real pending socket error")
			}
			if gotCond.Ok() {
				t.Fatalf("error event delivered Success, want a failure condition")
			}
			return
		default:
			if cond := r.RunOnce(); !cond.Ok() {
				t.Fatalf("run once: %v", cond)
			}
		}
	}
	t.Fatalf("error event never delivered")
}
