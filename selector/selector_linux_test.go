//go:build linux

package selector

import (
	"testing"
	"time"

	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/rawsocket"
)

func TestRegisterAndPollReadable(t *testing.T) {
	listener, cond := rawsocket.Create(addr.V4, rawsocket.TransportStream)
	if !cond.Ok() {
		t.Fatalf("create listener: %v", cond)
	}
	defer listener.Close()
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
	defer client.Close()
	if cond := client.Connect(local); !cond.Ok() {
		t.Fatalf("connect: %v", cond)
	}
	server, cond := listener.Accept()
	if !cond.Ok() {
		t.Fatalf("accept: %v", cond)
	}
	defer server.Close()

	sel, cond := New()
	if !cond.Ok() {
		t.Fatalf("new selector: %v", cond)
	}
	defer sel.Close()

	reg, cond := sel.Register(server, Readable)
	if !cond.Ok() {
		t.Fatalf("register: %v", cond)
	}

	if _, cond := client.Write([]byte("x")); !cond.Ok() {
		t.Fatalf("write: %v", cond)
	}

	events := make([]Event, 4)
	n, cond := sel.Poll(events, time.Second)
	if !cond.Ok() {
		t.Fatalf("poll: %v", cond)
	}
	if n != 1 {
		t.Fatalf("poll returned %d events, want 1", n)
	}
	codes := sel.EventCodes(events[0])
	if codes&Readable == 0 {
		t.Fatalf("expected Readable in event codes, got %v", codes)
	}
	gotReg := sel.UserData(events[0])
	if gotReg != reg {
		t.Fatalf("UserData did not return the registered Registration")
	}
}

func TestChangeMaskToWritable(t *testing.T) {
	a, cond := rawsocket.Create(addr.V4, rawsocket.TransportDatagram)
	if !cond.Ok() {
		t.Fatalf("create: %v", cond)
	}
	defer a.Close()
	if cond := a.Bind(addr.Endpoint{Addr: addr.Loopback4, Port: 0}); !cond.Ok() {
		t.Fatalf("bind: %v", cond)
	}

	sel, cond := New()
	if !cond.Ok() {
		t.Fatalf("new selector: %v", cond)
	}
	defer sel.Close()

	reg, cond := sel.Register(a, Readable)
	if !cond.Ok() {
		t.Fatalf("register: %v", cond)
	}
	if cond := sel.ChangeMask(reg, Writable); !cond.Ok() {
		t.Fatalf("change mask: %v", cond)
	}
	if reg.LastMask != Writable {
		t.Fatalf("LastMask = %v, want Writable", reg.LastMask)
	}
}

func TestChangeMaskSkipsSyscallWhenUnchanged(t *testing.T) {
	a, cond := rawsocket.Create(addr.V4, rawsocket.TransportDatagram)
	if !cond.Ok() {
		t.Fatalf("create: %v", cond)
	}
	defer a.Close()
	if cond := a.Bind(addr.Endpoint{Addr: addr.Loopback4, Port: 0}); !cond.Ok() {
		t.Fatalf("bind: %v", cond)
	}

	sel, cond := New()
	if !cond.Ok() {
		t.Fatalf("new selector: %v", cond)
	}
	defer sel.Close()

	reg, cond := sel.Register(a, Readable)
	if !cond.Ok() {
		t.Fatalf("register: %v", cond)
	}
	// Same mask as registered with: must succeed even though the
	// registration was never EPOLL_CTL_MOD'd for this call.
	if cond := sel.ChangeMask(reg, Readable); !cond.Ok() {
		t.Fatalf("change mask: %v", cond)
	}
	if reg.LastMask != Readable {
		t.Fatalf("LastMask = %v, want Readable", reg.LastMask)
	}
}
