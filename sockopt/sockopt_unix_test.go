//go:build unix

package sockopt

import (
	"testing"
	"time"

	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/rawsocket"
)

func TestNoDelayRoundTrip(t *testing.T) {
	s, cond := rawsocket.Create(addr.V4, rawsocket.TransportStream)
	if !cond.Ok() {
		t.Fatalf("create: %v", cond)
	}
	defer s.Close()

	if cond := SetNoDelay(s, true); !cond.Ok() {
		t.Fatalf("set no delay: %v", cond)
	}
	v, cond := NoDelay(s)
	if !cond.Ok() {
		t.Fatalf("get no delay: %v", cond)
	}
	if !v {
		t.Fatalf("expected TCP_NODELAY to read back true")
	}
}

func TestReceiveBufferSizeRoundTrip(t *testing.T) {
	s, cond := rawsocket.Create(addr.V4, rawsocket.TransportDatagram)
	if !cond.Ok() {
		t.Fatalf("create: %v", cond)
	}
	defer s.Close()

	if cond := SetReceiveBufferSize(s, 1<<16); !cond.Ok() {
		t.Fatalf("set rcvbuf: %v", cond)
	}
	if _, cond := ReceiveBufferSize(s); !cond.Ok() {
		t.Fatalf("get rcvbuf: %v", cond)
	}
}

func TestKeepAlivePanicsOnDatagram(t *testing.T) {
	s, cond := rawsocket.Create(addr.V4, rawsocket.TransportDatagram)
	if !cond.Ok() {
		t.Fatalf("create: %v", cond)
	}
	defer s.Close()

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic applying a stream-only option to a datagram socket")
		}
	}()
	SetKeepAlive(s, true)
}

func TestLingerRoundTrip(t *testing.T) {
	s, cond := rawsocket.Create(addr.V4, rawsocket.TransportStream)
	if !cond.Ok() {
		t.Fatalf("create: %v", cond)
	}
	defer s.Close()

	want := Linger{Enabled: true, Timeout: 3 * time.Second}
	if cond := SetLinger(s, want); !cond.Ok() {
		t.Fatalf("set linger: %v", cond)
	}
	got, cond := GetLinger(s)
	if !cond.Ok() {
		t.Fatalf("get linger: %v", cond)
	}
	if got.Enabled != want.Enabled || got.Timeout != want.Timeout {
		t.Fatalf("linger = %+v, want %+v", got, want)
	}
}
