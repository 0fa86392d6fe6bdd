// Package socket exposes Stream, Listener and Datagram: typed handles
// wrapping rawsocket.Socket with a mutex-guarded open flag, matching
// the state machines of original_source/src/tcp/socket.cpp,
// original_source/src/tcp/listener.cpp and
// original_source/include/libwire/udp/socket.hpp. Misuse of a handle in
// the wrong state yields errs.InvalidArgument rather than a panic,
// since callers are expected to check the returned condition rather
// than rely on connection state invariants holding at compile time.
//
// Mutex-guarded state, sync.Once close, explicit getters; the same
// idiom used throughout this module.
//
// Author: momentics <momentics@gmail.com>
package socket

import (
	"sync"

	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/errs"
	"github.com/momentics/netio/rawsocket"
)

// Stream is a connected TCP-style socket.
type Stream struct {
	mu   sync.Mutex
	sock *rawsocket.Socket
	open bool
}

// NewStream wraps an already-connected or already-accepted raw socket.
func NewStream(sock *rawsocket.Socket) *Stream {
	return &Stream{sock: sock, open: true}
}

// Connect creates a new stream socket and connects it to target.
func Connect(target addr.Endpoint) (*Stream, errs.Condition) {
	version := target.Addr.Version
	sock, cond := rawsocket.Create(version, rawsocket.TransportStream)
	if !cond.Ok() {
		return nil, cond
	}
	if cond := sock.Connect(target); !cond.Ok() {
		sock.Close()
		return nil, cond
	}
	return NewStream(sock), errs.Success
}

// Close releases the underlying socket. Safe to call more than once.
func (s *Stream) Close() errs.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	// open may already be false after a peer-close; the raw socket's
	// Close is idempotent, so the descriptor is still released here.
	s.open = false
	return s.sock.Close()
}

// Shutdown disables the read and/or write half without closing.
func (s *Stream) Shutdown(read, write bool) errs.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return errs.InvalidArgument
	}
	return s.sock.Shutdown(read, write)
}

// markClosedOnDisconnect flips open to false once a peer-initiated
// disconnect is observed, so a subsequent IsOpen() reports it without
// requiring the caller to call Close() itself.
func (s *Stream) markClosedOnDisconnect(cond errs.Condition) {
	if cond == errs.EndOfFile || errs.IsDisconnected(cond) {
		s.mu.Lock()
		s.open = false
		s.mu.Unlock()
	}
}

// Read blocks until exactly n bytes have been read into buf, or returns
// errs.EndOfFile on a short read (the peer closed before n bytes
// arrived), which also leaves IsOpen() false. len(buf) must be >= n.
func (s *Stream) Read(n int, buf []byte) (int, errs.Condition) {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if !open {
		return 0, errs.InvalidArgument
	}
	total := 0
	for total < n {
		read, cond := s.sock.Read(buf[total:n])
		if !cond.Ok() {
			s.markClosedOnDisconnect(cond)
			return total, cond
		}
		if read == 0 {
			s.markClosedOnDisconnect(errs.EndOfFile)
			return total, errs.EndOfFile
		}
		total += read
	}
	return total, errs.Success
}

// ReadUntil reads byte-at-a-time until delim is seen (inclusive) or max
// bytes have been consumed, whichever comes first.
func (s *Stream) ReadUntil(delim byte, buf []byte, max int) ([]byte, errs.Condition) {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if !open {
		return nil, errs.InvalidArgument
	}
	n := 0
	one := make([]byte, 1)
	for n < max {
		read, cond := s.sock.Read(one)
		if !cond.Ok() {
			s.markClosedOnDisconnect(cond)
			return buf[:n], cond
		}
		if read == 0 {
			s.markClosedOnDisconnect(errs.EndOfFile)
			return buf[:n], errs.EndOfFile
		}
		buf[n] = one[0]
		n++
		if one[0] == delim {
			break
		}
	}
	return buf[:n], errs.Success
}

// Write writes all of buf.
func (s *Stream) Write(buf []byte) (int, errs.Condition) {
	s.mu.Lock()
	open := s.open
	s.mu.Unlock()
	if !open {
		return 0, errs.InvalidArgument
	}
	return s.sock.Write(buf)
}

// LocalEndpoint returns the locally bound endpoint.
func (s *Stream) LocalEndpoint() addr.Endpoint {
	return s.sock.LocalEndpoint()
}

// RemoteEndpoint returns the peer endpoint.
func (s *Stream) RemoteEndpoint() addr.Endpoint {
	return s.sock.RemoteEndpoint()
}

// Raw exposes the underlying rawsocket.Socket for sockopt and selector
// use.
func (s *Stream) Raw() *rawsocket.Socket {
	return s.sock
}

// IsOpen reports whether the stream has not yet been closed.
func (s *Stream) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.open
}

// Listener accepts incoming stream connections.
type Listener struct {
	mu   sync.Mutex
	sock *rawsocket.Socket
	open bool
}

// Listen creates, binds and listens a stream socket on (address, port).
func Listen(address addr.Address, port uint16, backlog int) (*Listener, errs.Condition) {
	sock, cond := rawsocket.Create(address.Version, rawsocket.TransportStream)
	if !cond.Ok() {
		return nil, cond
	}
	if cond := sock.Bind(addr.Endpoint{Addr: address, Port: port}); !cond.Ok() {
		sock.Close()
		return nil, cond
	}
	if cond := sock.Listen(backlog); !cond.Ok() {
		sock.Close()
		return nil, cond
	}
	return &Listener{sock: sock, open: true}, errs.Success
}

// Accept extracts the first pending connection.
func (l *Listener) Accept() (*Stream, errs.Condition) {
	l.mu.Lock()
	open := l.open
	l.mu.Unlock()
	if !open {
		return nil, errs.InvalidArgument
	}
	conn, cond := l.sock.Accept()
	if !cond.Ok() {
		return nil, cond
	}
	return NewStream(conn), errs.Success
}

// Close stops accepting and releases the listening socket.
func (l *Listener) Close() errs.Condition {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.open {
		return errs.Success
	}
	l.open = false
	return l.sock.Close()
}

// LocalEndpoint returns the bound listening endpoint.
func (l *Listener) LocalEndpoint() addr.Endpoint {
	return l.sock.LocalEndpoint()
}

// Raw exposes the underlying rawsocket.Socket for sockopt and selector
// use.
func (l *Listener) Raw() *rawsocket.Socket {
	return l.sock
}

// IsOpen reports whether the listener has not yet been closed.
func (l *Listener) IsOpen() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.open
}

// Datagram is a connectionless UDP-style socket.
type Datagram struct {
	mu   sync.Mutex
	sock *rawsocket.Socket
	open bool
}

// NewDatagram creates an unbound datagram socket of the given version.
func NewDatagram(version addr.Version) (*Datagram, errs.Condition) {
	sock, cond := rawsocket.Create(version, rawsocket.TransportDatagram)
	if !cond.Ok() {
		return nil, cond
	}
	return &Datagram{sock: sock, open: true}, errs.Success
}

// Bind binds the datagram socket to a local (address, port).
func (d *Datagram) Bind(address addr.Address, port uint16) errs.Condition {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return errs.InvalidArgument
	}
	return d.sock.Bind(addr.Endpoint{Addr: address, Port: port})
}

// Associate fixes peer as the socket's default destination via an
// OS-level connect() on the otherwise-unconnected datagram socket.
func (d *Datagram) Associate(peer addr.Endpoint) errs.Condition {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return errs.InvalidArgument
	}
	return d.sock.Connect(peer)
}

// Read reads one datagram into a buffer sized up to max and returns it
// resized to the datagram's actual length.
func (d *Datagram) Read(max int, buf []byte) ([]byte, errs.Condition) {
	d.mu.Lock()
	open := d.open
	d.mu.Unlock()
	if !open {
		return nil, errs.InvalidArgument
	}
	if len(buf) < max {
		buf = make([]byte, max)
	}
	_, n, cond := d.sock.ReceiveFrom(buf[:max])
	if !cond.Ok() {
		return nil, cond
	}
	return buf[:n], errs.Success
}

// Write sends buf as one datagram. dest is required unless the socket
// has been Associate'd to a peer, in which case a nil dest sends to
// that peer.
func (d *Datagram) Write(buf []byte, dest *addr.Endpoint) (int, errs.Condition) {
	d.mu.Lock()
	open := d.open
	d.mu.Unlock()
	if !open {
		return 0, errs.InvalidArgument
	}
	if dest == nil {
		return d.sock.Write(buf)
	}
	return d.sock.SendTo(buf, *dest)
}

// Close releases the underlying socket. Safe to call more than once.
func (d *Datagram) Close() errs.Condition {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return errs.Success
	}
	d.open = false
	return d.sock.Close()
}

// Raw exposes the underlying rawsocket.Socket for sockopt and selector
// use.
func (d *Datagram) Raw() *rawsocket.Socket {
	return d.sock
}

// IsOpen reports whether the datagram socket has not yet been closed.
func (d *Datagram) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}
