//go:build unix

// File: rawsocket/socket_unix.go
// Author: momentics <momentics@gmail.com>
//
// Grounded on original_source/src/internal/socket.cpp: same call sequence
// per operation (socket/connect/bind/listen/accept/shutdown/read/write/
// sendto/recvfrom), same not-initialized sentinel and non-blocking state
// split, POSIX syscalls substituted via golang.org/x/sys/unix for the
// original's raw <sys/socket.h> calls.

package rawsocket

import (
	"sync"

	"golang.org/x/sys/unix"

	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/errs"
)

// notInitialized is the sentinel file descriptor value of a Socket that
// owns no OS resource, matching libwire::internal_::socket::not_initialized.
const notInitialized int32 = -1

// Socket wraps exactly one OS socket file descriptor. The zero value is
// not usable; construct with Create or accept it from Listener.Accept.
// A Socket must never be copied by value once in use: always pass and
// store *Socket so Close's sync.Once and the fd field stay shared.
type Socket struct {
	handle    int32
	version   addr.Version
	transport Transport

	mu                sync.Mutex
	userNonBlocking   bool
	internalNonBlock  bool

	closeOnce sync.Once
}

// Create allocates a new socket of the given IP version and transport.
func Create(version addr.Version, transport Transport) (*Socket, errs.Condition) {
	domain := unix.AF_INET
	if version == addr.V6 {
		domain = unix.AF_INET6
	}
	typ := unix.SOCK_STREAM
	proto := unix.IPPROTO_TCP
	if transport == TransportDatagram {
		typ = unix.SOCK_DGRAM
		proto = unix.IPPROTO_UDP
	}
	fd, err := unix.Socket(domain, typ, proto)
	if err != nil {
		return nil, errs.FromErrno(err.(unix.Errno))
	}
	return &Socket{handle: int32(fd), version: version, transport: transport}, errs.Success
}

// adopt wraps an already-open fd (produced by Accept) as a Socket.
func adopt(fd int, version addr.Version, transport Transport) *Socket {
	return &Socket{handle: int32(fd), version: version, transport: transport}
}

// Valid reports whether the Socket owns a live file descriptor.
func (s *Socket) Valid() bool {
	return s.handle != notInitialized
}

// FD returns the raw file descriptor, for use by the sockopt and
// selector packages. Callers outside this module must not close it
// directly; use Close.
func (s *Socket) FD() int {
	return int(s.handle)
}

// Transport reports the socket's wire-level protocol.
func (s *Socket) Transport() Transport {
	return s.transport
}

// Version reports the socket's IP version.
func (s *Socket) Version() addr.Version {
	return s.version
}

// Connect connects the socket to target. For datagram sockets this only
// fixes the default destination; no handshake occurs.
func (s *Socket) Connect(target addr.Endpoint) errs.Condition {
	sa := addr.ToSockaddr(target)
	if err := unix.Connect(int(s.handle), sa); err != nil {
		if err == unix.EINPROGRESS {
			return errs.InProgress
		}
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// Bind binds the socket to a local endpoint.
func (s *Socket) Bind(local addr.Endpoint) errs.Condition {
	sa := addr.ToSockaddr(local)
	if err := unix.Bind(int(s.handle), sa); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// Listen marks a bound stream socket as accepting connections, with
// backlog as a hint for the kernel's pending-connection queue size.
func (s *Socket) Listen(backlog int) errs.Condition {
	if err := unix.Listen(int(s.handle), backlog); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// Accept extracts the first pending connection from the queue and
// returns a Socket wrapping it, retrying on EINTR. Returns errs.TryAgain
// if the listener is non-blocking and no connection is pending.
func (s *Socket) Accept() (*Socket, errs.Condition) {
	for {
		fd, _, err := unix.Accept(int(s.handle))
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return nil, errs.FromErrno(err.(unix.Errno))
		}
		return adopt(fd, s.version, s.transport), errs.Success
	}
}

// Shutdown disables the read and/or write half of a full-duplex stream
// connection without closing the descriptor.
func (s *Socket) Shutdown(read, write bool) errs.Condition {
	how := unix.SHUT_RDWR
	switch {
	case read && !write:
		how = unix.SHUT_RD
	case write && !read:
		how = unix.SHUT_WR
	}
	if err := unix.Shutdown(int(s.handle), how); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// Write writes all of p to a connected socket, retrying on EINTR.
// Returns the number of bytes actually written and the resulting
// condition; a short write paired with errs.Success never happens on a
// blocking socket, but non-blocking callers must check n.
func (s *Socket) Write(p []byte) (int, errs.Condition) {
	total := 0
	for total < len(p) {
		n, err := unix.Write(int(s.handle), p[total:])
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return total, errs.FromErrno(err.(unix.Errno))
		}
		if n == 0 {
			return total, errs.EndOfFile
		}
		total += n
		if s.internalNonBlock {
			break
		}
	}
	return total, errs.Success
}

// Read reads from a connected stream socket, retrying on EINTR. In
// blocking mode it requests MSG_WAITALL so the kernel waits for all of
// len(p) before returning; a short read that comes back with no error
// then means the peer closed early, translated to errs.EndOfFile. In
// non-blocking mode a short read is returned as-is and only a zero-byte
// read signals errs.EndOfFile, matching
// original_source/src/internal/socket.cpp's read().
func (s *Socket) Read(p []byte) (int, errs.Condition) {
	flags := 0
	if !s.internalNonBlock {
		flags = unix.MSG_WAITALL
	}
	for {
		n, _, err := unix.Recvfrom(int(s.handle), p, flags)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			return 0, errs.FromErrno(err.(unix.Errno))
		}
		if n == 0 {
			return 0, errs.EndOfFile
		}
		if flags&unix.MSG_WAITALL != 0 && n < len(p) {
			return n, errs.EndOfFile
		}
		return n, errs.Success
	}
}

// SendTo sends p as a single datagram to destination.
func (s *Socket) SendTo(p []byte, destination addr.Endpoint) (int, errs.Condition) {
	sa := addr.ToSockaddr(destination)
	if err := unix.Sendto(int(s.handle), p, 0, sa); err != nil {
		return 0, errs.FromErrno(err.(unix.Errno))
	}
	return len(p), errs.Success
}

// ReceiveFrom reads one datagram into p and reports its source endpoint
// and length.
func (s *Socket) ReceiveFrom(p []byte) (addr.Endpoint, int, errs.Condition) {
	n, from, err := unix.Recvfrom(int(s.handle), p, 0)
	if err != nil {
		return addr.Endpoint{}, 0, errs.FromErrno(err.(unix.Errno))
	}
	if from == nil {
		return addr.Endpoint{}, n, errs.Success
	}
	return addr.FromSockaddr(from), n, errs.Success
}

// LocalEndpoint returns the locally bound endpoint, or the zero Endpoint
// if the socket is not bound.
func (s *Socket) LocalEndpoint() addr.Endpoint {
	sa, err := unix.Getsockname(int(s.handle))
	if err != nil {
		return addr.Endpoint{}
	}
	return addr.FromSockaddr(sa)
}

// RemoteEndpoint returns the peer endpoint of a connected socket, or the
// zero Endpoint if the socket is not connected.
func (s *Socket) RemoteEndpoint() addr.Endpoint {
	sa, err := unix.Getpeername(int(s.handle))
	if err != nil {
		return addr.Endpoint{}
	}
	return addr.FromSockaddr(sa)
}

// SetNonBlocking toggles the socket's O_NONBLOCK flag. The requested
// state and the applied state are kept in separate fields, matching
// libwire's user_non_blocking/internal_non_blocking split; this method
// is the only writer of either and sets both to v. The reactor does not
// change a socket's blocking mode.
func (s *Socket) SetNonBlocking(v bool) errs.Condition {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userNonBlocking = v
	if err := unix.SetNonblock(int(s.handle), v); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	s.internalNonBlock = v
	return errs.Success
}

// PendingError fetches and clears the socket's pending error via
// SO_ERROR, translating it through errs.FromErrno. Used after a selector
// reports an error condition on this socket, mirroring
// original_source/src/reactor.cpp's last_async_socket_error(handle) call
// ahead of draining a failed socket's operation queue.
func (s *Socket) PendingError() errs.Condition {
	v, err := unix.GetsockoptInt(int(s.handle), unix.SOL_SOCKET, unix.SO_ERROR)
	if err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.FromErrno(unix.Errno(v))
}

// Close releases the underlying file descriptor. Safe to call more than
// once; only the first call has effect.
func (s *Socket) Close() errs.Condition {
	cond := errs.Success
	s.closeOnce.Do(func() {
		if s.handle == notInitialized {
			return
		}
		if err := unix.Close(int(s.handle)); err != nil {
			cond = errs.FromErrno(err.(unix.Errno))
		}
		s.handle = notInitialized
	})
	return cond
}
