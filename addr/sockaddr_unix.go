//go:build unix

// File: addr/sockaddr_unix.go
// Author: momentics <momentics@gmail.com>
//
// Converts between Endpoint and golang.org/x/sys/unix.Sockaddr, grounded
// on original_source/src/internal/socket.cpp's endpoint_to_sockaddr /
// sockaddr_to_endpoint call sites, using unix.SockaddrInet4 /
// unix.SockaddrInet6.

package addr

import "golang.org/x/sys/unix"

// ToSockaddr converts an Endpoint to a unix.Sockaddr suitable for Bind,
// Connect and SendTo.
func ToSockaddr(e Endpoint) unix.Sockaddr {
	if e.Addr.Version == V4 {
		sa := &unix.SockaddrInet4{Port: int(e.Port)}
		copy(sa.Addr[:], e.Addr.Octets())
		return sa
	}
	sa := &unix.SockaddrInet6{Port: int(e.Port)}
	copy(sa.Addr[:], e.Addr.Octets())
	return sa
}

// FromSockaddr converts a unix.Sockaddr, as returned by Getsockname,
// Getpeername or Accept, to an Endpoint. Any other concrete type yields
// the zero Endpoint.
func FromSockaddr(sa unix.Sockaddr) Endpoint {
	switch s := sa.(type) {
	case *unix.SockaddrInet4:
		return Endpoint{Addr: NewV4(s.Addr), Port: uint16(s.Port)}
	case *unix.SockaddrInet6:
		return Endpoint{Addr: NewV6(s.Addr), Port: uint16(s.Port)}
	default:
		return Endpoint{}
	}
}
