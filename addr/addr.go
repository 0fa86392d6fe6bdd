// Package addr provides the Address/Endpoint value types shared across
// rawsocket, socket and selector: an IP version tag plus 4 or 16 octets
// in network byte order, and a (address, port) endpoint pair.
//
// Author: momentics <momentics@gmail.com>
package addr

// Version tags whether an Address holds 4 or 16 significant octets.
type Version uint8

const (
	V4 Version = iota
	V6
)

// Address is an IPv4 or IPv6 address. Equality is bytewise over the
// significant prefix (4 bytes for V4, 16 for V6); the remaining bytes of
// the backing array are always zero and never compared.
type Address struct {
	Version Version
	bytes   [16]byte
}

// NewV4 constructs an IPv4 address from 4 octets in network byte order.
func NewV4(b [4]byte) Address {
	a := Address{Version: V4}
	copy(a.bytes[:4], b[:])
	return a
}

// NewV6 constructs an IPv6 address from 16 octets in network byte order.
func NewV6(b [16]byte) Address {
	a := Address{Version: V6}
	copy(a.bytes[:], b[:])
	return a
}

// Octets returns the significant octets: 4 for V4, 16 for V6.
func (a Address) Octets() []byte {
	if a.Version == V4 {
		return a.bytes[:4]
	}
	return a.bytes[:16]
}

// Equal reports whether two addresses carry the same version and octets.
func (a Address) Equal(o Address) bool {
	if a.Version != o.Version {
		return false
	}
	n := 4
	if a.Version == V6 {
		n = 16
	}
	for i := 0; i < n; i++ {
		if a.bytes[i] != o.bytes[i] {
			return false
		}
	}
	return true
}

// Endpoint pairs an Address with a 16-bit port, host byte order.
type Endpoint struct {
	Addr Address
	Port uint16
}

// Zero reports whether e is the zero endpoint (used by LocalEndpoint /
// RemoteEndpoint to signal failure without an error condition).
func (e Endpoint) Zero() bool {
	return e.Port == 0 && e.Addr.Equal(Address{Version: e.Addr.Version})
}

var (
	// Any4 is the IPv4 wildcard address 0.0.0.0.
	Any4 = NewV4([4]byte{0, 0, 0, 0})
	// Loopback4 is the IPv4 loopback address 127.0.0.1.
	Loopback4 = NewV4([4]byte{127, 0, 0, 1})
	// Any6 is the IPv6 wildcard address ::.
	Any6 = NewV6([16]byte{})
	// Loopback6 is the IPv6 loopback address ::1.
	Loopback6 = NewV6([16]byte{15: 1})
)
