// Package sockopt applies and reads socket options against a
// rawsocket.Socket: non-blocking mode, timeouts, buffer sizes, keep-alive,
// linger, retransmission timeout and no-delay. Stream-only options panic
// if applied to a datagram socket, via the errs.PanicOnUnexpected
// convention for programmer-error conditions.
//
// Grounded on original_source/include/libwire/options.hpp (option set)
// and original_source/src/tcp/options.cpp (setsockopt/getsockopt call
// sequence, including the TCP_USER_TIMEOUT / 2h fallback for
// RetransmissionTimeout).
//
// Author: momentics <momentics@gmail.com>
package sockopt

import "time"

// Linger describes SO_LINGER state.
type Linger struct {
	Enabled bool
	Timeout time.Duration
}
