// Package rawsocket is a thin wrapper over BSD-style sockets: one Socket
// value owns exactly one OS file descriptor and exposes connect, bind,
// listen, accept, read/write, send-to/receive-from and shutdown as plain
// methods returning an errs.Condition.
//
// Grounded on original_source/include/libwire/internal/socket.hpp and
// original_source/src/internal/socket.cpp: same operation set, same
// not-initialized sentinel, same user/internal non-blocking state split.
// Go has no move constructors, so ownership transfer that the C++ type
// enforced at compile time is enforced here by convention: a Socket is
// always passed and stored as *Socket, and Close is idempotent via
// sync.Once, the same closeOnce idiom used throughout this module.
//
// Author: momentics <momentics@gmail.com>
package rawsocket

// Transport identifies the socket's wire-level protocol.
type Transport int

const (
	TransportStream Transport = iota
	TransportDatagram
)
