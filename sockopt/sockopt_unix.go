//go:build unix

// File: sockopt/sockopt_unix.go
// Author: momentics <momentics@gmail.com>

package sockopt

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/netio/errs"
	"github.com/momentics/netio/rawsocket"
)

func requireStream(s *rawsocket.Socket) {
	if s.Transport() != rawsocket.TransportStream {
		errs.PanicOnUnexpected(errs.Unexpected)
	}
}

// SetNonBlocking toggles O_NONBLOCK on s.
func SetNonBlocking(s *rawsocket.Socket, v bool) errs.Condition {
	return s.SetNonBlocking(v)
}

// SetReceiveTimeout sets SO_RCVTIMEO. Has no effect on non-blocking
// sockets; a socket left mid-timeout is unsafe to reuse, it must be
// closed.
func SetReceiveTimeout(s *rawsocket.Socket, d time.Duration) errs.Condition {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.FD(), unix.SOL_SOCKET, unix.SO_RCVTIMEO, &tv); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// ReceiveTimeout reads SO_RCVTIMEO.
func ReceiveTimeout(s *rawsocket.Socket) (time.Duration, errs.Condition) {
	tv, err := unix.GetsockoptTimeval(s.FD(), unix.SOL_SOCKET, unix.SO_RCVTIMEO)
	if err != nil {
		return 0, errs.FromErrno(err.(unix.Errno))
	}
	return time.Duration(tv.Nano()), errs.Success
}

// SetSendTimeout sets SO_SNDTIMEO.
func SetSendTimeout(s *rawsocket.Socket, d time.Duration) errs.Condition {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	if err := unix.SetsockoptTimeval(s.FD(), unix.SOL_SOCKET, unix.SO_SNDTIMEO, &tv); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// SendTimeout reads SO_SNDTIMEO.
func SendTimeout(s *rawsocket.Socket) (time.Duration, errs.Condition) {
	tv, err := unix.GetsockoptTimeval(s.FD(), unix.SOL_SOCKET, unix.SO_SNDTIMEO)
	if err != nil {
		return 0, errs.FromErrno(err.(unix.Errno))
	}
	return time.Duration(tv.Nano()), errs.Success
}

// SetSendBufferSize sets SO_SNDBUF.
func SetSendBufferSize(s *rawsocket.Socket, size int) errs.Condition {
	if err := unix.SetsockoptInt(s.FD(), unix.SOL_SOCKET, unix.SO_SNDBUF, size); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// SendBufferSize reads SO_SNDBUF.
func SendBufferSize(s *rawsocket.Socket) (int, errs.Condition) {
	v, err := unix.GetsockoptInt(s.FD(), unix.SOL_SOCKET, unix.SO_SNDBUF)
	if err != nil {
		return 0, errs.FromErrno(err.(unix.Errno))
	}
	return v, errs.Success
}

// SetReceiveBufferSize sets SO_RCVBUF.
func SetReceiveBufferSize(s *rawsocket.Socket, size int) errs.Condition {
	if err := unix.SetsockoptInt(s.FD(), unix.SOL_SOCKET, unix.SO_RCVBUF, size); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// ReceiveBufferSize reads SO_RCVBUF.
func ReceiveBufferSize(s *rawsocket.Socket) (int, errs.Condition) {
	v, err := unix.GetsockoptInt(s.FD(), unix.SOL_SOCKET, unix.SO_RCVBUF)
	if err != nil {
		return 0, errs.FromErrno(err.(unix.Errno))
	}
	return v, errs.Success
}

// SetKeepAlive toggles SO_KEEPALIVE. Stream-only.
func SetKeepAlive(s *rawsocket.Socket, enabled bool) errs.Condition {
	requireStream(s)
	v := 0
	if enabled {
		v = 1
	}
	if err := unix.SetsockoptInt(s.FD(), unix.SOL_SOCKET, unix.SO_KEEPALIVE, v); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// KeepAlive reads SO_KEEPALIVE. Stream-only.
func KeepAlive(s *rawsocket.Socket) (bool, errs.Condition) {
	requireStream(s)
	v, err := unix.GetsockoptInt(s.FD(), unix.SOL_SOCKET, unix.SO_KEEPALIVE)
	if err != nil {
		return false, errs.FromErrno(err.(unix.Errno))
	}
	return v != 0, errs.Success
}

// SetLinger sets SO_LINGER. Stream-only.
func SetLinger(s *rawsocket.Socket, l Linger) errs.Condition {
	requireStream(s)
	onoff := int32(0)
	if l.Enabled {
		onoff = 1
	}
	opt := &unix.Linger{Onoff: onoff, Linger: int32(l.Timeout / time.Second)}
	if err := unix.SetsockoptLinger(s.FD(), unix.SOL_SOCKET, unix.SO_LINGER, opt); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// GetLinger reads SO_LINGER. Stream-only.
func GetLinger(s *rawsocket.Socket) (Linger, errs.Condition) {
	requireStream(s)
	opt, err := unix.GetsockoptLinger(s.FD(), unix.SOL_SOCKET, unix.SO_LINGER)
	if err != nil {
		return Linger{}, errs.FromErrno(err.(unix.Errno))
	}
	return Linger{Enabled: opt.Onoff != 0, Timeout: time.Duration(opt.Linger) * time.Second}, errs.Success
}

// SetRetransmissionTimeout sets TCP_USER_TIMEOUT. Stream-only.
func SetRetransmissionTimeout(s *rawsocket.Socket, d time.Duration) errs.Condition {
	requireStream(s)
	ms := int(d / time.Millisecond)
	if err := unix.SetsockoptInt(s.FD(), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, ms); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// RetransmissionTimeout reads TCP_USER_TIMEOUT. Stream-only. Whenever
// TCP_USER_TIMEOUT reads back 0 (the value of a socket on which it was
// never set, on Linux too), it reports 2h instead.
func RetransmissionTimeout(s *rawsocket.Socket) (time.Duration, errs.Condition) {
	requireStream(s)
	ms, err := unix.GetsockoptInt(s.FD(), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT)
	if err != nil {
		return 0, errs.FromErrno(err.(unix.Errno))
	}
	if ms == 0 {
		return 2 * time.Hour, errs.Success
	}
	return time.Duration(ms) * time.Millisecond, errs.Success
}

// SetNoDelay toggles TCP_NODELAY. Stream-only.
func SetNoDelay(s *rawsocket.Socket, enabled bool) errs.Condition {
	requireStream(s)
	v := 0
	if enabled {
		v = 1
	}
	if err := unix.SetsockoptInt(s.FD(), unix.IPPROTO_TCP, unix.TCP_NODELAY, v); err != nil {
		return errs.FromErrno(err.(unix.Errno))
	}
	return errs.Success
}

// NoDelay reads TCP_NODELAY. Stream-only.
func NoDelay(s *rawsocket.Socket) (bool, errs.Condition) {
	requireStream(s)
	v, err := unix.GetsockoptInt(s.FD(), unix.IPPROTO_TCP, unix.TCP_NODELAY)
	if err != nil {
		return false, errs.FromErrno(err.(unix.Errno))
	}
	return v != 0, errs.Success
}
