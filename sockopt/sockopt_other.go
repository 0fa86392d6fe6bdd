//go:build !unix

// File: sockopt/sockopt_other.go
// Author: momentics <momentics@gmail.com>

package sockopt

import (
	"time"

	"github.com/momentics/netio/errs"
	"github.com/momentics/netio/rawsocket"
)

func SetNonBlocking(s *rawsocket.Socket, v bool) errs.Condition { return errs.NotSupported }

func SetReceiveTimeout(s *rawsocket.Socket, d time.Duration) errs.Condition { return errs.NotSupported }
func ReceiveTimeout(s *rawsocket.Socket) (time.Duration, errs.Condition)   { return 0, errs.NotSupported }

func SetSendTimeout(s *rawsocket.Socket, d time.Duration) errs.Condition { return errs.NotSupported }
func SendTimeout(s *rawsocket.Socket) (time.Duration, errs.Condition)   { return 0, errs.NotSupported }

func SetSendBufferSize(s *rawsocket.Socket, size int) errs.Condition { return errs.NotSupported }
func SendBufferSize(s *rawsocket.Socket) (int, errs.Condition)       { return 0, errs.NotSupported }

func SetReceiveBufferSize(s *rawsocket.Socket, size int) errs.Condition { return errs.NotSupported }
func ReceiveBufferSize(s *rawsocket.Socket) (int, errs.Condition)       { return 0, errs.NotSupported }

func SetKeepAlive(s *rawsocket.Socket, enabled bool) errs.Condition { return errs.NotSupported }
func KeepAlive(s *rawsocket.Socket) (bool, errs.Condition)          { return false, errs.NotSupported }

func SetLinger(s *rawsocket.Socket, l Linger) errs.Condition { return errs.NotSupported }
func GetLinger(s *rawsocket.Socket) (Linger, errs.Condition) { return Linger{}, errs.NotSupported }

func SetRetransmissionTimeout(s *rawsocket.Socket, d time.Duration) errs.Condition {
	return errs.NotSupported
}
func RetransmissionTimeout(s *rawsocket.Socket) (time.Duration, errs.Condition) {
	return 0, errs.NotSupported
}

func SetNoDelay(s *rawsocket.Socket, enabled bool) errs.Condition { return errs.NotSupported }
func NoDelay(s *rawsocket.Socket) (bool, errs.Condition)          { return false, errs.NotSupported }
