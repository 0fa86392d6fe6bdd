//go:build !unix

// File: rawsocket/socket_other.go
// Author: momentics <momentics@gmail.com>
//
// Non-Unix platforms have no live backend; every operation reports
// errs.NotSupported so the package still compiles and links for code
// that only needs to type-check against it (e.g. cross-compiled
// tooling).

package rawsocket

import (
	"github.com/momentics/netio/addr"
	"github.com/momentics/netio/errs"
)

type Socket struct {
	version   addr.Version
	transport Transport
}

func Create(version addr.Version, transport Transport) (*Socket, errs.Condition) {
	return nil, errs.NotSupported
}

func (s *Socket) Valid() bool                    { return false }
func (s *Socket) FD() int                        { return -1 }
func (s *Socket) Transport() Transport           { return s.transport }
func (s *Socket) Version() addr.Version          { return s.version }
func (s *Socket) Connect(addr.Endpoint) errs.Condition { return errs.NotSupported }
func (s *Socket) Bind(addr.Endpoint) errs.Condition    { return errs.NotSupported }
func (s *Socket) Listen(int) errs.Condition            { return errs.NotSupported }
func (s *Socket) Accept() (*Socket, errs.Condition)    { return nil, errs.NotSupported }
func (s *Socket) Shutdown(read, write bool) errs.Condition { return errs.NotSupported }
func (s *Socket) Write(p []byte) (int, errs.Condition)     { return 0, errs.NotSupported }
func (s *Socket) Read(p []byte) (int, errs.Condition)      { return 0, errs.NotSupported }
func (s *Socket) SendTo(p []byte, dst addr.Endpoint) (int, errs.Condition) {
	return 0, errs.NotSupported
}
func (s *Socket) ReceiveFrom(p []byte) (addr.Endpoint, int, errs.Condition) {
	return addr.Endpoint{}, 0, errs.NotSupported
}
func (s *Socket) LocalEndpoint() addr.Endpoint  { return addr.Endpoint{} }
func (s *Socket) RemoteEndpoint() addr.Endpoint { return addr.Endpoint{} }
func (s *Socket) SetNonBlocking(bool) errs.Condition { return errs.NotSupported }
func (s *Socket) PendingError() errs.Condition       { return errs.NotSupported }
func (s *Socket) Close() errs.Condition              { return errs.Success }
