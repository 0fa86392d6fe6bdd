// Package errs defines the closed error-condition taxonomy shared by every
// layer of netio: rawsocket, sockopt, socket, selector and reactor all
// report failures as an errs.Condition instead of a raw OS error.
//
// Author: momentics <momentics@gmail.com>
package errs
