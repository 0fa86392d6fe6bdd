//go:build unix

// File: errs/errno_unix.go
// Author: momentics <momentics@gmail.com>
//
// Maps POSIX errno values to the Condition taxonomy. Grounded on
// original_source/src/win32/error/system_category.cpp's ERRORS_MAP table,
// same condition vocabulary, POSIX errno numbers substituted for the WSA
// codes the original used on Windows.

package errs

import "golang.org/x/sys/unix"

// FromErrno maps a raw syscall errno to a Condition. unix.Errno(0) maps to
// Success.
func FromErrno(errno unix.Errno) Condition {
	switch errno {
	case 0:
		return Success
	case unix.EINVAL:
		return InvalidArgument
	case unix.EACCES, unix.EPERM:
		return PermissionDenied
	case unix.EAGAIN: // == EWOULDBLOCK on Linux
		return TryAgain
	case unix.ENOBUFS, unix.ENOMEM:
		return OutOfMemory
	case unix.EINPROGRESS:
		return InProgress
	case unix.EALREADY:
		return Already
	case unix.EINTR:
		return Interrupted
	case unix.EMFILE, unix.ENFILE:
		return ProcessLimitReached
	case unix.EPROTONOSUPPORT, unix.EAFNOSUPPORT, unix.ESOCKTNOSUPPORT:
		return ProtocolNotSupported
	case unix.ECONNREFUSED:
		return ConnectionRefused
	case unix.EADDRINUSE:
		return AlreadyInUse
	case unix.EADDRNOTAVAIL:
		return AddressNotAvailable
	case unix.ECONNABORTED:
		return ConnectionAborted
	case unix.ECONNRESET:
		return ConnectionReset
	case unix.ESHUTDOWN:
		return Shutdown
	case unix.EHOSTDOWN:
		return HostDown
	case unix.EHOSTUNREACH, unix.ENETUNREACH:
		return HostUnreachable
	case unix.EFAULT, unix.EISCONN, unix.EBADF, unix.EPROTOTYPE,
		unix.ENOTSOCK, unix.EOPNOTSUPP, unix.ENOTCONN:
		return Unexpected
	default:
		return Unknown
	}
}
