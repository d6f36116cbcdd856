// Package collerr provides the structured error taxonomy used throughout
// the collective engine in place of a numeric global errno.
//
// The original C++ source this engine is modeled on reported failures via
// the POSIX errno convention (EINVAL, EFAULT, ENOMEM, EBADF, EAGAIN/
// EWOULDBLOCK, ECONNRESET). Go code compares errors with errors.Is, so each
// of those is instead a sentinel error value here. Code carries the POSIX
// tag for transports further down the stack that still want to report a
// numeric code.
package collerr

import "errors"

// Code is the POSIX-style numeric tag carried alongside a sentinel error,
// kept only for interop with transport layers that report errno-shaped
// values.
type Code int

const (
	CodeNone Code = iota
	CodeInval
	CodeFault
	CodeNoMem
	CodeBadF
	CodeWouldBlock
	CodeConnReset
)

var (
	// ErrInval marks an argument error: a size not a multiple of
	// datasize, a buffer too small for the computed partition, or an
	// operation unsupported by a collective variant.
	ErrInval = errors.New("collengine: invalid argument")

	// ErrFault marks a required buffer that was nil.
	ErrFault = errors.New("collengine: bad buffer pointer")

	// ErrNoMem marks an inbound frame too large for the caller-supplied
	// buffer; the receive is refused rather than truncated.
	ErrNoMem = errors.New("collengine: buffer too small for inbound frame")

	// ErrBadF marks use of a handle that is not valid or already closed.
	ErrBadF = errors.New("collengine: bad handle")

	// ErrWouldBlock marks a non-blocking probe that found nothing ready.
	ErrWouldBlock = errors.New("collengine: operation would block")

	// ErrConnReset marks a mid-collective send failure or a peer reset
	// observed during receive. Fatal for the call; never retried.
	ErrConnReset = errors.New("collengine: connection reset")
)

var codes = map[error]Code{
	ErrInval:      CodeInval,
	ErrFault:      CodeFault,
	ErrNoMem:      CodeNoMem,
	ErrBadF:       CodeBadF,
	ErrWouldBlock: CodeWouldBlock,
	ErrConnReset:  CodeConnReset,
}

// CodeOf returns the POSIX-style tag for one of this package's sentinel
// errors, unwrapping as needed. The second return is false for any error
// not defined by this package.
func CodeOf(err error) (Code, bool) {
	for sentinel, code := range codes {
		if errors.Is(err, sentinel) {
			return code, true
		}
	}
	return CodeNone, false
}
