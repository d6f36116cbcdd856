// Package handle defines the Handle contract consumed by the collective
// engine: a reliable, ordered, length-framed byte channel to one peer.
//
// The engine treats a Handle as an external collaborator (§6.1 of the
// spec) — this package only pins down the interface and the small probe
// cache that sits on top of it. Concrete transports live in the memconn and
// tcpconn subpackages.
package handle

import "github.com/unixpickle/collengine/collerr"

// Handle is a bidirectional, reliable, ordered byte stream to one peer.
// Each Send call produces exactly one length-prefixed frame; each Probe
// reveals the next frame's length without consuming it. A frame of length
// zero is end-of-stream (EOS): the peer has closed its write side.
type Handle interface {
	// Probe reveals the length of the next inbound frame without
	// consuming it. It returns the frame size and nil on success, (0,
	// nil) on EOF, or (-1, err) on error — err is collerr.ErrWouldBlock
	// if blocking is false and nothing was ready, or collerr.ErrConnReset
	// on a transport-level reset.
	Probe(blocking bool) (int, error)

	// Receive consumes exactly the frame previously revealed by Probe (or
	// the next frame if nothing was probed), copying at most len(buf)
	// bytes into buf. The caller must guarantee len(buf) is at least the
	// probed frame size; Receive never delivers a short frame.
	Receive(buf []byte) (int, error)

	// Send emits one length-prefixed frame containing buf. A zero-length
	// buf signals EOS to the peer.
	Send(buf []byte) (int, error)

	// Peek is a cheap, non-blocking readiness predicate.
	Peek() bool

	// Close shuts down the requested direction(s). Closing the write side
	// sends EOS to the peer.
	Close(closeWr, closeRd bool) error

	// Cache exposes the one-slot probe cache logically owned by the
	// handle but written by the collective engine.
	Cache() *ProbeCache

	// ClosedRead reports whether the read side is known closed. Once
	// true, Probe and Receive always report EOF without touching the
	// wire.
	ClosedRead() bool
}

// ProbeCache is a one-slot cache bridging a Probe call to the Receive call
// that consumes it. It is exposed as a small object with explicit
// operations (per the spec's design note) rather than raw fields, so the
// collective engine never touches bookkeeping state directly.
type ProbeCache struct {
	present bool
	size    int
}

// CacheSize records a probed frame size. A size of 0 records EOS.
func (c *ProbeCache) CacheSize(size int) {
	c.present = true
	c.size = size
}

// TakeSize returns the cached size and clears the cache, or reports false
// if nothing was cached.
func (c *ProbeCache) TakeSize() (int, bool) {
	if !c.present {
		return 0, false
	}
	size := c.size
	c.present = false
	c.size = 0
	return size, true
}

// Present reports whether a probed frame is cached without consuming it.
func (c *ProbeCache) Present() bool {
	return c.present
}

// PeekSize returns the cached size without clearing the cache. Only valid
// when Present() is true.
func (c *ProbeCache) PeekSize() int {
	return c.size
}

// Clear drops any cached probe state.
func (c *ProbeCache) Clear() {
	c.present = false
	c.size = 0
}

// IsWouldBlock reports whether err is the would-block sentinel, matching
// either EAGAIN or EWOULDBLOCK in POSIX terms (the engine does not
// distinguish the two).
func IsWouldBlock(err error) bool {
	return err == collerr.ErrWouldBlock
}
