// Package memconn provides an in-process, channel-backed Handle pair. It
// stands in for the "shared memory" substrate the engine is meant to run
// over, and is the transport the engine's own test suite drives FanIn's
// non-blocking probe semantics against, since a real network socket cannot
// portably be driven into a deterministic "would block" state on demand.
package memconn

import (
	"sync"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
)

// Pair creates two connected Handles, a and b, such that a.Send reaches
// b.Receive and vice versa.
func Pair() (a, b handle.Handle) {
	ab := make(chan []byte, 16)
	ba := make(chan []byte, 16)
	ea := &endpoint{out: ab, in: ba}
	eb := &endpoint{out: ba, in: ab}
	return ea, eb
}

type endpoint struct {
	out chan []byte
	in  chan []byte

	mu           sync.Mutex
	cache        handle.ProbeCache
	pendingFrame []byte
	pendingValid bool
	closedRd     bool
	closedWr     bool
}

func (e *endpoint) Cache() *handle.ProbeCache {
	return &e.cache
}

func (e *endpoint) ClosedRead() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closedRd
}

func (e *endpoint) Probe(blocking bool) (int, error) {
	e.mu.Lock()
	if e.closedRd {
		e.mu.Unlock()
		return 0, nil
	}
	if e.pendingValid {
		size := len(e.pendingFrame)
		e.mu.Unlock()
		return size, nil
	}
	e.mu.Unlock()

	if blocking {
		frame, ok := <-e.in
		return e.storeProbed(frame, ok)
	}
	select {
	case frame, ok := <-e.in:
		return e.storeProbed(frame, ok)
	default:
		return -1, collerr.ErrWouldBlock
	}
}

func (e *endpoint) storeProbed(frame []byte, ok bool) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !ok {
		e.closedRd = true
		return 0, nil
	}
	if len(frame) == 0 {
		e.closedRd = true
		return 0, nil
	}
	e.pendingFrame = frame
	e.pendingValid = true
	return len(frame), nil
}

func (e *endpoint) Receive(buf []byte) (int, error) {
	if _, err := e.Probe(true); err != nil {
		return -1, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.pendingValid {
		return 0, nil
	}
	n := copy(buf, e.pendingFrame)
	e.pendingFrame = nil
	e.pendingValid = false
	return n, nil
}

func (e *endpoint) Send(buf []byte) (int, error) {
	e.mu.Lock()
	if e.closedWr {
		e.mu.Unlock()
		return -1, collerr.ErrConnReset
	}
	e.mu.Unlock()

	frame := append([]byte(nil), buf...)
	e.out <- frame
	return len(buf), nil
}

func (e *endpoint) Peek() bool {
	e.mu.Lock()
	if e.closedRd {
		e.mu.Unlock()
		return false
	}
	if e.pendingValid {
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()

	select {
	case frame, ok := <-e.in:
		size, _ := e.storeProbed(frame, ok)
		return size > 0
	default:
		return false
	}
}

func (e *endpoint) Close(closeWr, closeRd bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if closeWr && !e.closedWr {
		e.closedWr = true
		close(e.out)
	}
	if closeRd {
		e.closedRd = true
	}
	return nil
}
