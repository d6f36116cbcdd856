// Package tcpconn implements the Handle contract over a net.Conn, framing
// each Send/Receive pair with an 8-byte big-endian length prefix. It stands
// in for the "TCP" substrate the engine is designed to run over.
package tcpconn

import (
	"bufio"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"time"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
)

const headerSize = 8

// Handle wraps a net.Conn with length-prefixed framing.
type Handle struct {
	conn net.Conn
	br   *bufio.Reader

	cache handle.ProbeCache

	pendingSize int
	haveSize    bool
	closedRd    bool
	closedWr    bool
}

// New wraps conn as a Handle.
func New(conn net.Conn) *Handle {
	return &Handle{
		conn: conn,
		br:   bufio.NewReaderSize(conn, 4096),
	}
}

// Dial opens a new TCP connection and wraps it as a Handle.
func Dial(addr string) (*Handle, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

func (h *Handle) Cache() *handle.ProbeCache {
	return &h.cache
}

func (h *Handle) ClosedRead() bool {
	return h.closedRd
}

// Probe reveals the next frame's length by reading (and discarding) its
// header off the wire; the header bytes are consumed here, so Receive
// relies on the cached size rather than re-reading it.
func (h *Handle) Probe(blocking bool) (int, error) {
	if h.closedRd {
		return 0, nil
	}
	if h.haveSize {
		return h.pendingSize, nil
	}

	if blocking {
		h.conn.SetReadDeadline(time.Time{})
	} else {
		h.conn.SetReadDeadline(time.Now())
	}
	defer h.conn.SetReadDeadline(time.Time{})

	header, err := h.br.Peek(headerSize)
	if err != nil {
		return h.classifyReadErr(err)
	}
	h.br.Discard(headerSize)

	size := int(binary.BigEndian.Uint64(header))
	if size == 0 {
		h.closedRd = true
		return 0, nil
	}
	h.pendingSize = size
	h.haveSize = true
	return size, nil
}

func (h *Handle) classifyReadErr(err error) (int, error) {
	if err == io.EOF {
		h.closedRd = true
		return 0, nil
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return -1, collerr.ErrWouldBlock
	}
	return -1, collerr.ErrConnReset
}

// Receive consumes exactly the frame revealed by the last Probe, or reads
// the next frame's header itself if nothing was probed.
func (h *Handle) Receive(buf []byte) (int, error) {
	if !h.haveSize {
		if _, err := h.Probe(true); err != nil {
			return -1, err
		}
		if h.closedRd {
			return 0, nil
		}
	}
	size := h.pendingSize
	h.haveSize = false
	h.pendingSize = 0

	n, err := io.ReadFull(h.br, buf[:size])
	if err != nil {
		return h.classifyReadErr(err)
	}
	return n, nil
}

// Send writes one length-prefixed frame. A zero-length buf sends the EOS
// marker frame.
func (h *Handle) Send(buf []byte) (int, error) {
	if h.closedWr {
		return -1, collerr.ErrConnReset
	}
	var header [headerSize]byte
	binary.BigEndian.PutUint64(header[:], uint64(len(buf)))
	if _, err := h.conn.Write(header[:]); err != nil {
		return -1, collerr.ErrConnReset
	}
	if len(buf) > 0 {
		if _, err := h.conn.Write(buf); err != nil {
			return -1, collerr.ErrConnReset
		}
	}
	return len(buf), nil
}

// Peek is a best-effort, non-blocking readiness check.
func (h *Handle) Peek() bool {
	if h.closedRd {
		return false
	}
	if h.haveSize {
		return true
	}
	if h.br.Buffered() > 0 {
		return true
	}
	h.conn.SetReadDeadline(time.Now())
	defer h.conn.SetReadDeadline(time.Time{})
	_, err := h.br.Peek(1)
	return err == nil
}

// Close shuts down the requested direction(s). Closing the write side
// writes the EOS marker frame before closing the underlying half of the
// socket, when the transport supports half-close.
func (h *Handle) Close(closeWr, closeRd bool) error {
	if closeWr && !h.closedWr {
		h.Send(nil)
		h.closedWr = true
		if cw, ok := h.conn.(interface{ CloseWrite() error }); ok {
			cw.CloseWrite()
		}
	}
	if closeRd {
		h.closedRd = true
	}
	if h.closedWr && h.closedRd {
		return h.conn.Close()
	}
	return nil
}
