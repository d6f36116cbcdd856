package memconn

import (
	"bytes"
	"testing"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
)

func TestPairSendReceive(t *testing.T) {
	a, b := Pair()
	frame := []byte("hello, collective")

	if _, err := a.Send(frame); err != nil {
		t.Fatalf("send: %v", err)
	}

	size, err := b.Probe(true)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if size != len(frame) {
		t.Fatalf("probed size %d, want %d", size, len(frame))
	}

	buf := make([]byte, size)
	n, err := b.Receive(buf)
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if n != len(frame) || !bytes.Equal(buf, frame) {
		t.Errorf("received %q, want %q", buf, frame)
	}
}

func TestPairProbeIsIdempotentBeforeReceive(t *testing.T) {
	a, b := Pair()
	a.Send([]byte("x"))

	size1, err := b.Probe(true)
	if err != nil {
		t.Fatalf("probe 1: %v", err)
	}
	size2, err := b.Probe(true)
	if err != nil {
		t.Fatalf("probe 2: %v", err)
	}
	if size1 != size2 {
		t.Errorf("repeated probe without receive returned different sizes: %d vs %d", size1, size2)
	}
}

func TestPairNonBlockingProbeWouldBlock(t *testing.T) {
	_, b := Pair()
	_, err := b.Probe(false)
	if err != collerr.ErrWouldBlock {
		t.Errorf("got %v, want ErrWouldBlock", err)
	}
	if b.Peek() {
		t.Errorf("Peek reported data ready with nothing sent")
	}
}

func TestPairEOS(t *testing.T) {
	a, b := Pair()
	if err := a.Close(true, false); err != nil {
		t.Fatalf("close: %v", err)
	}
	size, err := b.Probe(true)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	if size != 0 {
		t.Errorf("probed size %d after peer closed, want 0 (EOS)", size)
	}
	if !b.ClosedRead() {
		t.Errorf("ClosedRead false after observing EOS")
	}
}

func TestPairCacheBridge(t *testing.T) {
	a, b := Pair()
	a.Send([]byte("abc"))

	size, err := b.Probe(true)
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	b.Cache().CacheSize(size)

	if !b.Cache().Present() {
		t.Fatalf("cache not present after CacheSize")
	}
	if got := b.Cache().PeekSize(); got != size {
		t.Errorf("PeekSize=%d, want %d", got, size)
	}

	var _ handle.Handle = b
}
