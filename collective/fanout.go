package collective

import (
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
)

// FanOutOp streams one-to-many: root round-robins frames across the
// destinations as they come, with no barrier between rounds. A destination
// that closes is marked and skipped by the round-robin rather than spliced
// out of the participant slice, so the cursor never needs re-indexing
// against a shrinking list (§9 open question a).
type FanOutOp struct {
	base
	root    bool
	current int
	closed  []bool
}

func NewFanOut(participants []handle.Handle, nparticipants, rank int, root bool, uniqtag int, log *zap.SugaredLogger) *FanOutOp {
	return &FanOutOp{
		base:   newBase(participants, nparticipants, rank, uniqtag, log),
		root:   root,
		closed: make([]bool, len(participants)),
	}
}

// Probe checks the single handle to root (non-root side); root does not
// receive in a fan-out and should not call Probe.
func (o *FanOutOp) Probe(blocking bool) (int, error) {
	if len(o.participants) == 0 {
		return -1, collerr.ErrConnReset
	}
	h := o.participants[0]
	size, err := probeHandle(h, blocking)
	if err != nil {
		return -1, err
	}
	if size == 0 {
		o.closed[0] = true
	}
	return size, nil
}

// Send hands the frame to the next live destination in round-robin order.
func (o *FanOutOp) Send(buf []byte) (int, error) {
	n := len(o.participants)
	if n == 0 {
		return -1, collerr.ErrConnReset
	}
	for tries := 0; tries < n; tries++ {
		idx := o.current
		o.current = (o.current + 1) % n
		if o.closed[idx] {
			continue
		}
		size, err := o.participants[idx].Send(buf)
		if err != nil {
			return -1, collerr.ErrConnReset
		}
		return size, nil
	}
	return -1, collerr.ErrConnReset
}

// Receive reads the frame found by the most recent Probe.
func (o *FanOutOp) Receive(buf []byte) (int, error) {
	if len(o.participants) == 0 {
		return -1, collerr.ErrConnReset
	}
	return receiveFromHandle(o.participants[0], buf)
}

// Close closes the write side on every destination; only root issues it.
func (o *FanOutOp) Close(closeWr, closeRd bool) error {
	if o.root {
		for i, h := range o.participants {
			h.Close(true, false)
			o.closed[i] = true
		}
	}
	return nil
}
