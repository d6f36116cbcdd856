package collective

import (
	"github.com/unixpickle/essentials"
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
)

// FanInOp streams many-to-one: any non-root may have a frame ready and
// root consumes whichever answers first. Unlike the root-centric
// collectives this is not group-synchronous — there is no round barrier,
// a fast peer can send many frames before a slow one sends its first.
type FanInOp struct {
	base
	root      bool
	probedIdx int
	cursor    int
}

func NewFanIn(participants []handle.Handle, nparticipants, rank int, root bool, uniqtag int, log *zap.SugaredLogger) *FanInOp {
	return &FanInOp{base: newBase(participants, nparticipants, rank, uniqtag, log), root: root, probedIdx: -1}
}

// Probe scans the live participants for a ready frame, starting from the
// cursor left by the previous call rather than always restarting at index
// 0 — otherwise an always-ready participants[0] would win every call and
// starve the rest of the group indefinitely (§8.1 property 7). EOS'd
// participants are pruned along the way; a prune does not advance the
// per-lap budget since the slot it frees is immediately rescanned. If
// blocking is set, a full lap with nothing ready relaps; otherwise it
// gives up after one lap.
func (o *FanInOp) Probe(blocking bool) (int, error) {
	for {
		n := len(o.participants)
		if n == 0 {
			return 0, nil
		}
		if o.cursor >= n {
			o.cursor = 0
		}

		for scanned := 0; scanned < n; {
			i := o.cursor
			h := o.participants[i]
			size, err := probeHandle(h, false)
			if err != nil {
				if handle.IsWouldBlock(err) {
					o.cursor = (o.cursor + 1) % n
					scanned++
					continue
				}
				return -1, err
			}
			if size == 0 {
				essentials.OrderedDelete(&o.participants, i)
				n = len(o.participants)
				if n == 0 {
					o.cursor = 0
					return 0, nil
				}
				if o.cursor >= n {
					o.cursor = 0
				}
				continue
			}
			o.probedIdx = i
			o.cursor = (i + 1) % n
			return size, nil
		}

		if !blocking {
			return -1, collerr.ErrWouldBlock
		}
	}
}

// Receive reads the frame found by the most recent Probe. The caller must
// probe before receiving; the probed handle is identified by probedIdx.
func (o *FanInOp) Receive(buf []byte) (int, error) {
	if o.probedIdx < 0 || o.probedIdx >= len(o.participants) {
		return -1, collerr.ErrInval
	}
	h := o.participants[o.probedIdx]
	o.probedIdx = -1
	n, err := receiveFromHandle(h, buf)
	if err != nil || n <= 0 {
		return -1, err
	}
	return n, nil
}

// Send fans the same frame out to every participant still alive.
func (o *FanInOp) Send(buf []byte) (int, error) {
	for _, h := range o.participants {
		if _, err := h.Send(buf); err != nil {
			return -1, collerr.ErrConnReset
		}
	}
	return len(buf), nil
}

// Close signals EOS to root and leaves; root has nothing to do since it
// learns of each peer's departure through Probe's pruning.
func (o *FanInOp) Close(closeWr, closeRd bool) error {
	if !o.root && len(o.participants) > 0 {
		o.participants[0].Close(true, false)
	}
	return nil
}
