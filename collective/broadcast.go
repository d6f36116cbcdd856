package collective

import (
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
)

// BroadcastOp implements the root-to-all fan-out of one buffer (§4.4).
type BroadcastOp struct {
	base
	root bool
}

// NewBroadcast constructs a BroadcastOp. participants holds the N-1
// non-root handles (root) or the single handle to root (non-root).
func NewBroadcast(participants []handle.Handle, nparticipants, rank int, root bool, uniqtag int, log *zap.SugaredLogger) *BroadcastOp {
	return &BroadcastOp{base: newBase(participants, nparticipants, rank, uniqtag, log), root: root}
}

func (o *BroadcastOp) SendRecv(sendbuf []byte, sendsize int, recvbuf []byte, recvsize int, datasize int) (int, error) {
	if o.root {
		payload := sendbuf[:sendsize]
		for _, h := range o.participants {
			if _, err := h.Send(payload); err != nil {
				return -1, collerr.ErrConnReset
			}
		}
		if recvbuf != nil {
			copy(recvbuf, payload)
		}
		return sendsize, nil
	}

	h := o.participants[0]
	n, err := receiveFromHandle(h, recvbuf[:recvsize])
	if err != nil {
		return -1, err
	}
	if n == 0 {
		h.Close(true, false)
	}
	return n, nil
}

// Close closes the write side on every non-root handle. Non-root close is
// a no-op: the implicit EOS arrives when root's write side closes.
func (o *BroadcastOp) Close(closeWr, closeRd bool) error {
	if o.root {
		for _, h := range o.participants {
			h.Close(true, false)
		}
	}
	return nil
}
