package collective

import (
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
	"github.com/unixpickle/collengine/partition"
)

// ScatterOp implements the root-to-all distribution of disjoint chunks
// (§4.5). Chunk sizes come from partition.Split: root (rank 0) takes the
// first extra element of the remainder, then non-roots in participant order
// take the rest, so ranks [0, rem) each get one more element.
type ScatterOp struct {
	base
	root bool
}

func NewScatter(participants []handle.Handle, nparticipants, rank int, root bool, uniqtag int, log *zap.SugaredLogger) *ScatterOp {
	return &ScatterOp{base: newBase(participants, nparticipants, rank, uniqtag, log), root: root}
}

func (o *ScatterOp) SendRecv(sendbuf []byte, sendsize int, recvbuf []byte, recvsize int, datasize int) (int, error) {
	if recvbuf == nil {
		o.logf("scatter: receive buffer is nil")
		return -1, collerr.ErrFault
	}

	if !o.root {
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

	if sendbuf == nil {
		o.logf("scatter: send buffer is nil")
		return -1, collerr.ErrFault
	}
	if sendsize%datasize != 0 {
		return -1, collerr.ErrInval
	}
	if o.nparticipants == 0 {
		return -1, collerr.ErrInval
	}

	datacount := sendsize / datasize
	sizes := partition.Split(datacount, o.nparticipants)

	selfsendcount := sizes[0] * datasize
	if recvsize < selfsendcount {
		return -1, collerr.ErrInval
	}

	copy(recvbuf, sendbuf[:selfsendcount])
	cursor := sendbuf[selfsendcount:sendsize]

	for idx, h := range o.participants {
		chunksize := sizes[idx+1] * datasize
		if _, err := h.Send(cursor[:chunksize]); err != nil {
			return -1, collerr.ErrConnReset
		}
		cursor = cursor[chunksize:]
	}

	return selfsendcount, nil
}

// Close closes the write side on every non-root handle; non-root close is
// a no-op.
func (o *ScatterOp) Close(closeWr, closeRd bool) error {
	if o.root {
		for _, h := range o.participants {
			h.Close(true, false)
		}
	}
	return nil
}
