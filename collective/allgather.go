package collective

import (
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
	"github.com/unixpickle/collengine/partition"
)

// AllGatherOp implements Gather followed by Broadcast of the concatenated
// result (§4.7). An EOS observed on the non-root's aggregate receive is
// treated as a successful end of group, not an error (§9 open question b).
type AllGatherOp struct {
	base
	root bool
}

func NewAllGather(participants []handle.Handle, nparticipants, rank int, root bool, uniqtag int, log *zap.SugaredLogger) *AllGatherOp {
	return &AllGatherOp{base: newBase(participants, nparticipants, rank, uniqtag, log), root: root}
}

func (o *AllGatherOp) SendRecv(sendbuf []byte, sendsize int, recvbuf []byte, recvsize int, datasize int) (int, error) {
	if sendbuf == nil {
		o.logf("allgather: send buffer is nil")
		return -1, collerr.ErrFault
	}
	if recvbuf == nil {
		o.logf("allgather: receive buffer is nil")
		return -1, collerr.ErrFault
	}
	if recvsize%datasize != 0 {
		return -1, collerr.ErrInval
	}
	if o.nparticipants == 0 {
		return -1, collerr.ErrInval
	}

	datacount := recvsize / datasize
	sizes := partition.Split(datacount, o.nparticipants)

	if o.root {
		selfrecvcount := sizes[0] * datasize
		if sendsize < selfrecvcount {
			return -1, collerr.ErrInval
		}

		copy(recvbuf, sendbuf[:selfrecvcount])

		displ := selfrecvcount
		for i, h := range o.participants {
			chunksize := sizes[i+1] * datasize
			n, err := receiveFromHandle(h, recvbuf[displ:displ+chunksize])
			// An empty chunk arrives as a zero-length frame, which reads
			// as EOS; only a non-empty chunk that fails to arrive stops
			// the gather.
			if err != nil || (n <= 0 && chunksize > 0) {
				return n, err
			}
			displ += chunksize
		}

		for _, h := range o.participants {
			if _, err := h.Send(recvbuf[:recvsize]); err != nil {
				return -1, collerr.ErrConnReset
			}
		}
		return selfrecvcount, nil
	}

	chunksize := sizes[o.rank] * datasize
	if chunksize > sendsize {
		return -1, collerr.ErrInval
	}

	h := o.participants[0]
	if _, err := h.Send(sendbuf[:chunksize]); err != nil {
		return -1, collerr.ErrConnReset
	}

	n, err := receiveFromHandle(h, recvbuf[:recvsize])
	if err != nil {
		return -1, err
	}
	if n == 0 {
		h.Close(true, false)
	}
	return chunksize, nil
}

// Close closes the write side on every held handle.
func (o *AllGatherOp) Close(closeWr, closeRd bool) error {
	for _, h := range o.participants {
		h.Close(true, false)
	}
	return nil
}
