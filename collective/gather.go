package collective

import (
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
	"github.com/unixpickle/collengine/partition"
)

// GatherOp implements the all-to-root concatenation of chunks (§4.6). Chunk
// sizes come from partition.Split, the same table Scatter uses: non-root
// slot i (rank i+1) owns an extra element iff i+1 < rem.
type GatherOp struct {
	base
	root bool
}

func NewGather(participants []handle.Handle, nparticipants, rank int, root bool, uniqtag int, log *zap.SugaredLogger) *GatherOp {
	return &GatherOp{base: newBase(participants, nparticipants, rank, uniqtag, log), root: root}
}

func (o *GatherOp) SendRecv(sendbuf []byte, sendsize int, recvbuf []byte, recvsize int, datasize int) (int, error) {
	if sendbuf == nil {
		o.logf("gather: send buffer is nil")
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
		if recvbuf == nil {
			o.logf("gather: receive buffer is nil")
			return -1, collerr.ErrFault
		}

		copy(recvbuf, sendbuf[:selfrecvcount])

		displ := selfrecvcount
		for i, h := range o.participants {
			chunksize := sizes[i+1] * datasize
			n, err := receiveFromHandle(h, recvbuf[displ:displ+chunksize])
			if err != nil || n <= 0 {
				return n, err
			}
			displ += chunksize
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
	return chunksize, nil
}

// Close closes the write side on every held handle.
func (o *GatherOp) Close(closeWr, closeRd bool) error {
	for _, h := range o.participants {
		h.Close(true, false)
	}
	return nil
}
