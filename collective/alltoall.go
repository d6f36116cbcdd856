package collective

import (
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
	"github.com/unixpickle/collengine/partition"
)

// AllToAllOp implements the full N×N chunk exchange through root-mediated
// staging (§4.8). This is correct but not bandwidth-optimal; an
// accelerated backend may replace it behind the same Op contract.
type AllToAllOp struct {
	base
	root bool
}

func NewAllToAll(participants []handle.Handle, nparticipants, rank int, root bool, uniqtag int, log *zap.SugaredLogger) *AllToAllOp {
	return &AllToAllOp{base: newBase(participants, nparticipants, rank, uniqtag, log), root: root}
}

func (o *AllToAllOp) SendRecv(sendbuf []byte, sendsize int, recvbuf []byte, recvsize int, datasize int) (int, error) {
	if sendbuf == nil {
		o.logf("alltoall: send buffer is nil")
		return -1, collerr.ErrFault
	}
	if recvbuf == nil {
		o.logf("alltoall: receive buffer is nil")
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
	displs := partition.Displacements(sizes)

	selfrecvcount := sizes[o.rank] * datasize * o.nparticipants

	if recvsize < selfrecvcount {
		return -1, collerr.ErrInval
	}

	if !o.root {
		h := o.participants[0]
		if _, err := h.Send(sendbuf[:sendsize]); err != nil {
			return -1, collerr.ErrConnReset
		}
		n, err := receiveFromHandle(h, recvbuf[:recvsize])
		if err != nil {
			return -1, err
		}
		if n == 0 {
			h.Close(true, false)
		}
		return selfrecvcount, nil
	}

	allsend := make([]byte, sendsize*(o.nparticipants-1))
	for i, h := range o.participants {
		n, err := receiveFromHandle(h, allsend[i*sendsize:(i+1)*sendsize])
		// With sendsize 0 each peer's contribution is a zero-length frame,
		// which reads as EOS; that is not a reason to stop the exchange.
		if err != nil || (n <= 0 && sendsize > 0) {
			return n, err
		}
	}

	for d := 0; d < o.nparticipants; d++ {
		chunksize := sizes[d] * datasize
		displ := displs[d] * datasize

		var chunkbuf []byte
		if d == 0 {
			chunkbuf = recvbuf[:chunksize*o.nparticipants]
		} else {
			chunkbuf = make([]byte, chunksize*o.nparticipants)
		}

		copy(chunkbuf[:chunksize], sendbuf[displ:displ+chunksize])
		offset := chunksize
		for j := 0; j < o.nparticipants-1; j++ {
			copy(chunkbuf[offset:offset+chunksize], allsend[j*sendsize+displ:j*sendsize+displ+chunksize])
			offset += chunksize
		}

		if d != 0 {
			if _, err := o.participants[d-1].Send(chunkbuf); err != nil {
				return -1, collerr.ErrConnReset
			}
		}
	}

	return selfrecvcount, nil
}

// Close closes the write side on every held handle.
func (o *AllToAllOp) Close(closeWr, closeRd bool) error {
	for _, h := range o.participants {
		h.Close(true, false)
	}
	return nil
}
