package collective

import (
	"go.uber.org/zap"

	"github.com/unixpickle/collengine/collerr"
	"github.com/unixpickle/collengine/handle"
	"github.com/unixpickle/collengine/partition"
)

// base holds the state shared by every GENERIC variant: the ordered
// participant handles, team size, local rank, and the operation's unique
// tag. Concrete variants embed base and override whichever of Probe, Send,
// Receive, SendRecv, and Close are meaningful for them; the rest fall
// through to base's EINVAL defaults.
type base struct {
	participants  []handle.Handle
	nparticipants int
	rank          int
	uniqtag       int
	log           *zap.SugaredLogger
}

func newBase(participants []handle.Handle, nparticipants, rank, uniqtag int, log *zap.SugaredLogger) base {
	return base{
		participants:  participants,
		nparticipants: nparticipants,
		rank:          rank,
		uniqtag:       uniqtag,
		log:           log,
	}
}

func (b *base) logf(format string, args ...any) {
	if b.log != nil {
		b.log.Infof(format, args...)
	}
}

// Peek returns true iff any participant has inbound bytes ready.
func (b *base) Peek() bool {
	for _, h := range b.participants {
		if h.Peek() {
			return true
		}
	}
	return false
}

func (b *base) TeamRank() int {
	return b.rank
}

// TeamPartitionSize returns the local rank's share of count elements
// across the team, per the policy in package partition.
func (b *base) TeamPartitionSize(count int) int {
	if b.nparticipants == 0 {
		return 0
	}
	return partition.Size(b.rank, count, b.nparticipants)
}

func (b *base) Finalize(flush bool, name string) {}

func (b *base) Probe(blocking bool) (int, error) {
	b.logf("probe operation not supported for this collective")
	return -1, collerr.ErrInval
}

func (b *base) Send(buf []byte) (int, error) {
	b.logf("send operation not supported, use sendrecv")
	return -1, collerr.ErrInval
}

func (b *base) Receive(buf []byte) (int, error) {
	b.logf("receive operation not supported, use sendrecv")
	return -1, collerr.ErrInval
}

func (b *base) SendRecv(sendbuf []byte, sendsize int, recvbuf []byte, recvsize int, datasize int) (int, error) {
	b.logf("sendrecv operation not supported for this collective")
	return -1, collerr.ErrInval
}

func (b *base) Close(closeWr, closeRd bool) error {
	return nil
}

// probeHandle implements the shared probe/cache bridge of §4.3. If h
// already has a cached probe result, it is returned without touching the
// wire (0 if the cached size was already EOS). Otherwise it issues a real
// probe and updates the cache.
func probeHandle(h handle.Handle, blocking bool) (int, error) {
	cache := h.Cache()
	if cache.Present() {
		size := cache.PeekSize()
		if size == 0 {
			return 0, nil
		}
		return size, nil
	}
	if h.ClosedRead() {
		return 0, nil
	}

	size, err := h.Probe(blocking)
	if err != nil {
		if err == collerr.ErrConnReset {
			h.Close(true, true)
			return 0, nil
		}
		if handle.IsWouldBlock(err) {
			return -1, collerr.ErrWouldBlock
		}
		return -1, err
	}
	if size == 0 {
		h.Close(false, true)
		return 0, nil
	}
	cache.CacheSize(size)
	return size, nil
}

// receiveFromHandle implements §4.3's whole-frame receive. If nothing was
// cached, it runs a blocking probeHandle first. A frame larger than cap is
// refused with ENOMEM rather than truncated.
func receiveFromHandle(h handle.Handle, buf []byte) (int, error) {
	cache := h.Cache()
	if !cache.Present() {
		size, err := probeHandle(h, true)
		if err != nil || size <= 0 {
			return size, err
		}
	} else if h.ClosedRead() {
		return 0, nil
	}

	size, ok := cache.TakeSize()
	if !ok {
		return 0, nil
	}
	if size > len(buf) {
		cache.CacheSize(size)
		return -1, collerr.ErrNoMem
	}
	cache.Clear()
	return h.Receive(buf[:size])
}
