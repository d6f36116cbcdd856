// Package collective implements the GENERIC family of collective
// operations (broadcast, scatter, gather, all-gather, all-to-all, fan-in,
// fan-out) on top of the handle.Handle point-to-point contract.
package collective

// CollectiveType selects which group communication pattern a Team
// constructs an Op for.
type CollectiveType int

const (
	Broadcast CollectiveType = iota
	Scatter
	Gather
	AllGather
	AllToAll
	FanIn
	FanOut
)

func (t CollectiveType) String() string {
	switch t {
	case Broadcast:
		return "BROADCAST"
	case Scatter:
		return "SCATTER"
	case Gather:
		return "GATHER"
	case AllGather:
		return "ALLGATHER"
	case AllToAll:
		return "ALLTOALL"
	case FanIn:
		return "FANIN"
	case FanOut:
		return "FANOUT"
	default:
		return "UNKNOWN"
	}
}

// ImplementationType selects which backend realizes a CollectiveType. The
// core only specifies GENERIC; accelerated backends (MPI, UCC) are
// pluggable behind the same Op contract but are not implemented here.
type ImplementationType int

const (
	Generic ImplementationType = iota
	MPI
	UCC
)

// Op is the uniform operation surface every CollectiveImpl exposes (§4.1).
// Operations not meaningful for a given variant return (-1, collerr.ErrInval).
type Op interface {
	// Peek reports whether any participant has inbound bytes ready.
	Peek() bool

	// Probe is only meaningful for FanIn and FanOut.
	Probe(blocking bool) (int, error)

	// Send is only meaningful for FanIn and FanOut.
	Send(buf []byte) (int, error)

	// Receive is only meaningful for FanIn and FanOut.
	Receive(buf []byte) (int, error)

	// SendRecv is the single synchronous entry point for Broadcast,
	// Scatter, Gather, AllGather, and AllToAll. sendsize/recvsize are
	// kept distinct from len(sendbuf)/len(recvbuf) so that a rank that
	// does not touch one of the two buffers (e.g. a non-root Gather
	// caller, which never writes recvbuf) can still report the size the
	// collective-wide partition arithmetic needs.
	SendRecv(sendbuf []byte, sendsize int, recvbuf []byte, recvsize int, datasize int) (int, error)

	// Close tears the group down; the exact protocol is per-variant.
	Close(closeWr, closeRd bool) error

	// TeamRank returns the local team rank.
	TeamRank() int

	// TeamPartitionSize returns the local rank's share of count elements.
	TeamPartitionSize(count int) int

	// Finalize is a no-op in the GENERIC family, provided so accelerated
	// backends can hook cleanup in.
	Finalize(flush bool, name string)
}
