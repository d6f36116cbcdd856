// Package team is the external collaborator that forms a group of Handles
// and hands out collective.Op instances over them. The CORE (package
// collective) deliberately knows nothing about rendezvous or addressing;
// team is the minimal, real glue that makes the engine runnable end to
// end, grounded on the teacher's collcomm.SpawnComms pattern (a per-node
// object bundling ports/handles, rank, and the network) adapted from
// simulated ports to real dialed connections.
package team

import (
	"context"
	"fmt"
	"net"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/unixpickle/collengine/collective"
	"github.com/unixpickle/collengine/handle"
	"github.com/unixpickle/collengine/handle/tcpconn"
)

// Team is one process's view of a group. Peers holds a handle to every
// other rank, indexed in ascending rank order with the local rank's own
// slot absent (so Peers[i] is rank i for i < Rank, and rank i+1 for
// i >= Rank). Root-centric collectives use a star centered on Root: root
// talks to every entry in Peers, a non-root talks only to the one entry
// that corresponds to Root (§3).
type Team struct {
	Rank  int
	Root  int
	Peers []handle.Handle
	Log   *zap.SugaredLogger
}

// Size returns the number of ranks in the team, including the local one.
func (t *Team) Size() int {
	return len(t.Peers) + 1
}

// peerIndex translates a team rank (other than t.Rank) to its slot in
// Peers, accounting for the local rank's own slot being absent.
func (t *Team) peerIndex(rank int) int {
	if rank < t.Rank {
		return rank
	}
	return rank - 1
}

// Dial forms a team over TCP: addrs holds every OTHER rank's dial address
// in ascending rank order, with the local rank's own slot omitted (i.e.
// len(addrs) == n-1 for an n-rank team). Connections are established
// concurrently via an errgroup so one slow peer does not serialize the
// others' dials.
func Dial(ctx context.Context, addrs []string, rank, root int, log *zap.SugaredLogger) (*Team, error) {
	peers := make([]handle.Handle, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, addr := range addrs {
		i, addr := i, addr
		g.Go(func() error {
			var d net.Dialer
			conn, err := d.DialContext(gctx, "tcp", addr)
			if err != nil {
				return fmt.Errorf("dial peer at %s: %w", addr, err)
			}
			peers[i] = tcpconn.New(conn)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &Team{Rank: rank, Root: root, Peers: peers, Log: log}, nil
}

// NewTag allocates a UUID-derived tag for one collective call: a random
// UUID folded down to a 31-bit value. Unlike an incrementing counter it
// does not restart at the same values after a process restart, so two
// independently-running teams (e.g. two unrelated jobs sharing a cluster)
// are unlikely to collide on tag space; with 31 bits a collision is
// possible, not excluded.
func NewTag() int {
	id := uuid.New()
	var acc uint64
	for _, b := range id[:] {
		acc = acc*131 + uint64(b)
	}
	return int(acc & 0x7fffffff)
}

// participants returns the handle set an Op should be constructed with:
// every peer handle when the local rank is root, or just the single
// handle to root otherwise.
func (t *Team) participants() []handle.Handle {
	if t.Rank == t.Root {
		return t.Peers
	}
	return []handle.Handle{t.Peers[t.peerIndex(t.Root)]}
}

// New constructs the collective.Op for typ over this team.
func (t *Team) New(typ collective.CollectiveType) (collective.Op, error) {
	isRoot := t.Rank == t.Root
	participants := t.participants()
	size := t.Size()
	tag := NewTag()
	switch typ {
	case collective.Broadcast:
		return collective.NewBroadcast(participants, size, t.Rank, isRoot, tag, t.Log), nil
	case collective.Scatter:
		return collective.NewScatter(participants, size, t.Rank, isRoot, tag, t.Log), nil
	case collective.Gather:
		return collective.NewGather(participants, size, t.Rank, isRoot, tag, t.Log), nil
	case collective.AllGather:
		return collective.NewAllGather(participants, size, t.Rank, isRoot, tag, t.Log), nil
	case collective.AllToAll:
		return collective.NewAllToAll(participants, size, t.Rank, isRoot, tag, t.Log), nil
	case collective.FanIn:
		return collective.NewFanIn(participants, size, t.Rank, isRoot, tag, t.Log), nil
	case collective.FanOut:
		return collective.NewFanOut(participants, size, t.Rank, isRoot, tag, t.Log), nil
	default:
		return nil, fmt.Errorf("team: unknown collective type %v", typ)
	}
}

// Close tears down every peer handle.
func (t *Team) Close() error {
	var firstErr error
	for _, h := range t.Peers {
		if err := h.Close(true, true); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
