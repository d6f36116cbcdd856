package collective

import (
	"github.com/unixpickle/collengine/handle"
	"github.com/unixpickle/collengine/handle/memconn"
)

// buildStar wires an n-rank group as a star centered on rank 0: rootEnds
// holds root's n-1 handles in ascending peer-rank order, and
// nonRootEnds[i] is the single handle rank i+1 uses to reach root.
func buildStar(n int) (rootEnds []handle.Handle, nonRootEnds []handle.Handle) {
	rootEnds = make([]handle.Handle, n-1)
	nonRootEnds = make([]handle.Handle, n-1)
	for i := 0; i < n-1; i++ {
		a, b := memconn.Pair()
		rootEnds[i] = a
		nonRootEnds[i] = b
	}
	return rootEnds, nonRootEnds
}

func fillBytes(n int, seed byte) []byte {
	buf := make([]byte, n)
	for i := range buf {
		buf[i] = seed + byte(i)
	}
	return buf
}
