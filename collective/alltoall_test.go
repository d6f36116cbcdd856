package collective

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/unixpickle/collengine/handle"
)

// chunkBounds returns, for a team of size n exchanging elemCount elements per
// rank, the (offset, size) of the element range destined for rank d.
func chunkBounds(elemCount, n int) (offsets, sizes []int) {
	base := elemCount / n
	rem := elemCount % n
	offsets = make([]int, n)
	sizes = make([]int, n)
	displ := 0
	for d := 0; d < n; d++ {
		size := base
		if rem > 0 {
			size++
			rem--
		}
		offsets[d] = displ
		sizes[d] = size
		displ += size
	}
	return offsets, sizes
}

func TestAllToAll(t *testing.T) {
	for _, n := range []int{2, 3, 5} {
		for _, elemCount := range []int{0, n, 17} {
			for _, datasize := range []int{1, 2} {
				t.Run(fmt.Sprintf("N=%d,Count=%d,DataSize=%d", n, elemCount, datasize), func(t *testing.T) {
					rootEnds, nonRootEnds := buildStar(n)

					sendsize := elemCount * datasize
					sendbufs := make([][]byte, n)
					for r := 0; r < n; r++ {
						sendbufs[r] = fillBytes(sendsize, byte(60+10*r))
					}

					offsets, sizes := chunkBounds(elemCount, n)

					expected := make([][]byte, n)
					for d := 0; d < n; d++ {
						off := offsets[d] * datasize
						sz := sizes[d] * datasize
						var buf []byte
						for r := 0; r < n; r++ {
							buf = append(buf, sendbufs[r][off:off+sz]...)
						}
						expected[d] = buf
					}

					var wg sync.WaitGroup
					errs := make([]error, n)
					results := make([][]byte, n)

					wg.Add(1)
					go func() {
						defer wg.Done()
						op := NewAllToAll(rootEnds, n, 0, true, 1, nil)
						buf := make([]byte, len(expected[0]))
						_, err := op.SendRecv(sendbufs[0], len(sendbufs[0]), buf, len(buf), datasize)
						errs[0] = err
						results[0] = buf
					}()

					for i := 0; i < n-1; i++ {
						i := i
						wg.Add(1)
						go func() {
							defer wg.Done()
							op := NewAllToAll([]handle.Handle{nonRootEnds[i]}, n, i+1, false, 1, nil)
							buf := make([]byte, len(expected[i+1]))
							_, err := op.SendRecv(sendbufs[i+1], len(sendbufs[i+1]), buf, len(buf), datasize)
							errs[i+1] = err
							results[i+1] = buf
						}()
					}
					wg.Wait()

					for i, err := range errs {
						if err != nil {
							t.Fatalf("rank %d: %v", i, err)
						}
					}
					for d := 0; d < n; d++ {
						if !bytes.Equal(results[d], expected[d]) {
							t.Errorf("rank %d's received chunk set does not match the expected exchange", d)
						}
					}
				})
			}
		}
	}
}
