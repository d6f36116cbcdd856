package collective

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/unixpickle/collengine/handle"
)

func TestAllGather(t *testing.T) {
	for _, n := range []int{2, 3, 8} {
		for _, elemCount := range []int{0, 1, 7, 100} {
			for _, datasize := range []int{1, 2} {
				t.Run(fmt.Sprintf("N=%d,Count=%d,DataSize=%d", n, elemCount, datasize), func(t *testing.T) {
					rootEnds, nonRootEnds := buildStar(n)

					chunks := make([][]byte, n)
					base := elemCount / n
					rem := elemCount % n
					for rank := 0; rank < n; rank++ {
						size := base
						if rem > 0 && rank < rem {
							size++
						}
						chunks[rank] = fillBytes(size*datasize, byte(40+rank))
					}

					var expected []byte
					for rank := 0; rank < n; rank++ {
						expected = append(expected, chunks[rank]...)
					}

					var wg sync.WaitGroup
					errs := make([]error, n)
					results := make([][]byte, n)

					wg.Add(1)
					go func() {
						defer wg.Done()
						op := NewAllGather(rootEnds, n, 0, true, 1, nil)
						buf := make([]byte, elemCount*datasize)
						_, err := op.SendRecv(chunks[0], len(chunks[0]), buf, len(buf), datasize)
						errs[0] = err
						results[0] = buf
					}()

					for i := 0; i < n-1; i++ {
						i := i
						wg.Add(1)
						go func() {
							defer wg.Done()
							op := NewAllGather([]handle.Handle{nonRootEnds[i]}, n, i+1, false, 1, nil)
							buf := make([]byte, elemCount*datasize)
							_, err := op.SendRecv(chunks[i+1], len(chunks[i+1]), buf, len(buf), datasize)
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
					for i := 0; i < n; i++ {
						if !bytes.Equal(results[i], expected) {
							t.Errorf("rank %d's aggregate does not match the expected concatenation", i)
						}
					}
				})
			}
		}
	}
}
