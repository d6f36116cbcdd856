package collective

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/unixpickle/collengine/handle"
)

func TestGather(t *testing.T) {
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
						chunks[rank] = fillBytes(size*datasize, byte(20+rank))
					}

					var wg sync.WaitGroup
					errs := make([]error, n)
					recvbuf := make([]byte, elemCount*datasize)

					wg.Add(1)
					go func() {
						defer wg.Done()
						op := NewGather(rootEnds, n, 0, true, 1, nil)
						_, err := op.SendRecv(chunks[0], len(chunks[0]), recvbuf, len(recvbuf), datasize)
						errs[0] = err
					}()

					for i := 0; i < n-1; i++ {
						i := i
						wg.Add(1)
						go func() {
							defer wg.Done()
							op := NewGather([]handle.Handle{nonRootEnds[i]}, n, i+1, false, 1, nil)
							_, err := op.SendRecv(chunks[i+1], len(chunks[i+1]), nil, elemCount*datasize, datasize)
							errs[i+1] = err
						}()
					}
					wg.Wait()

					for i, err := range errs {
						if err != nil {
							t.Fatalf("rank %d: %v", i, err)
						}
					}

					var expected []byte
					for rank := 0; rank < n; rank++ {
						expected = append(expected, chunks[rank]...)
					}
					if !bytes.Equal(recvbuf, expected) {
						t.Errorf("root's assembled buffer does not match the chunks in rank order")
					}
				})
			}
		}
	}
}
