package partition

import (
	"fmt"
	"testing"
)

func TestSplitTotality(t *testing.T) {
	for _, count := range []int{0, 1, 7, 16, 100, 101} {
		for _, n := range []int{1, 2, 3, 8, 17} {
			t.Run(fmt.Sprintf("Count=%d,N=%d", count, n), func(t *testing.T) {
				sizes := Split(count, n)
				if len(sizes) != n {
					t.Fatalf("got %d entries, want %d", len(sizes), n)
				}
				sum := 0
				for _, s := range sizes {
					sum += s
				}
				if sum != count {
					t.Errorf("sizes sum to %d, want %d", sum, count)
				}

				base := count / n
				rem := count % n
				for r, s := range sizes {
					want := base
					if r < rem {
						want++
					}
					if s != want {
						t.Errorf("rank %d: got %d, want %d", r, s, want)
					}
					if got := Size(r, count, n); got != want {
						t.Errorf("Size(%d): got %d, want %d", r, got, want)
					}
				}
			})
		}
	}
}

func TestDisplacements(t *testing.T) {
	sizes := Split(100, 7)
	displs := Displacements(sizes)
	if len(displs) != len(sizes) {
		t.Fatalf("got %d displacements, want %d", len(displs), len(sizes))
	}
	offset := 0
	for i, d := range displs {
		if d != offset {
			t.Errorf("rank %d: displacement %d, want %d", i, d, offset)
		}
		offset += sizes[i]
	}
}

func TestSplitMonotonicDecreasing(t *testing.T) {
	sizes := Split(53, 6)
	for i := 1; i < len(sizes); i++ {
		if sizes[i] > sizes[i-1] {
			t.Errorf("rank %d got more elements (%d) than rank %d (%d); remainder ranks must come first", i, sizes[i], i-1, sizes[i-1])
		}
	}
}
