// Package partition implements the deterministic remainder-distribution
// policy shared by every root-centric collective: given an element count
// and a participant count, how many elements does each rank own.
package partition

// Split computes, for every rank in [0, n), how many elements of count it
// owns. base = count/n, rem = count%n; ranks [0, rem) get base+1, the rest
// get base. Split totality (sum(sizes) == count) always holds.
func Split(count, n int) []int {
	sizes := make([]int, n)
	base := count / n
	rem := count % n
	for r := range sizes {
		sizes[r] = base
		if r < rem {
			sizes[r]++
		}
	}
	return sizes
}

// Size returns rank's share of count elements across n participants,
// without building the full table.
func Size(rank, count, n int) int {
	base := count / n
	rem := count % n
	if rank < rem {
		return base + 1
	}
	return base
}

// Displacements returns, for each rank, the element offset at which its
// chunk starts, computed from sizes so that offsets can be checked against
// a byte buffer before any I/O happens (the spec's "small table... before
// any I/O" design note).
func Displacements(sizes []int) []int {
	displs := make([]int, len(sizes))
	offset := 0
	for i, s := range sizes {
		displs[i] = offset
		offset += s
	}
	return displs
}
