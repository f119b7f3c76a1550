// Package mem holds definitions shared by the memory models.
package mem

// For capacity.
const (
	KB uint64 = 1 << 10
	MB uint64 = 1 << 20
	GB uint64 = 1 << 30
)
