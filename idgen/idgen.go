// Package idgen provides the sequential identifiers handed out to allocation
// owners.
package idgen

import "sync/atomic"

// ID is a unique identifier represented as a uint64. The zero ID is never
// generated and stands for "no owner".
type ID uint64

// None is the ID carried by free segments.
const None ID = 0

// Generator produces unique identifiers.
type Generator interface {
	Generate() ID
}

// A Resetter is a Generator that can start over from its first ID.
type Resetter interface {
	Generator
	Reset()
}

// New returns a sequential generator whose first emitted ID is "1".
func New() Resetter {
	return &sequentialGenerator{}
}

type sequentialGenerator struct {
	next uint64
}

func (g *sequentialGenerator) Generate() ID {
	return ID(atomic.AddUint64(&g.next, 1))
}

// Reset makes the next generated ID "1" again.
func (g *sequentialGenerator) Reset() {
	atomic.StoreUint64(&g.next, 0)
}
