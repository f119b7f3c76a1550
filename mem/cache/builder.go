package cache

import (
	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/cache/internal/tagging"
)

// Builder can build cache levels.
type Builder struct {
	byteSize         uint64
	blockSize        uint64
	wayAssociativity int
}

// MakeBuilder creates a new builder with a direct-mapped 1 KB level of 32 B
// blocks.
func MakeBuilder() Builder {
	return Builder{
		byteSize:         1 * mem.KB,
		blockSize:        32,
		wayAssociativity: 1,
	}
}

// WithByteSize sets the capacity of the level.
func (b Builder) WithByteSize(byteSize uint64) Builder {
	b.byteSize = byteSize
	return b
}

// WithBlockSize sets the cache line size of the level.
func (b Builder) WithBlockSize(blockSize uint64) Builder {
	b.blockSize = blockSize
	return b
}

// WithWayAssociativity sets the number of blocks per set. One builds a
// direct-mapped level.
func (b Builder) WithWayAssociativity(wayAssociativity int) Builder {
	b.wayAssociativity = wayAssociativity
	return b
}

// Build builds a cache level. Capacity that does not fill a whole block is
// dropped.
func (b Builder) Build(name string) (*Level, error) {
	if err := b.validate(); err != nil {
		return nil, &ConfigError{Level: name, Err: err}
	}

	numBlocks := int(b.byteSize / b.blockSize)
	numSets := numBlocks / b.wayAssociativity

	l := &Level{
		name:         name,
		byteSize:     b.byteSize,
		blockSize:    b.blockSize,
		tags:         tagging.NewTagArray(numSets, b.wayAssociativity, int(b.blockSize)),
		victimFinder: tagging.NewFIFOVictimFinder(),
	}

	return l, nil
}

func (b Builder) validate() error {
	if b.blockSize == 0 {
		return ErrZeroBlockSize
	}

	if b.byteSize < b.blockSize {
		return ErrCapacityTooSmall
	}

	numBlocks := b.byteSize / b.blockSize
	if b.wayAssociativity <= 0 ||
		numBlocks%uint64(b.wayAssociativity) != 0 {
		return ErrBadAssociativity
	}

	return nil
}
