package tagging

// A VictimFinder decides which block should receive a new line.
type VictimFinder interface {
	FindVictim(tags TagArray, address uint64) Block
}

// FIFOVictimFinder picks an empty block if the set has one, otherwise the
// block that was loaded first.
type FIFOVictimFinder struct {
}

// NewFIFOVictimFinder returns a newly constructed FIFO evictor
func NewFIFOVictimFinder() *FIFOVictimFinder {
	return new(FIFOVictimFinder)
}

// FindVictim returns the block that the line for address should go to.
func (e *FIFOVictimFinder) FindVictim(tags TagArray, address uint64) Block {
	set, _ := tags.GetSet(address)

	for _, block := range set.Blocks {
		if !block.IsValid {
			return block
		}
	}

	return set.Blocks[set.FIFOQueue[0]]
}
