// Package tagging keeps track of which memory blocks a cache currently holds.
package tagging

// TagArray is the block array of a cache, organized in sets. Each set keeps a
// FIFO ledger of its ways in load order.
type TagArray interface {
	Lookup(reqAddr uint64) (Block, bool)
	GetSet(reqAddr uint64) (set *Set, setID int)
	Fill(block Block, reqAddr uint64) Block
	Evict(block Block)
	Reset()
	TotalSize() uint64
	NumSets() int
	NumWays() int
	NumValidBlocks() int
}

// NewTagArray creates a tag array in which every block is invalid.
func NewTagArray(
	numSets int,
	numWays int,
	blockSize int,
) TagArray {
	t := &tagArrayImpl{
		numSets:   numSets,
		numWays:   numWays,
		blockSize: blockSize,
	}

	t.Reset()

	return t
}

// A Block of a cache is the information that is associated with a cache line
type Block struct {
	Tag     uint64
	Address uint64
	SetID   int
	WayID   int
	IsValid bool
}

// A Set is a list of blocks where a certain piece memory can be stored at.
// FIFOQueue lists way IDs from the oldest load to the newest.
type Set struct {
	Blocks    []Block
	FIFOQueue []int
}

type tagArrayImpl struct {
	numSets   int
	numWays   int
	blockSize int
	sets      []Set
}

// TotalSize returns the maximum number of bytes can be stored in the cache
func (t *tagArrayImpl) TotalSize() uint64 {
	return uint64(t.numSets) * uint64(t.numWays) * uint64(t.blockSize)
}

func (t *tagArrayImpl) NumSets() int {
	return t.numSets
}

func (t *tagArrayImpl) NumWays() int {
	return t.numWays
}

// Get the set that a certain address should store at
func (t *tagArrayImpl) GetSet(reqAddr uint64) (set *Set, setID int) {
	setID = int(reqAddr / uint64(t.blockSize) % uint64(t.numSets))
	set = &t.sets[setID]

	return
}

func (t *tagArrayImpl) tagOf(reqAddr uint64) uint64 {
	return reqAddr / (uint64(t.blockSize) * uint64(t.numSets))
}

// Lookup finds the block that holds reqAddr. The second return value is false
// if no valid block in the set carries the address's tag.
func (t *tagArrayImpl) Lookup(reqAddr uint64) (Block, bool) {
	set, _ := t.GetSet(reqAddr)
	tag := t.tagOf(reqAddr)

	for _, block := range set.Blocks {
		if block.IsValid && block.Tag == tag {
			return block, true
		}
	}

	return Block{}, false
}

// Fill loads reqAddr into the slot of block, which must be invalid, and
// appends the way to the back of the set's FIFO ledger. It returns the
// populated block.
func (t *tagArrayImpl) Fill(block Block, reqAddr uint64) Block {
	set := &t.sets[block.SetID]
	slot := &set.Blocks[block.WayID]

	if slot.IsValid {
		panic("filling a valid block")
	}

	slot.IsValid = true
	slot.Tag = t.tagOf(reqAddr)
	slot.Address = reqAddr
	set.FIFOQueue = append(set.FIFOQueue, block.WayID)

	return *slot
}

// Evict invalidates the block and removes its way from the FIFO ledger.
func (t *tagArrayImpl) Evict(block Block) {
	set := &t.sets[block.SetID]

	for i, wayID := range set.FIFOQueue {
		if wayID == block.WayID {
			set.FIFOQueue = append(set.FIFOQueue[:i], set.FIFOQueue[i+1:]...)
			break
		}
	}

	set.Blocks[block.WayID] = Block{SetID: block.SetID, WayID: block.WayID}
}

// NumValidBlocks counts the blocks that currently hold data.
func (t *tagArrayImpl) NumValidBlocks() int {
	n := 0

	for _, set := range t.sets {
		for _, block := range set.Blocks {
			if block.IsValid {
				n++
			}
		}
	}

	return n
}

// Reset will mark all the blocks in the directory invalid and empty every
// FIFO ledger.
func (t *tagArrayImpl) Reset() {
	t.sets = make([]Set, t.numSets)
	for i := 0; i < t.numSets; i++ {
		t.sets[i].Blocks = make([]Block, t.numWays)
		for j := 0; j < t.numWays; j++ {
			t.sets[i].Blocks[j] = Block{SetID: i, WayID: j}
		}
	}
}
