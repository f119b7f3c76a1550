// Package alloc simulates a dynamic, segment-based physical memory allocator
// with first-fit, best-fit and worst-fit placement.
package alloc

import (
	"fmt"
	"log"
	"sort"

	"github.com/tidwall/hashmap"

	"github.com/sarchlab/memsim/idgen"
	"github.com/sarchlab/memsim/instrumentation/hooking"
)

// An Allocator manages one contiguous pool of simulated memory as an ordered
// list of segments.
//
// The segment list always covers [0, Capacity()) without gaps or overlaps, and
// no two neighbouring segments are both free once an operation returns. The
// Allocator is not safe for concurrent use.
type Allocator struct {
	hooking.HookableBase

	segments []Segment
	capacity uint64
	strategy Strategy
	stats    Statistics
	ownerIDs idgen.Resetter

	// owner -> base address of the segment the owner holds.
	owners hashmap.Map[idgen.ID, uint64]
}

// NewAllocator creates an allocator with an empty pool. Call Initialize
// before allocating.
func NewAllocator() *Allocator {
	return &Allocator{
		strategy: FirstFit,
		ownerIDs: idgen.New(),
	}
}

// Initialize replaces the pool with a single free segment of totalSize bytes.
// Owner ids start over from 1 and the statistics are cleared. A zero size
// leaves the allocator with an empty pool.
func (a *Allocator) Initialize(totalSize uint64) {
	a.segments = a.segments[:0]
	if totalSize > 0 {
		a.segments = append(a.segments, Segment{Base: 0, Size: totalSize})
	}

	a.capacity = totalSize
	a.ownerIDs.Reset()
	a.owners = hashmap.Map[idgen.ID, uint64]{}
	a.stats = Statistics{}

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosInitialize,
		Item:   totalSize,
	})
}

// SetStrategy changes how free segments are chosen. Existing segments are not
// touched.
func (a *Allocator) SetStrategy(s Strategy) {
	a.strategy = s

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosStrategy,
		Item:   s,
	})
}

// Strategy returns the active placement strategy.
func (a *Allocator) Strategy() Strategy {
	return a.strategy
}

// Capacity returns the size of the pool in bytes.
func (a *Allocator) Capacity() uint64 {
	return a.capacity
}

// IsInitialized tells whether the allocator currently manages a pool.
func (a *Allocator) IsInitialized() bool {
	return a.capacity > 0
}

// Stats returns the allocation counters.
func (a *Allocator) Stats() Statistics {
	return a.stats
}

// Layout returns a copy of the segment list, ordered by base address.
func (a *Allocator) Layout() []Segment {
	layout := make([]Segment, len(a.segments))
	copy(layout, a.segments)

	return layout
}

// Fragmentation computes a usage report of the pool.
func (a *Allocator) Fragmentation() FragmentationReport {
	return buildReport(a.capacity, a.segments)
}

// Allocate reserves exactly size bytes from the pool using the active
// strategy. It returns ErrZeroSize for empty requests and ErrNoSpace when no
// free segment is large enough; in both cases the pool is unchanged and the
// attempt is counted as a failure.
func (a *Allocator) Allocate(size uint64) (Allocation, error) {
	event := AllocateEvent{Requested: size, Strategy: a.strategy}

	allocation, err := a.allocate(size)
	event.Allocation = allocation

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosAllocate,
		Item:   event,
		Detail: err,
	})

	return allocation, err
}

func (a *Allocator) allocate(size uint64) (Allocation, error) {
	a.stats.recordAttempt()

	if size == 0 {
		a.stats.recordFailure()
		return Allocation{}, ErrZeroSize
	}

	index := a.strategy.find(a.segments, size)
	if index < 0 {
		a.stats.recordFailure()
		return Allocation{}, fmt.Errorf("allocating %d bytes with %s: %w",
			size, a.strategy, ErrNoSpace)
	}

	a.split(index, size)

	owner := a.ownerIDs.Generate()
	seg := &a.segments[index]
	seg.Allocated = true
	seg.Owner = owner
	a.owners.Set(owner, seg.Base)

	a.stats.recordSuccess()

	return Allocation{Owner: owner, Address: seg.Base, Size: size}, nil
}

// split shrinks the segment at index to size bytes and inserts the remainder
// as a free segment right after it. Nothing happens on an exact fit.
func (a *Allocator) split(index int, size uint64) {
	seg := a.segments[index]
	if seg.Size == size {
		return
	}

	remainder := Segment{
		Base: seg.Base + size,
		Size: seg.Size - size,
	}

	a.segments[index].Size = size
	a.segments = append(a.segments, Segment{})
	copy(a.segments[index+2:], a.segments[index+1:])
	a.segments[index+1] = remainder
}

// Deallocate frees the segment held by owner and merges it with free
// neighbours. It returns ErrOwnerNotFound, without changing anything, when the
// owner holds no segment.
func (a *Allocator) Deallocate(owner idgen.ID) error {
	event := DeallocateEvent{Owner: owner}

	freed, err := a.deallocate(owner)
	if err == nil {
		event.Address = freed.Base
		event.Size = freed.Size
	}

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosDeallocate,
		Item:   event,
		Detail: err,
	})

	return err
}

func (a *Allocator) deallocate(owner idgen.ID) (Segment, error) {
	index := a.findOwner(owner)
	if index < 0 {
		return Segment{}, fmt.Errorf("freeing PID %d: %w", owner, ErrOwnerNotFound)
	}

	seg := &a.segments[index]
	freed := *seg
	seg.Allocated = false
	seg.Owner = idgen.None
	a.owners.Delete(owner)

	a.coalesce()

	return freed, nil
}

func (a *Allocator) findOwner(owner idgen.ID) int {
	base, ok := a.owners.Get(owner)
	if !ok {
		return -1
	}

	index := sort.Search(len(a.segments), func(i int) bool {
		return a.segments[i].Base >= base
	})

	if index == len(a.segments) ||
		!a.segments[index].Allocated ||
		a.segments[index].Owner != owner {
		log.Panicf("owner index out of sync: PID %d at 0x%x", owner, base)
	}

	return index
}

// coalesce merges every pair of neighbouring free segments. After a merge the
// same position is examined again, since the grown segment may now touch
// another free segment.
func (a *Allocator) coalesce() {
	for i := 0; i+1 < len(a.segments); {
		cur, next := a.segments[i], a.segments[i+1]

		if cur.Allocated || next.Allocated || cur.End() != next.Base {
			i++
			continue
		}

		a.segments[i].Size += next.Size
		a.segments = append(a.segments[:i+1], a.segments[i+2:]...)
	}
}

// Reset drops the pool entirely. The capacity becomes zero, owner ids start
// over, the strategy returns to FirstFit and the statistics are cleared.
func (a *Allocator) Reset() {
	a.segments = nil
	a.capacity = 0
	a.strategy = FirstFit
	a.ownerIDs.Reset()
	a.owners = hashmap.Map[idgen.ID, uint64]{}
	a.stats = Statistics{}

	a.InvokeHook(hooking.HookCtx{
		Domain: a,
		Pos:    HookPosReset,
	})
}
