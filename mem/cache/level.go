// Package cache simulates direct-mapped (or set-associative) caches with FIFO
// replacement and a two-level hierarchy built from them.
package cache

import (
	"github.com/sarchlab/memsim/instrumentation/hooking"
	"github.com/sarchlab/memsim/mem/cache/internal/tagging"
)

// A Level is one cache. It only tracks which lines are resident; no data is
// stored.
type Level struct {
	hooking.HookableBase

	name      string
	byteSize  uint64
	blockSize uint64

	tags         tagging.TagArray
	victimFinder tagging.VictimFinder
	metrics      Metrics
}

// Info describes the geometry and the occupancy of a level.
type Info struct {
	ByteSize         uint64 `json:"byte_size"`
	BlockSize        uint64 `json:"block_size"`
	NumBlocks        int    `json:"num_blocks"`
	NumSets          int    `json:"num_sets"`
	WayAssociativity int    `json:"way_associativity"`
	ValidBlocks      int    `json:"valid_blocks"`
}

// Name returns the name of the level.
func (l *Level) Name() string {
	return l.name
}

// Access looks up addr and returns true on a hit. On a miss the line is
// loaded, replacing the oldest line of its set if the set is full.
func (l *Level) Access(addr uint64) bool {
	block, hit := l.tags.Lookup(addr)
	if hit {
		l.metrics.recordHit()
		l.invokeAccessHook(addr, block.SetID, block.Tag, true)

		return true
	}

	l.metrics.recordMiss()

	victim := l.victimFinder.FindVictim(l.tags, addr)
	if victim.IsValid {
		l.tags.Evict(victim)
		l.InvokeHook(hooking.HookCtx{
			Domain: l,
			Pos:    HookPosCacheEvict,
			Item:   lineOf(victim),
		})
	}

	block = l.tags.Fill(victim, addr)
	l.invokeAccessHook(addr, block.SetID, block.Tag, false)

	return false
}

func (l *Level) invokeAccessHook(addr uint64, setID int, tag uint64, hit bool) {
	if l.NumHooks() == 0 {
		return
	}

	l.InvokeHook(hooking.HookCtx{
		Domain: l,
		Pos:    HookPosCacheAccess,
		Item: AccessEvent{
			Address: addr,
			SetID:   setID,
			Tag:     tag,
			Hit:     hit,
		},
	})
}

// Flush invalidates every line. Metrics are kept.
func (l *Level) Flush() {
	l.tags.Reset()
}

// Info returns the geometry and the number of valid blocks.
func (l *Level) Info() Info {
	numSets := l.tags.NumSets()
	numWays := l.tags.NumWays()

	return Info{
		ByteSize:         l.byteSize,
		BlockSize:        l.blockSize,
		NumBlocks:        numSets * numWays,
		NumSets:          numSets,
		WayAssociativity: numWays,
		ValidBlocks:      l.tags.NumValidBlocks(),
	}
}

// Lines lists the resident lines ordered by set and way.
func (l *Level) Lines() []Line {
	var lines []Line

	for setID := 0; setID < l.tags.NumSets(); setID++ {
		addr := uint64(setID) * l.blockSize
		set, _ := l.tags.GetSet(addr)

		for _, block := range set.Blocks {
			if block.IsValid {
				lines = append(lines, lineOf(block))
			}
		}
	}

	return lines
}

// Metrics returns the access counters.
func (l *Level) Metrics() Metrics {
	return l.metrics
}

// ResetMetrics zeroes the access counters. Resident lines are kept.
func (l *Level) ResetMetrics() {
	l.metrics = Metrics{}
}
