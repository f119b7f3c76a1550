package workload

import (
	"github.com/sourcegraph/conc/iter"

	"github.com/sarchlab/memsim/idgen"
	"github.com/sarchlab/memsim/mem/alloc"
)

// Result summarizes one replay.
type Result struct {
	Strategy      alloc.Strategy
	Stats         alloc.Statistics
	Fragmentation alloc.FragmentationReport

	// Frees counts successful deallocations. SkippedFrees counts free ops
	// whose alloc op had failed.
	Frees        int
	SkippedFrees int
}

// Replay runs ops against a, which must already be initialized. Free ops
// whose alloc op failed are skipped.
func Replay(a *alloc.Allocator, ops []Op) Result {
	owners := make(map[int]idgen.ID)
	r := Result{Strategy: a.Strategy()}

	for i, op := range ops {
		switch op.Kind {
		case OpAlloc:
			allocation, err := a.Allocate(op.Size)
			if err == nil {
				owners[i] = allocation.Owner
			}
		case OpFree:
			owner, ok := owners[op.Target]
			if !ok {
				r.SkippedFrees++
				continue
			}

			if err := a.Deallocate(owner); err != nil {
				panic(err)
			}

			delete(owners, op.Target)
			r.Frees++
		}
	}

	r.Stats = a.Stats()
	r.Fragmentation = a.Fragmentation()

	return r
}

// Compare replays ops on a fresh pool of poolSize bytes for every strategy,
// in parallel. Results come back in the order of strategies. With no
// strategy given, all of them are compared.
func Compare(poolSize uint64, ops []Op, strategies ...alloc.Strategy) []Result {
	if len(strategies) == 0 {
		strategies = alloc.Strategies
	}

	return iter.Map(strategies, func(s *alloc.Strategy) Result {
		a := alloc.NewAllocator()
		a.SetStrategy(*s)
		a.Initialize(poolSize)

		return Replay(a, ops)
	})
}
