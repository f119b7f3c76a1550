// Package workload generates random allocation traces and replays them
// against allocators to compare placement strategies.
package workload

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v6"
)

// OpKind tells whether an Op allocates or frees.
type OpKind int

// Operation kinds.
const (
	OpAlloc OpKind = iota
	OpFree
)

func (k OpKind) String() string {
	switch k {
	case OpAlloc:
		return "alloc"
	case OpFree:
		return "free"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// An Op is one step of a trace. Alloc ops carry a Size. Free ops carry the
// index, within the trace, of the alloc op whose block is released.
type Op struct {
	Kind   OpKind
	Size   uint64
	Target int
}

// Spec describes the trace to generate.
type Spec struct {
	Seed      int64
	Ops       int
	MinSize   uint64
	MaxSize   uint64
	FreeRatio float64
}

// DefaultSpec returns a 1000-op trace of 16 B to 1 KB requests where about a
// third of the ops free a live block.
func DefaultSpec() Spec {
	return Spec{
		Seed:      1,
		Ops:       1000,
		MinSize:   16,
		MaxSize:   1024,
		FreeRatio: 0.35,
	}
}

// Validate reports specs that cannot produce a trace.
func (s Spec) Validate() error {
	switch {
	case s.Ops < 0:
		return fmt.Errorf("negative op count %d", s.Ops)
	case s.MinSize == 0:
		return fmt.Errorf("minimum size must be positive")
	case s.MaxSize < s.MinSize:
		return fmt.Errorf("maximum size %d below minimum size %d", s.MaxSize, s.MinSize)
	case s.FreeRatio < 0 || s.FreeRatio >= 1:
		return fmt.Errorf("free ratio %v outside [0, 1)", s.FreeRatio)
	}

	return nil
}

// Generate produces a trace from spec. The same spec always gives the same
// trace. A free op is only emitted while some earlier alloc op has not been
// freed yet.
func Generate(spec Spec) []Op {
	faker := gofakeit.New(spec.Seed)
	ops := make([]Op, 0, spec.Ops)
	live := []int{}

	for i := 0; i < spec.Ops; i++ {
		if len(live) > 0 && faker.Float64() < spec.FreeRatio {
			pick := faker.IntRange(0, len(live)-1)
			ops = append(ops, Op{Kind: OpFree, Target: live[pick]})
			live = append(live[:pick], live[pick+1:]...)

			continue
		}

		size := drawSize(faker, spec.MinSize, spec.MaxSize)
		live = append(live, len(ops))
		ops = append(ops, Op{Kind: OpAlloc, Size: size})
	}

	return ops
}

// drawSize returns a size in [lo, hi].
func drawSize(faker *gofakeit.Faker, lo, hi uint64) uint64 {
	span := hi - lo + 1
	if span == 0 {
		// [0, MaxUint64]
		return faker.Uint64()
	}

	return lo + faker.Uint64()%span
}
