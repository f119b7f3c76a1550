package alloc

import (
	"fmt"
	"math"
)

// Strategy selects which free segment serves an allocation request.
type Strategy int

// Placement strategies.
const (
	FirstFit Strategy = iota
	BestFit
	WorstFit
)

// Strategies lists every strategy in declaration order.
var Strategies = []Strategy{FirstFit, BestFit, WorstFit}

// ParseStrategy converts a strategy name, or one of its short aliases, into a
// Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "first_fit", "first", "ff":
		return FirstFit, nil
	case "best_fit", "best", "bf":
		return BestFit, nil
	case "worst_fit", "worst", "wf":
		return WorstFit, nil
	}

	return FirstFit, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
}

func (s Strategy) String() string {
	switch s {
	case FirstFit:
		return "first_fit"
	case BestFit:
		return "best_fit"
	case WorstFit:
		return "worst_fit"
	}

	return fmt.Sprintf("Strategy(%d)", int(s))
}

// DisplayName returns the human-readable name of the strategy.
func (s Strategy) DisplayName() string {
	switch s {
	case FirstFit:
		return "First Fit"
	case BestFit:
		return "Best Fit"
	case WorstFit:
		return "Worst Fit"
	}

	return s.String()
}

// find returns the index of the segment chosen for a request of size bytes,
// or -1 if no free segment is large enough. Ties go to the lowest index.
func (s Strategy) find(segments []Segment, size uint64) int {
	switch s {
	case BestFit:
		return findBestFit(segments, size)
	case WorstFit:
		return findWorstFit(segments, size)
	default:
		return findFirstFit(segments, size)
	}
}

func findFirstFit(segments []Segment, size uint64) int {
	for i, seg := range segments {
		if seg.canAccommodate(size) {
			return i
		}
	}

	return -1
}

func findBestFit(segments []Segment, size uint64) int {
	best := -1
	smallest := uint64(math.MaxUint64)

	for i, seg := range segments {
		if seg.canAccommodate(size) && (best == -1 || seg.Size < smallest) {
			smallest = seg.Size
			best = i
		}
	}

	return best
}

func findWorstFit(segments []Segment, size uint64) int {
	worst := -1
	largest := uint64(0)

	for i, seg := range segments {
		if seg.canAccommodate(size) && (worst == -1 || seg.Size > largest) {
			largest = seg.Size
			worst = i
		}
	}

	return worst
}
