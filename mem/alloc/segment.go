package alloc

import (
	"fmt"

	"github.com/sarchlab/memsim/idgen"
)

// A Segment is a contiguous range of the simulated address space that is
// either free or held by exactly one owner.
type Segment struct {
	Base      uint64   `json:"base"`
	Size      uint64   `json:"size"`
	Allocated bool     `json:"allocated"`
	Owner     idgen.ID `json:"owner,omitempty"`
}

// End returns the first address after the segment.
func (s Segment) End() uint64 {
	return s.Base + s.Size
}

// LastAddress returns the last address covered by the segment.
func (s Segment) LastAddress() uint64 {
	return s.Base + s.Size - 1
}

func (s Segment) canAccommodate(size uint64) bool {
	return !s.Allocated && s.Size >= size
}

func (s Segment) String() string {
	if s.Allocated {
		return fmt.Sprintf("[0x%x - 0x%x] ALLOCATED (PID=%d, size=%d)",
			s.Base, s.LastAddress(), s.Owner, s.Size)
	}

	return fmt.Sprintf("[0x%x - 0x%x] FREE (size=%d)",
		s.Base, s.LastAddress(), s.Size)
}

// An Allocation describes a successful allocation.
type Allocation struct {
	Owner   idgen.ID `json:"owner"`
	Address uint64   `json:"address"`
	Size    uint64   `json:"size"`
}
