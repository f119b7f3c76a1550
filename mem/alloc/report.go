package alloc

// FragmentationReport summarizes how the pool is used. It is computed from the
// segment list on demand.
type FragmentationReport struct {
	Capacity          uint64 `json:"capacity"`
	FreeBytes         uint64 `json:"free_bytes"`
	AllocatedBytes    uint64 `json:"allocated_bytes"`
	LargestFreeBlock  uint64 `json:"largest_free_block"`
	FreeSegments      int    `json:"free_segments"`
	AllocatedSegments int    `json:"allocated_segments"`
}

// Utilization returns the allocated share of the pool in percent.
func (r FragmentationReport) Utilization() float64 {
	if r.Capacity == 0 {
		return 0
	}

	return 100 * float64(r.AllocatedBytes) / float64(r.Capacity)
}

// ExternalFragmentation returns the share of free memory, in percent, that
// lies outside the largest free block.
func (r FragmentationReport) ExternalFragmentation() float64 {
	if r.FreeBytes == 0 {
		return 0
	}

	return 100 * float64(r.FreeBytes-r.LargestFreeBlock) / float64(r.FreeBytes)
}

// InternalFragmentation is always zero. Segments are split to the exact
// requested size.
func (r FragmentationReport) InternalFragmentation() float64 {
	return 0
}

func buildReport(capacity uint64, segments []Segment) FragmentationReport {
	r := FragmentationReport{Capacity: capacity}

	for _, seg := range segments {
		if seg.Allocated {
			r.AllocatedBytes += seg.Size
			r.AllocatedSegments++

			continue
		}

		r.FreeBytes += seg.Size
		r.FreeSegments++

		if seg.Size > r.LargestFreeBlock {
			r.LargestFreeBlock = seg.Size
		}
	}

	return r
}
