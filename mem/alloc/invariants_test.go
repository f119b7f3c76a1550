package alloc

import (
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/idgen"
)

// expectInvariants checks the segment list of a against the allocator's
// structural guarantees.
func expectInvariants(a *Allocator) {
	var next uint64
	var total uint64
	owners := make(map[idgen.ID]bool)

	for i, seg := range a.segments {
		Expect(seg.Size).To(BeNumerically(">", 0), "segment %d is empty", i)
		Expect(seg.Base).To(Equal(next), "gap or overlap before segment %d", i)

		if seg.Allocated {
			Expect(seg.Owner).NotTo(Equal(idgen.None), "segment %d has no owner", i)
			Expect(owners).NotTo(HaveKey(seg.Owner), "owner %d repeated", seg.Owner)
			owners[seg.Owner] = true
		} else {
			Expect(seg.Owner).To(Equal(idgen.None), "free segment %d has owner", i)
		}

		if i > 0 {
			prev := a.segments[i-1]
			Expect(prev.Allocated || seg.Allocated).To(BeTrue(),
				"segments %d and %d are both free", i-1, i)
		}

		next = seg.End()
		total += seg.Size
	}

	Expect(total).To(Equal(a.capacity))
	Expect(a.owners.Len()).To(Equal(len(owners)))
}
