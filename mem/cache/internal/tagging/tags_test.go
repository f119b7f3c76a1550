package tagging

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Tags", func() {
	var (
		tags *tagArrayImpl
	)

	BeforeEach(func() {
		tags = NewTagArray(4, 1, 16).(*tagArrayImpl)
	})

	It("should be able to get total size", func() {
		Expect(tags.TotalSize()).To(Equal(uint64(64)))
		Expect(tags.NumSets()).To(Equal(4))
		Expect(tags.NumWays()).To(Equal(1))
	})

	It("should map addresses to sets", func() {
		_, setID := tags.GetSet(0)
		Expect(setID).To(Equal(0))

		_, setID = tags.GetSet(0x1f)
		Expect(setID).To(Equal(1))

		_, setID = tags.GetSet(64)
		Expect(setID).To(Equal(0))
	})

	It("should return false when lookup cannot find block", func() {
		block, ok := tags.Lookup(0x100)

		Expect(ok).To(BeFalse())
		Expect(block).To(BeZero())
	})

	It("should lookup a filled block", func() {
		set, _ := tags.GetSet(0x48)
		tags.Fill(set.Blocks[0], 0x48)

		block, ok := tags.Lookup(0x40)

		Expect(ok).To(BeTrue())
		Expect(block.Tag).To(Equal(uint64(1)))
		Expect(block.SetID).To(Equal(0))
		Expect(block.Address).To(Equal(uint64(0x48)))
		Expect(set.FIFOQueue).To(Equal([]int{0}))
	})

	It("should not match another tag in the same set", func() {
		set, _ := tags.GetSet(0)
		tags.Fill(set.Blocks[0], 0)

		_, ok := tags.Lookup(64)

		Expect(ok).To(BeFalse())
	})

	It("should panic when filling a valid block", func() {
		set, _ := tags.GetSet(0)
		tags.Fill(set.Blocks[0], 0)

		Expect(func() { tags.Fill(set.Blocks[0], 64) }).To(Panic())
	})

	It("should evict a block", func() {
		set, _ := tags.GetSet(0)
		block := tags.Fill(set.Blocks[0], 0x8)

		tags.Evict(block)

		Expect(set.Blocks[0]).To(Equal(Block{SetID: 0, WayID: 0}))
		Expect(set.FIFOQueue).To(BeEmpty())
		Expect(tags.NumValidBlocks()).To(Equal(0))
	})

	It("should reset", func() {
		for addr := uint64(0); addr < 64; addr += 16 {
			set, _ := tags.GetSet(addr)
			tags.Fill(set.Blocks[0], addr)
		}
		Expect(tags.NumValidBlocks()).To(Equal(4))

		tags.Reset()

		Expect(tags.NumValidBlocks()).To(Equal(0))
		for _, set := range tags.sets {
			Expect(set.FIFOQueue).To(BeEmpty())
		}
	})

	Context("set associative", func() {
		BeforeEach(func() {
			tags = NewTagArray(2, 2, 16).(*tagArrayImpl)
		})

		It("should use the set count for tags", func() {
			set, setID := tags.GetSet(0x20)
			Expect(setID).To(Equal(0))

			block := tags.Fill(set.Blocks[1], 0x20)

			Expect(block.Tag).To(Equal(uint64(1)))
			Expect(block.WayID).To(Equal(1))
		})
	})
})
