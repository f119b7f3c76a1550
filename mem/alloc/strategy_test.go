package alloc

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memsim/idgen"
)

// fragmentedPool returns an allocator over 1000 bytes whose free segments
// are [0,100), [150,450), [500,700) and [750,1000).
func fragmentedPool() *Allocator {
	a := NewAllocator()
	a.Initialize(1000)

	for _, size := range []uint64{100, 50, 300, 50, 200, 50} {
		_, err := a.Allocate(size)
		Expect(err).NotTo(HaveOccurred())
	}

	for _, owner := range []idgen.ID{1, 3, 5} {
		Expect(a.Deallocate(owner)).To(Succeed())
	}

	return a
}

var _ = Describe("Strategy", func() {
	DescribeTable("placement",
		func(s Strategy, size uint64, address uint64) {
			a := fragmentedPool()
			a.SetStrategy(s)

			allocation, err := a.Allocate(size)

			Expect(err).NotTo(HaveOccurred())
			Expect(allocation.Address).To(Equal(address))
			expectInvariants(a)
		},
		Entry("first fit takes the first large enough", FirstFit, uint64(90), uint64(0)),
		Entry("best fit takes the smallest", BestFit, uint64(90), uint64(0)),
		Entry("worst fit takes the largest", WorstFit, uint64(90), uint64(150)),
		Entry("first fit skips small segments", FirstFit, uint64(220), uint64(150)),
		Entry("best fit prefers the tighter tail", BestFit, uint64(220), uint64(750)),
		Entry("worst fit for a mid request", WorstFit, uint64(220), uint64(150)),
		Entry("best fit for 150", BestFit, uint64(150), uint64(500)),
		Entry("exact fit", BestFit, uint64(200), uint64(500)),
	)

	DescribeTable("ties go to the lowest address",
		func(s Strategy) {
			a := NewAllocator()
			a.Initialize(600)
			for _, size := range []uint64{200, 100, 200, 100} {
				_, err := a.Allocate(size)
				Expect(err).NotTo(HaveOccurred())
			}
			Expect(a.Deallocate(1)).To(Succeed())
			Expect(a.Deallocate(3)).To(Succeed())
			a.SetStrategy(s)

			allocation, err := a.Allocate(150)

			Expect(err).NotTo(HaveOccurred())
			Expect(allocation.Address).To(Equal(uint64(0)))
		},
		Entry("first fit", FirstFit),
		Entry("best fit", BestFit),
		Entry("worst fit", WorstFit),
	)

	It("should fail every strategy when nothing fits", func() {
		for _, s := range Strategies {
			a := fragmentedPool()
			a.SetStrategy(s)

			_, err := a.Allocate(301)

			Expect(errors.Is(err, ErrNoSpace)).To(BeTrue())
		}
	})

	DescribeTable("parsing",
		func(name string, want Strategy) {
			s, err := ParseStrategy(name)

			Expect(err).NotTo(HaveOccurred())
			Expect(s).To(Equal(want))
		},
		Entry(nil, "first_fit", FirstFit),
		Entry(nil, "first", FirstFit),
		Entry(nil, "ff", FirstFit),
		Entry(nil, "best_fit", BestFit),
		Entry(nil, "best", BestFit),
		Entry(nil, "bf", BestFit),
		Entry(nil, "worst_fit", WorstFit),
		Entry(nil, "worst", WorstFit),
		Entry(nil, "wf", WorstFit),
	)

	It("should reject unknown names", func() {
		_, err := ParseStrategy("next_fit")

		Expect(errors.Is(err, ErrUnknownStrategy)).To(BeTrue())
	})

	It("should name strategies", func() {
		Expect(BestFit.String()).To(Equal("best_fit"))
		Expect(WorstFit.DisplayName()).To(Equal("Worst Fit"))
		Expect(Strategy(9).String()).To(Equal("Strategy(9)"))
	})
})
