package cache

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Builder", func() {
	It("should build the default level", func() {
		l, err := MakeBuilder().Build("L1")

		Expect(err).NotTo(HaveOccurred())
		Expect(l.Name()).To(Equal("L1"))
		Expect(l.Info()).To(Equal(Info{
			ByteSize:         1024,
			BlockSize:        32,
			NumBlocks:        32,
			NumSets:          32,
			WayAssociativity: 1,
		}))
	})

	It("should drop capacity that does not fill a block", func() {
		l, err := MakeBuilder().WithByteSize(100).WithBlockSize(32).Build("L1")

		Expect(err).NotTo(HaveOccurred())
		Expect(l.Info().NumBlocks).To(Equal(3))
	})

	It("should build a set-associative level", func() {
		l, err := MakeBuilder().
			WithByteSize(256).
			WithBlockSize(16).
			WithWayAssociativity(4).
			Build("L2")

		Expect(err).NotTo(HaveOccurred())
		Expect(l.Info().NumSets).To(Equal(4))
		Expect(l.Info().WayAssociativity).To(Equal(4))
	})

	DescribeTable("rejecting bad geometry",
		func(byteSize, blockSize uint64, ways int, want error) {
			l, err := MakeBuilder().
				WithByteSize(byteSize).
				WithBlockSize(blockSize).
				WithWayAssociativity(ways).
				Build("L1")

			Expect(l).To(BeNil())
			Expect(errors.Is(err, want)).To(BeTrue())

			var configErr *ConfigError
			Expect(errors.As(err, &configErr)).To(BeTrue())
			Expect(configErr.Level).To(Equal("L1"))
		},
		Entry("zero block size", uint64(1024), uint64(0), 1, ErrZeroBlockSize),
		Entry("capacity below one block", uint64(16), uint64(32), 1, ErrCapacityTooSmall),
		Entry("zero capacity", uint64(0), uint64(32), 1, ErrCapacityTooSmall),
		Entry("zero ways", uint64(1024), uint64(32), 0, ErrBadAssociativity),
		Entry("partial set", uint64(96), uint64(32), 2, ErrBadAssociativity),
	)
})
