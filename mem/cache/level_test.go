package cache

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memsim/instrumentation/hooking"
)

var _ = Describe("Level", func() {
	var (
		l *Level
	)

	BeforeEach(func() {
		var err error
		l, err = MakeBuilder().WithByteSize(64).WithBlockSize(16).Build("L1")
		Expect(err).NotTo(HaveOccurred())
	})

	It("should miss, hit, evict and miss again", func() {
		Expect(l.Access(0)).To(BeFalse())
		Expect(l.Access(0)).To(BeTrue())
		Expect(l.Access(64)).To(BeFalse())
		Expect(l.Access(0)).To(BeFalse())

		Expect(l.Metrics()).To(Equal(Metrics{Accesses: 4, Hits: 1, Misses: 3}))
		Expect(l.Metrics().HitRatio()).To(Equal(25.0))
		Expect(l.Metrics().MissRatio()).To(Equal(75.0))
	})

	It("should hit anywhere inside a block", func() {
		l.Access(0x20)

		Expect(l.Access(0x2f)).To(BeTrue())
		Expect(l.Access(0x30)).To(BeFalse())
	})

	It("should only evict the occupant of the addressed index", func() {
		l.Access(0)
		l.Access(16)
		l.Access(32)

		l.Access(80)

		Expect(l.Lines()).To(Equal([]Line{
			{SetID: 0, WayID: 0, Tag: 0, Address: 0},
			{SetID: 1, WayID: 0, Tag: 1, Address: 80},
			{SetID: 2, WayID: 0, Tag: 0, Address: 32},
		}))
		Expect(l.Access(0)).To(BeTrue())
		Expect(l.Access(32)).To(BeTrue())
	})

	It("should report zero ratios with no access", func() {
		Expect(l.Metrics().HitRatio()).To(Equal(0.0))
		Expect(l.Metrics().MissRatio()).To(Equal(0.0))
	})

	It("should flush without touching metrics", func() {
		l.Access(0)
		l.Access(16)

		l.Flush()

		Expect(l.Info().ValidBlocks).To(Equal(0))
		Expect(l.Metrics().Accesses).To(Equal(uint64(2)))
		Expect(l.Access(0)).To(BeFalse())
	})

	It("should be idempotent when flushed twice", func() {
		l.Access(0)

		l.Flush()
		first := l.Info()
		l.Flush()

		Expect(l.Info()).To(Equal(first))
		Expect(l.Lines()).To(BeEmpty())
	})

	It("should reset metrics and keep lines", func() {
		l.Access(0)

		l.ResetMetrics()

		Expect(l.Metrics()).To(BeZero())
		Expect(l.Access(0)).To(BeTrue())
	})

	It("should evict the oldest way of a full set", func() {
		l, _ = MakeBuilder().
			WithByteSize(64).
			WithBlockSize(16).
			WithWayAssociativity(2).
			Build("L1")

		l.Access(0)
		l.Access(32)
		l.Access(0)
		l.Access(64)

		Expect(l.Access(32)).To(BeTrue())
		Expect(l.Access(0)).To(BeFalse())
	})

	Context("with hooks", func() {
		var (
			mockCtrl *gomock.Controller
			hook     *MockHook
		)

		BeforeEach(func() {
			mockCtrl = gomock.NewController(GinkgoT())
			hook = NewMockHook(mockCtrl)
			l.AcceptHook(hook)
		})

		AfterEach(func() {
			mockCtrl.Finish()
		})

		It("should report a miss into an empty block", func() {
			hook.EXPECT().Func(hooking.HookCtx{
				Domain: l,
				Pos:    HookPosCacheAccess,
				Item:   AccessEvent{Address: 0x14, SetID: 1, Tag: 0, Hit: false},
			})

			l.Access(0x14)
		})

		It("should report the evicted line before the access", func() {
			gomock.InOrder(
				hook.EXPECT().Func(gomock.Any()),
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: l,
					Pos:    HookPosCacheEvict,
					Item:   Line{SetID: 0, WayID: 0, Tag: 0, Address: 0},
				}),
				hook.EXPECT().Func(hooking.HookCtx{
					Domain: l,
					Pos:    HookPosCacheAccess,
					Item:   AccessEvent{Address: 64, SetID: 0, Tag: 1, Hit: false},
				}),
			)

			l.Access(0)
			l.Access(64)
		})
	})
})
