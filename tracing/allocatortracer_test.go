package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/memsim/mem/alloc"
)

var _ = Describe("AllocatorTracer", func() {
	var (
		mockCtrl *gomock.Controller
		recorder *MockDataRecorder
		tracer   *AllocatorTracer
		a        *alloc.Allocator
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		recorder = NewMockDataRecorder(mockCtrl)
		recorder.EXPECT().CreateTable(AllocatorTable, allocatorEventEntry{})

		tracer = NewAllocatorTracer(recorder)
		a = alloc.NewAllocator()
		a.AcceptHook(tracer)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should record a session", func() {
		gomock.InOrder(
			recorder.EXPECT().InsertData(AllocatorTable, allocatorEventEntry{
				Seq: 1, Kind: "initialize", Size: 1000, Strategy: "first_fit", OK: true,
			}),
			recorder.EXPECT().InsertData(AllocatorTable, allocatorEventEntry{
				Seq: 2, Kind: "strategy", Strategy: "best_fit", OK: true,
			}),
			recorder.EXPECT().InsertData(AllocatorTable, allocatorEventEntry{
				Seq: 3, Kind: "allocate", Owner: 1, Address: 0, Size: 200,
				Strategy: "best_fit", OK: true,
			}),
			recorder.EXPECT().InsertData(AllocatorTable, allocatorEventEntry{
				Seq: 4, Kind: "deallocate", Owner: 1, Address: 0, Size: 200,
				Strategy: "best_fit", OK: true,
			}),
			recorder.EXPECT().InsertData(AllocatorTable, allocatorEventEntry{
				Seq: 5, Kind: "reset", Strategy: "first_fit", OK: true,
			}),
		)

		a.Initialize(1000)
		a.SetStrategy(alloc.BestFit)
		_, err := a.Allocate(200)
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Deallocate(1)).To(Succeed())
		a.Reset()

		Expect(tracer.Count()).To(Equal(uint64(5)))
	})

	It("should record failures with their error", func() {
		var entries []allocatorEventEntry
		recorder.EXPECT().
			InsertData(AllocatorTable, gomock.Any()).
			Do(func(_ string, entry any) {
				entries = append(entries, entry.(allocatorEventEntry))
			}).
			Times(3)

		a.Initialize(100)
		_, err := a.Allocate(150)
		Expect(err).To(HaveOccurred())
		Expect(a.Deallocate(9)).NotTo(Succeed())

		Expect(entries[1].Kind).To(Equal("allocate"))
		Expect(entries[1].OK).To(BeFalse())
		Expect(entries[1].Error).To(ContainSubstring("insufficient space"))
		Expect(entries[1].Size).To(Equal(uint64(150)))
		Expect(entries[2].Kind).To(Equal("deallocate"))
		Expect(entries[2].Owner).To(Equal(uint64(9)))
		Expect(entries[2].Error).To(ContainSubstring("owner not found"))
	})
})
