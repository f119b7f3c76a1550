package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = &HookableBase{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in registration order", func() {
		first := NewMockHook(mockCtrl)
		second := NewMockHook(mockCtrl)
		pos := &HookPos{Name: "Test"}
		ctx := HookCtx{Domain: base, Pos: pos, Item: 42}

		gomock.InOrder(
			first.EXPECT().Func(ctx),
			second.EXPECT().Func(ctx),
		)

		base.AcceptHook(first)
		base.AcceptHook(second)
		base.InvokeHook(ctx)

		Expect(base.NumHooks()).To(Equal(2))
		Expect(base.Hooks()).To(HaveLen(2))
	})

	It("should panic on duplicated hook", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should wrap plain functions", func() {
		var seen []string
		f := func(ctx HookCtx) { seen = append(seen, ctx.Pos.Name) }

		base.AcceptHook(NewHookFunc(f))
		base.AcceptHook(NewHookFunc(f))
		base.InvokeHook(HookCtx{Pos: &HookPos{Name: "A"}})

		Expect(seen).To(Equal([]string{"A", "A"}))
	})
})
