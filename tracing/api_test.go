package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/inemuri/hooking"
)

type sampleDomain struct {
	hooking.HookableBase
}

func (d *sampleDomain) Name() string {
	return "sample"
}

var _ = Describe("Api", func() {
	var (
		mockCtrl *gomock.Controller
		domain   *MockNamedHookable
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		domain = NewMockNamedHookable(mockCtrl)
		domain.EXPECT().NumHooks().Return(1).AnyTimes()
		domain.EXPECT().InvokeHook(gomock.Any()).AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should panic if ID is not given", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartSpan("", domain, "kind", "what")
		}).Should(Panic())
	})

	It("should panic if the domain has no name", func() {
		domain.EXPECT().Name().Return("").AnyTimes()
		Expect(func() {
			StartSpan("id", domain, "kind", "what")
		}).Should(Panic())
	})

	It("should panic if kind is empty", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartSpan("id", domain, "", "what")
		}).Should(Panic())
	})

	It("should panic if what is empty", func() {
		domain.EXPECT().Name().Return("domain").AnyTimes()
		Expect(func() {
			StartSpan("id", domain, "kind", "")
		}).Should(Panic())
	})

	It("should do nothing when no hook is attached", func() {
		d := NewMockNamedHookable(mockCtrl)
		d.EXPECT().NumHooks().Return(0).Times(2)

		StartSpan("id", d, "kind", "what")
		EndSpan("id", d)
	})
})

var _ = Describe("CollectTransitions", func() {
	It("should attach the tracer as a hook", func() {
		d := &sampleDomain{}
		tracer := NewSpanRecorder(WallClock{}, nil)

		CollectTransitions(d, tracer)

		Expect(d.NumHooks()).To(Equal(1))
	})

	It("should panic when the same tracer is attached twice", func() {
		d := &sampleDomain{}
		tracer := NewSpanRecorder(WallClock{}, nil)

		CollectTransitions(d, tracer)

		Expect(func() {
			CollectTransitions(d, tracer)
		}).To(Panic())
	})

	It("should forward start and end positions to the tracer", func() {
		d := &sampleDomain{}
		recorder := NewSpanRecorder(WallClock{}, nil)
		CollectTransitions(d, recorder)

		StartSpan("span-1", d, "transition", "enter")
		EndSpan("span-1", d)

		spans := recorder.Spans()
		Expect(spans).To(HaveLen(1))
		Expect(spans[0].ID).To(Equal("span-1"))
		Expect(spans[0].Kind).To(Equal("transition"))
		Expect(spans[0].What).To(Equal("enter"))
		Expect(spans[0].Where).To(Equal("sample"))
	})
})
