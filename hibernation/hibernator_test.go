package hibernation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	gomock "go.uber.org/mock/gomock"

	"github.com/sarchlab/inemuri/dpu"
	"github.com/sarchlab/inemuri/worker"
)

var _ = Describe("Hibernator", func() {
	var (
		mockCtrl *gomock.Controller
		ctrl     *MockController
		power    *MockPowerDomain
		sched    *MockScheduler
		seq      *MockSequencer
		h        *Hibernator
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		ctrl = NewMockController(mockCtrl)
		power = NewMockPowerDomain(mockCtrl)
		sched = NewMockScheduler(mockCtrl)
		seq = NewMockSequencer(mockCtrl)

		ctrl.EXPECT().Name().Return("DPU").AnyTimes()
		ctrl.EXPECT().RefreshRate().Return(60).AnyTimes()
		ctrl.EXPECT().State().Return(dpu.StateActive).AnyTimes()

		var err error
		h, err = MakeBuilder().
			WithController(ctrl).
			WithPowerDomain(power).
			WithScheduler(sched).
			WithSequencer(seq).
			WithConfig(Config{Enabled: true}).
			Register()
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should arm the debounce budget at registration", func() {
		Expect(h.triggerCount.Load()).To(Equal(int32(3)))
	})

	It("should fall back to the default refresh rate", func() {
		c := NewMockController(mockCtrl)
		c.EXPECT().Name().Return("DPU").AnyTimes()
		c.EXPECT().RefreshRate().Return(0).AnyTimes()

		h2, err := MakeBuilder().
			WithController(c).
			WithPowerDomain(power).
			WithScheduler(sched).
			WithSequencer(seq).
			WithConfig(Config{Enabled: true}).
			Register()

		Expect(err).To(BeNil())
		Expect(h2.triggerCount.Load()).To(Equal(int32(3)))
	})

	It("should never arm a budget below one opportunity", func() {
		c := NewMockController(mockCtrl)
		c.EXPECT().Name().Return("DPU").AnyTimes()
		c.EXPECT().RefreshRate().Return(1).AnyTimes()

		h2, err := MakeBuilder().
			WithController(c).
			WithPowerDomain(power).
			WithScheduler(sched).
			WithSequencer(seq).
			WithConfig(Config{Enabled: true}).
			Register()

		Expect(err).To(BeNil())
		Expect(h2.triggerCount.Load()).To(Equal(int32(1)))
	})

	It("should round the budget up for high refresh rates", func() {
		c := NewMockController(mockCtrl)
		c.EXPECT().Name().Return("DPU").AnyTimes()
		c.EXPECT().RefreshRate().Return(144).AnyTimes()

		h2, err := MakeBuilder().
			WithController(c).
			WithPowerDomain(power).
			WithScheduler(sched).
			WithSequencer(seq).
			WithConfig(Config{Enabled: true}).
			Register()

		Expect(err).To(BeNil())
		Expect(h2.triggerCount.Load()).To(Equal(int32(8)))
	})

	It("should schedule the idle check when a frame completes", func() {
		sched.EXPECT().Schedule(h.task).Return(true)

		h.NotifyFrameProcessed()
	})

	It("should tolerate redundant frame notifications", func() {
		sched.EXPECT().Schedule(h.task).Return(true)
		sched.EXPECT().Schedule(h.task).Return(false).Times(2)

		h.NotifyFrameProcessed()
		h.NotifyFrameProcessed()
		h.NotifyFrameProcessed()
	})

	It("should delegate a synchronous exit to the sequencer", func() {
		seq.EXPECT().Exit(h).Return(true)

		Expect(h.Exit()).To(BeTrue())
	})

	It("should pass a benign already-active status through", func() {
		seq.EXPECT().Exit(h).Return(false)

		Expect(h.Exit()).To(BeFalse())
	})

	It("should raise the block count before a forced exit", func() {
		seq.EXPECT().Exit(h).DoAndReturn(func(hh *Hibernator) bool {
			Expect(hh.blockCount.Load()).To(Equal(int32(1)))
			return true
		})

		Expect(h.BlockExit()).To(BeTrue())

		// The inhibition survives the call; releasing it is on the caller.
		Expect(h.blockCount.Load()).To(Equal(int32(1)))
		h.Unblock()
	})

	It("should restore the block count over matching block and unblock pairs", func() {
		h.Block()
		h.Block()
		h.Unblock()
		h.Block()
		h.Unblock()
		h.Unblock()

		Expect(h.blockCount.Load()).To(Equal(int32(0)))
	})

	It("should panic on an unblock without a matching block", func() {
		Expect(func() { h.Unblock() }).To(Panic())
	})

	It("should snapshot its counters in a status", func() {
		h.Block()

		status := h.Status()

		Expect(status.Name).To(Equal("DPU.Hibernator"))
		Expect(status.State).To(Equal("Active"))
		Expect(status.BlockCount).To(Equal(int32(1)))
		Expect(status.TriggerCount).To(Equal(int32(3)))
		Expect(status.Entries).To(Equal(uint64(0)))
		Expect(status.Exits).To(Equal(uint64(0)))

		h.Unblock()
	})

	It("should run the idle check and enter from the scheduled task", func() {
		w := worker.New("HibWorker")
		defer w.Stop()

		h2, err := MakeBuilder().
			WithController(ctrl).
			WithPowerDomain(power).
			WithScheduler(w).
			WithSequencer(seq).
			WithConfig(Config{Enabled: true}).
			Register()
		Expect(err).To(BeNil())

		entered := make(chan struct{})
		gomock.InOrder(
			seq.EXPECT().Check(h2).Return(true),
			seq.EXPECT().Enter(h2).Do(func(*Hibernator) { close(entered) }),
		)

		h2.NotifyFrameProcessed()

		Eventually(entered).Should(BeClosed())
	})

	It("should not enter when the idle check fails", func() {
		w := worker.New("HibWorker")
		defer w.Stop()

		h2, err := MakeBuilder().
			WithController(ctrl).
			WithPowerDomain(power).
			WithScheduler(w).
			WithSequencer(seq).
			WithConfig(Config{Enabled: true}).
			Register()
		Expect(err).To(BeNil())

		checked := make(chan struct{})
		seq.EXPECT().Check(h2).DoAndReturn(func(*Hibernator) bool {
			close(checked)
			return false
		})

		h2.NotifyFrameProcessed()

		Eventually(checked).Should(BeClosed())
	})
})
