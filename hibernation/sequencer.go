package hibernation

import (
	"github.com/rs/xid"

	"github.com/sarchlab/inemuri/dpu"
	"github.com/sarchlab/inemuri/tracing"
)

// A Sequencer implements the idle check and the hardware suspend and
// resume sequences of a hibernator. There is a single production
// implementation; the indirection exists so that tests can substitute the
// hardware paths.
type Sequencer interface {
	// Check reports whether the pipeline has been idle long enough to
	// enter hibernation. Only the worker task calls it.
	Check(h *Hibernator) bool

	// Enter runs the hardware suspend sequence. Only the worker task
	// calls it, and only after Check returned true.
	Enter(h *Hibernator)

	// Exit cancels or waits out a pending entry and runs the hardware
	// resume sequence. It reports whether a resume was performed.
	Exit(h *Hibernator) bool
}

// pipelineSequencer is the production Sequencer.
type pipelineSequencer struct{}

// Check evaluates, in order, the inhibition count, the busy signal, and
// the debounce budget. The order matters: the trigger count must not move
// while the pipeline is blocked or a collaborator is busy.
func (s pipelineSequencer) Check(h *Hibernator) bool {
	if h.blockCount.Load() > 0 {
		return false
	}

	if h.busy != nil && h.busy.ReadBusyBits()&h.busyMask != 0 {
		return false
	}

	return h.triggerCount.Add(-1) == 0
}

// Enter suspends the pipeline. The inhibition count is raised for the
// duration of the sequence, and the state guard drops stale triggers that
// lost the race against a previous exit.
func (s pipelineSequencer) Enter(h *Hibernator) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.Block()
	defer h.Unblock()

	// Re-arm the debounce budget whether or not the sequence runs; an
	// aborted entry must not leave a drained budget behind.
	defer h.trigReset()

	if h.ctrl.State() != dpu.StateActive {
		return
	}

	id := xid.New().String()
	tracing.StartSpan(id, h, SpanKindTransition, TransitionEnter)

	if wb := h.ctrl.Writeback(); wb != nil {
		wb.EnterLowPower()
		h.wb = wb
	}

	h.ctrl.EnterHibernation()

	if link := h.ctrl.PanelLink(); link != nil {
		link.EnterULPS()
		h.link = link
	}

	h.ctrl.ReleaseBandwidth()
	h.power.Release()

	h.entries.Add(1)
	tracing.EndSpan(id, h)
}

// Exit wakes the pipeline. It raises the inhibition count so that no new
// entry can start, removes or waits out the pending entry task, and then
// resumes the hardware under the lock.
func (s pipelineSequencer) Exit(h *Hibernator) bool {
	h.Block()
	defer h.Unblock()

	// Bounded wait: the entry task never blocks on anything an exit
	// caller holds.
	h.sched.CancelSync(h.task)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.trigReset()

	if h.ctrl.State() != dpu.StateHibernating {
		return false
	}

	id := xid.New().String()
	tracing.StartSpan(id, h, SpanKindTransition, TransitionExit)

	h.power.Acquire()

	if h.link != nil {
		h.link.ExitULPS()
		h.link = nil
	}

	h.ctrl.ExitHibernation()

	if h.wb != nil {
		h.wb.ExitLowPower()
		h.wb = nil
	}

	h.exits.Add(1)
	tracing.EndSpan(id, h)

	return true
}

var _ Sequencer = pipelineSequencer{}
var _ tracing.NamedHookable = (*Hibernator)(nil)
