package hibernation

import (
	"io"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/inemuri/dpu"
	"github.com/sarchlab/inemuri/hooking"
	"github.com/sarchlab/inemuri/worker"
)

// Debounce parameters. The budget is the number of consecutive idle
// opportunities that must elapse before entry is allowed: one opportunity
// per frame, covering at least entryMinTimeMS of idleness at the current
// refresh rate.
const (
	entryDefaultFPS = 60
	entryMinTimeMS  = 50
	entryMinCount   = 1
)

// DefaultBusyMask selects the bits of the busy-signal word that veto entry
// when the configuration does not name a mask.
const DefaultBusyMask = 0xF

// Span vocabulary the sequencers use when publishing transitions to the
// attached hooks.
const (
	SpanKindTransition = "transition"
	TransitionEnter    = "enter"
	TransitionExit     = "exit"
)

// A Hibernator suspends an idle display pipeline and resumes it on demand.
// Create one with a Builder.
type Hibernator struct {
	hooking.HookableBase

	name string

	// mu serializes the enter and exit hardware sequences against each
	// other. Block, Unblock and the idle check never take it.
	mu sync.Mutex

	blockCount   atomic.Int32
	triggerCount atomic.Int32

	seq   Sequencer
	ctrl  dpu.Controller
	power dpu.PowerDomain

	busy       dpu.BusySignal
	busyMask   uint32
	busyCloser io.Closer

	// wb and link are latched by the entry sequence for the matching
	// exit. Guarded by mu.
	wb   dpu.Writeback
	link dpu.PanelLink

	sched worker.Scheduler
	task  *worker.Task

	entries atomic.Uint64
	exits   atomic.Uint64
}

// Name returns the name of the hibernator.
func (h *Hibernator) Name() string {
	return h.name
}

// NotifyFrameProcessed marks one idle opportunity: the pipeline finished a
// frame with nothing queued behind it. It schedules the idle check on the
// worker; notifying while the check is already pending or running is a
// no-op, so callers may invoke it from every frame-completion interrupt.
func (h *Hibernator) NotifyFrameProcessed() {
	h.sched.Schedule(h.task)
}

// Block inhibits hibernation entry until a matching Unblock. It is safe in
// latency-sensitive contexts: the count is atomic and the sequencing lock
// is never taken. Block does not wake hardware that is already
// hibernating; callers that need the hardware awake use Exit or BlockExit.
func (h *Hibernator) Block() {
	h.blockCount.Add(1)
}

// Unblock releases one inhibition. Unblocking more often than blocking is
// a programmer error.
func (h *Hibernator) Unblock() {
	if h.blockCount.Add(-1) < 0 {
		panic("hibernation: unblock without matching block")
	}
}

// Exit wakes the pipeline synchronously. It cancels a pending entry, waits
// out a running one, and resumes the hardware. On return the pipeline is
// active and the debounce budget is re-armed. It reports whether a resume
// was performed; false means the pipeline was already awake.
func (h *Hibernator) Exit() bool {
	return h.seq.Exit(h)
}

// BlockExit raises the inhibition count and then forces an exit, reporting
// whether the pipeline was hibernating beforehand. The caller must
// eventually call Unblock.
func (h *Hibernator) BlockExit() bool {
	h.Block()

	return h.seq.Exit(h)
}

// A Status is a point-in-time snapshot of a hibernator. The counts are
// read atomically but not as one unit; treat them as diagnostics, not as a
// consistent view.
type Status struct {
	Name         string `json:"name"`
	State        string `json:"state"`
	BlockCount   int32  `json:"block_count"`
	TriggerCount int32  `json:"trigger_count"`
	Entries      uint64 `json:"entries"`
	Exits        uint64 `json:"exits"`
}

// Status reports the hibernator's counters and the observed controller
// state.
func (h *Hibernator) Status() Status {
	return Status{
		Name:         h.name,
		State:        h.ctrl.State().String(),
		BlockCount:   h.blockCount.Load(),
		TriggerCount: h.triggerCount.Load(),
		Entries:      h.entries.Load(),
		Exits:        h.exits.Load(),
	}
}

// Destroy releases the mapped busy-signal register, if any. The pending
// work item belongs to the scheduler and is not touched. The hibernator
// must not be used afterwards.
func (h *Hibernator) Destroy() {
	if h.busyCloser == nil {
		return
	}

	_ = h.busyCloser.Close()
	h.busyCloser = nil
}

// trigReset re-arms the debounce budget from the current refresh rate. A
// pipeline that reports no rate is assumed to run at the default.
func (h *Hibernator) trigReset() {
	fps := h.ctrl.RefreshRate()
	if fps <= 0 {
		fps = entryDefaultFPS
	}

	budget := (fps*entryMinTimeMS + 999) / 1000
	if budget < entryMinCount {
		budget = entryMinCount
	}

	h.triggerCount.Store(int32(budget))
}
