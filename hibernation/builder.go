package hibernation

import (
	"fmt"

	"github.com/sarchlab/inemuri/busyreg"
	"github.com/sarchlab/inemuri/dpu"
	"github.com/sarchlab/inemuri/worker"
)

// Config is the hibernation-related slice of a pipeline's device
// description, read once at registration.
type Config struct {
	// Enabled is the capability flag. When false, Register reports that
	// the pipeline does not support hibernation.
	Enabled bool

	// BusySignalPath and BusySignalOffset locate the optional busy-status
	// register. An empty path means no busy signal is consulted.
	BusySignalPath   string
	BusySignalOffset int64

	// BusySignalMask selects the busy bits. Zero means DefaultBusyMask.
	BusySignalMask uint32
}

// A Builder creates hibernators.
type Builder struct {
	ctrl  dpu.Controller
	power dpu.PowerDomain
	sched worker.Scheduler
	seq   Sequencer
	busy  dpu.BusySignal
	cfg   Config
}

// MakeBuilder creates a Builder with the production sequencer installed.
func MakeBuilder() Builder {
	return Builder{
		seq: pipelineSequencer{},
	}
}

// WithController sets the display controller to manage.
func (b Builder) WithController(c dpu.Controller) Builder {
	b.ctrl = c
	return b
}

// WithPowerDomain sets the runtime power domain the pipeline lives in.
func (b Builder) WithPowerDomain(p dpu.PowerDomain) Builder {
	b.power = p
	return b
}

// WithScheduler sets the worker that runs the deferred entry task.
func (b Builder) WithScheduler(s worker.Scheduler) Builder {
	b.sched = s
	return b
}

// WithConfig sets the device-description fields read at registration.
func (b Builder) WithConfig(cfg Config) Builder {
	b.cfg = cfg
	return b
}

// WithSequencer replaces the production sequencer. Tests use this to
// substitute the hardware paths.
func (b Builder) WithSequencer(seq Sequencer) Builder {
	b.seq = seq
	return b
}

// WithBusySignal injects a busy signal directly instead of mapping the
// register the Config names.
func (b Builder) WithBusySignal(sig dpu.BusySignal) Builder {
	b.busy = sig
	return b
}

// Register creates the hibernator for the configured pipeline. It returns
// (nil, nil) when the capability flag is unset: the pipeline simply runs
// without hibernation. A busy-signal register that cannot be mapped fails
// the registration.
//
// The entry task is prepared but not scheduled; nothing runs until the
// pipeline starts reporting idle opportunities.
func (b Builder) Register() (*Hibernator, error) {
	if !b.cfg.Enabled {
		return nil, nil
	}

	b.collaboratorsMustBeSet()

	h := &Hibernator{
		name:  b.ctrl.Name() + ".Hibernator",
		seq:   b.seq,
		ctrl:  b.ctrl,
		power: b.power,
		sched: b.sched,
	}

	h.busy = b.busy
	if h.busy == nil && b.cfg.BusySignalPath != "" {
		reg, err := busyreg.Map(b.cfg.BusySignalPath, b.cfg.BusySignalOffset)
		if err != nil {
			return nil, fmt.Errorf("hibernation: map busy signal: %w", err)
		}

		h.busy = reg
		h.busyCloser = reg
	}

	h.busyMask = b.cfg.BusySignalMask
	if h.busyMask == 0 {
		h.busyMask = DefaultBusyMask
	}

	h.task = worker.NewTask(func() {
		if h.seq.Check(h) {
			h.seq.Enter(h)
		}
	})

	h.trigReset()

	return h, nil
}

func (b Builder) collaboratorsMustBeSet() {
	if b.ctrl == nil {
		panic("hibernation: controller is not set")
	}

	if b.power == nil {
		panic("hibernation: power domain is not set")
	}

	if b.sched == nil {
		panic("hibernation: scheduler is not set")
	}
}
