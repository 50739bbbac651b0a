package dpu

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Controller is the display pipeline hardware that can be suspended and
// resumed. It is the primary collaborator of the hibernation layer.
type Controller interface {
	Named

	// State reports the controller's current power state.
	State() State

	// RefreshRate returns the active refresh rate in frames per second.
	// A controller that does not know its rate yet returns 0.
	RefreshRate() int

	// EnterHibernation flushes pending composition and stops the pipeline
	// clocks. Only called while the controller is active.
	EnterHibernation()

	// ExitHibernation restarts the pipeline clocks and compositing. Only
	// called while the controller is hibernating.
	ExitHibernation()

	// ReleaseBandwidth drops any bus-bandwidth reservation the pipeline
	// holds. The reservation is re-established by the pipeline itself on
	// the next frame, not by the hibernation layer.
	ReleaseBandwidth()

	// Writeback returns the attached writeback path, or nil.
	Writeback() Writeback

	// PanelLink returns the attached panel link, or nil.
	PanelLink() PanelLink
}

// A Writeback is the optional memory-writeback path of a pipeline.
type Writeback interface {
	EnterLowPower()
	ExitLowPower()
}

// A PanelLink is the optional panel transport of a pipeline. Its
// ultra-low-power state retains just enough signaling for a fast wake.
type PanelLink interface {
	EnterULPS()
	ExitULPS()
}

// A PowerDomain is the runtime power domain the pipeline hardware lives in.
// Acquire and Release may block while the platform sequences the domain.
type PowerDomain interface {
	Acquire()
	Release()
	Active() bool
}

// A BusySignal reports activity of a collaborating hardware block that must
// veto hibernation entry, such as a camera pipe sharing the data path. The
// returned bits are interpreted against a mask owned by the caller.
type BusySignal interface {
	ReadBusyBits() uint32
}
