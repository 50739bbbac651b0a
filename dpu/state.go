package dpu

// State is the power state a display controller reports.
type State int

// The states a display controller can be in. A controller sits in
// StateTransitional only while a mode-set or a power sequence is in flight.
const (
	StateActive State = iota
	StateHibernating
	StateTransitional
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateActive:
		return "Active"
	case StateHibernating:
		return "Hibernating"
	case StateTransitional:
		return "Transitional"
	default:
		return "Unknown"
	}
}
