package tracing

import "time"

// A Span is one traced pass over a hardware sequencing path. It lasts from
// the moment a sequencer commits to the transition until the hardware has
// settled in the new state.
type Span struct {
	ID    string    `json:"id"`
	Kind  string    `json:"kind"`
	What  string    `json:"what"`
	Where string    `json:"where"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// SpanFilter is a function that selects interesting spans. If this function
// returns true, the span is considered useful.
type SpanFilter func(s Span) bool

// Stored span times are unix seconds so that residency math can be done
// directly in SQL.
func timeToSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}

	return float64(t.UnixNano()) / 1e9
}

func secondsToTime(s float64) time.Time {
	if s == 0 {
		return time.Time{}
	}

	return time.Unix(0, int64(s*1e9))
}
