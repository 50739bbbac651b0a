package tracing

import (
	"sync"
	"time"
)

// ResidencyTracer measures how long a domain stays in its low-power state.
// A span whose What equals downWhat transitions the domain into the state
// and one whose What equals upWhat transitions it out. Residency
// accumulates from the end of a down span to the start of the next up span,
// the interval during which the hardware is actually powered down.
type ResidencyTracer struct {
	timeTeller TimeTeller
	downWhat   string
	upWhat     string

	lock      sync.Mutex
	inflight  map[string]string
	down      bool
	downSince time.Time
	total     time.Duration
	periods   int
}

// NewResidencyTracer creates a ResidencyTracer that considers downWhat spans
// to power the domain down and upWhat spans to power it back up.
func NewResidencyTracer(
	timeTeller TimeTeller,
	downWhat string,
	upWhat string,
) *ResidencyTracer {
	t := &ResidencyTracer{
		timeTeller: timeTeller,
		downWhat:   downWhat,
		upWhat:     upWhat,
		inflight:   make(map[string]string),
	}
	return t
}

// StartSpan closes the current residency period when an up transition
// begins.
func (t *ResidencyTracer) StartSpan(span Span) {
	now := t.timeTeller.Now()

	t.lock.Lock()
	defer t.lock.Unlock()

	switch span.What {
	case t.downWhat:
		t.inflight[span.ID] = span.What
	case t.upWhat:
		if t.down {
			t.total += now.Sub(t.downSince)
			t.periods++
			t.down = false
		}
	}
}

// EndSpan opens a residency period when a down transition completes.
func (t *ResidencyTracer) EndSpan(span Span) {
	now := t.timeTeller.Now()

	t.lock.Lock()
	defer t.lock.Unlock()

	what, ok := t.inflight[span.ID]
	if !ok {
		return
	}
	delete(t.inflight, span.ID)

	if what == t.downWhat {
		t.down = true
		t.downSince = now
	}
}

// Residency returns the accumulated low-power time, including the open
// period if the domain is currently down.
func (t *ResidencyTracer) Residency() time.Duration {
	now := t.timeTeller.Now()

	t.lock.Lock()
	defer t.lock.Unlock()

	total := t.total
	if t.down {
		total += now.Sub(t.downSince)
	}

	return total
}

// Periods returns the number of completed residency periods.
func (t *ResidencyTracer) Periods() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.periods
}
