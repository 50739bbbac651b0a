package tracing

import "sync"

// SpanRecorder keeps every completed span in memory. It is mostly useful in
// tests and short-lived tools; long-running pipelines should persist spans
// through a StoreTracer instead.
type SpanRecorder struct {
	timeTeller TimeTeller
	filter     SpanFilter

	lock     sync.Mutex
	inflight map[string]Span
	spans    []Span
}

// NewSpanRecorder creates a SpanRecorder. The filter may be nil, in which
// case every span is recorded.
func NewSpanRecorder(timeTeller TimeTeller, filter SpanFilter) *SpanRecorder {
	r := &SpanRecorder{
		timeTeller: timeTeller,
		filter:     filter,
		inflight:   make(map[string]Span),
	}
	return r
}

// StartSpan records the span start time.
func (r *SpanRecorder) StartSpan(span Span) {
	span.Start = r.timeTeller.Now()

	if r.filter != nil && !r.filter(span) {
		return
	}

	r.lock.Lock()
	r.inflight[span.ID] = span
	r.lock.Unlock()
}

// EndSpan records the span end time and stores the completed span.
func (r *SpanRecorder) EndSpan(span Span) {
	end := r.timeTeller.Now()

	r.lock.Lock()
	original, ok := r.inflight[span.ID]
	if !ok {
		r.lock.Unlock()
		return
	}

	original.End = end
	delete(r.inflight, span.ID)
	r.spans = append(r.spans, original)
	r.lock.Unlock()
}

// Spans returns a copy of the spans completed so far.
func (r *SpanRecorder) Spans() []Span {
	r.lock.Lock()
	spans := make([]Span, len(r.spans))
	copy(spans, r.spans)
	r.lock.Unlock()

	return spans
}
