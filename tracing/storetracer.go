package tracing

import "sync"

// A SpanWriter persists completed spans. Implementations buffer internally
// and write out when Flush is called.
type SpanWriter interface {
	Write(span Span)
	Flush()
}

// StoreTracer stamps spans through a TimeTeller and hands the completed
// ones to a writer backend. Different backends store spans in different
// places, such as a CSV file or a SQLite database.
type StoreTracer struct {
	mu         sync.Mutex
	timeTeller TimeTeller
	writer     SpanWriter
	inflight   map[string]Span
}

// NewStoreTracer creates a StoreTracer that persists spans through writer.
func NewStoreTracer(timeTeller TimeTeller, writer SpanWriter) *StoreTracer {
	t := &StoreTracer{
		timeTeller: timeTeller,
		writer:     writer,
		inflight:   make(map[string]Span),
	}
	return t
}

// StartSpan records the span start time.
func (t *StoreTracer) StartSpan(span Span) {
	t.mu.Lock()
	defer t.mu.Unlock()

	span.Start = t.timeTeller.Now()
	t.inflight[span.ID] = span
}

// EndSpan completes the span and writes it to the backend.
func (t *StoreTracer) EndSpan(span Span) {
	t.mu.Lock()
	defer t.mu.Unlock()

	original, ok := t.inflight[span.ID]
	if !ok {
		return
	}

	original.End = t.timeTeller.Now()
	delete(t.inflight, span.ID)
	t.writer.Write(original)
}
