package tracing

// A Tracer can collect transition spans. StartSpan and EndSpan are called
// from whichever goroutine drives the traced sequence; tracers that keep
// state synchronize internally.
type Tracer interface {
	StartSpan(span Span)
	EndSpan(span Span)
}
