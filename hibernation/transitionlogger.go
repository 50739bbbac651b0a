package hibernation

import (
	"log"
	"sync"

	"github.com/sarchlab/inemuri/hooking"
	"github.com/sarchlab/inemuri/tracing"
)

// A TransitionLogger is a hook that writes a line when a power transition
// starts and another when it completes, mirroring the in/out event pairs
// display driver stacks traditionally log.
type TransitionLogger struct {
	*log.Logger

	mu       sync.Mutex
	inflight map[string]tracing.Span
}

// NewTransitionLogger returns a TransitionLogger that writes into logger.
func NewTransitionLogger(logger *log.Logger) *TransitionLogger {
	l := &TransitionLogger{
		inflight: make(map[string]tracing.Span),
	}
	l.Logger = logger

	return l
}

// Func writes the transition information into the logger.
func (l *TransitionLogger) Func(ctx hooking.HookCtx) {
	span, ok := ctx.Item.(tracing.Span)
	if !ok {
		return
	}

	switch ctx.Pos {
	case tracing.HookPosSpanStart:
		l.mu.Lock()
		l.inflight[span.ID] = span
		l.mu.Unlock()

		l.Printf("%s, %s in", span.Where, span.What)
	case tracing.HookPosSpanEnd:
		l.mu.Lock()
		original, found := l.inflight[span.ID]
		delete(l.inflight, span.ID)
		l.mu.Unlock()

		if !found {
			return
		}

		l.Printf("%s, %s out", original.Where, original.What)
	}
}

var _ hooking.Hook = (*TransitionLogger)(nil)
