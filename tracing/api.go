package tracing

import (
	"fmt"
	"reflect"

	"github.com/sarchlab/inemuri/hooking"
)

// NamedHookable represents something that both has a name and can be hooked.
type NamedHookable interface {
	Name() string
	hooking.Hookable
}

// A list of hook positions for the hooks to apply to.
var (
	HookPosSpanStart = &hooking.HookPos{Name: "SpanStart"}
	HookPosSpanEnd   = &hooking.HookPos{Name: "SpanEnd"}
)

// StartSpan notifies the hooks that hook to the domain about the start of a
// transition span.
func StartSpan(
	id string,
	domain NamedHookable,
	kind string,
	what string,
) {
	if domain.NumHooks() == 0 {
		return
	}

	allRequiredFieldsMustBeNotEmpty(id, domain, kind, what)

	span := Span{
		ID:    id,
		Kind:  kind,
		What:  what,
		Where: domain.Name(),
	}
	ctx := hooking.HookCtx{
		Domain: domain,
		Pos:    HookPosSpanStart,
		Item:   span,
	}
	domain.InvokeHook(ctx)
}

// EndSpan notifies the hooks that hook to the domain about the end of the
// span identified by id.
func EndSpan(id string, domain NamedHookable) {
	if domain.NumHooks() == 0 {
		return
	}

	span := Span{ID: id}
	ctx := hooking.HookCtx{
		Domain: domain,
		Pos:    HookPosSpanEnd,
		Item:   span,
	}
	domain.InvokeHook(ctx)
}

func allRequiredFieldsMustBeNotEmpty(
	id string,
	domain NamedHookable,
	kind string,
	what string,
) {
	if id == "" {
		panic("id must not be empty")
	}

	if domain.Name() == "" {
		panic("domain must have a name")
	}

	if kind == "" {
		panic("kind must not be empty")
	}

	if what == "" {
		panic("what must not be empty")
	}
}

// CollectTransitions lets the tracer collect the spans a domain produces.
// Attaching the same tracer to the same domain twice is a programmer error.
func CollectTransitions(domain NamedHookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*spanHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain %s already has tracer %s",
				domain.Name(), reflect.TypeOf(tracer)))
		}
	}

	h := spanHook{t: tracer}
	domain.AcceptHook(&h)
}

// A spanHook is a hook that forwards spans to a tracer.
type spanHook struct {
	t Tracer
}

// Func calls the tracer interfaces when the hook is triggered.
func (h *spanHook) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case HookPosSpanStart:
		h.t.StartSpan(ctx.Item.(Span))
	case HookPosSpanEnd:
		h.t.EndSpan(ctx.Item.(Span))
	}
}
