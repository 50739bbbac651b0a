// Package hooking lets power-management domains expose the points where
// hardware state changes so that loggers and tracers can observe them
// without the domains knowing who is listening.
package hooking

// HookPos identifies a position in a domain's lifecycle where hooks fire.
// Positions are compared by pointer identity; packages declare their
// positions as package-level variables next to the code that fires them.
type HookPos struct {
	Name string
}

// HookCtx carries everything a hook needs about the site that fired it.
type HookCtx struct {
	// Domain is the hookable object raising the hook.
	Domain Hookable

	// Pos identifies where in the domain's lifecycle the hook fires.
	Pos *HookPos

	// Item is the primary subject of the hook, such as a transition span.
	Item any

	// Detail holds optional auxiliary data; hook sites may leave it nil.
	Detail any
}

// Hookable is an object that accepts hooks.
type Hookable interface {
	// AcceptHook registers a hook. Registration must happen during
	// single-threaded setup, before the domain starts transitioning;
	// hooks cannot be removed afterwards. A hook that should stop
	// reacting has to disable itself internally.
	AcceptHook(hook Hook)

	// NumHooks returns the number of hooks registered.
	NumHooks() int

	// Hooks returns all the hooks registered.
	Hooks() []Hook

	// InvokeHook triggers the registered hooks.
	InvokeHook(ctx HookCtx)
}

// A Hook is a piece of program invoked by a hookable object.
type Hook interface {
	// Func determines what to do when the hook is invoked.
	Func(ctx HookCtx)
}

// HookableBase provides the common hook bookkeeping for types that
// implement Hookable.
type HookableBase struct {
	hooks []Hook
}

// NewHookableBase creates a HookableBase with no hooks attached.
func NewHookableBase() *HookableBase {
	h := new(HookableBase)
	h.hooks = make([]Hook, 0)

	return h
}

// NumHooks returns the number of hooks registered.
func (h *HookableBase) NumHooks() int {
	return len(h.hooks)
}

// Hooks returns all the hooks registered.
func (h *HookableBase) Hooks() []Hook {
	return h.hooks
}

// AcceptHook registers a hook. Attaching the same hook twice is a
// programmer error.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.mustNotHaveHook(hook)
	h.hooks = append(h.hooks, hook)
}

func (h *HookableBase) mustNotHaveHook(hook Hook) {
	for _, registered := range h.hooks {
		if registered == hook {
			panic("duplicated hook")
		}
	}
}

// InvokeHook triggers the registered hooks in registration order.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.hooks {
		hook.Func(ctx)
	}
}

var _ Hookable = (*HookableBase)(nil)
