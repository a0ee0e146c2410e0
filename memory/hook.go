package memory

// HookPos names a point in a memory access where hooks are invoked.
type HookPos struct {
	Name string
}

// HookPosRead triggers after a word is read.
var HookPosRead = &HookPos{Name: "read"}

// HookPosWrite triggers after a word is written. The hook context carries the
// overwritten value as its Detail.
var HookPosWrite = &HookPos{Name: "write"}

// Access is the item of the hook context of read and write hooks.
type Access struct {
	Address uint32
	Value   uint32
}

// HookCtx describes the access that triggered a hook.
type HookCtx struct {
	Domain Hookable
	Pos    *HookPos
	Item   interface{}
	Detail interface{}
}

// Hookable is implemented by anything that can carry hooks.
type Hookable interface {
	AcceptHook(hook Hook)
}

// A Hook observes memory accesses.
type Hook interface {
	Func(ctx HookCtx)
}

// HookableBase keeps a list of hooks and invokes them in registration order.
type HookableBase struct {
	Hooks []Hook
}

// AcceptHook registers a hook.
func (h *HookableBase) AcceptHook(hook Hook) {
	h.Hooks = append(h.Hooks, hook)
}

// NumHooks returns the number of registered hooks.
func (h *HookableBase) NumHooks() int {
	return len(h.Hooks)
}

// InvokeHook calls every registered hook with ctx.
func (h *HookableBase) InvokeHook(ctx HookCtx) {
	for _, hook := range h.Hooks {
		hook.Func(ctx)
	}
}
