// Package port is the machine boundary of the kernel.
//
// The scheduler core never touches CPU registers or the interrupt
// controller directly; everything target-specific is reached through the
// Machine interface. A port supplies interrupt masking, opaque context
// save/restore, and the pended-switch hook the core uses to defer context
// switches out of interrupt context.
package port

// IntrState is the opaque prior interrupt-enable state returned by
// DisableInterrupts and accepted by RestoreInterrupts. Restoring must put
// the mask back exactly as it was, so masked sections nest correctly.
type IntrState uint8

// Machine is the set of primitives the kernel core requires from a target.
//
// All methods are called from kernel code with well-defined mask state:
// InitContext, Swap, Exit and Start run with interrupts masked; PendSwitch
// may be called from any context, including interrupt handlers.
type Machine interface {
	// DisableInterrupts masks the interrupt sources that can call into
	// the kernel and returns the prior mask state.
	DisableInterrupts() IntrState

	// RestoreInterrupts restores a mask state saved by DisableInterrupts.
	// Restoring the outermost state services a pending context switch
	// before interrupts are re-enabled.
	RestoreInterrupts(IntrState)

	// InitContext builds the initial saved context so that the first
	// swap-in begins execution at entry on the given stack.
	InitContext(ctx *Context, entry func(), stack []byte)

	// Swap saves the live CPU state into save and resumes load. It
	// returns when some later switch resumes the saved context. The mask
	// state travels with the CPU: the resumed context continues with
	// interrupts masked.
	Swap(save, load *Context)

	// Exit abandons the calling context without saving it and resumes
	// load. It never returns; the dropped context is never resumed.
	Exit(load *Context)

	// Start hands the CPU to the first task. The caller must hold the
	// interrupt mask; the started context releases it. On targets where
	// the boot stack is abandoned this never returns.
	Start(load *Context)

	// PendSwitch requests a deferred context switch. The registered
	// switch handler runs, with interrupts masked, once the mask is next
	// released outside interrupt context.
	PendSwitch()

	// SetSwitchHandler registers the kernel's switch handler. Must be
	// called exactly once, before Start.
	SetSwitchHandler(func())

	// Idle waits until an interrupt may have made a task runnable. Only
	// the kernel's idle task calls this, outside any masked section.
	Idle()
}
