//go:build tinygo && baremetal

package port

// Context is the saved execution state of one task: stack pointer plus the
// callee-saved registers the switch code preserves. The layout must match
// the target's context-switch assembly.
type Context struct {
	sp   uintptr
	regs [8]uintptr
}
