//go:build !tinygo

package port

// Context is the saved execution state of one task.
//
// On the host a task context is a parked goroutine: resume carries the CPU
// hand-off, and the goroutine's own stack plays the role of the saved
// register file. The kernel-assigned stack slice is kept only so stack
// guard checks behave the same as on a real target.
type Context struct {
	resume chan struct{}
}
