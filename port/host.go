//go:build !tinygo

package port

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// Host is the development-machine port.
//
// The interrupt mask is a mutex shared between task goroutines and the tick
// driver, and a context switch is a goroutine hand-off: Swap unparks the
// target and parks the caller, so mask ownership travels with the CPU the
// same way it does across a real context switch.
//
// Host limitation: an interrupt cannot preempt a running task mid-flight.
// A switch pended from tick context is serviced at the task's next kernel
// entry, or by the idle task when nothing else runs. Preemption is exact at
// every kernel suspension point, best-effort between them.
type Host struct {
	mask     sync.Mutex
	pend     atomic.Bool
	switchFn func()
	wfi      chan struct{}
}

// NewHost creates a host machine.
func NewHost() *Host {
	return &Host{wfi: make(chan struct{}, 1)}
}

// DisableInterrupts takes the interrupt mask. Masked sections on the host
// never nest: the kernel takes one critical section per entry point and the
// tick driver masks around the whole tick handler.
func (h *Host) DisableInterrupts() IntrState {
	h.mask.Lock()
	return 0
}

// RestoreInterrupts services any pended switch and releases the mask.
func (h *Host) RestoreInterrupts(IntrState) {
	for h.pend.CompareAndSwap(true, false) {
		if h.switchFn != nil {
			h.switchFn()
		}
	}
	h.mask.Unlock()
}

// InitContext parks a new goroutine that will run entry when first
// swapped in. The kernel-assigned stack is unused on the host; goroutine
// stacks belong to the Go runtime.
func (h *Host) InitContext(ctx *Context, entry func(), stack []byte) {
	_ = stack
	ctx.resume = make(chan struct{})
	go func() {
		<-ctx.resume
		// A freshly built frame starts with interrupts enabled.
		h.RestoreInterrupts(0)
		entry()
	}()
}

// Swap hands the CPU (and the held mask) to load and parks the caller until
// its context is resumed.
func (h *Host) Swap(save, load *Context) {
	load.resume <- struct{}{}
	<-save.resume
}

// Exit resumes load and abandons the calling goroutine.
func (h *Host) Exit(load *Context) {
	load.resume <- struct{}{}
	runtime.Goexit()
}

// Start unparks the first task. The caller's mask transfers to it; Start
// returns on the host, leaving the boot goroutine outside kernel time.
func (h *Host) Start(load *Context) {
	load.resume <- struct{}{}
}

// PendSwitch marks a context switch as pending.
func (h *Host) PendSwitch() {
	h.pend.Store(true)
}

// SetSwitchHandler registers the kernel's switch handler.
func (h *Host) SetSwitchHandler(fn func()) {
	h.switchFn = fn
}

// Idle blocks until the tick driver signals that an interrupt happened.
func (h *Host) Idle() {
	<-h.wfi
}

// RunTicker invokes onTick at the given rate with the interrupt mask held,
// playing the role of the timer interrupt. It returns when ctx is
// cancelled. hz values below 1 fall back to 100.
func (h *Host) RunTicker(ctx context.Context, hz int, onTick func()) error {
	if hz <= 0 {
		hz = 100
	}
	t := time.NewTicker(time.Second / time.Duration(hz))
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			h.mask.Lock()
			onTick()
			h.mask.Unlock()
			select {
			case h.wfi <- struct{}{}:
			default:
			}
		}
	}
}
