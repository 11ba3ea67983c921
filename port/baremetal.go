//go:build tinygo && baremetal

package port

import "errors"

var ErrNotImplemented = errors.New("port: not implemented on this target")

// Baremetal is a placeholder Machine for targets whose context-switch
// assembly has not been written yet. Every method panics; it exists so the
// kernel links on bare-metal builds and documents the surface a real target
// must provide: PRIMASK-style interrupt masking, an initial stack frame
// that enters the task trampoline, and a PendSV-style deferred switch.
type Baremetal struct{}

// NewBaremetal creates the stub machine.
func NewBaremetal() *Baremetal {
	return &Baremetal{}
}

func (*Baremetal) DisableInterrupts() IntrState         { panic(ErrNotImplemented) }
func (*Baremetal) RestoreInterrupts(IntrState)          { panic(ErrNotImplemented) }
func (*Baremetal) InitContext(*Context, func(), []byte) { panic(ErrNotImplemented) }
func (*Baremetal) Swap(save, load *Context)             { panic(ErrNotImplemented) }
func (*Baremetal) Exit(load *Context)                   { panic(ErrNotImplemented) }
func (*Baremetal) Start(load *Context)                  { panic(ErrNotImplemented) }
func (*Baremetal) PendSwitch()                          { panic(ErrNotImplemented) }
func (*Baremetal) SetSwitchHandler(func())              { panic(ErrNotImplemented) }
func (*Baremetal) Idle()                                { panic(ErrNotImplemented) }
