package kernel

import "keel/port"

// Critical sections.
//
// Every mutation of kernel state (TCBs, ready queues, sleep queue, wait
// lists) happens with interrupts masked. Each public entry point takes
// exactly one critical section and internal helpers run with the mask
// already held, so masked sections never nest inside the kernel itself.
// Pairing enter with a deferred leave guarantees the mask is restored on
// every exit path.
//
// leave is also where blocking actually happens: a pended context switch
// is serviced by the port as the mask is released, so an operation that
// marked its caller Blocked or Sleeping gives up the CPU in its deferred
// leave and resumes there when rescheduled.

func (k *Kernel) enter() port.IntrState {
	return k.mach.DisableInterrupts()
}

func (k *Kernel) leave(s port.IntrState) {
	k.mach.RestoreInterrupts(s)
}
