package kernel

import (
	"testing"

	"keel/port"
)

// fakeMachine drives the kernel from the test goroutine. Context swaps are
// recorded instead of performed, so after a switch the test simply
// continues executing as the newly Running task and can inspect scheduler
// state directly. Pended switches are serviced when the outermost mask
// level is restored, like a real port.
type fakeMachine struct {
	depth    int
	switchFn func()
	pend     bool

	inits int
	swaps int
	exits int
	idles int
}

func (m *fakeMachine) DisableInterrupts() port.IntrState {
	m.depth++
	if m.depth > 1 {
		return 1
	}
	return 0
}

func (m *fakeMachine) RestoreInterrupts(s port.IntrState) {
	if s == 1 {
		m.depth--
		return
	}
	for m.pend && m.switchFn != nil {
		m.pend = false
		m.switchFn()
	}
	m.depth = 0
}

func (m *fakeMachine) InitContext(ctx *port.Context, entry func(), stack []byte) {
	m.inits++
}

func (m *fakeMachine) Swap(save, load *port.Context) {
	m.swaps++
}

func (m *fakeMachine) Exit(load *port.Context) {
	m.exits++
}

func (m *fakeMachine) Start(load *port.Context) {
	// The first task runs with interrupts enabled.
	m.RestoreInterrupts(0)
}

func (m *fakeMachine) PendSwitch() {
	m.pend = true
}

func (m *fakeMachine) SetSwitchHandler(fn func()) {
	m.switchFn = fn
}

func (m *fakeMachine) Idle() {
	m.idles++
}

// irq runs fn the way a port runs an interrupt handler: masked for the
// duration, any pended switch serviced on return.
func (m *fakeMachine) irq(fn func()) {
	s := m.DisableInterrupts()
	fn()
	m.RestoreInterrupts(s)
}

func newTestKernel(t *testing.T) (*Kernel, *fakeMachine) {
	t.Helper()
	m := &fakeMachine{}
	k, err := New(m, Config{Arena: make([]byte, 64<<10)})
	if err != nil {
		t.Fatalf("New() error = %v, want nil", err)
	}
	return k, m
}

func spawnOrFatal(t *testing.T, k *Kernel, entry func(), prio Priority, name string) TaskID {
	t.Helper()
	if entry == nil {
		entry = func() {}
	}
	id, err := k.Spawn(entry, 512, prio, name)
	if err != nil {
		t.Fatalf("Spawn(%q) error = %v, want nil", name, err)
	}
	return id
}

// checkStateHomes asserts the single-home invariant: every live task is in
// exactly the structure its state says, and only the current task is
// Running.
func checkStateHomes(t *testing.T, k *Kernel) {
	t.Helper()
	running := 0
	for i := range k.tasks {
		tk := &k.tasks[i]
		switch tk.state {
		case stateFree:
			if tk.on != &k.free {
				t.Fatalf("slot %d free but not on the free list", i)
			}
		case StateRunning:
			running++
			if int16(i) != k.current {
				t.Fatalf("slot %d Running but current is %d", i, k.current)
			}
			if tk.on != nil {
				t.Fatalf("slot %d Running but on a list", i)
			}
		case StateReady:
			if tk.on != &k.ready[tk.prio] {
				t.Fatalf("slot %d Ready but not on its priority queue", i)
			}
		case StateSleeping:
			if tk.on != &k.sleeping {
				t.Fatalf("slot %d Sleeping but not on the sleep queue", i)
			}
		case StateSuspended:
			if tk.on != &k.suspended {
				t.Fatalf("slot %d Suspended but not on the suspended set", i)
			}
		case StateBlocked:
			if tk.on == nil {
				t.Fatalf("slot %d Blocked but on no wait list", i)
			}
		case StateTerminated:
			// Transient: only the running task awaiting its final switch.
			if int16(i) != k.current {
				t.Fatalf("slot %d Terminated but still resident", i)
			}
		}
	}
	if k.started && running != 1 {
		t.Fatalf("running tasks = %d, want 1", running)
	}
}

func currentName(k *Kernel) string {
	if k.current == nilSlot {
		return ""
	}
	return k.tasks[k.current].name
}
