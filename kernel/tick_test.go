package kernel

import "testing"

func TestSleepZeroIsInvalid(t *testing.T) {
	k, _ := newTestKernel(t)
	spawnOrFatal(t, k, nil, PriorityNormal, "a")
	k.Start()

	if err := k.Sleep(0); err != ErrInvalidArgument {
		t.Fatalf("Sleep(0) error = %v, want ErrInvalidArgument", err)
	}
}

func TestSleepNotReadyBeforeWake(t *testing.T) {
	k, m := newTestKernel(t)
	a := spawnOrFatal(t, k, nil, PriorityNormal, "a")
	k.Start()

	if err := k.Sleep(3); err != nil {
		t.Fatalf("Sleep(3) error = %v", err)
	}
	for i := 0; i < 2; i++ {
		m.irq(k.OnTick)
		if st := k.tasks[a.slot()].state; st != StateSleeping {
			t.Fatalf("tick %d: state = %v, want sleeping", i+1, st)
		}
	}
	m.irq(k.OnTick)
	if st := k.tasks[a.slot()].state; st != StateRunning {
		t.Fatalf("state after 3 ticks = %v, want running (woke and preempted idle)", st)
	}
}

func TestSleepersWakeInWakeOrder(t *testing.T) {
	k, m := newTestKernel(t)
	a := spawnOrFatal(t, k, nil, PriorityNormal, "a")
	b := spawnOrFatal(t, k, nil, PriorityNormal, "b")
	k.Start()

	if err := k.Sleep(5); err != nil { // a
		t.Fatalf("Sleep(5) error = %v", err)
	}
	if err := k.Sleep(2); err != nil { // b
		t.Fatalf("Sleep(2) error = %v", err)
	}
	if k.sleeping.head != b.slot() {
		t.Fatalf("sleep queue head = %d, want %d (earliest wake first)", k.sleeping.head, b.slot())
	}

	for i := 0; i < 2; i++ {
		m.irq(k.OnTick)
	}
	if got := k.Current(); got != b {
		t.Fatalf("Current() after 2 ticks = %#x, want %#x", got, b)
	}
	for i := 0; i < 3; i++ {
		m.irq(k.OnTick)
	}
	// a woke at tick 5 with equal priority: ready behind b, no preempt.
	if st := k.tasks[a.slot()].state; st != StateReady {
		t.Fatalf("state = %v, want ready", st)
	}
	k.Yield()
	if got := k.Current(); got != a {
		t.Fatalf("Current() after yield = %#x, want %#x", got, a)
	}
}

func TestSleepWakeAcrossTickWraparound(t *testing.T) {
	k, m := newTestKernel(t)
	a := spawnOrFatal(t, k, nil, PriorityNormal, "a")
	k.Start()

	k.ticks = ^uint64(0) - 1 // two ticks before wrap
	if err := k.Sleep(4); err != nil {
		t.Fatalf("Sleep(4) error = %v", err)
	}
	if want := uint64(2); k.tasks[a.slot()].wake != want {
		t.Fatalf("wake tick = %d, want wrapped %d", k.tasks[a.slot()].wake, want)
	}
	for i := 0; i < 3; i++ {
		m.irq(k.OnTick)
		if st := k.tasks[a.slot()].state; st != StateSleeping {
			t.Fatalf("tick %d: state = %v, want sleeping", i+1, st)
		}
	}
	m.irq(k.OnTick)
	if st := k.tasks[a.slot()].state; st != StateRunning {
		t.Fatalf("state after wrap = %v, want running", st)
	}
	checkStateHomes(t, k)
}

func TestSleepFromInterruptFaults(t *testing.T) {
	k, m := newTestKernel(t)
	spawnOrFatal(t, k, nil, PriorityNormal, "a")
	k.Start()

	defer func() {
		f, ok := recover().(*Fault)
		if !ok {
			t.Fatal("expected a *Fault panic for sleep in interrupt context")
		}
		if f.Reason == "" {
			t.Fatal("fault has no reason")
		}
	}()
	m.irq(func() {
		k.inIRQ = true // as during OnTick dispatch
		_ = k.Sleep(1)
	})
}

func TestTicksAdvance(t *testing.T) {
	k, m := newTestKernel(t)
	k.Start()
	for i := 0; i < 7; i++ {
		m.irq(k.OnTick)
	}
	if got := k.Ticks(); got != 7 {
		t.Fatalf("Ticks() = %d, want 7", got)
	}
}
