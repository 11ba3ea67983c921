package kernel

// tickLE reports a <= b in modular tick arithmetic, so comparisons stay
// correct across counter wraparound.
func tickLE(a, b uint64) bool {
	return int64(a-b) <= 0
}

// Ticks returns the number of tick interrupts since Start. The counter
// wraps at its full width; callers comparing tick values must use modular
// arithmetic the way the sleep queue does.
func (k *Kernel) Ticks() uint64 {
	s := k.enter()
	defer k.leave(s)
	return k.ticks
}

// OnTick is the timer interrupt entry point. The port must invoke it from
// its tick interrupt with interrupts masked, at a fixed documented rate.
//
// It advances the tick counter, readies every sleeper whose wake tick has
// arrived, preempts if one of them outranks the running task, and charges
// the running task's round-robin slice, rotating it to the back of its
// priority once the slice is spent and an equal-priority peer is waiting.
func (k *Kernel) OnTick() {
	k.inIRQ = true
	k.ticks++

	for {
		head := k.sleeping.head
		if head == nilSlot || !tickLE(k.tasks[head].wake, k.ticks) {
			break
		}
		k.listRemove(&k.sleeping, head)
		k.tasks[head].state = StateReady
		k.listPushBack(&k.ready[k.tasks[head].prio], head)
	}
	k.maybePreempt()

	if k.started && k.current != nilSlot {
		t := &k.tasks[k.current]
		if t.state == StateRunning && t.prio != priorityIdle {
			if t.slice > 0 {
				t.slice--
			}
			if t.slice == 0 && k.ready[t.prio].size > 0 {
				k.mach.PendSwitch()
			}
		}
	}
	k.inIRQ = false
}

// Sleep parks the calling task for at least ticks tick interrupts. The
// task is Ready again once that many ticks have elapsed, and not before.
// A zero delay is ErrInvalidArgument; use Yield to give up the slice
// without sleeping. Sleeping from interrupt context is a kernel fault.
func (k *Kernel) Sleep(ticks uint64) error {
	if ticks == 0 {
		return ErrInvalidArgument
	}
	s := k.enter()
	defer k.leave(s)
	if k.inIRQ {
		k.fault("sleep from interrupt context")
	}
	if !k.started || k.current == nilSlot {
		k.fault("sleep with no running task")
	}
	t := &k.tasks[k.current]
	if t.prio == priorityIdle {
		k.fault("idle task blocked")
	}
	t.wake = k.ticks + ticks
	t.state = StateSleeping
	k.listInsertByWake(&k.sleeping, k.current)
	k.mach.PendSwitch()
	// The deferred leave services the switch; execution resumes here
	// after the sleep expires and the scheduler picks this task again.
	return nil
}
