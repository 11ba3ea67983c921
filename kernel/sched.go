package kernel

// selectTask pops the head of the highest-priority non-empty ready queue.
// The reserved idle task guarantees there always is one; an empty ready set
// is a kernel fault.
func (k *Kernel) selectTask() int16 {
	for p := range k.ready {
		if slot := k.listPopFront(&k.ready[p]); slot != nilSlot {
			return slot
		}
	}
	k.fault("ready set empty: idle task missing")
	return nilSlot
}

// peekNext returns the slot selectTask would pick, without popping it.
func (k *Kernel) peekNext() int16 {
	for p := range k.ready {
		if k.ready[p].head != nilSlot {
			return k.ready[p].head
		}
	}
	return nilSlot
}

// maybePreempt pends a context switch when the best ready task strictly
// outranks the running one, or when the running task is no longer Running
// (it blocked, slept, was suspended or terminated). Equal priority never
// preempts here; rotation among equals belongs to the tick slice.
func (k *Kernel) maybePreempt() {
	if !k.started || k.current == nilSlot {
		return
	}
	next := k.peekNext()
	if next == nilSlot {
		return
	}
	cur := &k.tasks[k.current]
	if k.tasks[next].prio < cur.prio || cur.state != StateRunning {
		k.mach.PendSwitch()
	}
}

// switchContext is the pended-switch handler the port runs with interrupts
// masked. It retires the current task to wherever its state says it
// belongs, selects the next one, and asks the machine layer to swap
// contexts. For a terminated task the slot is reclaimed after a successor
// is chosen and its context is abandoned rather than saved, so a
// terminated context is never resumed.
func (k *Kernel) switchContext() {
	if !k.started || k.current == nilSlot {
		return
	}
	cur := k.current
	t := &k.tasks[cur]

	if !k.guardIntact(t.stack) {
		// Overflow is fatal for the offending task only. The task may
		// have parked itself on a queue before the switch ran; pull it
		// off so the slot can be reclaimed.
		if t.on != nil {
			k.listRemove(t.on, cur)
		}
		t.state = StateTerminated
	}
	if t.state == StateRunning {
		t.state = StateReady
		k.listPushBack(&k.ready[t.prio], cur)
	}

	next := k.selectTask()
	nt := &k.tasks[next]
	nt.state = StateRunning
	nt.slice = k.cfg.SliceTicks
	if next == cur {
		return
	}
	k.current = next

	if t.state == StateTerminated {
		k.reclaim(cur)
		k.mach.Exit(&nt.ctx)
		return
	}
	k.mach.Swap(&t.ctx, &nt.ctx)
	// Resumed: some later switch picked this task again and restored its
	// context; it continues here with interrupts still masked.
}
