package kernel

// Mutex is a non-reentrant blocking lock. Contended lockers queue FIFO and
// ownership is handed directly to the queue head on unlock, so a woken
// waiter returns already holding the lock. There is no priority
// inheritance: a low-priority owner can keep a high-priority waiter
// blocked (known limitation).
type Mutex struct {
	k *Kernel

	// owner is the holding task's id, zero when unowned.
	owner   TaskID
	waiters taskList
}

// NewMutex creates an unowned mutex.
func (k *Kernel) NewMutex() *Mutex {
	m := &Mutex{k: k}
	m.waiters.reset()
	return m
}

// Lock acquires m, blocking while another task holds it. Locking a mutex
// the caller already holds is a programming error reported as
// ErrAlreadyOwned, not a deadlock. Locking from interrupt context is a
// kernel fault.
func (m *Mutex) Lock() error {
	k := m.k
	s := k.enter()
	defer k.leave(s)
	if !k.started || k.current == nilSlot {
		k.fault("mutex lock with no running task")
	}
	t := &k.tasks[k.current]
	switch m.owner {
	case 0:
		m.owner = t.id
		return nil
	case t.id:
		return ErrAlreadyOwned
	}
	if k.inIRQ {
		k.fault("mutex lock from interrupt context")
	}
	if t.prio == priorityIdle {
		k.fault("idle task blocked")
	}
	t.state = StateBlocked
	k.listPushBack(&m.waiters, k.current)
	k.mach.PendSwitch()
	// Resumes here once unlock hands this task the ownership.
	return nil
}

// TryLock acquires m without blocking and reports whether it did.
func (m *Mutex) TryLock() bool {
	k := m.k
	s := k.enter()
	defer k.leave(s)
	if k.current == nilSlot || m.owner != 0 {
		return false
	}
	m.owner = k.tasks[k.current].id
	return true
}

// Unlock releases m. Any caller but the owner gets ErrNotOwner. With
// waiters queued, ownership passes to the FIFO head, which becomes Ready;
// the caller keeps the CPU unless the new owner outranks it.
func (m *Mutex) Unlock() error {
	k := m.k
	s := k.enter()
	defer k.leave(s)
	if m.owner == 0 || k.current == nilSlot || m.owner != k.tasks[k.current].id {
		return ErrNotOwner
	}
	m.release()
	return nil
}

// release hands ownership to the FIFO head, or clears it when no one
// waits. Interrupts must be masked and the caller must be the owner.
func (m *Mutex) release() {
	k := m.k
	head := k.listPopFront(&m.waiters)
	if head == nilSlot {
		m.owner = 0
		return
	}
	t := &k.tasks[head]
	m.owner = t.id
	t.state = StateReady
	k.listPushBack(&k.ready[t.prio], head)
	k.maybePreempt()
}
