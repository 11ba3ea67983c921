package kernel

// Semaphore is a counting semaphore. Signal hands the unit directly to the
// FIFO head when tasks are waiting, so a blocked wait and its matching
// signal never touch the count.
type Semaphore struct {
	k *Kernel

	count uint32

	// ceiling bounds count when non-zero.
	ceiling uint32
	waiters taskList
}

// NewSemaphore creates an unbounded counting semaphore.
func (k *Kernel) NewSemaphore(initial uint32) *Semaphore {
	s := &Semaphore{k: k, count: initial}
	s.waiters.reset()
	return s
}

// NewBoundedSemaphore creates a semaphore whose count may not exceed max.
// An initial count above max is clamped to it.
func (k *Kernel) NewBoundedSemaphore(initial, max uint32) *Semaphore {
	if initial > max {
		initial = max
	}
	s := &Semaphore{k: k, count: initial, ceiling: max}
	s.waiters.reset()
	return s
}

// Wait takes one unit, blocking while none are available. Blocking from
// interrupt context is a kernel fault; use TryWait there.
func (s *Semaphore) Wait() {
	k := s.k
	st := k.enter()
	defer k.leave(st)
	if s.count > 0 {
		s.count--
		return
	}
	if k.inIRQ {
		k.fault("semaphore wait from interrupt context")
	}
	if !k.started || k.current == nilSlot {
		k.fault("semaphore wait with no running task")
	}
	t := &k.tasks[k.current]
	if t.prio == priorityIdle {
		k.fault("idle task blocked")
	}
	t.state = StateBlocked
	k.listPushBack(&s.waiters, k.current)
	k.mach.PendSwitch()
	// Resumes here with the unit handed over by a signal.
}

// TryWait takes a unit without blocking and reports whether one was taken.
func (s *Semaphore) TryWait() bool {
	k := s.k
	st := k.enter()
	defer k.leave(st)
	if s.count == 0 {
		return false
	}
	s.count--
	return true
}

// Signal releases one unit. With waiters present the FIFO head becomes
// Ready and receives the unit directly, preempting the caller if the woken
// task outranks it; otherwise the count increments, failing with
// ErrOverflow at a configured ceiling. Signal never blocks and may be
// called from interrupt context.
func (s *Semaphore) Signal() error {
	k := s.k
	st := k.enter()
	defer k.leave(st)
	head := k.listPopFront(&s.waiters)
	if head != nilSlot {
		t := &k.tasks[head]
		t.state = StateReady
		k.listPushBack(&k.ready[t.prio], head)
		k.maybePreempt()
		return nil
	}
	if s.ceiling > 0 && s.count >= s.ceiling {
		return ErrOverflow
	}
	s.count++
	return nil
}

// Count returns the number of available units.
func (s *Semaphore) Count() uint32 {
	k := s.k
	st := k.enter()
	defer k.leave(st)
	return s.count
}
