package kernel

// CondVar is a condition variable. Waiters block until a Broadcast, with
// the associated mutex released for the duration and reacquired before
// Wait returns. A CondVar binds to the first mutex it is used with; mixing
// mutexes on one CondVar is a kernel fault, since two predicates guarded
// by different locks cannot share a wait list coherently.
type CondVar struct {
	k *Kernel

	// mu is the bound mutex, set on first Wait.
	mu      *Mutex
	waiters taskList
}

// NewCondVar creates an unbound condition variable.
func (k *Kernel) NewCondVar() *CondVar {
	c := &CondVar{k: k}
	c.waiters.reset()
	return c
}

// Wait atomically releases mu and blocks the caller until a Broadcast.
// The mutex is reacquired, contending like any other locker, before Wait
// returns, so the caller can recheck its predicate under the lock. A
// caller that does not hold mu gets ErrNotOwner. Waiting from interrupt
// context is a kernel fault.
func (c *CondVar) Wait(mu *Mutex) error {
	k := c.k
	s := k.enter()
	if k.inIRQ {
		k.fault("condvar wait from interrupt context")
	}
	if !k.started || k.current == nilSlot {
		k.fault("condvar wait with no running task")
	}
	t := &k.tasks[k.current]
	if t.prio == priorityIdle {
		k.fault("idle task blocked")
	}
	if c.mu == nil {
		c.mu = mu
	} else if c.mu != mu {
		k.fault("condvar waited on with two mutexes")
	}
	if mu.owner != t.id {
		k.leave(s)
		return ErrNotOwner
	}
	mu.release()
	t.state = StateBlocked
	k.listPushBack(&c.waiters, k.current)
	k.mach.PendSwitch()
	k.leave(s)
	// Woken by a broadcast; take the lock back before returning.
	return mu.Lock()
}

// Broadcast makes every waiter Ready; each reacquires the mutex inside
// Wait before running on. Broadcasts are not buffered: a Wait that starts
// after a Broadcast blocks until the next one. Never blocks and may be
// called from interrupt context.
func (c *CondVar) Broadcast() {
	k := c.k
	s := k.enter()
	defer k.leave(s)
	for {
		head := k.listPopFront(&c.waiters)
		if head == nilSlot {
			break
		}
		t := &k.tasks[head]
		t.state = StateReady
		k.listPushBack(&k.ready[t.prio], head)
	}
	k.maybePreempt()
}
