// Package kernel is a small preemptive real-time kernel core: a fixed pool
// of task control blocks, a strict-priority scheduler with round-robin
// time slicing, a tick-driven sleep queue, and blocking mutex/semaphore
// primitives with FIFO hand-off.
//
// The core is machine-independent. Interrupt masking and context
// save/restore come from a port.Machine; the kernel never inspects a saved
// context, it only asks the port to swap them. Context switches are never
// performed inside interrupt context: the kernel pends them and the port
// runs the switch handler as interrupts are re-enabled.
package kernel

import "keel/port"

const (
	// maxTasks is the TCB pool capacity, including the idle task.
	maxTasks = 32

	// defaultSliceTicks is the round-robin slice for equal-priority
	// tasks when Config leaves it zero.
	defaultSliceTicks = 10

	// minStackBytes is the smallest stack the pool will carve. Smaller
	// Spawn requests are rounded up.
	minStackBytes = 256
)

// Config carries the externally supplied resources and tunables. The zero
// value of everything but Arena is usable.
type Config struct {
	// Arena is the memory all task stacks are carved from. The platform
	// supplies it: a linker-defined region on hardware, a byte slice on
	// the host. The kernel never allocates beyond it.
	Arena []byte

	// SliceTicks is the number of ticks an equal-priority task may run
	// before rotating. Zero means defaultSliceTicks.
	SliceTicks uint32

	// IdleStack is the stack size reserved for the idle task. Zero
	// means minStackBytes.
	IdleStack int
}

// Kernel is the whole of the scheduler state: TCB pool, per-priority ready
// queues, sleep queue, suspended set and tick counter. Create one with
// New during startup, before interrupts are enabled; it is never torn
// down. All state is guarded by the port's interrupt mask.
type Kernel struct {
	mach port.Machine
	cfg  Config

	tasks [maxTasks]task
	free  taskList

	ready     [numPriorities]taskList
	sleeping  taskList
	suspended taskList

	freeStacks [maxTasks][]byte
	freeStackN int
	arenaOff   int

	// current is the Running task's slot, nilSlot before Start.
	current int16

	ticks   uint64
	inIRQ   bool
	started bool
}

// New initializes a kernel on the given machine. Call it exactly once,
// before interrupts are enabled. The arena must at least fit the idle
// task's stack.
func New(m port.Machine, cfg Config) (*Kernel, error) {
	if m == nil {
		return nil, ErrInvalidArgument
	}
	if cfg.SliceTicks == 0 {
		cfg.SliceTicks = defaultSliceTicks
	}
	if cfg.IdleStack < minStackBytes {
		cfg.IdleStack = minStackBytes
	}
	if len(cfg.Arena) < cfg.IdleStack {
		return nil, ErrInvalidArgument
	}

	k := &Kernel{mach: m, cfg: cfg, current: nilSlot}
	k.free.reset()
	for p := range k.ready {
		k.ready[p].reset()
	}
	k.sleeping.reset()
	k.suspended.reset()
	for i := range k.tasks {
		t := &k.tasks[i]
		t.state = stateFree
		t.next, t.prev = nilSlot, nilSlot
		t.id = makeID(int16(i), 0)
		k.listPushBack(&k.free, int16(i))
	}
	m.SetSwitchHandler(k.switchContext)
	return k, nil
}

// Spawn creates a task running entry and makes it Ready. Once the
// scheduler is running, a new task that strictly outranks the current one
// preempts it immediately; equals wait their turn. entry runs on a stack
// of at least stackSize bytes carved from the arena; if it returns, the
// task exits. Fails with ErrResourceExhausted when no TCB slot or arena
// space remains, ErrInvalidArgument for a nil entry or reserved priority.
func (k *Kernel) Spawn(entry func(), stackSize int, prio Priority, name string) (TaskID, error) {
	if entry == nil || prio > PriorityLow {
		return 0, ErrInvalidArgument
	}
	s := k.enter()
	defer k.leave(s)
	id, err := k.spawn(entry, stackSize, prio, name)
	if err == nil {
		k.maybePreempt()
	}
	return id, err
}

// spawn does the pool and context work. Interrupts must be masked.
func (k *Kernel) spawn(entry func(), stackSize int, prio Priority, name string) (TaskID, error) {
	if stackSize < minStackBytes {
		stackSize = minStackBytes
	}
	t := k.allocTask(stackSize)
	if t == nil {
		return 0, ErrResourceExhausted
	}
	t.name = name
	t.prio = prio
	t.state = StateReady
	k.mach.InitContext(&t.ctx, func() {
		entry()
		k.Exit()
	}, t.stack)
	k.listPushBack(&k.ready[prio], t.id.slot())
	return t.id, nil
}

// Start spawns the reserved idle task, hands the CPU to the
// highest-priority ready task and marks the scheduler live. Call exactly
// once, after the tasks the system boots with are spawned and before the
// port's tick interrupt fires. On ports that abandon the boot stack this
// never returns; the host port returns and leaves the boot goroutine
// outside kernel time.
func (k *Kernel) Start() {
	s := k.enter()
	_ = s // the mask transfers to the first task
	if k.started {
		k.fault("scheduler started twice")
	}
	t := k.allocTask(k.cfg.IdleStack)
	if t == nil {
		k.fault("no room for idle task")
	}
	t.name = "idle"
	t.prio = priorityIdle
	t.state = StateReady
	k.mach.InitContext(&t.ctx, k.idleLoop, t.stack)
	k.listPushBack(&k.ready[priorityIdle], t.id.slot())

	next := k.selectTask()
	nt := &k.tasks[next]
	nt.state = StateRunning
	nt.slice = k.cfg.SliceTicks
	k.current = next
	k.started = true
	k.mach.Start(&nt.ctx)
}

// idleLoop is the reserved idle task: it never blocks, never exits, and
// yields to anything that becomes ready.
func (k *Kernel) idleLoop() {
	for {
		k.mach.Idle()
		s := k.enter()
		k.maybePreempt()
		k.leave(s)
	}
}

// Exit terminates the calling task and never returns to it. The slot and
// stack are reclaimed inside the switch path, once the scheduler has
// chosen a successor and nothing references them.
func (k *Kernel) Exit() {
	s := k.enter()
	if k.inIRQ {
		k.fault("exit from interrupt context")
	}
	if !k.started || k.current == nilSlot {
		k.fault("exit with no running task")
	}
	t := &k.tasks[k.current]
	if t.prio == priorityIdle {
		k.fault("idle task terminated")
	}
	t.state = StateTerminated
	k.mach.PendSwitch()
	k.leave(s)
	// Only recording test ports return from the pended switch.
}

// Yield gives up the remainder of the current slice. The caller moves to
// the back of its priority's queue and runs again when its turn comes
// round; with no equal-priority peers that is immediately.
func (k *Kernel) Yield() {
	s := k.enter()
	defer k.leave(s)
	if k.inIRQ {
		k.fault("yield from interrupt context")
	}
	if !k.started || k.current == nilSlot {
		return
	}
	k.mach.PendSwitch()
}

// Terminate removes a task for good: it leaves whatever queue or wait list
// it occupies, and its slot and stack return to the pool. Terminating the
// running task switches away immediately and its slot is reclaimed in the
// switch path; a terminated context is never resumed. The idle task cannot
// be terminated.
func (k *Kernel) Terminate(id TaskID) error {
	s := k.enter()
	defer k.leave(s)
	t := k.taskByID(id)
	if t == nil {
		return ErrNoSuchTask
	}
	if t.prio == priorityIdle {
		return ErrInvalidArgument
	}
	slot := id.slot()
	if slot == k.current {
		t.state = StateTerminated
		k.mach.PendSwitch()
		return nil
	}
	if t.on != nil {
		k.listRemove(t.on, slot)
	}
	t.state = StateTerminated
	k.reclaim(slot)
	return nil
}

// Suspend parks a Ready, Running or Sleeping task until Resume. A
// suspended sleeper forgets its wake tick. Tasks blocked on a primitive
// cannot be suspended (it would corrupt the wait-list hand-off), nor can
// the idle task.
func (k *Kernel) Suspend(id TaskID) error {
	s := k.enter()
	defer k.leave(s)
	t := k.taskByID(id)
	if t == nil {
		return ErrNoSuchTask
	}
	if t.prio == priorityIdle || t.state == StateBlocked {
		return ErrInvalidArgument
	}
	if t.state == StateSuspended {
		return nil
	}
	slot := id.slot()
	if t.on != nil {
		k.listRemove(t.on, slot)
	}
	t.state = StateSuspended
	k.listPushBack(&k.suspended, slot)
	if slot == k.current {
		k.mach.PendSwitch()
	}
	return nil
}

// Resume makes a suspended task Ready again, preempting the current task
// if the resumed one outranks it.
func (k *Kernel) Resume(id TaskID) error {
	s := k.enter()
	defer k.leave(s)
	t := k.taskByID(id)
	if t == nil {
		return ErrNoSuchTask
	}
	if t.state != StateSuspended {
		return ErrInvalidArgument
	}
	slot := id.slot()
	k.listRemove(&k.suspended, slot)
	t.state = StateReady
	k.listPushBack(&k.ready[t.prio], slot)
	k.maybePreempt()
	return nil
}

// Current returns the running task's id, or zero before Start.
func (k *Kernel) Current() TaskID {
	s := k.enter()
	defer k.leave(s)
	if k.current == nilSlot {
		return 0
	}
	return k.tasks[k.current].id
}

// Info returns a diagnostic snapshot of one task.
func (k *Kernel) Info(id TaskID) (TaskInfo, bool) {
	s := k.enter()
	defer k.leave(s)
	t := k.taskByID(id)
	if t == nil {
		return TaskInfo{}, false
	}
	return TaskInfo{ID: t.id, Name: t.name, Priority: t.prio, State: t.state, WakeTick: t.wake}, true
}

// Snapshot appends a snapshot of every live task to dst and returns it.
// Slot order, which is stable for a task's lifetime.
func (k *Kernel) Snapshot(dst []TaskInfo) []TaskInfo {
	s := k.enter()
	defer k.leave(s)
	for i := range k.tasks {
		t := &k.tasks[i]
		if t.state == stateFree {
			continue
		}
		dst = append(dst, TaskInfo{ID: t.id, Name: t.name, Priority: t.prio, State: t.state, WakeTick: t.wake})
	}
	return dst
}
