package kernel

import "keel/port"

// TaskID identifies a task. It packs the pool slot with a per-slot
// generation counter, so a handle to a terminated task can never alias the
// slot's next occupant while lookup stays a direct index.
type TaskID uint32

const (
	slotBits = 8
	slotMask = 1<<slotBits - 1
)

func makeID(slot int16, gen uint16) TaskID {
	return TaskID(uint32(gen)<<slotBits | uint32(slot))
}

func (id TaskID) slot() int16 {
	return int16(id & slotMask)
}

func (id TaskID) gen() uint16 {
	return uint16(id >> slotBits)
}

// Priority orders tasks for scheduling. Lower values are more urgent.
type Priority uint8

const (
	// PriorityCritical tasks always run before anything else. Reserve it
	// for short-lived work the system cannot function without.
	PriorityCritical Priority = 0

	// PriorityNormal is the standard task priority.
	PriorityNormal Priority = 1

	// PriorityLow tasks run only when nothing more urgent is ready.
	PriorityLow Priority = 2

	// priorityIdle is reserved for the kernel's idle task.
	priorityIdle Priority = 3

	numPriorities = 4
)

func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityNormal:
		return "normal"
	case PriorityLow:
		return "low"
	case priorityIdle:
		return "idle"
	default:
		return "invalid"
	}
}

// State is a task's scheduling state. A live task is in exactly one state,
// and in exactly one kernel structure: the ready queue of its priority, a
// primitive's wait list, the sleep queue, the suspended set, or (for the
// single Running task) none.
type State uint8

const (
	StateReady State = iota
	StateRunning
	StateBlocked
	StateSleeping
	StateSuspended
	StateTerminated

	// stateFree marks an unallocated pool slot.
	stateFree State = 0xFF
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateBlocked:
		return "blocked"
	case StateSleeping:
		return "sleeping"
	case StateSuspended:
		return "suspended"
	case StateTerminated:
		return "terminated"
	case stateFree:
		return "free"
	default:
		return "invalid"
	}
}

// task is one TCB. The pool owns every field for the task's lifetime;
// queues reference tasks by slot index through the intrusive next/prev
// links, never by pointer.
type task struct {
	id    TaskID
	name  string
	prio  Priority
	state State

	ctx   port.Context
	stack []byte

	// wake is the absolute tick to wake at while Sleeping.
	wake uint64

	// slice is the remaining round-robin ticks while Running.
	slice uint32

	// Intrusive list links (pool slots) plus the list currently holding
	// this task. on is nil only while Running or free.
	next, prev int16
	on         *taskList
}

// TaskInfo is a diagnostic snapshot of one task.
type TaskInfo struct {
	ID       TaskID
	Name     string
	Priority Priority
	State    State

	// WakeTick is meaningful only while State is StateSleeping.
	WakeTick uint64
}
