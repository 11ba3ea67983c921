package kernel

import (
	"errors"
	"fmt"
)

// Recoverable errors returned to the caller.
var (
	// ErrResourceExhausted: no free TCB slot or not enough stack arena.
	ErrResourceExhausted = errors.New("kernel: resource exhausted")

	// ErrInvalidArgument: a parameter the kernel cannot act on, such as a
	// zero-tick sleep or a reserved priority.
	ErrInvalidArgument = errors.New("kernel: invalid argument")

	// ErrAlreadyOwned: a task tried to lock a mutex it already holds.
	ErrAlreadyOwned = errors.New("kernel: mutex already owned by caller")

	// ErrNotOwner: a task tried to unlock a mutex it does not hold.
	ErrNotOwner = errors.New("kernel: mutex not owned by caller")

	// ErrOverflow: a semaphore signal would exceed the configured ceiling.
	ErrOverflow = errors.New("kernel: semaphore ceiling exceeded")

	// ErrNoSuchTask: the task id is stale or was never allocated.
	ErrNoSuchTask = errors.New("kernel: no such task")
)

// Fault is an unrecoverable kernel condition: a blocking call from
// interrupt context, a clobbered stack guard, or a violated scheduler
// invariant. The kernel panics with a *Fault; the platform's fault layer
// decides what that means (the host port lets it kill the process).
type Fault struct {
	Task   TaskID
	Reason string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("kernel fault: %s (task %#x)", f.Reason, uint32(f.Task))
}

func (k *Kernel) fault(reason string) {
	var id TaskID
	if k.current >= 0 {
		id = k.tasks[k.current].id
	}
	panic(&Fault{Task: id, Reason: reason})
}
