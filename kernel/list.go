package kernel

const nilSlot = int16(-1)

// taskList is an intrusive doubly-linked list over TCB pool slots. The
// links live in the TCB itself, so membership costs no allocation and
// removal by slot is O(1). A task is on at most one list at a time; the
// TCB's on field records which, and the list operations fault on any
// double-enqueue or cross-list removal, since either means the scheduler's
// bookkeeping is already corrupt.
type taskList struct {
	head, tail int16
	size       int
}

func (l *taskList) reset() {
	l.head, l.tail, l.size = nilSlot, nilSlot, 0
}

func (k *Kernel) listPushBack(l *taskList, slot int16) {
	t := &k.tasks[slot]
	if t.on != nil {
		k.fault("task enqueued while already on a list")
	}
	t.on = l
	t.next = nilSlot
	t.prev = l.tail
	if l.tail != nilSlot {
		k.tasks[l.tail].next = slot
	} else {
		l.head = slot
	}
	l.tail = slot
	l.size++
}

func (k *Kernel) listPopFront(l *taskList) int16 {
	slot := l.head
	if slot == nilSlot {
		return nilSlot
	}
	k.listRemove(l, slot)
	return slot
}

func (k *Kernel) listRemove(l *taskList, slot int16) {
	t := &k.tasks[slot]
	if t.on != l {
		k.fault("task removed from a list it is not on")
	}
	if t.prev != nilSlot {
		k.tasks[t.prev].next = t.next
	} else {
		l.head = t.next
	}
	if t.next != nilSlot {
		k.tasks[t.next].prev = t.prev
	} else {
		l.tail = t.prev
	}
	t.next, t.prev, t.on = nilSlot, nilSlot, nil
	l.size--
}

// listInsertByWake places slot in wake order, earliest wake first, ties
// FIFO. Comparisons are modular so ordering survives tick wraparound.
func (k *Kernel) listInsertByWake(l *taskList, slot int16) {
	t := &k.tasks[slot]
	at := l.head
	for at != nilSlot && tickLE(k.tasks[at].wake, t.wake) {
		at = k.tasks[at].next
	}
	if at == nilSlot {
		k.listPushBack(l, slot)
		return
	}
	if t.on != nil {
		k.fault("task enqueued while already on a list")
	}
	a := &k.tasks[at]
	t.on = l
	t.next = at
	t.prev = a.prev
	if a.prev != nilSlot {
		k.tasks[a.prev].next = slot
	} else {
		l.head = slot
	}
	a.prev = slot
	l.size++
}
