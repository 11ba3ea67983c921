package kernel

import "encoding/binary"

// stackGuardMagic is written at the low end of every task stack and checked
// each time the task is switched out. A descending stack that grows past
// its bottom clobbers the guard first.
const stackGuardMagic = 0xBADB0100

// allocTask takes a free pool slot and carves a stack for it, either by
// reusing a freed extent (first fit, whole extent) or by bumping the arena.
// Returns nil when the pool or the arena is exhausted.
func (k *Kernel) allocTask(stackSize int) *task {
	slot := k.listPopFront(&k.free)
	if slot == nilSlot {
		return nil
	}
	t := &k.tasks[slot]

	stack := k.allocStack(stackSize)
	if stack == nil {
		k.listPushBack(&k.free, slot)
		return nil
	}

	gen := t.id.gen() + 1
	if gen == 0 {
		// Generation 0 is reserved: slot 0 at generation 0 would make a
		// TaskID of zero, the "no task" value.
		gen = 1
	}
	t.id = makeID(slot, gen)
	t.stack = stack
	t.wake = 0
	t.slice = 0
	binary.LittleEndian.PutUint32(stack[:4], stackGuardMagic)
	return t
}

func (k *Kernel) allocStack(size int) []byte {
	for i := 0; i < k.freeStackN; i++ {
		if len(k.freeStacks[i]) >= size {
			s := k.freeStacks[i]
			k.freeStackN--
			k.freeStacks[i] = k.freeStacks[k.freeStackN]
			k.freeStacks[k.freeStackN] = nil
			return s
		}
	}
	if k.arenaOff+size > len(k.cfg.Arena) {
		return nil
	}
	s := k.cfg.Arena[k.arenaOff : k.arenaOff+size]
	k.arenaOff += size
	return s
}

// reclaim returns a terminated task's slot and stack extent to the free
// pool. The caller must have removed the task from every queue first; a
// reclaimed slot's generation makes old TaskIDs stale.
func (k *Kernel) reclaim(slot int16) {
	t := &k.tasks[slot]
	if t.on != nil {
		k.fault("reclaiming a task still on a list")
	}
	k.freeStacks[k.freeStackN] = t.stack
	k.freeStackN++
	t.stack = nil
	t.name = ""
	t.state = stateFree
	k.listPushBack(&k.free, slot)
}

func (k *Kernel) guardIntact(stack []byte) bool {
	if len(stack) < 4 {
		return true
	}
	return binary.LittleEndian.Uint32(stack[:4]) == stackGuardMagic
}

// taskByID resolves an id to its live TCB. Stale generations, freed slots
// and out-of-range ids all return nil.
func (k *Kernel) taskByID(id TaskID) *task {
	slot := int(id & slotMask)
	if slot >= maxTasks {
		return nil
	}
	t := &k.tasks[slot]
	if t.state == stateFree || t.state == StateTerminated || t.id != id {
		return nil
	}
	return t
}
