package main

import (
	"fmt"

	"keel/internal/scenario"
	"keel/kernel"
)

// spawnAll creates the scenario's shared primitives and spawns its tasks.
// Primitives are created lazily, one mutex and one semaphore per group
// name, so tasks naming the same group contend on the same object.
func spawnAll(k *kernel.Kernel, sc *scenario.Scenario) error {
	mutexes := map[string]*kernel.Mutex{}
	sems := map[string]*kernel.Semaphore{}

	mutexFor := func(group string) *kernel.Mutex {
		if mutexes[group] == nil {
			mutexes[group] = k.NewMutex()
		}
		return mutexes[group]
	}
	semFor := func(group string) *kernel.Semaphore {
		if sems[group] == nil {
			sems[group] = k.NewSemaphore(0)
		}
		return sems[group]
	}

	for i := range sc.Tasks {
		t := sc.Tasks[i]
		prio, err := t.Prio()
		if err != nil {
			return err
		}

		var entry func()
		switch t.Behavior {
		case scenario.BehaviorSpin:
			entry = func() {
				for {
					spinWork()
					k.Yield()
				}
			}
		case scenario.BehaviorSleeper:
			period := t.Period
			entry = func() {
				for {
					if err := k.Sleep(period); err != nil {
						return
					}
				}
			}
		case scenario.BehaviorPingPong:
			mu := mutexFor(t.Group)
			entry = func() {
				for {
					if err := mu.Lock(); err != nil {
						return
					}
					k.Yield() // hold the lock across a reschedule
					if err := mu.Unlock(); err != nil {
						return
					}
					k.Yield()
				}
			}
		case scenario.BehaviorProducer:
			sem := semFor(t.Group)
			period := t.Period
			entry = func() {
				for {
					if err := sem.Signal(); err != nil {
						return
					}
					if err := k.Sleep(period); err != nil {
						return
					}
				}
			}
		case scenario.BehaviorConsumer:
			sem := semFor(t.Group)
			entry = func() {
				for {
					sem.Wait()
				}
			}
		default:
			return fmt.Errorf("scenario: task %q: unknown behavior %q", t.Name, t.Behavior)
		}

		if _, err := k.Spawn(entry, t.Stack, prio, t.Name); err != nil {
			return fmt.Errorf("spawn %q: %w", t.Name, err)
		}
	}
	return nil
}

var spinSink uint64

// spinWork burns a little CPU so spin tasks show up as genuinely running.
func spinWork() {
	x := spinSink
	for i := 0; i < 1<<12; i++ {
		x = x*6364136223846793005 + 1442695040888963407
	}
	spinSink = x
}
