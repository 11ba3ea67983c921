//go:build !tinygo

package port_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"keel/kernel"
	"keel/port"
)

// Full-stack test: real goroutine contexts, real tick driver.

func TestHostRunsTasksToCompletion(t *testing.T) {
	h := port.NewHost()
	k, err := kernel.New(h, kernel.Config{Arena: make([]byte, 32<<10)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	var laps atomic.Int32
	done := make(chan struct{})
	_, err = k.Spawn(func() {
		for i := 0; i < 5; i++ {
			if err := k.Sleep(1); err != nil {
				t.Errorf("Sleep() error = %v", err)
				break
			}
			laps.Add(1)
		}
		close(done)
	}, 1024, kernel.PriorityNormal, "worker")
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.RunTicker(ctx, 1000, k.OnTick)

	k.Start()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not finish")
	}
	if got := laps.Load(); got != 5 {
		t.Fatalf("laps = %d, want 5", got)
	}
}

func TestHostMutexPingPong(t *testing.T) {
	h := port.NewHost()
	k, err := kernel.New(h, kernel.Config{Arena: make([]byte, 32<<10)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	mu := k.NewMutex()
	var inside atomic.Int32
	var collisions atomic.Int32
	var finished atomic.Int32
	done := make(chan struct{}, 2)

	body := func() {
		for i := 0; i < 50; i++ {
			if err := mu.Lock(); err != nil {
				t.Errorf("Lock() error = %v", err)
				return
			}
			if inside.Add(1) != 1 {
				collisions.Add(1)
			}
			k.Yield() // invite the peer in while we hold the lock
			inside.Add(-1)
			if err := mu.Unlock(); err != nil {
				t.Errorf("Unlock() error = %v", err)
				return
			}
			k.Yield()
		}
		finished.Add(1)
		done <- struct{}{}
	}
	for _, name := range []string{"ping", "pong"} {
		if _, err := k.Spawn(body, 1024, kernel.PriorityNormal, name); err != nil {
			t.Fatalf("Spawn(%q) error = %v", name, err)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.RunTicker(ctx, 1000, k.OnTick)

	k.Start()

	for i := 0; i < 2; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("finished = %d of 2", finished.Load())
		}
	}
	if got := collisions.Load(); got != 0 {
		t.Fatalf("mutual exclusion violated %d times", got)
	}
}

func TestHostCondVarBroadcast(t *testing.T) {
	h := port.NewHost()
	k, err := kernel.New(h, kernel.Config{Arena: make([]byte, 32<<10)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	const waiters = 3
	mu := k.NewMutex()
	cv := k.NewCondVar()
	released := false
	var woken atomic.Int32
	done := make(chan struct{}, waiters)

	for i := 0; i < waiters; i++ {
		if _, err := k.Spawn(func() {
			if err := mu.Lock(); err != nil {
				t.Errorf("Lock() error = %v", err)
				return
			}
			for !released {
				if err := cv.Wait(mu); err != nil {
					t.Errorf("Wait() error = %v", err)
					return
				}
			}
			woken.Add(1)
			if err := mu.Unlock(); err != nil {
				t.Errorf("Unlock() error = %v", err)
				return
			}
			done <- struct{}{}
		}, 1024, kernel.PriorityNormal, "waiter"); err != nil {
			t.Fatalf("Spawn(waiter) error = %v", err)
		}
	}
	if _, err := k.Spawn(func() {
		if err := k.Sleep(5); err != nil { // let the waiters park first
			t.Errorf("Sleep() error = %v", err)
			return
		}
		if err := mu.Lock(); err != nil {
			t.Errorf("Lock() error = %v", err)
			return
		}
		released = true
		cv.Broadcast()
		if err := mu.Unlock(); err != nil {
			t.Errorf("Unlock() error = %v", err)
		}
	}, 1024, kernel.PriorityNormal, "setter"); err != nil {
		t.Fatalf("Spawn(setter) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.RunTicker(ctx, 1000, k.OnTick)

	k.Start()

	for i := 0; i < waiters; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatalf("woken = %d of %d", woken.Load(), waiters)
		}
	}
}

func TestHostSemaphoreProducerConsumer(t *testing.T) {
	h := port.NewHost()
	k, err := kernel.New(h, kernel.Config{Arena: make([]byte, 32<<10)})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	const items = 20
	sem := k.NewSemaphore(0)
	var consumed atomic.Int32
	done := make(chan struct{})

	if _, err := k.Spawn(func() {
		for i := 0; i < items; i++ {
			sem.Wait()
			consumed.Add(1)
		}
		close(done)
	}, 1024, kernel.PriorityNormal, "consumer"); err != nil {
		t.Fatalf("Spawn(consumer) error = %v", err)
	}
	if _, err := k.Spawn(func() {
		for i := 0; i < items; i++ {
			if err := sem.Signal(); err != nil {
				t.Errorf("Signal() error = %v", err)
				return
			}
			if err := k.Sleep(1); err != nil {
				t.Errorf("Sleep() error = %v", err)
				return
			}
		}
	}, 1024, kernel.PriorityNormal, "producer"); err != nil {
		t.Fatalf("Spawn(producer) error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.RunTicker(ctx, 1000, k.OnTick)

	k.Start()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatalf("consumed %d of %d", consumed.Load(), items)
	}
}
