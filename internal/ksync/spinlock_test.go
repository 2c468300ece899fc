package ksync

import (
	"sync"
	"testing"
)

func TestSpinlockMutualExclusion(t *testing.T) {
	var (
		lock    Spinlock
		counter int
		wg      sync.WaitGroup
		workers = 4
		rounds  = 1000
	)

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				lock.Acquire()
				counter++
				lock.Release()
			}
		}()
	}
	wg.Wait()

	if want := workers * rounds; counter != want {
		t.Fatalf("counter = %d, want %d (property 5: mutex exclusivity)", counter, want)
	}
}

func TestSpinlockTryAcquire(t *testing.T) {
	var lock Spinlock
	lock.Acquire()
	if lock.TryAcquire() {
		t.Fatal("expected TryAcquire to fail while held")
	}
	lock.Release()
	if !lock.TryAcquire() {
		t.Fatal("expected TryAcquire to succeed once released")
	}
	lock.Release()
}

func TestSpinlockIRQRestoreDiscipline(t *testing.T) {
	var enabledAtAcquire []bool
	defer SetIRQHooks(func() bool { return false }, func(bool) {})

	state := true
	SetIRQHooks(
		func() bool {
			was := state
			state = false
			enabledAtAcquire = append(enabledAtAcquire, was)
			return was
		},
		func(was bool) { state = was },
	)

	var lock Spinlock
	lock.Acquire()
	lock.Release()
	if !state {
		t.Fatal("Release must restore interrupts that were enabled at Acquire")
	}

	state = false
	lock.Acquire()
	lock.Release()
	if state {
		t.Fatal("Release must not enable interrupts that were disabled at Acquire")
	}
}
