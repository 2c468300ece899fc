package ksync

// schedHooks lets internal/proc wire task blocking/waking into the
// semaphore without an import cycle (proc imports ksync for its run-queue
// spinlock; ksync must not import proc back). Mirrors the irqHooks seam
// in spinlock.go and gopheros's yieldFn TODO-hook pattern.
var schedHooks = struct {
	currentID func() int       // returns the calling task's id
	block     func()           // suspends the caller until woken
	wake      func(taskID int) // transitions a task back to Ready
}{
	currentID: func() int { return 0 },
	block:     func() {},
	wake:      func(int) {},
}

// SetSchedHooks installs the real currentID/block/wake functions during
// kernel bring-up.
func SetSchedHooks(currentID func() int, block func(), wake func(int)) {
	schedHooks.currentID = currentID
	schedHooks.block = block
	schedHooks.wake = wake
}

// Sema is a counting semaphore with FIFO waiter ordering (§4.6). permits
// may go negative: a negative value's magnitude is the number of blocked
// waiters, exactly as in the classic Dijkstra semaphore formulation.
type Sema struct {
	lock    Spinlock
	permits int
	waiters []int // task ids, FIFO
}

// NewSema returns a semaphore initialized with the given number of
// available permits.
func NewSema(initial int) *Sema {
	return &Sema{permits: initial}
}

// Acquire decrements the permit count. If the result is negative the
// caller is enqueued (FIFO) and blocks until a matching Release wakes it.
func (s *Sema) Acquire() {
	s.lock.Acquire()
	s.permits--
	negative := s.permits < 0
	if negative {
		s.waiters = append(s.waiters, schedHooks.currentID())
	}
	s.lock.Release()

	if negative {
		schedHooks.block()
	}
}

// TryAcquire acquires a permit only if one is immediately available,
// without blocking.
func (s *Sema) TryAcquire() bool {
	s.lock.Acquire()
	defer s.lock.Release()
	if s.permits > 0 {
		s.permits--
		return true
	}
	return false
}

// Release increments the permit count. If the semaphore had waiters
// before the increment, the head of the FIFO queue is woken.
func (s *Sema) Release() {
	s.lock.Acquire()
	s.permits++
	var toWake int
	wake := false
	if len(s.waiters) > 0 {
		toWake = s.waiters[0]
		s.waiters = s.waiters[1:]
		wake = true
	}
	s.lock.Release()

	if wake {
		schedHooks.wake(toWake)
	}
}

// Permits returns the current permit count (diagnostics only; may be
// negative if tasks are waiting).
func (s *Sema) Permits() int {
	s.lock.Acquire()
	defer s.lock.Release()
	return s.permits
}
