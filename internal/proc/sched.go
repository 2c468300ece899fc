package proc

import (
	"cdxos/internal/config"
	"cdxos/internal/kpanic"
	"cdxos/internal/ksync"
)

// Scheduler holds the fixed task table and run-queue cursor (§3, §4.5).
// Slot 0 is reserved ("idle/none") and never scheduled.
type Scheduler struct {
	tasks     [config.MaxTasks + 1]*Task
	currentID int
	lock      ksync.Spinlock

	// observedTick is the most recent tick value seen via OnTick or a
	// direct Schedule call, used to evaluate sleepers' wake times when
	// Schedule runs from a voluntary suspension point that carries no
	// tick of its own (Yield, Sleep, Exit).
	observedTick uint64

	// switchFn performs the architecture-specific register/stack swap.
	// Left nil in hosted tests, where Schedule only exercises the
	// selection policy; wired to the real switch_386.s primitive during
	// kernel bring-up.
	switchFn func(old, new *Task)
}

// New returns an empty scheduler with no tasks spawned.
func New() *Scheduler {
	return &Scheduler{}
}

// SetSwitchFn installs the architecture-specific context-switch primitive.
func (s *Scheduler) SetSwitchFn(fn func(old, new *Task)) {
	s.switchFn = fn
}

// SpawnKernel creates a Ready kernel task. entry is invoked by the real
// dispatch path on first run (via a fabricated initial stack frame in the
// 386 build); hosted tests drive state transitions directly instead of
// actually invoking entry, matching spec.md's framing of spawn as
// "primes a stack that, on first dispatch, restores (entry, arg)".
func (s *Scheduler) SpawnKernel(entry func(arg interface{}), arg interface{}) (int, bool) {
	s.lock.Acquire()
	defer s.lock.Release()

	id := s.freeSlotLocked()
	if id == 0 {
		return 0, false
	}
	t := &Task{
		ID:          id,
		State:       StateReady,
		Privilege:   Kernel,
		KernelStack: newKernelStack(),
		canary:      stackCanary,
		EntryFn:     entry,
		Arg:         arg,
		quantum:     config.QuantumTicks,
	}
	plantCanary(t.KernelStack, t.canary)
	s.tasks[id] = t
	return id, true
}

// SpawnUser creates a Ready ring-3 task that will resume at img.EntryVirt
// with ESP = img.StackTop (§4.5 "Spawn (user task)").
func (s *Scheduler) SpawnUser(img *UserImage) (int, bool) {
	s.lock.Acquire()
	defer s.lock.Release()

	id := s.freeSlotLocked()
	if id == 0 {
		return 0, false
	}
	t := &Task{
		ID:          id,
		State:       StateReady,
		Privilege:   User,
		KernelStack: newKernelStack(),
		canary:      stackCanary,
		UserImage:   img,
		quantum:     config.QuantumTicks,
	}
	plantCanary(t.KernelStack, t.canary)
	s.tasks[id] = t
	return id, true
}

// freeSlotLocked returns an id (1..MaxTasks) whose slot is empty or
// holds a reclaimed Exited task, or 0 if the table is full. Caller must
// hold s.lock.
func (s *Scheduler) freeSlotLocked() int {
	for id := 1; id <= config.MaxTasks; id++ {
		t := s.tasks[id]
		if t == nil || t.State == StateExited {
			return id
		}
	}
	return 0
}

// Task returns the task with the given id, or nil.
func (s *Scheduler) Task(id int) *Task {
	s.lock.Acquire()
	defer s.lock.Release()
	return s.tasks[id]
}

// CurrentID returns the id of the Running task, or 0 if none.
func (s *Scheduler) CurrentID() int {
	s.lock.Acquire()
	defer s.lock.Release()
	return s.currentID
}

// Yield marks the current task Ready and requests an immediate
// reschedule (§4.5 syscall 1).
func (s *Scheduler) Yield() {
	s.lock.Acquire()
	if t := s.tasks[s.currentID]; t != nil && t.State == StateRunning {
		t.State = StateReady
	}
	s.lock.Release()
	s.Schedule()
}

// Block suspends the current task indefinitely (WakeTick set beyond any
// tick the timer will reach) and reschedules. Used as the ksync.Sema
// block hook (§4.6): a waiter must not be redispatched by OnTick's
// elapsed-sleeper scan, only by an explicit Release call transitioning
// it back to Ready, which is why this reuses StateSleeping with a
// never-elapsing WakeTick rather than StateReady the way Yield does.
func (s *Scheduler) Block() {
	s.lock.Acquire()
	if t := s.tasks[s.currentID]; t != nil && t.State == StateRunning {
		t.State = StateSleeping
		t.WakeTick = ^uint64(0)
	}
	s.lock.Release()
	s.Schedule()
}

// Sleep marks the current task Sleeping until nowTick+ticks and
// reschedules (§4.5 syscall 2).
func (s *Scheduler) Sleep(nowTick uint64, ticks uint64) {
	s.lock.Acquire()
	if t := s.tasks[s.currentID]; t != nil && t.State == StateRunning {
		t.State = StateSleeping
		t.WakeTick = nowTick + ticks
	}
	s.lock.Release()
	s.Schedule()
}

// Exit marks the current task Exited (never returns to it) and
// reschedules (§4.5 syscall 3). The slot is reclaimed lazily on the next
// dispatch scan (§3).
func (s *Scheduler) Exit(code int) {
	s.lock.Acquire()
	if t := s.tasks[s.currentID]; t != nil {
		t.State = StateExited
		t.exitCode = code
	}
	s.lock.Release()
	s.Schedule()
}

// OnTick is called once per timer interrupt with the current global tick
// count. It decrements the running task's quantum and triggers Schedule
// once it reaches zero (§4.5).
func (s *Scheduler) OnTick(now uint64) {
	s.lock.Acquire()
	t := s.tasks[s.currentID]
	expired := false
	if t != nil && t.State == StateRunning {
		t.quantum--
		if t.quantum <= 0 {
			t.State = StateReady
			expired = true
		}
	} else {
		expired = true
	}
	s.lock.Release()

	if expired {
		s.scheduleAt(now)
	}
}

// Schedule runs the dispatch algorithm using the last-seen tick (tests and
// voluntary suspension points that don't carry a fresh tick value may call
// this directly).
func (s *Scheduler) Schedule() {
	s.scheduleAt(s.lastTick())
}

func (s *Scheduler) lastTick() uint64 {
	s.lock.Acquire()
	defer s.lock.Release()
	return s.observedTick
}

// scheduleAt implements §4.5's dispatch algorithm: promote elapsed
// sleepers, reclaim exited slots, then scan forward from
// currentID+1 (mod MaxTasks) for the next Ready task.
func (s *Scheduler) scheduleAt(now uint64) {
	s.lock.Acquire()
	s.observedTick = now

	for id := 1; id <= config.MaxTasks; id++ {
		t := s.tasks[id]
		if t == nil {
			continue
		}
		// An Exited task is reclaimed here, except the one that was
		// running until now, whose state and exit code stay readable
		// until the scan after this one.
		if t.State == StateExited && id != s.currentID {
			s.tasks[id] = nil
			continue
		}
		if t.State == StateSleeping && now >= t.WakeTick {
			t.State = StateReady
		}
	}

	prevID := s.currentID
	var prev *Task
	if prevID != 0 {
		prev = s.tasks[prevID]
	}
	if prev != nil && !prev.CanaryIntact() {
		s.lock.Release()
		kpanic.Panic(&kpanic.Error{Module: "proc", Message: "kernel stack overrun detected on task switch"})
		return
	}

	nextID := 0
	for step := 1; step <= config.MaxTasks; step++ {
		cand := ((prevID + step - 1) % config.MaxTasks) + 1
		t := s.tasks[cand]
		if t != nil && t.State == StateReady {
			nextID = cand
			break
		}
	}

	if nextID == 0 {
		// No Ready task: stay parked on prev if it is still Running
		// (e.g. the sole task yielded to itself because nothing else
		// is runnable), else go idle.
		if prev != nil && prev.State == StateRunning {
			s.lock.Release()
			return
		}
		s.currentID = 0
		s.lock.Release()
		return
	}

	next := s.tasks[nextID]
	next.State = StateRunning
	next.quantum = config.QuantumTicks
	next.dispatches++
	s.currentID = nextID
	s.lock.Release()

	if s.switchFn != nil {
		s.switchFn(prev, next)
	}
}
