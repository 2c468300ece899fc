package proc

import "testing"

// TestCanaryIntact exercises the stack-guard primitive sched.go's
// scheduleAt consults before switching away from a task (the
// src/task.rs-derived guard check described in SPEC_FULL.md's
// additional-modules section).
func TestCanaryIntact(t *testing.T) {
	s := New()
	id, ok := s.SpawnKernel(dummyEntry, nil)
	if !ok {
		t.Fatal("spawn failed")
	}
	task := s.Task(id)
	if !task.CanaryIntact() {
		t.Fatal("freshly planted canary must read back intact")
	}

	task.KernelStack[0] ^= 0xFF
	if task.CanaryIntact() {
		t.Fatal("corrupted guard word must be detected")
	}
}
