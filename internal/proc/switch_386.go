// +build 386

package proc

import "unsafe"

// switchContext is the narrow architecture-specific primitive referenced
// by spec.md §9's design note: it pushes the callee-saved registers,
// saves ESP into *oldEspSlot, loads ESP from newEsp, pops the
// callee-saved registers for the incoming task and returns — which, for
// a task dispatched for the first time, "returns" into the trampoline
// planted by buildInitialFrame below. Implemented in switch_386.s.
//
//go:noescape
func switchContext(oldEspSlot *uint32, newEsp uint32)

// kernelTrampoline and userTrampoline are assembly entry points
// (switch_386.s) that switchContext can return into on a task's first
// dispatch. kernelTrampoline calls runKernelEntry, which pulls
// EntryFn/Arg off the package-level current task and calls it; userTrampoline builds the iretd frame that drops to ring 3
// at UserImage.EntryVirt with ESP = UserImage.StackTop (§4.5).
func kernelTrampoline()
func userTrampoline()

// funcPC extracts a Go function value's entry address. A func value is a
// pointer to a closure record whose first word is the code pointer; this
// is the same trick low-level Go kernels (gopher-os's cpu package among
// them) use to hand assembly a PC without cgo. Only valid for top-level
// functions with no captured variables, which both trampolines are.
func funcPC(f func()) uint32 {
	return **(**uint32)(unsafe.Pointer(&f))
}

// EnableHardwareSwitch wires this scheduler's dispatch decisions to the
// real register/stack context switch. Hosted tests never call this, so
// Scheduler.Schedule stays a pure selection-policy exercise there; the
// real kernel calls it once during bring-up (kernel/kmain.go).
func (s *Scheduler) EnableHardwareSwitch() {
	s.SetSwitchFn(func(old, next *Task) { wireSwitch(s, old, next) })
}

// wireSwitch adapts the Task-level Scheduler.switchFn hook to
// switchContext, fabricating the initial frame the first time a task is
// dispatched.
func wireSwitch(sched *Scheduler, old, next *Task) {
	currentSched = sched
	setCurrentTask(next)
	if !next.started {
		next.SavedSP = buildInitialFrame(next)
		next.started = true
	}

	var oldSlot *uint32
	if old != nil {
		oldSlot = &old.SavedSP
	} else {
		var discard uint32
		oldSlot = &discard
	}
	switchContext(oldSlot, next.SavedSP)
}

// buildInitialFrame writes the return address switchContext will pop on
// this task's first dispatch, laid out to match the callee-saved
// registers switch_386.s pushes/pops (EBX, ESI, EDI, EBP, then the
// return address), so the very first "pop" sequence after a cold
// dispatch sees a consistent, if unused, register frame.
func buildInitialFrame(t *Task) uint32 {
	top := uintptr(unsafe.Pointer(&t.KernelStack[len(t.KernelStack)-1]))
	sp := top &^ 0xF // 16-byte align the true top of the stack region

	var entry uint32
	if t.Privilege == User {
		entry = funcPC(userTrampoline)
	} else {
		entry = funcPC(kernelTrampoline)
	}

	push := func(v uint32) {
		sp -= 4
		*(*uint32)(unsafe.Pointer(sp)) = v
	}
	push(entry) // return address switchContext's RET targets
	push(0)     // EBX
	push(0)     // ESI
	push(0)     // EDI
	push(0)     // EBP
	return uint32(sp)
}
