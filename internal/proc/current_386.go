// +build 386

package proc

import (
	"unsafe"

	"cdxos/internal/gdt"
)

// current holds the task the assembly trampolines should run on a cold
// dispatch. There is exactly one live Scheduler per kernel image, so a
// package-level slot avoids threading an extra argument through
// switchContext's hand-rolled calling convention.
var current *Task
var currentSched *Scheduler

func setCurrentTask(t *Task) { current = t }

// runKernelEntry is called by kernelTrampoline (switch_386.s) the first
// time a kernel task is dispatched. It never returns; EntryFn is
// expected to call Scheduler.Exit itself, and for the rare one that
// doesn't, falls back to exiting with code 0 rather than falling off
// the trampoline into garbage.
func runKernelEntry() {
	t := current
	t.EntryFn(t.Arg)
	currentSched.Exit(0)
}

// runUserEntryFrame builds the IRETL frame (EIP, CS, EFLAGS, ESP, SS,
// bottom to top) that drops the CPU to ring 3 at current.UserImage's
// entry point and stack, and returns the address userTrampoline should
// load into SP before executing IRETL.
func runUserEntryFrame() uint32 {
	t := current
	img := t.UserImage

	frame := [5]uint32{
		img.EntryVirt,        // EIP
		uint32(gdt.SelUCode), // CS
		0x200,                // EFLAGS: IF set
		img.StackTop,         // ESP
		uint32(gdt.SelUData), // SS
	}

	// Reserved 20 bytes below the true top of the kernel stack region,
	// well clear of the callee-saved-register frame buildInitialFrame
	// planted for the first dispatch, whose contents are already
	// consumed by the time this runs.
	top := uintptr(unsafe.Pointer(&t.KernelStack[len(t.KernelStack)-1])) &^ 0xF
	base := top - uintptr(len(frame)*4)
	for i, w := range frame {
		*(*uint32)(unsafe.Pointer(base + uintptr(i*4))) = w
	}
	return uint32(base)
}
