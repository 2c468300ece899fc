// +build 386

package interrupt

import "unsafe"

// Handler receives one interrupt/exception/IRQ after isrCommon (isr_386.s)
// has saved the full register snapshot. It runs with interrupts disabled;
// returning re-enables them via IRET restoring the saved EFLAGS.
type Handler func(r *Registers)

// dispatchTable holds one Handler per vector, indexed by Registers.Vector.
// Populated by Install; a nil entry means "no handler installed" and is
// reported via the Unhandled hook rather than silently ignored.
var dispatchTable [256]Handler

// Unhandled is called for any vector with no registered Handler. Kernel
// bring-up installs a panic here; left nil in hosted builds, which never
// reach this path (there is no raw IDT on the test host).
var Unhandled func(r *Registers)

// Install registers fn as the handler for vector v.
func Install(v Vector, fn Handler) {
	dispatchTable[v] = fn
}

// isrStubAddr returns the address of the shared assembly entry point
// every IDT gate is pointed at; isrCommon (isr_386.s) pushes Registers
// and calls interruptDispatch below.
func isrStubAddr() uint32 {
	var stub func()
	stub = isrCommon
	return **(**uint32)(unsafe.Pointer(&stub))
}

func isrCommon()

// InstallGates points every IDT entry at the shared stub, with ring-3
// access only for VectorSyscall (§4.4, §4.5).
func InstallGates(idt *IDT, codeSelector uint16) {
	addr := isrStubAddr()
	for v := 0; v < gateCount; v++ {
		dpl := uint8(0)
		if Vector(v) == VectorSyscall {
			dpl = 3
		}
		idt.SetGate(Vector(v), addr, codeSelector, dpl)
	}
}

// interruptDispatch is called from isrCommon (isr_386.s) once the
// register snapshot has been pushed and its address placed where Go's
// calling convention expects its sole argument.
func interruptDispatch(r *Registers) {
	if h := dispatchTable[r.Vector]; h != nil {
		h(r)
		return
	}
	if Unhandled != nil {
		Unhandled(r)
	}
}
