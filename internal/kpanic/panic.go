package kpanic

import "cdxos/internal/kfmt"

// haltFn is called once Panic has finished printing. Left as a function
// variable rather than a direct hal.Halt call so this package (imported
// by every architecture-neutral subsystem in the tree) never needs a
// 386 build tag itself; kernel bring-up overwrites it with hal.Halt.
// Modeled on gopheros/kernel/kfmt's cpuHaltFn.
var haltFn = func() { select {} }

// SetHaltFn installs the real CPU halt primitive during kernel bring-up.
func SetHaltFn(f func()) {
	haltFn = f
}

var errUnknownCause = &Error{Module: "rt", Message: "unknown cause"}

// Panic prints e's module/message (or, for a plain error/string, a
// generic "rt" module wrapper) to the kfmt sink, then calls haltFn. It
// does not print registers or walk the call stack, and it does not
// disable interrupts itself; whether it returns depends on haltFn.
func Panic(e interface{}) {
	var err *Error
	switch t := e.(type) {
	case *Error:
		err = t
	case string:
		errUnknownCause.Message = t
		err = errUnknownCause
	case error:
		errUnknownCause.Message = t.Error()
		err = errUnknownCause
	default:
		err = errUnknownCause
	}

	kfmt.Printf("\n-----------------------------------\n")
	kfmt.Printf("[%s] unrecoverable error: %s\n", err.Module, err.Message)
	kfmt.Printf("*** kernel panic: system halted ***\n")
	kfmt.Printf("-----------------------------------\n")

	haltFn()
}
