// Package kpanic implements the kernel's single non-local exit: a fatal
// error report followed by a halt. Modeled on gopher-os's kernel.Error /
// kernel.Panic (kernel/error.go, kernel/panic.go).
package kpanic

// Error describes an unrecoverable kernel condition. Kernel errors are
// defined as values (not constructed via errors.New) since the heap may not
// be available at the point a fatal condition is detected.
type Error struct {
	// Module names the subsystem that detected the fault (e.g. "paging",
	// "kheap", "interrupt").
	Module string
	// Message is the human-readable description.
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
