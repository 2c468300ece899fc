package interrupt

import (
	"io"

	"cdxos/internal/kfmt"
)

// Registers is the snapshot of CPU state an ISR entry stub pushes before
// calling into Go, modeled on gopheros/kernel/gate.Registers but for the
// 386 GP register set and IRET frame.
type Registers struct {
	// General-purpose registers in the order isrCommon leaves them on the
	// stack (lowest address first). ESP is the value pushed by PUSHL SP,
	// which isrCommon discards on the way out.
	EDI, ESI, EBP, ESP, EBX, EDX, ECX, EAX uint32

	// Vector is the interrupt/exception/IRQ number; ErrorCode is the
	// CPU-pushed error code for the vectors HasErrorCode reports true
	// for, else 0.
	Vector    uint32
	ErrorCode uint32

	// The IRET frame.
	EIP, CS, EFlags uint32
}

// DumpTo prints a register dump for a fatal exception (§7 "Panic prints
// registers + call stack").
func (r *Registers) DumpTo(w io.Writer) {
	kfmt.Fprintf(w, "EAX=%x EBX=%x ECX=%x EDX=%x\n", r.EAX, r.EBX, r.ECX, r.EDX)
	kfmt.Fprintf(w, "ESI=%x EDI=%x EBP=%x\n", r.ESI, r.EDI, r.EBP)
	kfmt.Fprintf(w, "EIP=%x CS=%x EFLAGS=%x\n", r.EIP, r.CS, r.EFlags)
	kfmt.Fprintf(w, "vector=%d error=%x\n", r.Vector, r.ErrorCode)
}
