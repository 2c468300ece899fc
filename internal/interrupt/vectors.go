// Package interrupt implements the C6 interrupt subsystem: a 256-entry IDT
// (32 exception vectors, 16 IRQ vectors remapped to base 32, and the 0x80
// syscall gate) plus the 8259 PIC driver (remap, selective masking,
// specific-EOI discipline). Vector naming is modeled on
// gopheros/kernel/gate's InterruptNumber table (§4.4).
package interrupt

// Vector is an x86 interrupt/exception/trap slot number.
type Vector uint8

// CPU exception vectors (0..31), Intel SDM vol. 3 chapter 6.
const (
	DivideByZero       Vector = 0
	Debug              Vector = 1
	NMI                Vector = 2
	Breakpoint         Vector = 3
	Overflow           Vector = 4
	BoundRangeExceeded Vector = 5
	InvalidOpcode      Vector = 6
	DeviceNotAvailable Vector = 7
	DoubleFault        Vector = 8
	InvalidTSS         Vector = 10
	SegmentNotPresent  Vector = 11
	StackSegmentFault  Vector = 12
	GeneralProtection  Vector = 13
	PageFault          Vector = 14
	FPUError           Vector = 16
	AlignmentCheck     Vector = 17
	MachineCheck       Vector = 18
	SIMDFPException    Vector = 19
)

// PIC remap base and IRQ vectors (32..47, §4.4).
const (
	IRQBase      Vector = 32
	IRQTimer     Vector = IRQBase + 0
	IRQKeyboard  Vector = IRQBase + 1
	IRQCascade   Vector = IRQBase + 2
	IRQMouse     Vector = IRQBase + 12
	IRQLastSlave Vector = IRQBase + 15
)

// VectorSyscall is the software-interrupt syscall gate (§4.5, §6).
const VectorSyscall Vector = 0x80

// HasErrorCode reports whether the CPU pushes a 32-bit error code for this
// exception vector before invoking the handler (Intel SDM vol. 3 table
// 6-1). Needed so the trap stub knows whether to pop one extra word.
func HasErrorCode(v Vector) bool {
	switch v {
	case 8, 10, 11, 12, 13, 14, 17:
		return true
	default:
		return false
	}
}
