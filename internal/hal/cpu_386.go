// +build 386

package hal

// Port I/O and CPU control primitives. Declared here and implemented in
// cpu_386.s, mirroring gopheros/kernel/cpu's declare-in-Go/implement-in-
// Plan9-assembly split for instructions with no Go-expressible semantics.

// PortOutByte writes an 8-bit value to an I/O port.
func PortOutByte(port uint16, val uint8)

// PortOutWord writes a 16-bit value to an I/O port.
func PortOutWord(port uint16, val uint16)

// PortOutDword writes a 32-bit value to an I/O port.
func PortOutDword(port uint16, val uint32)

// PortInByte reads an 8-bit value from an I/O port.
func PortInByte(port uint16) uint8

// PortInWord reads a 16-bit value from an I/O port.
func PortInWord(port uint16) uint16

// PortInDword reads a 32-bit value from an I/O port.
func PortInDword(port uint16) uint32

// EnableInterrupts executes STI.
func EnableInterrupts()

// DisableInterrupts executes CLI.
func DisableInterrupts()

// InterruptsEnabled reports whether EFLAGS.IF is currently set.
func InterruptsEnabled() bool

// Halt executes HLT in a loop; never returns.
func Halt()

// InvalidatePage flushes the TLB entry for virtAddr (INVLPG).
func InvalidatePage(virtAddr uintptr)

// LoadCR3 sets the page directory base register and flushes the TLB.
func LoadCR3(pageDirPhys uintptr)

// ReadCR2 returns the faulting address recorded by the last page fault.
func ReadCR2() uintptr

// LoadGDT loads the GDT register from a 6-byte descriptor (limit:base).
func LoadGDT(descriptor uintptr)

// LoadIDT loads the IDT register from a 6-byte descriptor (limit:base).
func LoadIDT(descriptor uintptr)

// LoadTaskRegister loads the TSS selector into TR (LTR).
func LoadTaskRegister(selector uint16)

// ReloadSegments reloads DS/ES/FS/GS/SS with dataSelector. CS is not
// reloaded; codeSelector is not used.
func ReloadSegments(dataSelector, codeSelector uint16)
