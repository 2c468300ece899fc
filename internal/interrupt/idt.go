package interrupt

import "encoding/binary"

const gateCount = 256
const gateBytes = 8

// Gate type bits for a 32-bit interrupt gate (Intel SDM vol. 3 §6.11).
const (
	gateTypeInterrupt32 = 0xE
	gatePresent         = 1 << 7
)

// IDT holds the raw 256-gate interrupt descriptor table.
type IDT struct {
	Raw [gateCount * gateBytes]byte
}

// SetGate installs a 32-bit interrupt gate at vector v, pointing at
// handlerAddr within codeSelector, with the given descriptor privilege
// level (0 for CPU-only vectors, 3 to allow INT 0x80 from ring-3, §4.5).
func (t *IDT) SetGate(v Vector, handlerAddr uint32, codeSelector uint16, dpl uint8) {
	off := int(v) * gateBytes
	binary.LittleEndian.PutUint16(t.Raw[off:], uint16(handlerAddr))
	binary.LittleEndian.PutUint16(t.Raw[off+2:], codeSelector)
	t.Raw[off+4] = 0 // reserved
	t.Raw[off+5] = gatePresent | (dpl&0x3)<<5 | gateTypeInterrupt32
	binary.LittleEndian.PutUint16(t.Raw[off+6:], uint16(handlerAddr>>16))
}

// Present reports whether a gate has been installed.
func (t *IDT) Present(v Vector) bool {
	return t.Raw[int(v)*gateBytes+5]&gatePresent != 0
}

// DPL returns the descriptor privilege level of a gate.
func (t *IDT) DPL(v Vector) uint8 {
	return (t.Raw[int(v)*gateBytes+5] >> 5) & 0x3
}

// HandlerAddr reconstructs the 32-bit handler address stored in a gate.
func (t *IDT) HandlerAddr(v Vector) uint32 {
	off := int(v) * gateBytes
	lo := binary.LittleEndian.Uint16(t.Raw[off:])
	hi := binary.LittleEndian.Uint16(t.Raw[off+6:])
	return uint32(hi)<<16 | uint32(lo)
}
