// +build 386

package gdt

import (
	"unsafe"

	"cdxos/internal/hal"
)

// descriptorPointer is the 6-byte operand LGDT/LIDT expect: a 16-bit limit
// followed by a 32-bit linear base address.
type descriptorPointer struct {
	limit uint16
	base  uint32
}

// Load installs t as the active GDT, reloads the data segment registers
// with the flat ring-0 data selector (CS is left as it was), and loads the
// TSS selector into TR.
func (t *Table) Load() {
	ptr := descriptorPointer{
		limit: uint16(tableBytes - 1),
		base:  uint32(uintptr(unsafe.Pointer(&t.Raw[0]))),
	}
	hal.LoadGDT(uintptr(unsafe.Pointer(&ptr)))
	hal.ReloadSegments(SelKData, SelKCode)
	hal.LoadTaskRegister(SelTSS)
}
