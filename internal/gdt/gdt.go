// Package gdt builds the flat segmentation model (C3): null, ring-0
// code/data, ring-3 code/data, and a TSS descriptor holding esp0/ss0 for
// privilege-level transitions (§4.2). The descriptor encoding is pure data
// manipulation and is host-testable; only loading the table into the CPU
// (LGDT) is architecture-specific (see activate_386.go).
package gdt

import "encoding/binary"

// Selector indices, in table order (§4.2).
const (
	SelNull     = 0x00
	SelKCode    = 0x08
	SelKData    = 0x10
	SelUCode    = 0x18 | 3 // RPL=3
	SelUData    = 0x20 | 3
	SelTSS      = 0x28
	EntryCount  = 6
	entryBytes  = 8
	tableBytes  = EntryCount * entryBytes
)

// Access byte flags (Intel SDM).
const (
	accPresent  = 1 << 7
	accRing3    = 3 << 5
	accCodeData = 1 << 4
	accExec     = 1 << 3
	accDC       = 1 << 2
	accRW       = 1 << 1
	accTSS32    = 0x09 // 32-bit TSS (available)
)

// Granularity/flags nibble (upper 4 bits of byte 6).
const (
	flagGranularity4K = 1 << 3
	flagSize32        = 1 << 2
)

// Table holds the raw 8-byte-per-descriptor GDT contents plus the 104-byte
// TSS it points to.
type Table struct {
	Raw [tableBytes]byte
	TSS [104]byte
}

func encodeDescriptor(base uint32, limit uint32, access byte, flags byte) [8]byte {
	var d [8]byte
	d[0] = byte(limit)
	d[1] = byte(limit >> 8)
	d[2] = byte(base)
	d[3] = byte(base >> 8)
	d[4] = byte(base >> 16)
	d[5] = access
	d[6] = byte(limit>>16)&0x0F | (flags << 4)
	d[7] = byte(base >> 24)
	return d
}

// New builds a flat GDT: ring-0/ring-3 code and data segments spanning the
// full 4 GiB linear space, plus a TSS descriptor at tssBase whose limit
// covers the 104-byte TSS.
func New(tssBase uint32) *Table {
	t := &Table{}
	put := func(idx int, d [8]byte) {
		copy(t.Raw[idx*entryBytes:], d[:])
	}

	put(0, [8]byte{}) // null descriptor

	flat := byte(flagGranularity4K | flagSize32)
	const flatLimit = 0xFFFFF // 4 GiB in 4 KiB units

	put(1, encodeDescriptor(0, flatLimit, accPresent|accCodeData|accExec|accRW, flat))             // ring-0 code
	put(2, encodeDescriptor(0, flatLimit, accPresent|accCodeData|accRW, flat))                       // ring-0 data
	put(3, encodeDescriptor(0, flatLimit, accPresent|accRing3|accCodeData|accExec|accRW, flat))      // ring-3 code
	put(4, encodeDescriptor(0, flatLimit, accPresent|accRing3|accCodeData|accRW, flat))              // ring-3 data
	put(5, encodeDescriptor(tssBase, uint32(len(t.TSS)-1), accPresent|accRing3|accTSS32, 0))         // TSS

	t.SetKernelStack(tssBase, 0, SelKData)
	return t
}

// SetKernelStack writes esp0/ss0 into the TSS so the CPU knows which
// kernel stack to switch to on a ring-3 -> ring-0 transition (§4.2, §4.5).
// tssBase is unused by the field layout itself; kept for symmetry with
// New's signature and to make call sites self-documenting.
func (t *Table) SetKernelStack(_ uint32, esp0 uint32, ss0 uint16) {
	binary.LittleEndian.PutUint32(t.TSS[4:], esp0)
	binary.LittleEndian.PutUint16(t.TSS[8:], ss0)
}

// Descriptor returns a raw descriptor's bytes; exposed for tests.
func (t *Table) Descriptor(idx int) [8]byte {
	var d [8]byte
	copy(d[:], t.Raw[idx*entryBytes:(idx+1)*entryBytes])
	return d
}
