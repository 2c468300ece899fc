// Package paging implements the C4 paging model: a single 4 KiB page
// directory with page tables allocated on demand from a statically
// reserved range below the heap (so the heap is never required to map
// itself), identity-mapping the first internal/config.IdentityMapBytes of
// physical memory and the VBE linear framebuffer (§3, §4.2).
//
// Modeled on gopheros/kernel/mm/vmm's PageDirectoryTable/Map split between
// a portable table-walking layer and an arch-specific activation step, but
// simplified to x86's 2-level (PD + PT) scheme instead of gopheros's
// 4-level amd64 layout, and built directly over a physical-memory byte
// slice so the table-walking logic is host-testable without touching CR3.
package paging

import "encoding/binary"

const (
	entriesPerTable = 1024
	entryBytes      = 4
	tableBytes      = entriesPerTable * entryBytes // 4096
)

// Page table entry / page directory entry flags (Intel SDM, 32-bit paging).
const (
	FlagPresent  uint32 = 1 << 0
	FlagWritable uint32 = 1 << 1
	FlagUser     uint32 = 1 << 2
	FlagPS       uint32 = 1 << 7 // page directory entries only (4MiB pages); unused here
)

const addrMask uint32 = 0xFFFFF000

// Arena models the statically reserved range page tables are carved from,
// distinct from the general-purpose heap (§4.2: "allocated from a
// dedicated statically-reserved range ... so that the heap itself is not
// required to map itself").
type Arena struct {
	base uint32 // physical base of the reserved range
	next uint32 // bump offset of the next free 4 KiB frame
	size uint32
}

// NewArena reserves [base, base+size) for page-table frames.
func NewArena(base, size uint32) *Arena {
	return &Arena{base: base, next: base, size: size}
}

// allocFrame hands out the next 4 KiB-aligned frame from the arena. Page
// tables are never freed individually in this design (no Non-goal forbids
// this; spec.md never calls for table teardown).
func (a *Arena) allocFrame() (uint32, bool) {
	if a.next+tableBytes > a.base+a.size {
		return 0, false
	}
	f := a.next
	a.next += tableBytes
	return f, true
}

// Directory is the page directory plus the physical-memory byte slice it
// and its page tables live in. mem must cover at least [0, memLen) at
// offset 0 (i.e. phys address == slice index), matching the identity-map
// invariant this design always maintains for kernel-resident structures.
type Directory struct {
	mem    []byte
	pdPhys uint32
	arena  *Arena
}

// NewDirectory allocates a fresh page directory from arena and zeroes it.
func NewDirectory(mem []byte, arena *Arena) (*Directory, bool) {
	pd, ok := arena.allocFrame()
	if !ok {
		return nil, false
	}
	d := &Directory{mem: mem, pdPhys: pd, arena: arena}
	zero(mem[pd : pd+tableBytes])
	return d, true
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

func (d *Directory) readEntry(tablePhys uint32, index uint32) uint32 {
	off := tablePhys + index*entryBytes
	return binary.LittleEndian.Uint32(d.mem[off:])
}

func (d *Directory) writeEntry(tablePhys uint32, index uint32, val uint32) {
	off := tablePhys + index*entryBytes
	binary.LittleEndian.PutUint32(d.mem[off:], val)
}

func pdIndex(virt uint32) uint32 { return virt >> 22 }
func ptIndex(virt uint32) uint32 { return (virt >> 12) & 0x3FF }

// PDPhys returns the physical address of the page directory, for loading
// into CR3 (see Activate in activate_386.go).
func (d *Directory) PDPhys() uint32 { return d.pdPhys }

// Map installs a single 4 KiB mapping virt -> phys with the given flags,
// allocating a page table from the arena on demand if the covering page
// directory entry is not yet present (§4.2).
func (d *Directory) Map(virt, phys uint32, flags uint32) bool {
	pdi := pdIndex(virt)
	pde := d.readEntry(d.pdPhys, pdi)
	var ptPhys uint32
	if pde&FlagPresent == 0 {
		pt, ok := d.arena.allocFrame()
		if !ok {
			return false
		}
		zero(d.mem[pt : pt+tableBytes])
		ptPhys = pt
		d.writeEntry(d.pdPhys, pdi, (ptPhys&addrMask)|FlagPresent|FlagWritable|(flags&FlagUser))
	} else {
		ptPhys = pde & addrMask
		// widen the directory entry's permissions if a later mapping
		// requests user access through an already-present table.
		if flags&FlagUser != 0 && pde&FlagUser == 0 {
			d.writeEntry(d.pdPhys, pdi, pde|FlagUser)
		}
	}

	pti := ptIndex(virt)
	d.writeEntry(ptPhys, pti, (phys&addrMask)|flags|FlagPresent)
	return true
}

// Translate walks the tables and returns the physical address virt maps
// to, or false if no present mapping exists. Used by tests and by the
// page-fault diagnostic path.
func (d *Directory) Translate(virt uint32) (uint32, bool) {
	pde := d.readEntry(d.pdPhys, pdIndex(virt))
	if pde&FlagPresent == 0 {
		return 0, false
	}
	ptPhys := pde & addrMask
	pte := d.readEntry(ptPhys, ptIndex(virt))
	if pte&FlagPresent == 0 {
		return 0, false
	}
	return (pte & addrMask) | (virt & 0xFFF), true
}

// IdentityMap maps every 4 KiB page in [start, end) to itself with the
// given flags, in page-aligned strides. Used both for the C4
// setup_identity(0, 256 MiB) bring-up call and for mapping the VBE linear
// framebuffer range at its physical base (§4.2).
func (d *Directory) IdentityMap(start, end uint32, flags uint32) bool {
	for addr := start &^ (4096 - 1); addr < end; addr += 4096 {
		if !d.Map(addr, addr, flags) {
			return false
		}
	}
	return true
}
