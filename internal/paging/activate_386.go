// +build 386

package paging

import "cdxos/internal/hal"

// Activate installs d as the active page directory by loading CR3, which
// also flushes the non-global TLB entries. It does not set CR0.PG, so it
// does not itself turn paging on. Separated from the portable
// table-walking logic in paging.go so that logic stays host-testable
// without a 386 target.
func (d *Directory) Activate() {
	hal.LoadCR3(uintptr(d.pdPhys))
}

// InvalidateRange flushes the TLB entries covering [start, end).
func InvalidateRange(start, end uint32) {
	for addr := start &^ (4096 - 1); addr < end; addr += 4096 {
		hal.InvalidatePage(uintptr(addr))
	}
}
