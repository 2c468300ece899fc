package paging

import "testing"

func TestIdentityMapTranslatesToSelf(t *testing.T) {
	const memSize = 1 << 20 // 1 MiB simulated physical memory
	mem := make([]byte, memSize)

	// Reserve the top 64 KiB of the simulated RAM for page-table frames.
	arena := NewArena(memSize-64*1024, 64*1024)
	dir, ok := NewDirectory(mem, arena)
	if !ok {
		t.Fatal("failed to allocate page directory")
	}

	if !dir.IdentityMap(0, 512*1024, FlagWritable) {
		t.Fatal("identity map failed")
	}

	for _, addr := range []uint32{0, 4096, 0x1000, 0x7F000, 512*1024 - 4096} {
		phys, ok := dir.Translate(addr)
		if !ok {
			t.Fatalf("address %#x not mapped", addr)
		}
		if phys != addr {
			t.Fatalf("identity map violated: %#x -> %#x", addr, phys)
		}
	}

	if _, ok := dir.Translate(600 * 1024); ok {
		t.Fatal("expected unmapped address beyond identity range to miss")
	}
}

func TestMapSetsRequestedFlags(t *testing.T) {
	const memSize = 1 << 20
	mem := make([]byte, memSize)
	arena := NewArena(memSize-64*1024, 64*1024)
	dir, _ := NewDirectory(mem, arena)

	const v = 0x10000
	const p = 0x20000
	if !dir.Map(v, p, FlagPresent|FlagWritable|FlagUser) {
		t.Fatal("map failed")
	}
	got, ok := dir.Translate(v)
	if !ok || got != p {
		t.Fatalf("translate(%#x) = %#x, %v; want %#x, true", v, got, ok, p)
	}
}

func TestArenaExhaustion(t *testing.T) {
	const memSize = 1 << 16
	mem := make([]byte, memSize)
	arena := NewArena(memSize-8192, 8192) // room for exactly 2 frames
	dir, ok := NewDirectory(mem, arena)
	if !ok {
		t.Fatal("expected first directory allocation to succeed")
	}

	// One page table left; mapping pages that land in different PDEs
	// exhausts the arena and Map must report failure rather than
	// corrupting memory.
	ok1 := dir.Map(0x0000_0000, 0x1000, FlagWritable)
	ok2 := dir.Map(0x0040_0000, 0x2000, FlagWritable) // different PDE -> needs a new PT
	if !ok1 {
		t.Fatal("expected first mapping to succeed")
	}
	if ok2 {
		// arena only had 1 frame left after the directory itself;
		// this mapping needs a fresh page table and must fail cleanly.
		t.Fatal("expected second mapping to fail: arena exhausted")
	}
}
