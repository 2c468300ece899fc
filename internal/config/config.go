// Package config collects the kernel's compile-time tunables in one place,
// the way biscuit keeps its constants in defs/defs.go and common/defs.go.
package config

const (
	// KernelPhysBase is where Stage 2 places the kernel image (§3).
	KernelPhysBase = 0x0010_0000

	// HeapSize is the size in bytes of the kernel heap pool (C5). The
	// repository variants surveyed disagree between 512 KiB and 8 MiB;
	// this design settles on the larger value (see DESIGN.md).
	HeapSize = 8 * 1024 * 1024

	// IdentityMapBytes is the size of the identity-mapped region
	// established by setup_identity during paging bring-up (C4). The
	// surveyed variants disagree between 128 MiB and 256 MiB; this
	// design settles on the larger value (see DESIGN.md).
	IdentityMapBytes = 256 * 1024 * 1024

	// IdentityMapEnd is the fixed end of the identity map (§3).
	IdentityMapEnd = 0x1000_0000

	// PageSize is the page-table granule (C4).
	PageSize = 4096

	// MaxTasks bounds the task table; id 0 is reserved for "none" (§3).
	MaxTasks = 16

	// KernelStackSize is the per-task kernel stack region (§3).
	KernelStackSize = 64 * 1024

	// KernelStackAreaSize is the reserved kernel stack used outside any
	// task context (§3's 1 MiB kernel stack, grows down).
	KernelStackAreaSize = 1024 * 1024

	// KernelStackTop is the highest address of that reserved region: the
	// 1 MiB kernel stack grows down from the end of the identity map.
	KernelStackTop = IdentityMapEnd

	// PageTableArenaBase and PageTableArenaSize mark the fixed,
	// statically-reserved range below the heap that C4's page-table
	// frames are carved from (§4.2), so the heap allocator never needs
	// to map its own pool. 256 MiB of identity map needs 64 page-table
	// pages plus one directory page (260 KiB); this leaves headroom.
	PageTableArenaBase = KernelPhysBase + HeapSize
	PageTableArenaSize = 1024 * 1024

	// QuantumTicks is the number of timer ticks a task may run before
	// preemption. Left as a compile-time constant per spec.md's open
	// question (§9).
	QuantumTicks = 1

	// TicksPerSecond is the configured periodic timer rate (C7).
	TicksPerSecond = 100

	// UserBase and UserTop bound the ring-3 address window the ELF
	// loader (C11) is permitted to place PT_LOAD segments within.
	UserBase = 0x4000_0000
	UserTop  = 0x4800_0000

	// UserStackSize is the size of the ring-3 stack the ELF loader
	// builds below UserTop for a freshly spawned user task.
	UserStackSize = 64 * 1024
)
