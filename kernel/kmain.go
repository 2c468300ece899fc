// +build 386

// Command kernel is the bring-up entry point Stage 2 jumps into once
// protected mode is live. It wires every portable subsystem package
// together with the real 386 hardware primitives, in the order spec.md
// §4 lays its components out: GDT, paging, heap, interrupts, timer,
// scheduler, syscalls — then mounts CFS1 and halts.
// Modeled on biscuit's kernel/main.go bring-up sequence, trimmed to this
// design's component set.
package main

import (
	"io"

	"cdxos/internal/cfs1"
	"cdxos/internal/config"
	"cdxos/internal/gdt"
	"cdxos/internal/hal"
	"cdxos/internal/interrupt"
	"cdxos/internal/kfmt"
	"cdxos/internal/kheap"
	"cdxos/internal/kpanic"
	"cdxos/internal/ksync"
	"cdxos/internal/paging"
	"cdxos/internal/proc"
	"cdxos/internal/syscall"
	"cdxos/internal/timer"
)

// consoleWriter adapts hal.Console (WriteConsole) to io.Writer (Write),
// the boundary kfmt.Fprintf and interrupt.Registers.DumpTo expect.
type consoleWriter struct{ c hal.Console }

func (w consoleWriter) Write(p []byte) (int, error) {
	w.c.WriteConsole(p)
	return len(p), nil
}

// realConsole and realDisk are provided by the platform drivers this
// design treats as out-of-scope collaborators (§6 "Host-facing driver
// interface") — VGA/serial output and ATA/AHCI block I/O. Declared here,
// not defined: wiring a concrete implementation in is the job of the
// platform driver package this kernel image links against.
var realConsole hal.Console
var realDisk hal.Disk

func kmain(bootinfoPtr uint32) {
	cons := consoleWriter{realConsole}
	kfmt.SetOutputSink(cons)
	kpanic.SetHaltFn(hal.Halt)
	kfmt.Printf("cdxos: bring-up starting\n")

	// C3: GDT, with esp0 pointed at a reserved 1 MiB kernel stack area
	// that grows down from the top of that region (§3's memory map).
	gdtTable := gdt.New(0) // TSS base patched once its page is mapped
	gdtTable.SetKernelStack(0, config.KernelStackTop, gdt.SelKData)
	gdtTable.Load()

	// C4: identity-map the first 256 MiB, reserving a fixed arena below
	// the heap for page-table frames so the heap need not map itself
	// (§4.2).
	arena := paging.NewArena(config.PageTableArenaBase, config.PageTableArenaSize)
	pdMem := make([]byte, config.PageSize)
	dir, ok := paging.NewDirectory(pdMem, arena)
	if !ok {
		kpanic.Panic(&kpanic.Error{Module: "paging", Message: "page directory arena exhausted during bring-up"})
	}
	if !dir.IdentityMap(0, config.IdentityMapEnd, paging.FlagPresent|paging.FlagWritable) {
		kpanic.Panic(&kpanic.Error{Module: "paging", Message: "identity map failed: page-table arena exhausted"})
	}
	dir.Activate()

	// C5: heap.
	heapPool := make([]byte, config.HeapSize)
	heap := kheap.New(heapPool)
	_ = heap

	// C6: IDT + PIC.
	idt := &interrupt.IDT{}
	interrupt.InstallGates(idt, gdt.SelKCode)
	interrupt.Unhandled = func(r *interrupt.Registers) {
		r.DumpTo(cons)
		kpanic.Panic(&kpanic.Error{Module: "interrupt", Message: "unhandled trap"})
	}

	var portio hal.PortIO = hal.RealPortIO{}
	pic := interrupt.NewPIC(portio, uint8(interrupt.IRQBase))

	ksync.SetIRQHooks(
		func() bool { wasOn := hal.InterruptsEnabled(); hal.DisableInterrupts(); return wasOn },
		func(wasOn bool) {
			if wasOn {
				hal.EnableInterrupts()
			}
		},
	)

	// C7/C8: timer-driven scheduler.
	sched := proc.New()
	sched.EnableHardwareSwitch()
	timer.SetOnTick(sched.OnTick)
	ksync.SetSchedHooks(sched.CurrentID, sched.Block, func(id int) {
		if t := sched.Task(id); t != nil && t.State == proc.StateSleeping {
			t.State = proc.StateReady
		}
	})

	interrupt.Install(interrupt.IRQTimer, func(r *interrupt.Registers) {
		timer.Tick()
		pic.EOI(0)
	})
	interrupt.Install(interrupt.IRQKeyboard, func(r *interrupt.Registers) {
		pic.EOI(1)
	})
	pic.Unmask(0)
	pic.Unmask(1)

	// C10: syscall gate.
	gate := &syscall.Gate{Sched: sched, Console: realConsole, Now: timer.Now}
	interrupt.Install(interrupt.VectorSyscall, func(r *interrupt.Registers) {
		current := sched.Task(sched.CurrentID())
		r.EAX = uint32(gate.Dispatch(current, r.EAX, r.EBX, r.ECX, r.EDX))
	})

	hal.EnableInterrupts()

	// C12: mount (or format, if unformatted) the data disk.
	fs, err := cfs1.Mount(realDisk)
	if err != nil {
		fs, err = cfs1.Format(realDisk, diskSectorCount(realDisk))
		if err != nil {
			kpanic.Panic(&kpanic.Error{Module: "cfs1", Message: "format failed on unformatted disk"})
		}
	}
	_ = fs

	kfmt.Printf("cdxos: bring-up complete\n")

	hal.Halt()
}

// diskSectorCount is a placeholder the platform disk driver is expected
// to satisfy (e.g. via an IDENTIFY command); bring-up only reaches this
// path when cfs1.Mount fails, which a properly imaged disk never does.
func diskSectorCount(d hal.Disk) uint32 { return 0 }

var _ io.Writer = consoleWriter{}
