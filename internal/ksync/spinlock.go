// Package ksync implements the kernel's synchronization primitives (C9): a
// spinlock with scoped, IRQ-safe release and a counting semaphore with a
// FIFO waiter queue of task ids. Modeled on gopheros/kernel/sync's
// Spinlock, generalized with the IRQ-disable-on-acquire /
// restore-on-release discipline spec.md §4.6 requires and a semaphore that
// spec.md's gopher-os teacher does not yet have.
package ksync

import "sync/atomic"

// irqHooks lets kernel bring-up (kernel/kmain.go) wire real CLI/STI
// semantics into the spinlock without ksync importing internal/hal
// (ksync is imported by internal/proc and kernel/kmain.go). Mirrors
// gopheros/kernel/sync's "var yieldFn func()" seam. Hosted tests leave
// these at their no-op defaults.
var irqHooks = struct {
	disable func() bool // returns whether interrupts were enabled before
	restore func(wereEnabled bool)
}{
	disable: func() bool { return false },
	restore: func(bool) {},
}

// SetIRQHooks installs the real disable/restore functions during kernel
// bring-up (kernel.kmain). Exported so kmain can call it without ksync
// depending on internal/hal.
func SetIRQHooks(disable func() bool, restore func(bool)) {
	irqHooks.disable = disable
	irqHooks.restore = restore
}

// Spinlock implements a busy-wait mutex. Acquire disables interrupts;
// Release restores the prior interrupt state if and only if interrupts
// were enabled at the matching Acquire, so nested acquisitions across
// IRQ-disabled regions never spuriously re-enable interrupts (§4.6, §5).
type Spinlock struct {
	state      uint32
	wasEnabled bool
}

// Acquire blocks until the lock is held by the caller. Re-entrant
// acquisition by the same execution context deadlocks, as with any
// spinlock.
func (l *Spinlock) Acquire() {
	wasEnabled := irqHooks.disable()
	for !atomic.CompareAndSwapUint32(&l.state, 0, 1) {
		// busy-wait; a real build may insert a PAUSE hint here, but
		// that is a throughput optimization, not a correctness
		// requirement this layer depends on.
	}
	l.wasEnabled = wasEnabled
}

// TryAcquire attempts to acquire the lock without blocking.
func (l *Spinlock) TryAcquire() bool {
	wasEnabled := irqHooks.disable()
	if atomic.CompareAndSwapUint32(&l.state, 0, 1) {
		l.wasEnabled = wasEnabled
		return true
	}
	irqHooks.restore(wasEnabled)
	return false
}

// Release relinquishes a held lock and restores the interrupt state
// recorded at Acquire. Guarantees release on every exit path when used as
// `defer l.Release()` immediately after Acquire, including on panic and
// task exit.
func (l *Spinlock) Release() {
	wasEnabled := l.wasEnabled
	atomic.StoreUint32(&l.state, 0)
	irqHooks.restore(wasEnabled)
}

// Held reports whether the lock is currently held by anyone. Intended for
// diagnostics/assertions only.
func (l *Spinlock) Held() bool {
	return atomic.LoadUint32(&l.state) != 0
}
