// Package timer implements the C7 tick source: a monotonic counter
// incremented by the timer IRQ at internal/config.TicksPerSecond, driving
// the scheduler's preemption decisions (§4.5).
package timer

import "sync/atomic"

// onTickHook is invoked once per tick, after the counter is incremented,
// so the scheduler (internal/proc) can run its quantum/wake-time logic.
// Installed during kernel bring-up to avoid proc importing timer and
// timer importing proc.
var onTickHook func(now uint64)

// SetOnTick installs the scheduler's tick callback.
func SetOnTick(f func(now uint64)) {
	onTickHook = f
}

var ticks uint64

// Tick is called from the timer IRQ handler. It increments the global
// tick counter and invokes the scheduler hook, mirroring spec.md §4.5's
// "the timer IRQ increments global_ticks, calls on_tick()".
func Tick() {
	now := atomic.AddUint64(&ticks, 1)
	if onTickHook != nil {
		onTickHook(now)
	}
}

// Now returns the current tick count.
func Now() uint64 {
	return atomic.LoadUint64(&ticks)
}

// Reset zeroes the tick counter. Used only by hosted tests; the real
// kernel never calls this after bring-up.
func Reset() {
	atomic.StoreUint64(&ticks, 0)
}
