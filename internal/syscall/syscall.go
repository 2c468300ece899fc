// Package syscall implements the C10 syscall gate: the vector-0x80
// dispatch table described in spec.md §4.5/§6, sitting between the
// interrupt stub that lands at INT 0x80 and the scheduler/console
// services it invokes. Modeled on biscuit's kernel/syscall.go dispatch
// loop (Syscall method switching on a syscall number into bounded
// per-call handlers), trimmed to the five calls this kernel exposes.
package syscall

import (
	"cdxos/internal/hal"
	"cdxos/internal/proc"
)

// Syscall numbers, register A on entry (§4.5).
const (
	SysWrite  = 0
	SysYield  = 1
	SysSleep  = 2
	SysExit   = 3
	SysGetpid = 4
)

// Gate wires the syscall table to a scheduler and console. One Gate is
// constructed during kernel bring-up (kernel/kmain.go) and also driven
// directly by internal/syscall's tests without ever touching hal.PortIO
// or the real IDT.
type Gate struct {
	Sched   *proc.Scheduler
	Console hal.Console
	Now     func() uint64
}

// Dispatch services one syscall on behalf of task t, returning the value
// to place in register A before IRET. A pointer-validation failure
// terminates the calling task with EFAULT rather than returning to it,
// matching §4.5's "violation -> exit(-EFAULT)"; Dispatch still returns
// in that case so callers (and tests) observe the outcome, since the
// hosted harness has no IRET to short-circuit.
func (g *Gate) Dispatch(t *proc.Task, num uint32, b, c, d uint32) int32 {
	switch num {
	case SysWrite:
		return g.sysWrite(t, b, c, d)
	case SysYield:
		g.Sched.Yield()
		return int32(OK)
	case SysSleep:
		g.Sched.Sleep(g.now(), uint64(b))
		return int32(OK)
	case SysExit:
		g.Sched.Exit(int(int32(b)))
		return int32(OK)
	case SysGetpid:
		return int32(t.ID)
	default:
		return int32(ENOSYS)
	}
}

func (g *Gate) now() uint64 {
	if g.Now != nil {
		return g.Now()
	}
	return 0
}

// sysWrite implements write(fd=1, buf, len): validate the user buffer,
// copy it to the console, and return the byte count (§4.5, §6). Only
// fd 1 (console) exists; any other fd is EINVAL. A buffer that escapes
// the task's mapped regions kills the task with EFAULT instead of
// returning an error to it, per spec.
func (g *Gate) sysWrite(t *proc.Task, fd, bufAddr, length uint32) int32 {
	if fd != 1 {
		return int32(EINVAL)
	}
	if t.Privilege != proc.User || t.UserImage == nil {
		// A kernel task calling write() owns its buffer directly;
		// kernel tasks never cross the user-pointer validation path.
		return int32(EINVAL)
	}
	data, ok := t.UserImage.Read(bufAddr, length)
	if !ok {
		g.Sched.Exit(int(EFAULT))
		return int32(EFAULT)
	}
	g.Console.WriteConsole(data)
	return int32(length)
}
