// Package ksyscall provides the kernel-side system-call surface, consumed by
// an external dispatcher (console trampoline, test driver). Results follow
// the system-call ABI of the kernel: booleans for create/remove, sentinel -1
// values for descriptor operations. Errors are logged, never propagated
// across the syscall boundary.
package ksyscall

import (
	"io"
	"log/slog"

	"github.com/desertwitch/gokern/internal/filesys"
	"github.com/desertwitch/gokern/internal/sched"
)

// Kernel binds the storage and scheduling core for the system-call
// dispatcher.
type Kernel struct {
	FS    *filesys.FileSystem
	Sched *sched.Scheduler

	halted bool
}

// New returns a [Kernel] over the given filesystem and scheduler.
func New(fsys *filesys.FileSystem, scheduler *sched.Scheduler) *Kernel {
	return &Kernel{
		FS:    fsys,
		Sched: scheduler,
	}
}

// SysCreate creates a file of the given size, reporting success.
func (k *Kernel) SysCreate(name string, size int) bool {
	if err := k.FS.Create(name, int32(size)); err != nil {
		slog.Debug("Syscall create failed.", "name", name, "err", err)

		return false
	}

	return true
}

// SysMkdir creates a directory, reporting success.
func (k *Kernel) SysMkdir(name string) bool {
	if err := k.FS.CreateDirectory(name); err != nil {
		slog.Debug("Syscall mkdir failed.", "name", name, "err", err)

		return false
	}

	return true
}

// SysOpen opens a file into the descriptor slot, returning its id or -1.
func (k *Kernel) SysOpen(name string) filesys.OpenFileID {
	id, err := k.FS.OpenAFile(name)
	if err != nil {
		slog.Debug("Syscall open failed.", "name", name, "err", err)

		return -1
	}

	return id
}

// SysRead reads up to size bytes into buf from the open descriptor,
// returning the byte count or -1.
func (k *Kernel) SysRead(buf []byte, size int, id filesys.OpenFileID) int {
	n, err := k.FS.ReadFile(buf, size, id)
	if err != nil {
		slog.Debug("Syscall read failed.", "id", id, "err", err)

		return -1
	}

	return n
}

// SysWrite writes up to size bytes from buf to the open descriptor,
// returning the byte count or -1.
func (k *Kernel) SysWrite(buf []byte, size int, id filesys.OpenFileID) int {
	n, err := k.FS.WriteFile(buf, size, id)
	if err != nil {
		slog.Debug("Syscall write failed.", "id", id, "err", err)

		return -1
	}

	return n
}

// SysClose releases the descriptor slot, returning 1 on success and -1
// otherwise.
func (k *Kernel) SysClose(id filesys.OpenFileID) int {
	if err := k.FS.CloseFile(id); err != nil {
		slog.Debug("Syscall close failed.", "id", id, "err", err)

		return -1
	}

	return 1
}

// SysRemove removes a file or empty directory, reporting success.
func (k *Kernel) SysRemove(name string) bool {
	if err := k.FS.Remove(name); err != nil {
		slog.Debug("Syscall remove failed.", "name", name, "err", err)

		return false
	}

	return true
}

// SysList writes the named directory's entries to w, reporting success.
func (k *Kernel) SysList(name string, w io.Writer) bool {
	if err := k.FS.List(name, w); err != nil {
		slog.Debug("Syscall list failed.", "name", name, "err", err)

		return false
	}

	return true
}

// SysHalt marks the kernel halted.
func (k *Kernel) SysHalt() {
	k.halted = true
}

// Halted reports whether [Kernel.SysHalt] was called.
func (k *Kernel) Halted() bool {
	return k.halted
}
