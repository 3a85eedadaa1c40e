//go:build linux

package launcher

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// processGroupAttr puts the child in its own process group so a timeout can
// signal the whole tree (shell + children) rather than just the shell.
func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(pid int, sig syscall.Signal) {
	_ = syscall.Kill(-pid, sig)
}

// applyRlimits applies mem_kb/fsize_kb/nofile to pid via prlimit once the
// child has started. A failure on one resource does not stop the others;
// the first error is returned, and Run ignores it rather than aborting the
// command.
func applyRlimits(pid int, l Limits) error {
	var firstErr error
	set := func(resource int, value uint64) {
		lim := unix.Rlimit{Cur: value, Max: value}
		if err := unix.Prlimit(pid, resource, &lim, nil); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if l.MemKB > 0 {
		set(unix.RLIMIT_AS, uint64(l.MemKB)*1024)
	}
	if l.FsizeKB > 0 {
		set(unix.RLIMIT_FSIZE, uint64(l.FsizeKB)*1024)
	}
	if l.NoFile > 0 {
		set(unix.RLIMIT_NOFILE, uint64(l.NoFile))
	}
	return firstErr
}
