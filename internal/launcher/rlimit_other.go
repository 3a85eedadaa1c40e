//go:build !linux

package launcher

import (
	"os"
	"syscall"
)

// processGroupAttr is a no-op on platforms without prlimit/process-group
// kill semantics; the wall-clock timer still kills the direct child.
func processGroupAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{}
}

func killProcessGroup(pid int, sig syscall.Signal) {
	p, err := os.FindProcess(pid)
	if err != nil {
		return
	}
	_ = p.Signal(sig)
}

// applyRlimits is unsupported outside Linux; mem_kb/fsize_kb/nofile are not
// enforced and only the wall-clock timeout bounds the command.
func applyRlimits(pid int, l Limits) error {
	return nil
}
