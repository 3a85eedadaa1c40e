package launcher

import (
	"errors"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"
)

// ErrShellStartFailed is returned when the interactive shell process could
// not be started under a PTY.
var ErrShellStartFailed = errors.New("launcher: shell start failed")

// ShellRequest describes one interactive shell invocation.
type ShellRequest struct {
	Cwd  string
	Env  []string
	Cols uint16
	Rows uint16
}

// Shell is a running PTY-backed shell process. Reads and writes to Ptmx
// carry the terminal's raw byte stream in both directions.
type Shell struct {
	Ptmx *os.File

	cmd      *exec.Cmd
	waitOnce sync.Once
	exitCode int
}

// findShell locates an interactive login shell, preferring bash.
func findShell() string {
	shell := "/bin/bash"
	if _, err := os.Stat(shell); err != nil {
		shell = "/bin/sh"
	}
	return shell
}

// StartShell launches a login shell under a PTY rooted at req.Cwd, matching
// the session's persistent environment. The caller owns the returned
// Shell's lifetime and must call Close when done with it.
func StartShell(req ShellRequest) (*Shell, error) {
	cmd := exec.Command(findShell(), "-l")
	cmd.Dir = req.Cwd
	cmd.Env = append(append([]string{}, req.Env...), "TERM=xterm-256color")

	size := &pty.Winsize{Rows: req.Rows, Cols: req.Cols}
	if size.Rows == 0 {
		size.Rows = 24
	}
	if size.Cols == 0 {
		size.Cols = 80
	}

	ptmx, err := pty.StartWithSize(cmd, size)
	if err != nil {
		return nil, ErrShellStartFailed
	}

	return &Shell{Ptmx: ptmx, cmd: cmd}, nil
}

// Resize changes the PTY's terminal dimensions, following a client's window
// resize.
func (s *Shell) Resize(rows, cols uint16) error {
	return pty.Setsize(s.Ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

// Close terminates the shell process and releases the PTY file descriptor.
// Safe to call after Wait, and safe to call more than once.
func (s *Shell) Close() error {
	_ = s.cmd.Process.Kill()
	err := s.Ptmx.Close()
	s.wait()
	return err
}

// Wait blocks until the shell process exits and returns its exit code. Safe
// to call more than once; only the first call observes the process.
func (s *Shell) Wait() int {
	s.wait()
	return s.exitCode
}

func (s *Shell) wait() {
	s.waitOnce.Do(func() {
		err := s.cmd.Wait()
		if err == nil {
			s.exitCode = 0
			return
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			s.exitCode = exitErr.ExitCode()
			return
		}
		s.exitCode = -1
	})
}
