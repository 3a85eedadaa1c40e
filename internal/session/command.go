package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/sandkasten-run/boxd/internal/launcher"
)

// CommandRequest describes one command invocation against a session
// (component E's input contract).
type CommandRequest struct {
	Argv    []string
	Env     map[string]string
	Cwd     string // overrides the session's persistent cwd for this call only
	WallMs  int64
	MemKB   int64
	FsizeKB int64
	NoFile  int64
}

// CommandResult mirrors the external RunCommand response contract.
type CommandResult struct {
	Stdout     string
	Stderr     string
	ExitCode   int
	Signal     int
	DurationMs int64
}

// execInlineMaxBytes bounds how long the space-joined argv can be before
// RunCommand stages it as a script file instead of passing it on the
// command line directly.
const execInlineMaxBytes = 4096

// RunCommand validates the session accepts work, resolves the effective
// cwd/env, and runs argv to completion via the launcher. No session lock is
// held while the command runs.
func (r *Registry) RunCommand(ctx context.Context, sessionID string, req CommandRequest) (CommandResult, error) {
	sess, err := r.Get(sessionID)
	if err != nil {
		return CommandResult{}, err
	}
	if len(req.Argv) == 0 {
		return CommandResult{}, fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}

	if err := sess.beginCommand(); err != nil {
		return CommandResult{}, err
	}
	defer sess.endCommand()

	cwd, env := sess.snapshotEnvCwd(req.Env, req.Cwd)

	resolvedCwd, err := r.workspace.ResolvePath(sessionID, cwd)
	if err != nil {
		return CommandResult{}, fmt.Errorf("%w", ErrPathEscape)
	}
	if err := os.MkdirAll(resolvedCwd, 0o755); err != nil {
		return CommandResult{}, fmt.Errorf("%w: preparing cwd: %v", ErrInternal, err)
	}

	argv, cleanup, err := r.stageArgvIfNeeded(sessionID, req.Argv)
	if err != nil {
		return CommandResult{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	limits := launcher.Limits{WallMs: req.WallMs, MemKB: req.MemKB, FsizeKB: req.FsizeKB, NoFile: req.NoFile}

	// The launcher gets its own context, detached from ctx (the caller's
	// HTTP/gRPC request context), registered with the session so Destroy can
	// force-kill it once its grace period expires. A client disconnecting
	// mid-request must not kill the child.
	execCtx, cancel := context.WithCancel(context.Background())
	cancelID := sess.registerCancel(cancel)
	defer func() {
		sess.unregisterCancel(cancelID)
		cancel()
	}()

	res, err := launcher.Run(execCtx, launcher.Request{
		Argv:   argv,
		Cwd:    resolvedCwd,
		Env:    envSlice(env),
		Limits: limits,
	})
	if err != nil {
		return CommandResult{}, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	return CommandResult{
		Stdout:     string(res.Stdout),
		Stderr:     string(res.Stderr),
		ExitCode:   res.ExitCode,
		Signal:     res.Signal,
		DurationMs: res.DurationMs,
	}, nil
}

// stageArgvIfNeeded writes an oversized command line to a temp script inside
// the session's workspace and returns an argv that invokes it, so the
// launcher never has to pass an unbounded argument through exec directly.
func (r *Registry) stageArgvIfNeeded(sessionID string, argv []string) (staged []string, cleanup func(), err error) {
	joined := strings.Join(argv, " ")
	if len(joined) <= execInlineMaxBytes {
		return argv, nil, nil
	}

	scriptRel := filepath.Join(".boxd-scripts", uuid.New().String()+".sh")
	scriptPath, err := r.workspace.ResolvePath(sessionID, scriptRel)
	if err != nil {
		return nil, nil, fmt.Errorf("%w", ErrPathEscape)
	}
	if err := os.MkdirAll(filepath.Dir(scriptPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("%w: staging script: %v", ErrInternal, err)
	}

	var b strings.Builder
	b.WriteString("#!/bin/sh\nset -e\n")
	for i, a := range argv {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(shellQuote(a))
	}
	b.WriteString("\n")

	if err := os.WriteFile(scriptPath, []byte(b.String()), 0o700); err != nil {
		return nil, nil, fmt.Errorf("%w: writing staged script: %v", ErrInternal, err)
	}

	return []string{"/bin/sh", scriptPath}, func() { _ = os.Remove(scriptPath) }, nil
}

// shellQuote wraps s in single quotes, escaping any embedded single quote,
// so staged argv elements round-trip through a shell script verbatim.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func envSlice(env map[string]string) []string {
	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, k+"="+v)
	}
	return out
}

// OpenShell starts an interactive PTY-backed shell rooted at the session's
// current cwd, inheriting its persistent environment. The caller owns the
// returned Shell and must Close it when the attach stream ends.
func (r *Registry) OpenShell(sessionID string, cols, rows uint16) (*launcher.Shell, error) {
	sess, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}

	if err := sess.beginCommand(); err != nil {
		return nil, err
	}

	cwd, env := sess.snapshotEnvCwd(nil, "")
	resolvedCwd, err := r.workspace.ResolvePath(sessionID, cwd)
	if err != nil {
		sess.endCommand()
		return nil, fmt.Errorf("%w", ErrPathEscape)
	}
	if err := os.MkdirAll(resolvedCwd, 0o755); err != nil {
		sess.endCommand()
		return nil, fmt.Errorf("%w: preparing cwd: %v", ErrInternal, err)
	}

	shell, err := launcher.StartShell(launcher.ShellRequest{
		Cwd:  resolvedCwd,
		Env:  envSlice(env),
		Cols: cols,
		Rows: rows,
	})
	if err != nil {
		sess.endCommand()
		return nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	// Registered the same way RunCommand registers its exec context, so
	// Destroy can force-close a lingering shell once its grace period
	// expires.
	cancelID := sess.registerCancel(func() { _ = shell.Close() })
	go func() {
		shell.Wait()
		sess.unregisterCancel(cancelID)
		sess.endCommand()
	}()

	return shell, nil
}

// SetEnv merges vars into the session's persistent environment.
func (r *Registry) SetEnv(sessionID string, vars map[string]string) error {
	sess, err := r.Get(sessionID)
	if err != nil {
		return err
	}
	sess.setEnv(vars)
	return nil
}

// SetCwd validates and replaces the session's persistent working directory.
func (r *Registry) SetCwd(sessionID, cwd string) error {
	sess, err := r.Get(sessionID)
	if err != nil {
		return err
	}
	resolved, err := r.workspace.ResolvePath(sessionID, cwd)
	if err != nil {
		return fmt.Errorf("%w", ErrPathEscape)
	}
	if err := os.MkdirAll(resolved, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	sess.setCwd(cwd)
	return nil
}
