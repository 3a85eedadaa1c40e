package rpc

import (
	"context"

	"github.com/sandkasten-run/boxd/internal/launcher"
	"github.com/sandkasten-run/boxd/internal/session"
)

// CommandService is the subset of the session registry the gRPC fast path
// exercises: command execution, file I/O, and interactive shell attach,
// operations latency-sensitive enough to want a persistent channel instead
// of a fresh HTTP request per call.
type CommandService interface {
	RunCommand(ctx context.Context, sessionID string, req session.CommandRequest) (session.CommandResult, error)
	WriteFile(sessionID, path string, content []byte) error
	ReadFile(sessionID, path string, maxBytes int64) ([]byte, bool, error)
	SetEnv(sessionID string, vars map[string]string) error
	SetCwd(sessionID, cwd string) error
	OpenShell(sessionID string, cols, rows uint16) (*launcher.Shell, error)
}
