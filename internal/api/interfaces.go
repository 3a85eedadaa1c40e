package api

import (
	"context"
	"io"
	"time"

	"github.com/sandkasten-run/boxd/internal/session"
)

// SessionService abstracts the registry operations needed by HTTP handlers,
// so handler tests can substitute a mock instead of a real registry.
type SessionService interface {
	CreateInfo(ctx context.Context, opts session.CreateOpts) (session.Info, error)
	GetInfo(id string) (session.Info, error)
	List() []session.Info
	Destroy(ctx context.Context, id string, grace time.Duration) error
	SetEnv(sessionID string, vars map[string]string) error
	SetCwd(sessionID, cwd string) error

	RunCommand(ctx context.Context, sessionID string, req session.CommandRequest) (session.CommandResult, error)

	WriteFile(sessionID, path string, content []byte) error
	ReadFile(sessionID, path string, maxBytes int64) ([]byte, bool, error)
	ListDirectory(sessionID, dirPath string) ([]session.DirEntry, error)

	SnapshotExists(sessionID, name string) bool
	CreateSnapshot(sessionID, name string) error
	RestoreSnapshot(sessionID, name string) error
	ListSnapshots(sessionID string) ([]session.SnapshotInfo, error)
	DeleteSnapshot(sessionID, name string) error
	ExportSnapshot(sessionID, name string, w io.Writer) error
	ImportSnapshot(sessionID, name string, r io.Reader) error
}
