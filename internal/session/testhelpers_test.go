package session

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandkasten-run/boxd/internal/store"
	"github.com/sandkasten-run/boxd/internal/workspace"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	root := t.TempDir()

	ws, err := workspace.New(filepath.Join(root, "workspaces"), filepath.Join(root, "snapshots"))
	if err != nil {
		t.Fatalf("workspace.New: %v", err)
	}

	st, err := store.New(filepath.Join(root, "test.db"), 0)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return New(ws, st, 5*time.Minute, logger)
}
