package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sandkasten-run/boxd/internal/config"
	"github.com/sandkasten-run/boxd/internal/store"
)

// TestConfig returns a Config with sensible test defaults, rooted under a
// fresh t.TempDir so tests never share workspace/snapshot state.
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	def := config.Default()
	cfg := &def
	cfg.Listen = "127.0.0.1:0"
	cfg.APIKey = "test-api-key"
	cfg.DBPath = filepath.Join(root, "boxd.db")
	cfg.WorkspaceRoot = filepath.Join(root, "workspaces")
	cfg.SnapshotRoot = filepath.Join(root, "snapshots")
	cfg.SessionIdleTTLSeconds = 300
	return cfg
}

// TestSession returns a bookkeeping Session row with sensible test defaults.
func TestSession(id string) *store.Session {
	now := time.Now().UTC()
	return &store.Session{
		ID:           id,
		Status:       "active",
		Cwd:          "/",
		CreatedAt:    now,
		ExpiresAt:    now.Add(5 * time.Minute),
		LastActivity: now,
	}
}

// NewTestStore creates a file-backed SQLite store under a fresh t.TempDir.
// modernc.org/sqlite's WAL pragmas don't apply cleanly to ":memory:", so
// tests use a throwaway on-disk file instead.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := store.New(dbPath, 0)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}
