package workspace

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
)

// ErrSnapshotNotFound is returned when a named snapshot does not exist.
var ErrSnapshotNotFound = errors.New("workspace: snapshot not found")

// ErrInvalidSnapshotName is returned when a caller-supplied snapshot name
// fails validation.
var ErrInvalidSnapshotName = errors.New("workspace: invalid snapshot name")

var snapshotNamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// ValidateSnapshotName checks name against the allowed snapshot-name
// charset and length.
func ValidateSnapshotName(name string) error {
	if !snapshotNamePattern.MatchString(name) {
		return ErrInvalidSnapshotName
	}
	return nil
}

func (s *Store) snapshotDir(sessionID, name string) string {
	return filepath.Join(s.SnapshotRoot, sessionID, name)
}

// Snapshot captures the current contents of sessionID's workspace under
// name, replacing any existing snapshot of the same name. It always takes a
// recursive copy; CowCapable is not consulted.
func (s *Store) Snapshot(sessionID, name string) error {
	if err := ValidateSnapshotName(name); err != nil {
		return err
	}
	src := s.sessionDir(sessionID)
	dst := s.snapshotDir(sessionID, name)

	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return copyTree(src, dst)
}

// Restore replaces sessionID's live workspace with the contents of the named
// snapshot. The snapshot itself is left untouched (its backing path is
// immutable between creation and deletion).
func (s *Store) Restore(sessionID, name string) error {
	if err := ValidateSnapshotName(name); err != nil {
		return err
	}
	src := s.snapshotDir(sessionID, name)
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return ErrSnapshotNotFound
	}
	dst := s.sessionDir(sessionID)

	if err := os.RemoveAll(dst); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return copyTree(src, dst)
}

// ListSnapshots returns the names of all snapshots for sessionID.
func (s *Store) ListSnapshots(sessionID string) ([]string, error) {
	dir := filepath.Join(s.SnapshotRoot, sessionID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// DeleteSnapshot removes the named snapshot. Deleting a snapshot that
// doesn't exist is a no-op (idempotent), matching the destroy semantics used
// elsewhere in this codebase.
func (s *Store) DeleteSnapshot(sessionID, name string) error {
	if err := ValidateSnapshotName(name); err != nil {
		return err
	}
	return os.RemoveAll(s.snapshotDir(sessionID, name))
}

// SnapshotExists reports whether a named snapshot already exists, used by
// callers that want to surface the SnapshotExists warning before silently
// replacing it.
func (s *Store) SnapshotExists(sessionID, name string) bool {
	info, err := os.Stat(s.snapshotDir(sessionID, name))
	return err == nil && info.IsDir()
}
