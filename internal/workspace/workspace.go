// Package workspace manages the on-disk directory backing each session
// (materialize/destroy), resolves and validates paths within it, and
// implements copy-on-write-style snapshot/restore/export/import.
package workspace

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves (after symlink expansion)
// outside the workspace root.
var ErrPathEscape = errors.New("workspace: path escapes workspace root")

// Store manages workspace directories rooted under Root, and snapshot
// archives rooted under SnapshotRoot.
type Store struct {
	Root         string
	SnapshotRoot string
}

// New creates a Store backed by root/snapshotRoot. Both directories are
// created if absent.
func New(root, snapshotRoot string) (*Store, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(snapshotRoot, 0o755); err != nil {
		return nil, err
	}
	return &Store{Root: root, SnapshotRoot: snapshotRoot}, nil
}

// CowCapable reports whether this store can perform copy-on-write snapshots
// natively (e.g. via a btrfs/zfs-aware backend). This plain-filesystem store
// always returns false, and Snapshot/Restore always use a recursive copy.
func (s *Store) CowCapable() bool { return false }

// sessionDir returns the workspace directory for sessionID.
func (s *Store) sessionDir(sessionID string) string {
	return filepath.Join(s.Root, sessionID)
}

// Materialize creates a fresh, empty workspace directory for sessionID.
func (s *Store) Materialize(sessionID string) (string, error) {
	dir := s.sessionDir(sessionID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// Destroy removes the workspace directory for sessionID entirely.
func (s *Store) Destroy(sessionID string) error {
	return os.RemoveAll(s.sessionDir(sessionID))
}

// Exists reports whether a workspace directory exists for sessionID.
func (s *Store) Exists(sessionID string) bool {
	info, err := os.Stat(s.sessionDir(sessionID))
	return err == nil && info.IsDir()
}

// ResolvePath validates that relPath (or cwd-relative path) resolves, after
// symlink expansion, to a location under the session's workspace root. It
// returns the absolute, cleaned path on success.
func (s *Store) ResolvePath(sessionID, relPath string) (string, error) {
	root := s.sessionDir(sessionID)

	candidate := relPath
	if !filepath.IsAbs(candidate) {
		candidate = filepath.Join(root, candidate)
	}
	candidate = filepath.Clean(candidate)

	// Reject outright before touching the filesystem: the cleaned path must
	// at least lexically fall under root.
	if !withinRoot(root, candidate) {
		return "", ErrPathEscape
	}

	// Resolve symlinks on the most specific existing ancestor so a symlink
	// planted inside the workspace cannot redirect a later write/read
	// outside of it. If nothing exists yet (e.g. about to create a file),
	// fall back to validating the parent directory.
	resolved, err := resolveExistingPrefix(candidate)
	if err != nil {
		return "", err
	}
	if !withinRoot(root, resolved) {
		return "", ErrPathEscape
	}

	return candidate, nil
}

func withinRoot(root, candidate string) bool {
	rel, err := filepath.Rel(root, candidate)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator)))
}

// resolveExistingPrefix walks up from path until it finds a segment that
// exists, evaluates symlinks on that segment, and rejoins the remainder.
func resolveExistingPrefix(path string) (string, error) {
	cur := path
	var suffix []string
	for {
		if _, err := os.Lstat(cur); err == nil {
			real, err := filepath.EvalSymlinks(cur)
			if err != nil {
				return "", err
			}
			for i := len(suffix) - 1; i >= 0; i-- {
				real = filepath.Join(real, suffix[i])
			}
			return real, nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			// Reached filesystem root without finding anything that exists.
			return path, nil
		}
		suffix = append(suffix, filepath.Base(cur))
		cur = parent
	}
}

// copyTree recursively copies src to dst, preserving file modes. Used as the
// CoW fallback for Snapshot/Restore on plain filesystems.
func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if info.IsDir() {
			return os.MkdirAll(target, info.Mode())
		}
		if info.Mode()&os.ModeSymlink != 0 {
			link, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(link, target)
		}
		return copyFile(path, target, info.Mode())
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
