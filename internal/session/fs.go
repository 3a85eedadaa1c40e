package session

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DefaultMaxReadBytes bounds how much of a file ReadFile returns when the
// caller passes maxBytes <= 0. Front doors should instead pass their
// configured Config.MaxReadBytes explicitly; this is the fallback for
// callers (tests, direct registry use) that don't have a config to hand.
const DefaultMaxReadBytes = 64 << 20

// DirEntry is one entry in a directory listing.
type DirEntry struct {
	Name  string
	IsDir bool
}

// WriteFile validates path and atomically writes content into the
// session's workspace (component F). The write lands via a temp-file-then-
// rename so a reader never observes a partial write.
func (r *Registry) WriteFile(sessionID, path string, content []byte) error {
	sess, err := r.Get(sessionID)
	if err != nil {
		return err
	}
	sess.touch()

	target, err := r.workspace.ResolvePath(sessionID, path)
	if err != nil {
		return fmt.Errorf("%w", ErrPathEscape)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}

	tmp := target + ".boxd-tmp"
	if err := os.WriteFile(tmp, content, 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	return nil
}

// ReadFile validates path and returns its contents, truncating to maxBytes
// (DefaultMaxReadBytes if zero) and reporting truncation.
func (r *Registry) ReadFile(sessionID, path string, maxBytes int64) (content []byte, truncated bool, err error) {
	sess, err := r.Get(sessionID)
	if err != nil {
		return nil, false, err
	}
	sess.touch()

	target, err := r.workspace.ResolvePath(sessionID, path)
	if err != nil {
		return nil, false, fmt.Errorf("%w", ErrPathEscape)
	}

	info, err := os.Stat(target)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	if info.IsDir() {
		return nil, false, fmt.Errorf("%w: path is a directory", ErrInvalidArgument)
	}

	if maxBytes <= 0 {
		maxBytes = DefaultMaxReadBytes
	}

	f, err := os.Open(target)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	if int64(len(data)) > maxBytes {
		return data[:maxBytes], true, nil
	}
	return data, false, nil
}

// ListDirectory validates dirPath and returns its immediate children.
func (r *Registry) ListDirectory(sessionID, dirPath string) ([]DirEntry, error) {
	sess, err := r.Get(sessionID)
	if err != nil {
		return nil, err
	}
	sess.touch()

	target, err := r.workspace.ResolvePath(sessionID, dirPath)
	if err != nil {
		return nil, fmt.Errorf("%w", ErrPathEscape)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	out := make([]DirEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return out, nil
}
