package session

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sandkasten-run/boxd/internal/store"
	"github.com/sandkasten-run/boxd/internal/workspace"
)

// CreateSnapshot captures the session's current workspace under name,
// replacing any existing snapshot of that name, and records it in the
// bookkeeping index (component G).
func (r *Registry) CreateSnapshot(sessionID, name string) error {
	sess, err := r.Get(sessionID)
	if err != nil {
		return err
	}
	sess.touch()

	if err := r.workspace.Snapshot(sessionID, name); err != nil {
		return mapSnapshotErr(err)
	}

	if r.store != nil {
		if err := r.store.PutSnapshot(&store.Snapshot{
			SessionID:   sessionID,
			Name:        name,
			CreatedAt:   time.Now(),
			BackingPath: sessionID + "/" + name,
		}); err != nil {
			r.logger.Warn("snapshot bookkeeping insert failed", "session_id", sessionID, "snapshot", name, "error", err)
		}
	}
	return nil
}

// RestoreSnapshot replaces the session's live workspace with the contents of
// the named snapshot. Restore is refused while any command is in flight,
// since it would otherwise rewrite files out from under a running process.
func (r *Registry) RestoreSnapshot(sessionID, name string) error {
	sess, err := r.Get(sessionID)
	if err != nil {
		return err
	}
	if sess.activeCount() > 0 {
		return fmt.Errorf("%w: cannot restore snapshot while commands are running", ErrInvalidArgument)
	}
	sess.touch()

	if err := r.workspace.Restore(sessionID, name); err != nil {
		return mapSnapshotErr(err)
	}
	return nil
}

// SnapshotInfo is one entry in a session's snapshot listing.
type SnapshotInfo struct {
	Name      string
	CreatedAt time.Time
}

// ListSnapshots returns every snapshot recorded for sessionID, oldest first.
// The bookkeeping store (component G) is the source of truth for creation
// order; the workspace's own directory listing is only a fallback for
// deployments that run without one.
func (r *Registry) ListSnapshots(sessionID string) ([]SnapshotInfo, error) {
	if _, err := r.Get(sessionID); err != nil {
		return nil, err
	}

	if r.store != nil {
		rows, err := r.store.ListSnapshots(sessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		out := make([]SnapshotInfo, len(rows))
		for i, row := range rows {
			out[i] = SnapshotInfo{Name: row.Name, CreatedAt: row.CreatedAt}
		}
		return out, nil
	}

	names, err := r.workspace.ListSnapshots(sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	out := make([]SnapshotInfo, len(names))
	for i, name := range names {
		out[i] = SnapshotInfo{Name: name}
	}
	return out, nil
}

// DeleteSnapshot removes the named snapshot. Idempotent: deleting a snapshot
// that doesn't exist is not an error.
func (r *Registry) DeleteSnapshot(sessionID, name string) error {
	if _, err := r.Get(sessionID); err != nil {
		return err
	}
	if err := r.workspace.DeleteSnapshot(sessionID, name); err != nil {
		return mapSnapshotErr(err)
	}
	if r.store != nil {
		if err := r.store.DeleteSnapshot(sessionID, name); err != nil {
			r.logger.Warn("snapshot bookkeeping delete failed", "session_id", sessionID, "snapshot", name, "error", err)
		}
	}
	return nil
}

// SnapshotExists reports whether name already exists for sessionID, letting
// callers surface a warning before CreateSnapshot silently replaces it.
func (r *Registry) SnapshotExists(sessionID, name string) bool {
	return r.workspace.SnapshotExists(sessionID, name)
}

// ExportSnapshot streams a gzip tar of the named snapshot to w.
func (r *Registry) ExportSnapshot(sessionID, name string, w io.Writer) error {
	if _, err := r.Get(sessionID); err != nil {
		return err
	}
	if err := r.workspace.Export(sessionID, name, w); err != nil {
		return mapSnapshotErr(err)
	}
	return nil
}

// ImportSnapshot reads a gzip tar stream (as produced by ExportSnapshot) and
// stores it as a new snapshot named name.
func (r *Registry) ImportSnapshot(sessionID, name string, rd io.Reader) error {
	if _, err := r.Get(sessionID); err != nil {
		return err
	}
	if err := r.workspace.Import(sessionID, name, rd); err != nil {
		return mapSnapshotErr(err)
	}
	if r.store != nil {
		if err := r.store.PutSnapshot(&store.Snapshot{
			SessionID:   sessionID,
			Name:        name,
			CreatedAt:   time.Now(),
			BackingPath: sessionID + "/" + name,
		}); err != nil {
			r.logger.Warn("snapshot bookkeeping insert failed", "session_id", sessionID, "snapshot", name, "error", err)
		}
	}
	return nil
}

// mapSnapshotErr translates workspace package sentinels into this package's
// error taxonomy so callers (the front door) only ever match against one set
// of sentinels.
func mapSnapshotErr(err error) error {
	switch {
	case errors.Is(err, workspace.ErrSnapshotNotFound):
		return ErrSnapshotNotFound
	case errors.Is(err, workspace.ErrInvalidSnapshotName):
		return fmt.Errorf("%w: invalid snapshot name", ErrInvalidArgument)
	case errors.Is(err, workspace.ErrImportFailed):
		return ErrImportFailed
	default:
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
}
