package api

import (
	"net/http"
	"time"
)

type createSnapshotRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	var req createSnapshotRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if err := validateSnapshotName(req.Name); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	if s.manager.SnapshotExists(id, req.Name) {
		s.logger.Warn("snapshot already exists, replacing", "session_id", id, "snapshot", req.Name)
	}

	if err := s.manager.CreateSnapshot(id, req.Name); err != nil {
		s.logger.Error("create snapshot", "session_id", id, "snapshot", req.Name, "error", err)
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type snapshotInfoResponse struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	infos, err := s.manager.ListSnapshots(id)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	out := make([]snapshotInfoResponse, len(infos))
	for i, info := range infos {
		out[i] = snapshotInfoResponse{Name: info.Name, CreatedAt: info.CreatedAt}
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": out})
}

func (s *Server) handleDeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.PathValue("name")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	if err := validateSnapshotName(name); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	if err := s.manager.DeleteSnapshot(id, name); err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRestoreSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.PathValue("name")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	if err := validateSnapshotName(name); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	if err := s.manager.RestoreSnapshot(id, name); err != nil {
		s.logger.Error("restore snapshot", "session_id", id, "snapshot", name, "error", err)
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.PathValue("name")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	if err := validateSnapshotName(name); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`.tar.gz"`)
	if err := s.manager.ExportSnapshot(id, name, w); err != nil {
		s.logger.Error("export snapshot", "session_id", id, "snapshot", name, "error", err)
		s.writeAPIError(w, err)
		return
	}
}

func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	name := r.PathValue("name")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	if err := validateSnapshotName(name); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	body := http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := s.manager.ImportSnapshot(id, name, body); err != nil {
		s.logger.Error("import snapshot", "session_id", id, "snapshot", name, "error", err)
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
