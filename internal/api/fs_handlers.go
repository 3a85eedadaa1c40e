package api

import (
	"encoding/base64"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sandkasten-run/boxd/internal/session"
)

type writeRequest struct {
	Path          string `json:"path"`
	ContentBase64 string `json:"content_base64"`
}

func (s *Server) handleWrite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	var req writeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if err := validateWriteRequest(req); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.ContentBase64)
	if err != nil {
		writeValidationError(w, "content_base64 is not valid base64: "+err.Error(), nil)
		return
	}
	if int64(len(content)) > s.cfg.MaxUploadBytes {
		s.writeAPIError(w, session.ErrFileTooLarge)
		return
	}

	if err := s.manager.WriteFile(id, req.Path, content); err != nil {
		s.logger.Error("fs write", "session_id", id, "path", req.Path, "error", err)
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	path := r.URL.Query().Get("path")

	maxBytes := s.cfg.MaxReadBytes
	if v := r.URL.Query().Get("max_bytes"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			writeValidationError(w, "max_bytes must be an integer", nil)
			return
		}
		maxBytes = n
	}

	if err := validateReadRequest(path, maxBytes); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	content, truncated, err := s.manager.ReadFile(id, path, maxBytes)
	if err != nil {
		s.logger.Error("fs read", "session_id", id, "path", path, "error", err)
		s.writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"path":           path,
		"content_base64": base64.StdEncoding.EncodeToString(content),
		"truncated":      truncated,
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		writeValidationError(w, "invalid multipart form: "+err.Error(), map[string]any{"max_bytes": s.cfg.MaxUploadBytes})
		return
	}

	basePath := strings.TrimRight(r.FormValue("path"), "/")
	if basePath == "" {
		basePath = "/"
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		files = r.MultipartForm.File["files"]
	}
	if len(files) == 0 {
		writeValidationError(w, "no file provided: use form field 'file' or 'files'", nil)
		return
	}

	var uploaded []string
	for _, fh := range files {
		name := filepath.Base(fh.Filename)
		if name == "" || name == "." || strings.Contains(name, "..") {
			writeValidationError(w, "invalid filename: "+fh.Filename, nil)
			return
		}
		destPath := filepath.Join(basePath, name)

		f, err := fh.Open()
		if err != nil {
			s.logger.Error("upload open file", "session_id", id, "filename", fh.Filename, "error", err)
			s.writeAPIError(w, err)
			return
		}
		content, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		_ = f.Close()
		if err != nil {
			s.logger.Error("upload read file", "session_id", id, "filename", fh.Filename, "error", err)
			s.writeAPIError(w, err)
			return
		}
		if int64(len(content)) > s.cfg.MaxUploadBytes {
			s.writeAPIError(w, session.ErrFileTooLarge)
			return
		}

		if err := s.manager.WriteFile(id, destPath, content); err != nil {
			s.logger.Error("upload write", "session_id", id, "path", destPath, "error", err)
			s.writeAPIError(w, err)
			return
		}
		uploaded = append(uploaded, destPath)
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "paths": uploaded})
}

func (s *Server) handleListDirectory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}

	entries, err := s.manager.ListDirectory(id, path)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}

	out := make([]map[string]any, 0, len(entries))
	for _, e := range entries {
		out = append(out, map[string]any{"name": e.Name, "is_dir": e.IsDir})
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": out})
}
