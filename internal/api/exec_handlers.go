package api

import (
	"net/http"

	"github.com/sandkasten-run/boxd/internal/session"
)

// commandRequest mirrors the external command-request contract (spec.md §6):
// session_id is taken from the path, command/time_ms/mem_kb/fsize_kb/nofile/
// env/cwd come from the body with the documented defaults applied by the
// caller's config when left zero.
type commandRequest struct {
	Command []string          `json:"command"`
	TimeMs  int64             `json:"time_ms"`
	MemKB   int64             `json:"mem_kb"`
	FsizeKB int64             `json:"fsize_kb"`
	NoFile  int64             `json:"nofile"`
	Env     map[string]string `json:"env,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
}

type commandResponse struct {
	Stdout     string `json:"stdout"`
	Stderr     string `json:"stderr"`
	ExitCode   int    `json:"exit_code"`
	Signal     int    `json:"signal"`
	DurationMs int64  `json:"duration_ms"`
}

func (s *Server) handleExec(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	var req commandRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if err := validateCommandRequest(req); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	applyCommandDefaults(&req, s.cfg.Defaults.WallMs, s.cfg.Defaults.MemKB, s.cfg.Defaults.FsizeKB, s.cfg.Defaults.NoFile)

	s.logger.Debug("exec", "session_id", id, "argv", req.Command, "time_ms", req.TimeMs)
	result, err := s.manager.RunCommand(r.Context(), id, session.CommandRequest{
		Argv:    req.Command,
		Env:     req.Env,
		Cwd:     req.Cwd,
		WallMs:  req.TimeMs,
		MemKB:   req.MemKB,
		FsizeKB: req.FsizeKB,
		NoFile:  req.NoFile,
	})
	if err != nil {
		s.logger.Error("exec", "session_id", id, "error", err)
		s.writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, commandResponse{
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitCode:   result.ExitCode,
		Signal:     result.Signal,
		DurationMs: result.DurationMs,
	})
}

func applyCommandDefaults(req *commandRequest, wallMs, memKB, fsizeKB, noFile int64) {
	if req.TimeMs == 0 {
		req.TimeMs = wallMs
	}
	if req.MemKB == 0 {
		req.MemKB = memKB
	}
	if req.FsizeKB == 0 {
		req.FsizeKB = fsizeKB
	}
	if req.NoFile == 0 {
		req.NoFile = noFile
	}
}
