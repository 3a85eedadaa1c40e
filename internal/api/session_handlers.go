package api

import (
	"net/http"
	"time"

	"github.com/sandkasten-run/boxd/internal/session"
)

type createSessionRequest struct {
	Env            map[string]string `json:"env,omitempty"`
	IdleTTLSeconds int                `json:"idle_ttl_seconds,omitempty"`
}

type sessionInfoResponse struct {
	ID        string            `json:"id"`
	State     string            `json:"state"`
	Cwd       string            `json:"cwd"`
	Env       map[string]string `json:"env"`
	CreatedAt time.Time         `json:"created_at"`
	LastUsed  time.Time         `json:"last_used"`
}

func toSessionInfoResponse(info session.Info) sessionInfoResponse {
	return sessionInfoResponse{
		ID:        info.ID,
		State:     info.State.String(),
		Cwd:       info.Cwd,
		Env:       info.Env,
		CreatedAt: info.CreatedAt,
		LastUsed:  info.LastUsed,
	}
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if err := validateCreateSessionRequest(req); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}

	opts := session.CreateOpts{Env: req.Env}
	if req.IdleTTLSeconds > 0 {
		opts.IdleTTL = time.Duration(req.IdleTTLSeconds) * time.Second
	}

	info, err := s.manager.CreateInfo(r.Context(), opts)
	if err != nil {
		s.logger.Error("create session", "error", err)
		s.writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"session_id": info.ID})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	info, err := s.manager.GetInfo(id)
	if err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionInfoResponse(info))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	infos := s.manager.List()
	out := make([]sessionInfoResponse, 0, len(infos))
	for _, info := range infos {
		out = append(out, toSessionInfoResponse(info))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleDestroySession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	grace := time.Duration(s.cfg.DestroyGraceMs) * time.Millisecond
	if err := s.manager.Destroy(r.Context(), id, grace); err != nil {
		s.logger.Error("destroy session", "session_id", id, "error", err)
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type setEnvRequest struct {
	Env map[string]string `json:"env"`
}

func (s *Server) handleSetEnv(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	var req setEnvRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if len(req.Env) == 0 {
		writeValidationError(w, "env is required", nil)
		return
	}
	if err := s.manager.SetEnv(id, req.Env); err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type setCwdRequest struct {
	Cwd string `json:"cwd"`
}

func (s *Server) handleSetCwd(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := ValidateSessionID(id); err != nil {
		writeValidationError(w, err.Error(), nil)
		return
	}
	var req setCwdRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeValidationError(w, "invalid json: "+err.Error(), nil)
		return
	}
	if req.Cwd == "" {
		writeValidationError(w, "cwd is required", nil)
		return
	}
	if err := s.manager.SetCwd(id, req.Cwd); err != nil {
		s.writeAPIError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
