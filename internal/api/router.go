package api

import (
	"log/slog"
	"net/http"

	"github.com/sandkasten-run/boxd/internal/config"
)

// Server is the HTTP front door (component H) over a shared session
// registry. The gRPC front door in internal/rpc serves the hot path against
// the same registry instance.
type Server struct {
	cfg           *config.Config
	manager       SessionService
	logger        *slog.Logger
	mux           *http.ServeMux
	activeCounter func() int
}

// NewServer builds the HTTP front door. activeCounter reports the current
// live session count for /healthz without the handler needing its own
// registry reference.
func NewServer(cfg *config.Config, mgr SessionService, activeCounter func() int, logger *slog.Logger) *Server {
	if cfg.APIKey == "" {
		logger.Warn("no API key configured, HTTP front door is open access")
	}
	s := &Server{
		cfg:           cfg,
		manager:       mgr,
		logger:        logger,
		mux:           http.NewServeMux(),
		activeCounter: activeCounter,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.requestIDMiddleware(s.authMiddleware(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.mux.HandleFunc("GET /v1/sessions", s.handleListSessions)
	s.mux.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.mux.HandleFunc("DELETE /v1/sessions/{id}", s.handleDestroySession)
	s.mux.HandleFunc("POST /v1/sessions/{id}/env", s.handleSetEnv)
	s.mux.HandleFunc("POST /v1/sessions/{id}/cwd", s.handleSetCwd)
	s.mux.HandleFunc("POST /v1/sessions/{id}/exec", s.handleExec)

	s.mux.HandleFunc("POST /v1/sessions/{id}/fs/write", s.handleWrite)
	s.mux.HandleFunc("GET /v1/sessions/{id}/fs/read", s.handleRead)
	s.mux.HandleFunc("POST /v1/sessions/{id}/fs/upload", s.handleUpload)
	s.mux.HandleFunc("GET /v1/sessions/{id}/fs/list", s.handleListDirectory)

	s.mux.HandleFunc("POST /v1/sessions/{id}/snapshots", s.handleCreateSnapshot)
	s.mux.HandleFunc("GET /v1/sessions/{id}/snapshots", s.handleListSnapshots)
	s.mux.HandleFunc("DELETE /v1/sessions/{id}/snapshots/{name}", s.handleDeleteSnapshot)
	s.mux.HandleFunc("POST /v1/sessions/{id}/snapshots/{name}/restore", s.handleRestoreSnapshot)
	s.mux.HandleFunc("GET /v1/sessions/{id}/snapshots/{name}/export", s.handleExportSnapshot)
	s.mux.HandleFunc("POST /v1/sessions/{id}/snapshots/{name}/import", s.handleImportSnapshot)

	s.mux.HandleFunc("POST /v1/auth/token", s.handleIssueToken)

	s.mux.HandleFunc("GET /healthz", s.handleHealthz)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	active := 0
	if s.activeCounter != nil {
		active = s.activeCounter()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":          "ok",
		"active_sessions": active,
	})
}
