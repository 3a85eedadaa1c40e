package api

import (
	"net/http"
	"time"
)

// accessTokenTTL is how long a token minted by handleIssueToken stays valid.
const accessTokenTTL = time.Hour

type issueTokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// handleIssueToken exchanges the caller's already-verified credential (the
// static API key, or a still-valid token) for a fresh short-lived token, so
// long-running clients can rotate credentials without ever holding the
// static secret themselves.
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	if s.cfg.APIKey == "" {
		writeValidationError(w, "token issuance is disabled: no api_key configured", nil)
		return
	}

	token, expiresAt, err := issueAccessToken(s.cfg.APIKey, accessTokenTTL)
	if err != nil {
		s.logger.Error("issue access token", "error", err)
		s.writeAPIError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, issueTokenResponse{Token: token, ExpiresAt: expiresAt})
}
