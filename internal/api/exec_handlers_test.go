package api

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sandkasten-run/boxd/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHandleExec_Success(t *testing.T) {
	mockMgr := &MockSessionService{}
	s := testAPIServer(mockMgr)

	mockMgr.On("RunCommand", mock.Anything, "abc123", mock.MatchedBy(func(req session.CommandRequest) bool {
		return len(req.Argv) == 2 && req.Argv[0] == "echo" && req.WallMs == s.cfg.Defaults.WallMs
	})).Return(session.CommandResult{Stdout: "hi\n", ExitCode: 0}, nil)

	body := `{"command":["echo","hi"]}`
	req := httptest.NewRequest("POST", "/v1/sessions/abc123/exec", strings.NewReader(body))
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleExec(rec, req)

	require.Equal(t, 200, rec.Code)
	var out commandResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, "hi\n", out.Stdout)
	assert.Equal(t, 0, out.ExitCode)
}

func TestHandleExec_EmptyCommandRejected(t *testing.T) {
	s := testAPIServer(&MockSessionService{})

	req := httptest.NewRequest("POST", "/v1/sessions/abc123/exec", strings.NewReader(`{"command":[]}`))
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleExec(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleExec_TimeoutTooLarge(t *testing.T) {
	s := testAPIServer(&MockSessionService{})

	req := httptest.NewRequest("POST", "/v1/sessions/abc123/exec", strings.NewReader(`{"command":["sleep"],"time_ms":999999999}`))
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleExec(rec, req)

	assert.Equal(t, 400, rec.Code)
}

func TestHandleExec_SpawnFailure(t *testing.T) {
	mockMgr := &MockSessionService{}
	s := testAPIServer(mockMgr)

	mockMgr.On("RunCommand", mock.Anything, "abc123", mock.Anything).
		Return(session.CommandResult{}, session.ErrSpawnFailed)

	req := httptest.NewRequest("POST", "/v1/sessions/abc123/exec", strings.NewReader(`{"command":["nope"]}`))
	req.SetPathValue("id", "abc123")
	rec := httptest.NewRecorder()

	s.handleExec(rec, req)

	assert.Equal(t, 502, rec.Code)
}
