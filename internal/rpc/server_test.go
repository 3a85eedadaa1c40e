package rpc

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/sandkasten-run/boxd/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunCommand_Success(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	req := &RunCommandRequest{
		SessionID: "sess-1",
		Command:   []string{"echo", "hi"},
		TimeMs:    5000,
		MemKB:     262144,
		FsizeKB:   65536,
		NoFile:    64,
		Env:       map[string]string{"FOO": "bar"},
		Cwd:       "/work",
	}
	mockSvc.On("RunCommand", mock.Anything, "sess-1", session.CommandRequest{
		Argv:    req.Command,
		Env:     req.Env,
		Cwd:     req.Cwd,
		WallMs:  req.TimeMs,
		MemKB:   req.MemKB,
		FsizeKB: req.FsizeKB,
		NoFile:  req.NoFile,
	}).Return(session.CommandResult{Stdout: "hi\n", ExitCode: 0}, nil)

	resp, err := srv.RunCommand(context.Background(), req)
	assert.NoError(t, err)
	assert.Equal(t, "hi\n", resp.Stdout)
	assert.Equal(t, 0, resp.ExitCode)
	mockSvc.AssertExpectations(t)
}

func TestRunCommand_NotFoundMapsToGRPCCode(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	mockSvc.On("RunCommand", mock.Anything, "missing", mock.Anything).
		Return(session.CommandResult{}, session.ErrSessionNotFound)

	_, err := srv.RunCommand(context.Background(), &RunCommandRequest{SessionID: "missing", Command: []string{"ls"}})
	assertStatusCode(t, err, "NotFound")
}

func TestWriteFile_Success(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	mockSvc.On("WriteFile", "sess-1", "/tmp/x.txt", []byte("data")).Return(nil)

	resp, err := srv.WriteFile(context.Background(), &WriteFileRequest{
		SessionID: "sess-1", Path: "/tmp/x.txt", Content: []byte("data"),
	})
	assert.NoError(t, err)
	assert.True(t, resp.Success)
}

func TestWriteFile_UnknownSessionReturnsGRPCError(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	mockSvc.On("WriteFile", "missing", "/tmp/x.txt", mock.Anything).Return(session.ErrSessionNotFound)

	_, err := srv.WriteFile(context.Background(), &WriteFileRequest{SessionID: "missing", Path: "/tmp/x.txt"})
	assertStatusCode(t, err, "NotFound")
}

func TestWriteFile_PathEscapeReturnsSoftError(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	mockSvc.On("WriteFile", "sess-1", "../escape", mock.Anything).Return(session.ErrPathEscape)

	resp, err := srv.WriteFile(context.Background(), &WriteFileRequest{SessionID: "sess-1", Path: "../escape"})
	assert.NoError(t, err)
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Error)
}

func TestReadFile_Success(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	mockSvc.On("ReadFile", "sess-1", "/tmp/x.txt", int64(64<<20)).Return([]byte("hello"), true, nil)

	resp, err := srv.ReadFile(context.Background(), &ReadFileRequest{SessionID: "sess-1", Path: "/tmp/x.txt"})
	assert.NoError(t, err)
	assert.Equal(t, []byte("hello"), resp.Content)
}

func TestSetEnv_Success(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	mockSvc.On("SetEnv", "sess-1", map[string]string{"A": "1"}).Return(nil)

	_, err := srv.SetEnv(context.Background(), &SetEnvRequest{SessionID: "sess-1", Env: map[string]string{"A": "1"}})
	assert.NoError(t, err)
}

func TestSetCwd_Success(t *testing.T) {
	mockSvc := &MockCommandService{}
	srv := NewServer(mockSvc, 64<<20, testLogger())

	mockSvc.On("SetCwd", "sess-1", "/work").Return(nil)

	_, err := srv.SetCwd(context.Background(), &SetCwdRequest{SessionID: "sess-1", Cwd: "/work"})
	assert.NoError(t, err)
}

func assertStatusCode(t *testing.T, err error, code string) {
	t.Helper()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), code)
}
